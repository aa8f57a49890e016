package patient

import "time"

// Patient is the hospital's master record for a person. MedicalRecordNo is
// unique and allocated once, monotonically; it never changes and is never
// reused for another patient.
type Patient struct {
	ID              int64     `json:"id"`
	MedicalRecordNo string    `json:"medical_record_no"`
	Name            string    `json:"name"`
	NationalID      string    `json:"national_id"`
	BirthPlace      *string   `json:"birth_place"`
	BirthDate       *string   `json:"birth_date"`
	Sex             *string   `json:"sex"`
	Address         *string   `json:"address"`
	Phone           *string   `json:"phone"`
	InsuranceCardNo *string   `json:"insurance_card_no"`
	RegisteredDate  *string   `json:"registered_date"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// MedicalRecordAllocation maps one strictly increasing sequence number to one
// patient. It is the source of truth for new medical-record numbers.
type MedicalRecordAllocation struct {
	ID              int64  `json:"id"`
	PatientID       int64  `json:"patient_id"`
	Sequence        int64  `json:"sequence"`
	MedicalRecordNo string `json:"medical_record_no"`
}

// Demographics are the fields supplied when a patient is first seen, before a
// medical-record number exists.
type Demographics struct {
	Name            string  `json:"name"`
	NationalID      string  `json:"national_id"`
	BirthPlace      *string `json:"birth_place"`
	BirthDate       *string `json:"birth_date"`
	Sex             *string `json:"sex"`
	Address         *string `json:"address"`
	Phone           *string `json:"phone"`
	InsuranceCardNo *string `json:"insurance_card_no"`
}
