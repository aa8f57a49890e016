package registration

import (
	"fmt"
	"strings"
	"time"
)

// Registration is one clinical visit instance, linking patient, clinic,
// doctor, queue ticket and referral metadata. SEPNo/SEPDate are stamped once
// the remote authority issues the eligibility certificate.
type Registration struct {
	ID             int64   `json:"id"`
	RegistrationID string  `json:"registration_id"`
	PatientID      int64   `json:"patient_id"`
	DoctorID       *int64  `json:"doctor_id"`
	ClinicID       int64   `json:"clinic_id"`
	QueueTicketID  *int64  `json:"queue_ticket_id"`
	Status         string  `json:"status"`
	PayerType      *string `json:"payer_type"`
	PatientType    *string `json:"patient_type"`
	ReferralSource *string `json:"referral_source"`
	InputFrom      *string `json:"input_from"`
	QueueNo        *string `json:"queue_no"`

	InsuranceCardNo  *string `json:"insurance_card_no"`
	ReferralNo       *string `json:"referral_no"`
	ReferralDate     *string `json:"referral_date"`
	ReferralProvider *string `json:"referral_provider"`
	ClassOfCare      *string `json:"class_of_care"`
	InitialDiagnosis *string `json:"initial_diagnosis"`
	VisitType        *string `json:"visit_type"`

	SEPNo   *string `json:"sep_no"`
	SEPDate *string `json:"sep_date"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// QueueTicket is a per-day, per-clinic-group sequential number. The number is
// count+1 over existing rows for the (date, group) pair, not a global counter,
// so it must be computed and inserted within the same transaction as its
// consumers.
type QueueTicket struct {
	ID       int64   `json:"id"`
	Number   int     `json:"number"`
	ClinicID int64   `json:"clinic_id"`
	Date     string  `json:"date"`
	Counter  *string `json:"counter"`
	Group    *string `json:"group"`
}

// The three audit rows written once per successful registration. Append-only:
// never updated or deleted by the check-in path.

type StatusHistory struct {
	ID             int64   `json:"id"`
	RegistrationID int64   `json:"registration_id"`
	Status         string  `json:"status"`
	ClinicID       int64   `json:"clinic_id"`
	ReferralSource *string `json:"referral_source"`
}

type VisitorHistory struct {
	ID             int64   `json:"id"`
	RegistrationID int64   `json:"registration_id"`
	PatientID      int64   `json:"patient_id"`
	ReferralSource *string `json:"referral_source"`
	ClinicType     *string `json:"clinic_type"`
	PatientStatus  *string `json:"patient_status"`
	User           *string `json:"user"`
}

type OutpatientVisitHistory struct {
	ID             int64   `json:"id"`
	RegistrationID int64   `json:"registration_id"`
	PatientID      int64   `json:"patient_id"`
	ClinicID       int64   `json:"clinic_id"`
	DoctorID       *int64  `json:"doctor_id"`
	User           *string `json:"user"`
	ReferralSource *string `json:"referral_source"`
}

// AuditTrail bundles the three rows so the repository writes them as one unit.
type AuditTrail struct {
	Status  StatusHistory
	Visitor VisitorHistory
	Visit   OutpatientVisitHistory
}

// ControlPlan (rencana kontrol) carries the overrides needed to reissue an
// eligibility certificate for a follow-up visit.
type ControlPlan struct {
	ID             int64   `json:"id"`
	RegistrationID *int64  `json:"registration_id"`
	PatientID      *int64  `json:"patient_id"`
	ClinicID       *int64  `json:"clinic_id"`
	DoctorID       *int64  `json:"doctor_id"`
	LetterNo       string  `json:"letter_no"`
	PlannedDate    *string `json:"planned_date"`
	SEPNo          *string `json:"sep_no"`
	ReferralNo     *string `json:"referral_no"`

	VisitPurpose      *string `json:"visit_purpose"`
	ProcedureFlag     *string `json:"procedure_flag"`
	SupportCode       *string `json:"support_code"`
	ServiceAssessment *string `json:"service_assessment"`
	InitialDiagnosis  *string `json:"initial_diagnosis"`
}

// FormatRegistrationID builds the daily-sequential registration id:
// the service date compacted to YYYYMMDD followed by the zero-padded
// position of this registration in the day's sequence.
func FormatRegistrationID(date string, countToday int) string {
	return fmt.Sprintf("%s%04d", strings.ReplaceAll(date, "-", ""), countToday+1)
}

// NextTicketNumber derives a queue ticket number from the count of existing
// tickets for the (date, group) pair. Only race-free under the enclosing
// transaction's isolation.
func NextTicketNumber(existing int) int {
	return existing + 1
}
