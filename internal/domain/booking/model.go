package booking

// Booking statuses. A booking is created by the upstream queueing workflow and
// flips to checked-in exactly once, when the check-in saga commits.
const (
	StatusPending   = "pending"
	StatusCheckedIn = "checked-in"
)

// Booking is the hospital-side shadow of a remote queue entry. It is keyed by
// several alternate identifiers because patients present whichever number they
// have at hand: medical-record number, national id, insurance card number or
// the queue ticket printed on their booking slip.
type Booking struct {
	ID              int64   `json:"id"`
	BookingCode     string  `json:"booking_code"`
	MedicalRecordNo string  `json:"medical_record_no"`
	InsuranceCardNo string  `json:"insurance_card_no"`
	NationalID      string  `json:"national_id"`
	QueueTicketNo   *string `json:"queue_ticket_no"`
	ServiceDate     string  `json:"service_date"`
	Note            *string `json:"note"`
	Status          string  `json:"status"`
	RegistrationID  *int64  `json:"registration_id"`

	// Carried from the remote queue entry for check-in submission.
	ReferralNo *string `json:"referral_no"`
	Phone      *string `json:"phone"`
	ClinicCode *string `json:"clinic_code"`
	DoctorCode *string `json:"doctor_code"`
}
