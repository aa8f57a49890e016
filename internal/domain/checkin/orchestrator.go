// Package checkin implements the transactional eligibility-certificate (SEP)
// creation saga: starting from a local booking, it allocates a queue ticket,
// resolves or creates the patient, creates the registration and its audit
// trail, submits the certificate request to the remote authority and stamps
// the result back onto the booking. All local writes and the remote submission
// either fully commit or fully roll back.
package checkin

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/bpjs/bridge/internal/domain/booking"
	"github.com/bpjs/bridge/internal/domain/clinic"
	"github.com/bpjs/bridge/internal/domain/patient"
	"github.com/bpjs/bridge/internal/domain/referral"
	"github.com/bpjs/bridge/internal/domain/registration"
	"github.com/bpjs/bridge/internal/platform/bpjs"
	"github.com/bpjs/bridge/internal/platform/db"
)

// Result is the uniform shape every check-in operation returns, success or
// failure, so the HTTP layer never special-cases thrown errors.
type Result struct {
	Code    int                    `json:"code"`
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data,omitempty"`
}

// RemoteClient is the slice of the remote catalog the saga consumes.
type RemoteClient interface {
	InsertSEP(ctx context.Context, payload interface{}) (*bpjs.Envelope, error)
	RujukanByNoRujukan(ctx context.Context, noRujukan string) (*bpjs.Envelope, error)
	PesertaByNoKartu(ctx context.Context, noKartu, tglSEP string) (*bpjs.Envelope, error)
}

// PatientResolver is implemented by patient.Service.
type PatientResolver interface {
	ResolveOrCreate(ctx context.Context, mrn string, demo patient.Demographics) (*patient.Patient, error)
}

// ValidityChecker is implemented by referral.Checker.
type ValidityChecker interface {
	CheckValidity(ctx context.Context, referralNo, date string) referral.Validity
}

// CheckInRequest locates the booking either by its booking code or by an
// alternate identifier plus service date (date defaults to today).
type CheckInRequest struct {
	BookingCode string `json:"booking_code"`
	Identifier  string `json:"identifier"`
	Date        string `json:"date"`

	// Demographics for patients not yet on file.
	Patient patient.Demographics `json:"patient"`

	InitialDiagnosis string `json:"initial_diagnosis"`
	User             string `json:"user"`
}

// SEPCheckInRequest reuses an eligibility certificate issued earlier; the
// remote insert is skipped.
type SEPCheckInRequest struct {
	CheckInRequest
	SEPNo   string `json:"sep_no"`
	SEPDate string `json:"sep_date"`
}

// ControlCheckInRequest builds the certificate payload from a control plan
// (surat kontrol) instead of the booking's own referral.
type ControlCheckInRequest struct {
	CheckInRequest
	ControlLetterNo string `json:"control_letter_no"`
}

type Orchestrator struct {
	bookings      booking.Repository
	clinics       clinic.Repository
	patients      PatientResolver
	registrations registration.Repository
	remote        RemoteClient
	checker       ValidityChecker
	tx            db.TxManager
	logger        zerolog.Logger
	hospitalCode  string
	now           func() time.Time
}

func NewOrchestrator(
	bookings booking.Repository,
	clinics clinic.Repository,
	patients PatientResolver,
	registrations registration.Repository,
	remote RemoteClient,
	checker ValidityChecker,
	tx db.TxManager,
	logger zerolog.Logger,
	hospitalCode string,
) *Orchestrator {
	return &Orchestrator{
		bookings:      bookings,
		clinics:       clinics,
		patients:      patients,
		registrations: registrations,
		remote:        remote,
		checker:       checker,
		tx:            tx,
		logger:        logger,
		hospitalCode:  hospitalCode,
		now:           time.Now,
	}
}

// rejection is a business outcome riding the error channel so that RunInTx
// rolls back. It is unwrapped back into a Result at the orchestrator boundary
// and never escapes the package.
type rejection struct {
	result Result
}

func (r *rejection) Error() string { return r.result.Message }

func reject(code int, format string, args ...interface{}) error {
	return &rejection{result: Result{Code: code, Message: fmt.Sprintf(format, args...)}}
}

// CheckIn runs the full saga including the remote certificate submission.
func (o *Orchestrator) CheckIn(ctx context.Context, req CheckInRequest) Result {
	return o.run(ctx, req, submitRemote, nil, nil)
}

// CheckInWithSEP registers the visit against a certificate that already
// exists; the remote insert is skipped and the supplied number is stamped.
func (o *Orchestrator) CheckInWithSEP(ctx context.Context, req SEPCheckInRequest) Result {
	if req.SEPNo == "" {
		return Result{Code: http.StatusBadRequest, Message: "sep_no is required"}
	}
	return o.run(ctx, req.CheckInRequest, reuseSEP, &req, nil)
}

// CheckInControlVisit builds the certificate payload from a control plan. The
// plan's referral rides a validity window, so it is probed first; an expired
// referral is a business rejection before any local write.
func (o *Orchestrator) CheckInControlVisit(ctx context.Context, req ControlCheckInRequest) Result {
	if req.ControlLetterNo == "" {
		return Result{Code: http.StatusBadRequest, Message: "control_letter_no is required"}
	}

	plan, err := o.registrations.GetControlPlanByLetterNo(ctx, req.ControlLetterNo)
	if errors.Is(err, pgx.ErrNoRows) {
		return Result{Code: http.StatusNotFound, Message: "control letter " + req.ControlLetterNo + " not found"}
	}
	if err != nil {
		return o.systemFailure(err, "load control plan")
	}

	if o.checker != nil && plan.ReferralNo != nil && *plan.ReferralNo != "" {
		date := req.Date
		if date == "" {
			date = o.now().Format("2006-01-02")
		}
		v := o.checker.CheckValidity(ctx, *plan.ReferralNo, date)
		if v.IsExpired {
			return Result{Code: http.StatusConflict, Message: v.RawMessage}
		}
	}

	return o.run(ctx, req.CheckInRequest, submitRemote, nil, plan)
}

// submission strategy per operation variant.
type strategy int

const (
	submitRemote strategy = iota
	reuseSEP
)

func (o *Orchestrator) run(ctx context.Context, req CheckInRequest, strat strategy, sepReq *SEPCheckInRequest, plan *registration.ControlPlan) Result {
	date := req.Date
	if date == "" {
		date = o.now().Format("2006-01-02")
	}

	b, res := o.findBooking(ctx, req, date)
	if res != nil {
		return *res
	}
	if b.Status == booking.StatusCheckedIn {
		return Result{Code: http.StatusConflict, Message: "booking " + b.BookingCode + " is already checked in"}
	}

	var out Result
	err := o.tx.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		out, err = o.checkInTx(txCtx, b, req, date, strat, sepReq, plan)
		return err
	})
	if err != nil {
		var rej *rejection
		if errors.As(err, &rej) {
			o.logger.Info().Int("code", rej.result.Code).Str("booking", b.BookingCode).
				Str("reason", rej.result.Message).Msg("check-in rejected, transaction rolled back")
			return rej.result
		}
		return o.systemFailure(err, "check-in transaction")
	}
	return out
}

func (o *Orchestrator) findBooking(ctx context.Context, req CheckInRequest, date string) (*booking.Booking, *Result) {
	var (
		b   *booking.Booking
		err error
	)
	switch {
	case req.BookingCode != "":
		b, err = o.bookings.GetByBookingCode(ctx, req.BookingCode)
	case req.Identifier != "":
		b, err = o.bookings.FindByIdentifier(ctx, req.Identifier, date)
	default:
		return nil, &Result{Code: http.StatusBadRequest, Message: "booking_code or identifier is required"}
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &Result{Code: http.StatusNotFound, Message: "booking not found"}
	}
	if err != nil {
		r := o.systemFailure(err, "booking lookup")
		return nil, &r
	}
	return b, nil
}

// checkInTx is the state machine body. Every step runs inside the one
// transaction carried by ctx; returning an error rolls everything back,
// including steps already executed.
func (o *Orchestrator) checkInTx(ctx context.Context, b *booking.Booking, req CheckInRequest, date string, strat strategy, sepReq *SEPCheckInRequest, plan *registration.ControlPlan) (Result, error) {
	// QueueAllocated
	if b.ClinicCode == nil || *b.ClinicCode == "" {
		return Result{}, reject(http.StatusUnprocessableEntity, "booking %s carries no clinic code", b.BookingCode)
	}
	cl, err := o.clinics.GetByBPJSCode(ctx, *b.ClinicCode)
	if errors.Is(err, pgx.ErrNoRows) {
		return Result{}, reject(http.StatusNotFound, "clinic %s not found", *b.ClinicCode)
	}
	if err != nil {
		return Result{}, fmt.Errorf("clinic lookup: %w", err)
	}

	existing, err := o.registrations.CountTickets(ctx, date, cl.Group)
	if err != nil {
		return Result{}, fmt.Errorf("count tickets: %w", err)
	}
	ticket := &registration.QueueTicket{
		Number:   registration.NextTicketNumber(existing),
		ClinicID: cl.ID,
		Date:     date,
		Counter:  cl.Counter,
		Group:    cl.Group,
	}
	if err := o.registrations.CreateTicket(ctx, ticket); err != nil {
		return Result{}, fmt.Errorf("create ticket: %w", err)
	}

	// PatientResolved
	demo := req.Patient
	if demo.NationalID == "" {
		demo.NationalID = b.NationalID
	}
	if demo.InsuranceCardNo == nil && b.InsuranceCardNo != "" {
		card := b.InsuranceCardNo
		demo.InsuranceCardNo = &card
	}
	if demo.Phone == nil {
		demo.Phone = b.Phone
	}
	p, err := o.patients.ResolveOrCreate(ctx, b.MedicalRecordNo, demo)
	if err != nil {
		return Result{}, fmt.Errorf("resolve patient: %w", err)
	}

	// RegistrationCreated
	countToday, err := o.registrations.CountRegistrationsOn(ctx, date)
	if err != nil {
		return Result{}, fmt.Errorf("count registrations: %w", err)
	}
	// The doctor is optional on the registration; an unknown code is fine,
	// a failing lookup is not.
	var doctorID *int64
	if b.DoctorCode != nil && *b.DoctorCode != "" {
		d, err := o.clinics.GetDoctorByBPJSCode(ctx, *b.DoctorCode)
		switch {
		case err == nil:
			doctorID = &d.ID
		case !errors.Is(err, pgx.ErrNoRows):
			return Result{}, fmt.Errorf("doctor lookup: %w", err)
		}
	}
	reg := o.newRegistration(b, req, date, countToday, cl, p, ticket, doctorID, plan, sepReq)
	if err := o.registrations.CreateRegistration(ctx, reg); err != nil {
		return Result{}, fmt.Errorf("create registration: %w", err)
	}

	// AuditWritten
	if err := o.registrations.WriteAuditTrail(ctx, o.newAuditTrail(reg, cl, p, req.User)); err != nil {
		return Result{}, fmt.Errorf("write audit trail: %w", err)
	}

	// RemoteSubmitted
	certificateNo := ""
	if strat == reuseSEP {
		certificateNo = sepReq.SEPNo
	} else {
		certificateNo, err = o.submitCertificate(ctx, b, p, date, req, plan)
		if err != nil {
			return Result{}, err
		}
		if err := o.registrations.SetSEP(ctx, reg.ID, certificateNo, date); err != nil {
			return Result{}, fmt.Errorf("stamp certificate: %w", err)
		}
	}

	// Committed
	if err := o.bookings.MarkCheckedIn(ctx, b.ID, reg.ID, p.MedicalRecordNo); err != nil {
		return Result{}, fmt.Errorf("mark booking checked in: %w", err)
	}

	return Result{
		Code:    http.StatusOK,
		Message: "checked in",
		Data: map[string]interface{}{
			"certificate_number": certificateNo,
			"registration_id":    reg.RegistrationID,
			"medical_record_no":  p.MedicalRecordNo,
			"queue_ticket":       ticket.Number,
		},
	}, nil
}

// submitCertificate is the last operation before commit: a remote rejection
// must not leave an orphaned local ticket or registration behind.
func (o *Orchestrator) submitCertificate(ctx context.Context, b *booking.Booking, p *patient.Patient, date string, req CheckInRequest, plan *registration.ControlPlan) (string, error) {
	fields := o.sepFieldsFor(ctx, b, p, date, req, plan)
	env, err := o.remote.InsertSEP(ctx, buildSEPPayload(fields))
	if err != nil {
		return "", fmt.Errorf("submit certificate: %w", err)
	}
	if !env.OK() {
		return "", reject(env.Code, "%s", env.Message)
	}

	certificateNo := dig(env.Response, "sep", "noSep")
	if certificateNo == "" {
		// Accepted but no certificate number: treat as remote failure, the
		// local registration is useless without it.
		return "", reject(http.StatusBadGateway, "remote accepted the submission but returned no certificate number")
	}
	return certificateNo, nil
}

func (o *Orchestrator) systemFailure(err error, stage string) Result {
	o.logger.Error().Err(err).Str("stage", stage).Msg("check-in failed")
	return Result{Code: http.StatusInternalServerError, Message: "internal error during check-in"}
}
