package registration

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bpjs/bridge/internal/platform/db"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

func (r *repoPG) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *repoPG) CountTickets(ctx context.Context, date string, group *string) (int, error) {
	var count int
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM queue_tickets WHERE date = $1 AND ticket_group IS NOT DISTINCT FROM $2`,
		date, group).Scan(&count)
	return count, err
}

func (r *repoPG) CreateTicket(ctx context.Context, t *QueueTicket) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO queue_tickets (number, clinic_id, date, counter, ticket_group)
		VALUES ($1,$2,$3,$4,$5) RETURNING id`,
		t.Number, t.ClinicID, t.Date, t.Counter, t.Group,
	).Scan(&t.ID)
}

func (r *repoPG) CountRegistrationsOn(ctx context.Context, date string) (int, error) {
	var count int
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM registrations WHERE created_at::date = $1::date`, date).Scan(&count)
	return count, err
}

func (r *repoPG) CreateRegistration(ctx context.Context, reg *Registration) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO registrations (
			registration_id, patient_id, doctor_id, clinic_id, queue_ticket_id,
			status, payer_type, patient_type, referral_source, input_from, queue_no,
			insurance_card_no, referral_no, referral_date, referral_provider,
			class_of_care, initial_diagnosis, visit_type, sep_no, sep_date
		) VALUES (
			$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,
			$11,$12,$13,$14,$15,$16,$17,$18,$19,$20
		) RETURNING id, created_at, updated_at`,
		reg.RegistrationID, reg.PatientID, reg.DoctorID, reg.ClinicID, reg.QueueTicketID,
		reg.Status, reg.PayerType, reg.PatientType, reg.ReferralSource, reg.InputFrom, reg.QueueNo,
		reg.InsuranceCardNo, reg.ReferralNo, reg.ReferralDate, reg.ReferralProvider,
		reg.ClassOfCare, reg.InitialDiagnosis, reg.VisitType, reg.SEPNo, reg.SEPDate,
	).Scan(&reg.ID, &reg.CreatedAt, &reg.UpdatedAt)
}

func (r *repoPG) SetSEP(ctx context.Context, registrationID int64, sepNo, sepDate string) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE registrations SET sep_no = $2, sep_date = $3, updated_at = NOW() WHERE id = $1`,
		registrationID, sepNo, sepDate)
	return err
}

func (r *repoPG) WriteAuditTrail(ctx context.Context, trail *AuditTrail) error {
	c := r.conn(ctx)

	err := c.QueryRow(ctx, `
		INSERT INTO status_history (registration_id, status, clinic_id, referral_source)
		VALUES ($1,$2,$3,$4) RETURNING id`,
		trail.Status.RegistrationID, trail.Status.Status, trail.Status.ClinicID, trail.Status.ReferralSource,
	).Scan(&trail.Status.ID)
	if err != nil {
		return err
	}

	err = c.QueryRow(ctx, `
		INSERT INTO visitor_history (registration_id, patient_id, referral_source, clinic_type, patient_status, visit_user)
		VALUES ($1,$2,$3,$4,$5,$6) RETURNING id`,
		trail.Visitor.RegistrationID, trail.Visitor.PatientID, trail.Visitor.ReferralSource,
		trail.Visitor.ClinicType, trail.Visitor.PatientStatus, trail.Visitor.User,
	).Scan(&trail.Visitor.ID)
	if err != nil {
		return err
	}

	return c.QueryRow(ctx, `
		INSERT INTO outpatient_visit_history (registration_id, patient_id, clinic_id, doctor_id, visit_user, referral_source)
		VALUES ($1,$2,$3,$4,$5,$6) RETURNING id`,
		trail.Visit.RegistrationID, trail.Visit.PatientID, trail.Visit.ClinicID,
		trail.Visit.DoctorID, trail.Visit.User, trail.Visit.ReferralSource,
	).Scan(&trail.Visit.ID)
}

func (r *repoPG) GetControlPlanByLetterNo(ctx context.Context, letterNo string) (*ControlPlan, error) {
	var p ControlPlan
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT id, registration_id, patient_id, clinic_id, doctor_id, letter_no, planned_date,
			sep_no, referral_no, visit_purpose, procedure_flag, support_code,
			service_assessment, initial_diagnosis
		FROM control_plans WHERE letter_no = $1 ORDER BY id DESC LIMIT 1`, letterNo,
	).Scan(
		&p.ID, &p.RegistrationID, &p.PatientID, &p.ClinicID, &p.DoctorID, &p.LetterNo, &p.PlannedDate,
		&p.SEPNo, &p.ReferralNo, &p.VisitPurpose, &p.ProcedureFlag, &p.SupportCode,
		&p.ServiceAssessment, &p.InitialDiagnosis,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
