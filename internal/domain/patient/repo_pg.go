package patient

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

const patientCols = `id, medical_record_no, name, national_id, birth_place, birth_date,
	sex, address, phone, insurance_card_no, registered_date, created_at, updated_at`

func (r *repoPG) GetByMedicalRecordNo(ctx context.Context, mrn string) (*Patient, error) {
	return scanPatient(r.conn(ctx).QueryRow(ctx,
		`SELECT `+patientCols+` FROM patients WHERE medical_record_no = $1`, mrn))
}

func (r *repoPG) GetByNationalID(ctx context.Context, nationalID string) (*Patient, error) {
	return scanPatient(r.conn(ctx).QueryRow(ctx,
		`SELECT `+patientCols+` FROM patients WHERE national_id = $1 ORDER BY id DESC LIMIT 1`, nationalID))
}

func (r *repoPG) Create(ctx context.Context, p *Patient) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO patients (
			medical_record_no, name, national_id, birth_place, birth_date,
			sex, address, phone, insurance_card_no, registered_date
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING id, created_at, updated_at`,
		p.MedicalRecordNo, p.Name, p.NationalID, p.BirthPlace, p.BirthDate,
		p.Sex, p.Address, p.Phone, p.InsuranceCardNo, p.RegisteredDate,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (r *repoPG) SetMedicalRecordNo(ctx context.Context, patientID int64, mrn string) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE patients SET medical_record_no = $2, updated_at = NOW() WHERE id = $1`, patientID, mrn)
	return err
}

func (r *repoPG) NextSequence(ctx context.Context) (int64, error) {
	var next int64
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT COALESCE(MAX(sequence), 0) + 1 FROM medical_record_allocations`).Scan(&next)
	return next, err
}

func (r *repoPG) CreateAllocation(ctx context.Context, a *MedicalRecordAllocation) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO medical_record_allocations (patient_id, sequence, medical_record_no)
		VALUES ($1,$2,$3) RETURNING id`,
		a.PatientID, a.Sequence, a.MedicalRecordNo,
	).Scan(&a.ID)
}

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(
		&p.ID, &p.MedicalRecordNo, &p.Name, &p.NationalID, &p.BirthPlace, &p.BirthDate,
		&p.Sex, &p.Address, &p.Phone, &p.InsuranceCardNo, &p.RegisteredDate, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
