package clinic

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

const clinicCols = `id, name, clinic_type, bpjs_code, counter, clinic_group, online_quota, quota`

func (r *repoPG) GetByBPJSCode(ctx context.Context, code string) (*Clinic, error) {
	return scanClinic(r.conn(ctx).QueryRow(ctx, `SELECT `+clinicCols+` FROM clinics WHERE bpjs_code = $1`, code))
}

func (r *repoPG) List(ctx context.Context) ([]*Clinic, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+clinicCols+` FROM clinics ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clinics []*Clinic
	for rows.Next() {
		var c Clinic
		if err := rows.Scan(&c.ID, &c.Name, &c.ClinicType, &c.BPJSCode, &c.Counter, &c.Group, &c.OnlineQuota, &c.Quota); err != nil {
			return nil, err
		}
		clinics = append(clinics, &c)
	}
	return clinics, rows.Err()
}

func (r *repoPG) GetDoctorByBPJSCode(ctx context.Context, code string) (*Doctor, error) {
	return scanDoctor(r.conn(ctx).QueryRow(ctx, `SELECT id, name, bpjs_code FROM doctors WHERE bpjs_code = $1`, code))
}

func scanClinic(row pgx.Row) (*Clinic, error) {
	var c Clinic
	err := row.Scan(&c.ID, &c.Name, &c.ClinicType, &c.BPJSCode, &c.Counter, &c.Group, &c.OnlineQuota, &c.Quota)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor
	if err := row.Scan(&d.ID, &d.Name, &d.BPJSCode); err != nil {
		return nil, err
	}
	return &d, nil
}
