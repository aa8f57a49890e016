package clinic

import "context"

type Repository interface {
	GetByBPJSCode(ctx context.Context, code string) (*Clinic, error)
	List(ctx context.Context) ([]*Clinic, error)

	GetDoctorByBPJSCode(ctx context.Context, code string) (*Doctor, error)
}
