package patient

import "context"

type Repository interface {
	GetByMedicalRecordNo(ctx context.Context, mrn string) (*Patient, error)
	GetByNationalID(ctx context.Context, nationalID string) (*Patient, error)
	Create(ctx context.Context, p *Patient) error
	SetMedicalRecordNo(ctx context.Context, patientID int64, mrn string) error
	// NextSequence returns max(sequence)+1. Count-then-insert is only safe
	// inside the caller's transaction.
	NextSequence(ctx context.Context) (int64, error)
	CreateAllocation(ctx context.Context, a *MedicalRecordAllocation) error
}
