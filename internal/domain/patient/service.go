package patient

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
)

type Service struct {
	repo    Repository
	mrnBase int64
	now     func() time.Time
}

func NewService(repo Repository, mrnBase int64) *Service {
	return &Service{repo: repo, mrnBase: mrnBase, now: time.Now}
}

// GetByMedicalRecordNo returns nil without error when no patient exists.
func (s *Service) GetByMedicalRecordNo(ctx context.Context, mrn string) (*Patient, error) {
	p, err := s.repo.GetByMedicalRecordNo(ctx, mrn)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

// ResolveOrCreate returns the existing patient for the medical-record number,
// falling back to a national-id match when no number is on file, or creates
// one from the supplied demographics and allocates a fresh number. Names and
// addresses are upper-cased to match the remote authority's records.
// Must run inside the caller's transaction: the sequence read and the
// allocation insert are only consistent under its isolation.
func (s *Service) ResolveOrCreate(ctx context.Context, mrn string, demo Demographics) (*Patient, error) {
	if mrn != "" {
		p, err := s.GetByMedicalRecordNo(ctx, mrn)
		if err != nil {
			return nil, err
		}
		if p != nil {
			return p, nil
		}
	}

	// Patients registered at the desk often book online without their
	// medical-record number; the national id is the remaining stable key.
	if demo.NationalID != "" {
		p, err := s.repo.GetByNationalID(ctx, demo.NationalID)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		if p != nil {
			return p, nil
		}
	}

	today := s.now().Format("2006-01-02")
	p := &Patient{
		Name:            strings.ToUpper(demo.Name),
		NationalID:      demo.NationalID,
		BirthPlace:      upperPtr(demo.BirthPlace),
		BirthDate:       demo.BirthDate,
		Sex:             demo.Sex,
		Address:         upperPtr(demo.Address),
		Phone:           demo.Phone,
		InsuranceCardNo: demo.InsuranceCardNo,
		RegisteredDate:  &today,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	newMRN, err := s.allocate(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetMedicalRecordNo(ctx, p.ID, newMRN); err != nil {
		return nil, err
	}
	p.MedicalRecordNo = newMRN
	return p, nil
}

// allocate issues the next medical-record number: base offset plus a strictly
// increasing sequence. Numbers are never reused, one allocation per patient.
func (s *Service) allocate(ctx context.Context, patientID int64) (string, error) {
	seq, err := s.repo.NextSequence(ctx)
	if err != nil {
		return "", err
	}
	mrn := strconv.FormatInt(s.mrnBase+seq, 10)
	a := &MedicalRecordAllocation{PatientID: patientID, Sequence: seq, MedicalRecordNo: mrn}
	if err := s.repo.CreateAllocation(ctx, a); err != nil {
		return "", err
	}
	return mrn, nil
}

func upperPtr(s *string) *string {
	if s == nil {
		return nil
	}
	u := strings.ToUpper(*s)
	return &u
}
