package patient

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
)

type mockRepo struct {
	patients    []*Patient
	allocations []*MedicalRecordAllocation
	nextID      int64
}

func (m *mockRepo) GetByMedicalRecordNo(ctx context.Context, mrn string) (*Patient, error) {
	for _, p := range m.patients {
		if p.MedicalRecordNo == mrn {
			return p, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *mockRepo) GetByNationalID(ctx context.Context, nationalID string) (*Patient, error) {
	for i := len(m.patients) - 1; i >= 0; i-- {
		if m.patients[i].NationalID == nationalID {
			return m.patients[i], nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *mockRepo) Create(ctx context.Context, p *Patient) error {
	m.nextID++
	p.ID = m.nextID
	m.patients = append(m.patients, p)
	return nil
}

func (m *mockRepo) SetMedicalRecordNo(ctx context.Context, patientID int64, mrn string) error {
	for _, p := range m.patients {
		if p.ID == patientID {
			p.MedicalRecordNo = mrn
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (m *mockRepo) NextSequence(ctx context.Context) (int64, error) {
	var max int64
	for _, a := range m.allocations {
		if a.Sequence > max {
			max = a.Sequence
		}
	}
	return max + 1, nil
}

func (m *mockRepo) CreateAllocation(ctx context.Context, a *MedicalRecordAllocation) error {
	a.ID = int64(len(m.allocations) + 1)
	m.allocations = append(m.allocations, a)
	return nil
}

func newTestService(repo *mockRepo) *Service {
	s := NewService(repo, 100000)
	s.now = func() time.Time { return time.Date(2024, 1, 30, 8, 0, 0, 0, time.Local) }
	return s
}

func TestResolveOrCreate_ReturnsExisting(t *testing.T) {
	repo := &mockRepo{patients: []*Patient{{ID: 1, MedicalRecordNo: "100001", Name: "BUDI"}}}
	svc := newTestService(repo)

	p, err := svc.ResolveOrCreate(context.Background(), "100001", Demographics{Name: "ignored"})
	if err != nil {
		t.Fatal(err)
	}
	if p.ID != 1 || p.Name != "BUDI" {
		t.Fatalf("expected existing patient back, got %+v", p)
	}
	if len(repo.patients) != 1 || len(repo.allocations) != 0 {
		t.Error("existing patient must not trigger a create or an allocation")
	}
}

func TestResolveOrCreate_CreatesAndAllocates(t *testing.T) {
	addr := "jl. merdeka no. 1"
	repo := &mockRepo{}
	svc := newTestService(repo)

	p, err := svc.ResolveOrCreate(context.Background(), "", Demographics{
		Name:       "budi santoso",
		NationalID: "3201234567890001",
		Address:    &addr,
	})
	if err != nil {
		t.Fatal(err)
	}

	if p.Name != "BUDI SANTOSO" {
		t.Errorf("name must be upper-cased: %q", p.Name)
	}
	if p.Address == nil || *p.Address != "JL. MERDEKA NO. 1" {
		t.Errorf("address must be upper-cased: %v", p.Address)
	}
	if p.MedicalRecordNo != "100001" {
		t.Errorf("first allocation should be base+1: %q", p.MedicalRecordNo)
	}
	if len(repo.allocations) != 1 {
		t.Fatalf("expected exactly one allocation, got %d", len(repo.allocations))
	}
	if repo.allocations[0].PatientID != p.ID {
		t.Error("allocation must reference the new patient")
	}
}

func TestResolveOrCreate_MatchesByNationalID(t *testing.T) {
	repo := &mockRepo{patients: []*Patient{
		{ID: 4, MedicalRecordNo: "100007", Name: "SITI", NationalID: "3201234567890002"},
	}}
	svc := newTestService(repo)

	p, err := svc.ResolveOrCreate(context.Background(), "", Demographics{
		Name:       "siti rahma",
		NationalID: "3201234567890002",
	})
	if err != nil {
		t.Fatal(err)
	}
	if p.ID != 4 || p.MedicalRecordNo != "100007" {
		t.Fatalf("expected the national-id match back, got %+v", p)
	}
	if len(repo.patients) != 1 || len(repo.allocations) != 0 {
		t.Error("a national-id match must not create a duplicate or allocate a new number")
	}
}

func TestAllocate_MonotonicNeverReused(t *testing.T) {
	repo := &mockRepo{}
	svc := newTestService(repo)

	seen := map[string]bool{}
	for i := 0; i < 5; i++ {
		p, err := svc.ResolveOrCreate(context.Background(), "", Demographics{Name: "x", NationalID: fmt.Sprintf("320%d", i)})
		if err != nil {
			t.Fatal(err)
		}
		if seen[p.MedicalRecordNo] {
			t.Fatalf("medical-record number reused: %s", p.MedicalRecordNo)
		}
		seen[p.MedicalRecordNo] = true
	}
	if repo.allocations[4].Sequence != 5 {
		t.Errorf("sequence must be strictly increasing: %+v", repo.allocations[4])
	}
}
