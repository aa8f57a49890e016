package booking

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
)

// Outcome classifies a lookup for submission purposes. Auto-selecting among
// same-day duplicates is unsafe for a remote insurance submission, so the
// ambiguous case is surfaced distinctly instead of silently tie-breaking.
type Outcome int

const (
	OutcomeFound Outcome = iota
	OutcomeNoMatch
	OutcomeAmbiguous
)

// Resolution is the result of ResolveForSubmission.
type Resolution struct {
	Outcome Outcome
	Booking *Booking
	Matches []*Booking
}

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// FindBooking resolves an identifier to the newest same-day booking. An empty
// date defaults to today. Not finding a booking is a business outcome, not an
// error: the error return is reserved for storage failures.
func (s *Service) FindBooking(ctx context.Context, identifier, date string) (*Booking, error) {
	if date == "" {
		date = s.now().Format("2006-01-02")
	}
	b, err := s.repo.FindByIdentifier(ctx, identifier, date)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// ResolveForSubmission returns all same-day matches and classifies the result.
func (s *Service) ResolveForSubmission(ctx context.Context, identifier, date string) (*Resolution, error) {
	if date == "" {
		date = s.now().Format("2006-01-02")
	}
	matches, err := s.repo.FindAllByIdentifier(ctx, identifier, date)
	if err != nil {
		return nil, err
	}
	switch len(matches) {
	case 0:
		return &Resolution{Outcome: OutcomeNoMatch}, nil
	case 1:
		return &Resolution{Outcome: OutcomeFound, Booking: matches[0], Matches: matches}, nil
	default:
		return &Resolution{Outcome: OutcomeAmbiguous, Matches: matches}, nil
	}
}
