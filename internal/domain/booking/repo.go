package booking

import "context"

type Repository interface {
	GetByBookingCode(ctx context.Context, code string) (*Booking, error)
	// FindByIdentifier matches the identifier against any of the alternate
	// keys, scoped to the service date. When several rows match, the newest
	// (highest id) wins.
	FindByIdentifier(ctx context.Context, identifier, date string) (*Booking, error)
	// FindAllByIdentifier returns every same-day match, newest first.
	FindAllByIdentifier(ctx context.Context, identifier, date string) ([]*Booking, error)
	MarkCheckedIn(ctx context.Context, bookingID, registrationID int64, medicalRecordNo string) error
}
