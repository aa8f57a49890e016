package registration

import "context"

type Repository interface {
	CountTickets(ctx context.Context, date string, group *string) (int, error)
	CreateTicket(ctx context.Context, t *QueueTicket) error

	CountRegistrationsOn(ctx context.Context, date string) (int, error)
	CreateRegistration(ctx context.Context, reg *Registration) error
	SetSEP(ctx context.Context, registrationID int64, sepNo, sepDate string) error

	WriteAuditTrail(ctx context.Context, trail *AuditTrail) error

	GetControlPlanByLetterNo(ctx context.Context, letterNo string) (*ControlPlan, error)
}
