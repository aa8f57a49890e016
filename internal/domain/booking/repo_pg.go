package booking

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

const bookingCols = `id, booking_code, medical_record_no, insurance_card_no, national_id,
	queue_ticket_no, service_date, note, status, registration_id,
	referral_no, phone, clinic_code, doctor_code`

const identifierMatch = `(medical_record_no = $1 OR national_id = $1 OR insurance_card_no = $1 OR queue_ticket_no = $1)`

func (r *repoPG) GetByBookingCode(ctx context.Context, code string) (*Booking, error) {
	return scanBooking(r.conn(ctx).QueryRow(ctx,
		`SELECT `+bookingCols+` FROM bookings WHERE booking_code = $1 ORDER BY id DESC LIMIT 1`, code))
}

func (r *repoPG) FindByIdentifier(ctx context.Context, identifier, date string) (*Booking, error) {
	return scanBooking(r.conn(ctx).QueryRow(ctx,
		`SELECT `+bookingCols+` FROM bookings
		 WHERE `+identifierMatch+` AND service_date = $2
		 ORDER BY id DESC LIMIT 1`, identifier, date))
}

func (r *repoPG) FindAllByIdentifier(ctx context.Context, identifier, date string) ([]*Booking, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+bookingCols+` FROM bookings
		 WHERE `+identifierMatch+` AND service_date = $2
		 ORDER BY id DESC`, identifier, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []*Booking
	for rows.Next() {
		b, err := scanBookingRows(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

func (r *repoPG) MarkCheckedIn(ctx context.Context, bookingID, registrationID int64, medicalRecordNo string) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE bookings SET status = $2, registration_id = $3, medical_record_no = $4 WHERE id = $1`,
		bookingID, StatusCheckedIn, registrationID, medicalRecordNo)
	return err
}

func scanBooking(row pgx.Row) (*Booking, error) {
	var b Booking
	err := row.Scan(
		&b.ID, &b.BookingCode, &b.MedicalRecordNo, &b.InsuranceCardNo, &b.NationalID,
		&b.QueueTicketNo, &b.ServiceDate, &b.Note, &b.Status, &b.RegistrationID,
		&b.ReferralNo, &b.Phone, &b.ClinicCode, &b.DoctorCode,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func scanBookingRows(rows pgx.Rows) (*Booking, error) {
	var b Booking
	err := rows.Scan(
		&b.ID, &b.BookingCode, &b.MedicalRecordNo, &b.InsuranceCardNo, &b.NationalID,
		&b.QueueTicketNo, &b.ServiceDate, &b.Note, &b.Status, &b.RegistrationID,
		&b.ReferralNo, &b.Phone, &b.ClinicCode, &b.DoctorCode,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}
