package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sibarconnect/inbox-service/internal/domain"
)

// ErrSlotConflict signals that (company, agent, start_at) is already booked.
// The uniqueness rule lives in the database, so concurrent creates cannot
// both pass a pre-check.
var ErrSlotConflict = errors.New("appointment slot already taken")

// AppointmentRepository manages scheduled appointments.
type AppointmentRepository interface {
	Create(ctx context.Context, appt *domain.Appointment) error
	GetByID(ctx context.Context, companyID, id int64) (*domain.Appointment, error)
	FindBySlot(ctx context.Context, companyID, userID int64, startAt time.Time) (*domain.Appointment, error)
	Update(ctx context.Context, appt *domain.Appointment) error
	ListByChat(ctx context.Context, companyID, chatID int64) ([]domain.Appointment, error)
	ListByUserBetween(ctx context.Context, companyID, userID int64, from, to time.Time) ([]domain.Appointment, error)
	Delete(ctx context.Context, companyID, id int64) error
}

type appointmentRepository struct {
	pool *pgxpool.Pool
}

// NewAppointmentRepository builds repository.
func NewAppointmentRepository(pool *pgxpool.Pool) AppointmentRepository {
	return &appointmentRepository{pool: pool}
}

const appointmentColumns = `id, company_id, chat_id, assigned_user_id, start_at, created_at`

func (r *appointmentRepository) Create(ctx context.Context, appt *domain.Appointment) error {
	const query = `
        INSERT INTO appointments (company_id, chat_id, assigned_user_id, start_at)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	err := r.pool.QueryRow(ctx, query,
		appt.CompanyID,
		appt.ChatID,
		appt.AssignedUserID,
		appt.StartAt,
	).Scan(&appt.ID, &appt.CreatedAt)
	if isUniqueViolation(err) {
		return ErrSlotConflict
	}
	return err
}

func (r *appointmentRepository) GetByID(ctx context.Context, companyID, id int64) (*domain.Appointment, error) {
	const query = `SELECT ` + appointmentColumns + ` FROM appointments WHERE id=$1 AND company_id=$2`
	return scanAppointment(r.pool.QueryRow(ctx, query, id, companyID))
}

func (r *appointmentRepository) FindBySlot(ctx context.Context, companyID, userID int64, startAt time.Time) (*domain.Appointment, error) {
	const query = `
        SELECT ` + appointmentColumns + `
        FROM appointments WHERE company_id=$1 AND assigned_user_id=$2 AND start_at=$3`
	return scanAppointment(r.pool.QueryRow(ctx, query, companyID, userID, startAt))
}

func (r *appointmentRepository) Update(ctx context.Context, appt *domain.Appointment) error {
	const query = `
        UPDATE appointments SET assigned_user_id=$1, start_at=$2
        WHERE id=$3 AND company_id=$4`
	cmd, err := r.pool.Exec(ctx, query, appt.AssignedUserID, appt.StartAt, appt.ID, appt.CompanyID)
	if isUniqueViolation(err) {
		return ErrSlotConflict
	}
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *appointmentRepository) ListByChat(ctx context.Context, companyID, chatID int64) ([]domain.Appointment, error) {
	const query = `
        SELECT ` + appointmentColumns + `
        FROM appointments WHERE company_id=$1 AND chat_id=$2 ORDER BY start_at ASC`
	rows, err := r.pool.Query(ctx, query, companyID, chatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAppointments(rows)
}

func (r *appointmentRepository) ListByUserBetween(ctx context.Context, companyID, userID int64, from, to time.Time) ([]domain.Appointment, error) {
	const query = `
        SELECT ` + appointmentColumns + `
        FROM appointments
        WHERE company_id=$1 AND assigned_user_id=$2 AND start_at >= $3 AND start_at < $4
        ORDER BY start_at ASC`
	rows, err := r.pool.Query(ctx, query, companyID, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAppointments(rows)
}

func (r *appointmentRepository) Delete(ctx context.Context, companyID, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM appointments WHERE id=$1 AND company_id=$2`, id, companyID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanAppointment(row pgx.Row) (*domain.Appointment, error) {
	var appt domain.Appointment
	if err := row.Scan(
		&appt.ID,
		&appt.CompanyID,
		&appt.ChatID,
		&appt.AssignedUserID,
		&appt.StartAt,
		&appt.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &appt, nil
}

func scanAppointments(rows pgx.Rows) ([]domain.Appointment, error) {
	var result []domain.Appointment
	for rows.Next() {
		var appt domain.Appointment
		if err := rows.Scan(
			&appt.ID,
			&appt.CompanyID,
			&appt.ChatID,
			&appt.AssignedUserID,
			&appt.StartAt,
			&appt.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, appt)
	}
	return result, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
