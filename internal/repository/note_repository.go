package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sibarconnect/inbox-service/internal/domain"
)

// NoteRepository stores append-only chat notes.
type NoteRepository interface {
	Create(ctx context.Context, note *domain.ChatNote) error
	ListByChat(ctx context.Context, companyID, chatID int64) ([]domain.ChatNote, error)
}

type noteRepository struct {
	pool *pgxpool.Pool
}

// NewNoteRepository builds repository.
func NewNoteRepository(pool *pgxpool.Pool) NoteRepository {
	return &noteRepository{pool: pool}
}

func (r *noteRepository) Create(ctx context.Context, note *domain.ChatNote) error {
	const query = `
        INSERT INTO chat_notes (company_id, chat_id, user_id, content)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		note.CompanyID,
		note.ChatID,
		note.UserID,
		note.Content,
	).Scan(&note.ID, &note.CreatedAt)
}

func (r *noteRepository) ListByChat(ctx context.Context, companyID, chatID int64) ([]domain.ChatNote, error) {
	const query = `
        SELECT id, company_id, chat_id, user_id, content, created_at
        FROM chat_notes WHERE company_id=$1 AND chat_id=$2 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, companyID, chatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ChatNote
	for rows.Next() {
		var note domain.ChatNote
		if err := rows.Scan(
			&note.ID,
			&note.CompanyID,
			&note.ChatID,
			&note.UserID,
			&note.Content,
			&note.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, note)
	}
	return result, rows.Err()
}
