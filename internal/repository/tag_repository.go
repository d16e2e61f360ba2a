package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sibarconnect/inbox-service/internal/domain"
	apperrors "github.com/sibarconnect/inbox-service/pkg/util"
)

// TagRepository manages the tenant tag vocabulary and chat-tag mappings.
type TagRepository interface {
	ListByCompany(ctx context.Context, companyID int64) ([]domain.ChatTag, error)
	Create(ctx context.Context, companyID int64, name string) (*domain.ChatTag, error)
	Delete(ctx context.Context, companyID, tagID int64) error
	SetChatTags(ctx context.Context, chatID int64, tagIDs []int64) error
	ListChatTagIDs(ctx context.Context, chatID int64) ([]int64, error)
	BulkSetTags(ctx context.Context, chatIDs, tagIDs []int64) error
}

type tagRepository struct {
	pool *pgxpool.Pool
}

// NewTagRepository builds repository.
func NewTagRepository(pool *pgxpool.Pool) TagRepository {
	return &tagRepository{pool: pool}
}

func (r *tagRepository) ListByCompany(ctx context.Context, companyID int64) ([]domain.ChatTag, error) {
	const query = `SELECT id, company_id, name, created_at FROM chat_tags WHERE company_id=$1 ORDER BY name ASC`
	rows, err := r.pool.Query(ctx, query, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ChatTag
	for rows.Next() {
		var tag domain.ChatTag
		if err := rows.Scan(&tag.ID, &tag.CompanyID, &tag.Name, &tag.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, tag)
	}
	return result, rows.Err()
}

func (r *tagRepository) Create(ctx context.Context, companyID int64, name string) (*domain.ChatTag, error) {
	const query = `
        INSERT INTO chat_tags (company_id, name) VALUES ($1,$2)
        RETURNING id, company_id, name, created_at`
	var tag domain.ChatTag
	err := r.pool.QueryRow(ctx, query, companyID, name).Scan(&tag.ID, &tag.CompanyID, &tag.Name, &tag.CreatedAt)
	if isUniqueViolation(err) {
		return nil, apperrors.NewConflict("tag name already exists", map[string]any{"name": name})
	}
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

// Delete removes a tag and all its chat mappings.
func (r *tagRepository) Delete(ctx context.Context, companyID, tagID int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `DELETE FROM chat_tag_map WHERE tag_id=$1`, tagID); err != nil {
		return err
	}
	cmd, err := tx.Exec(ctx, `DELETE FROM chat_tags WHERE id=$1 AND company_id=$2`, tagID, companyID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return tx.Commit(ctx)
}

// SetChatTags replaces the full tag set for a chat: delete-all-then-insert.
func (r *tagRepository) SetChatTags(ctx context.Context, chatID int64, tagIDs []int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `DELETE FROM chat_tag_map WHERE chat_id=$1`, chatID); err != nil {
		return err
	}
	if len(tagIDs) > 0 {
		const insert = `
            INSERT INTO chat_tag_map (chat_id, tag_id)
            SELECT $1, t FROM unnest($2::bigint[]) AS t`
		if _, err := tx.Exec(ctx, insert, chatID, tagIDs); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *tagRepository) ListChatTagIDs(ctx context.Context, chatID int64) ([]int64, error) {
	const query = `SELECT tag_id FROM chat_tag_map WHERE chat_id=$1 ORDER BY tag_id ASC`
	rows, err := r.pool.Query(ctx, query, chatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// BulkSetTags replaces the tag set for every chat in the list with the same
// tags: delete matching mappings, then insert the full cross-product.
func (r *tagRepository) BulkSetTags(ctx context.Context, chatIDs, tagIDs []int64) error {
	if len(chatIDs) == 0 {
		return nil
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `DELETE FROM chat_tag_map WHERE chat_id = ANY($1)`, chatIDs); err != nil {
		return err
	}
	if len(tagIDs) > 0 {
		const insert = `
            INSERT INTO chat_tag_map (chat_id, tag_id)
            SELECT c, t FROM unnest($1::bigint[]) AS c, unnest($2::bigint[]) AS t`
		if _, err := tx.Exec(ctx, insert, chatIDs, tagIDs); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}
