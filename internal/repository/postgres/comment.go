package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/healthrec/record-api/internal/model"
	"github.com/healthrec/record-api/internal/repository"
)

type commentRepository struct {
	BaseRepository
}

func NewCommentRepository(base BaseRepository) repository.CommentRepository {
	return &commentRepository{base}
}

func (r *commentRepository) Create(ctx context.Context, comment *model.DoctorComment) error {
	now := time.Now()
	comment.CreatedAt = now
	comment.UpdatedAt = now

	query := `
		INSERT INTO doctor_comments (
			id, record_id, doctor_id, comment, is_private, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		comment.ID, comment.RecordID, comment.DoctorID,
		comment.Comment, comment.IsPrivate,
		comment.CreatedAt, comment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}
	return nil
}

func (r *commentRepository) ListByRecord(ctx context.Context, recordID uuid.UUID, includePrivate bool) ([]*model.DoctorComment, error) {
	query := `
		SELECT * FROM doctor_comments
		WHERE record_id = $1 AND ($2 OR NOT is_private)
		ORDER BY created_at DESC
	`
	var comments []*model.DoctorComment
	if err := r.db.SelectContext(ctx, &comments, query, recordID, includePrivate); err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, nil
}
