package repository

import (
	"context"
	"database/sql"
	"fmt"

	"codearena/internal/domain/model"
)

// SubmissionRepository is append-only: submissions are never updated
// or deleted, so history is permanent and leaderboard aggregation can
// run lock-free against it.
type SubmissionRepository interface {
	CreateSubmission(ctx context.Context, sub *model.Submission) error
	ListForUserProblem(ctx context.Context, userID, problemSlug string) ([]model.Submission, error)
	ListAcceptedForContest(ctx context.Context, contestID string) ([]model.Submission, error)
	ListForContest(ctx context.Context, contestID string) ([]model.Submission, error)
}

type pgSubmissionRepository struct {
	db *sql.DB
}

func NewPgSubmissionRepository(db *sql.DB) SubmissionRepository {
	return &pgSubmissionRepository{db: db}
}

func (r *pgSubmissionRepository) CreateSubmission(ctx context.Context, sub *model.Submission) error {
	query := `INSERT INTO submissions (id, user_id, problem_slug, contest_id, code, language, status, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.db.ExecContext(ctx, query,
		sub.ID, sub.UserID, sub.ProblemSlug, sub.ContestID, sub.Code, sub.Language, sub.Status, sub.CreatedAt)
	if err != nil {
		return fmt.Errorf("pgSubmissionRepository.CreateSubmission: %w", err)
	}
	return nil
}

func (r *pgSubmissionRepository) ListForUserProblem(ctx context.Context, userID, problemSlug string) ([]model.Submission, error) {
	query := `SELECT id, user_id, problem_slug, contest_id, code, language, status, created_at
	          FROM submissions WHERE user_id = $1 AND problem_slug = $2 ORDER BY created_at DESC`
	return r.list(ctx, query, userID, problemSlug)
}

func (r *pgSubmissionRepository) ListAcceptedForContest(ctx context.Context, contestID string) ([]model.Submission, error) {
	query := `SELECT id, user_id, problem_slug, contest_id, code, language, status, created_at
	          FROM submissions WHERE contest_id = $1 AND status = $2 ORDER BY created_at ASC`
	return r.list(ctx, query, contestID, model.VerdictAccepted)
}

func (r *pgSubmissionRepository) ListForContest(ctx context.Context, contestID string) ([]model.Submission, error) {
	query := `SELECT id, user_id, problem_slug, contest_id, code, language, status, created_at
	          FROM submissions WHERE contest_id = $1 ORDER BY created_at ASC`
	return r.list(ctx, query, contestID)
}

func (r *pgSubmissionRepository) list(ctx context.Context, query string, args ...interface{}) ([]model.Submission, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.list query: %w", err)
	}
	defer rows.Close()

	var subs []model.Submission
	for rows.Next() {
		var s model.Submission
		if err := rows.Scan(&s.ID, &s.UserID, &s.ProblemSlug, &s.ContestID, &s.Code, &s.Language, &s.Status, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("pgSubmissionRepository.list scan: %w", err)
		}
		subs = append(subs, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.list rows.Err: %w", err)
	}
	return subs, nil
}
