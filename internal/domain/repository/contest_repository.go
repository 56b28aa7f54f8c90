package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"codearena/internal/common"
	"codearena/internal/domain/model"

	"github.com/jackc/pgx/v5/pgconn"
)

type ContestRepository interface {
	CreateContest(ctx context.Context, tx *sql.Tx, contest *model.Contest) error
	FindContestByID(ctx context.Context, id string) (*model.Contest, error)
	RegisterUser(ctx context.Context, contestID, userID string) error
}

type pgContestRepository struct {
	db *sql.DB
}

func NewPgContestRepository(db *sql.DB) ContestRepository {
	return &pgContestRepository{db: db}
}

func (r *pgContestRepository) CreateContest(ctx context.Context, tx *sql.Tx, c *model.Contest) error {
	query := `INSERT INTO contests (id, title, start_time, end_time) VALUES ($1, $2, $3, $4)`
	if _, err := tx.ExecContext(ctx, query, c.ID, c.Title, c.StartTime, c.EndTime); err != nil {
		return fmt.Errorf("pgContestRepository.CreateContest: %w", err)
	}

	for i, slug := range c.ProblemSlugs {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO contest_problems (contest_id, problem_slug, sort_order) VALUES ($1, $2, $3)`,
			c.ID, slug, i+1)
		if err != nil {
			return fmt.Errorf("pgContestRepository.CreateContest problem %s: %w", slug, err)
		}
	}
	return nil
}

func (r *pgContestRepository) FindContestByID(ctx context.Context, id string) (*model.Contest, error) {
	query := `SELECT id, title, start_time, end_time, created_at FROM contests WHERE id = $1`
	contest := &model.Contest{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&contest.ID, &contest.Title, &contest.StartTime, &contest.EndTime, &contest.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgContestRepository.FindContestByID: %w", err)
	}

	contest.ProblemSlugs, err = r.stringColumn(ctx,
		`SELECT problem_slug FROM contest_problems WHERE contest_id = $1 ORDER BY sort_order ASC`, id)
	if err != nil {
		return nil, err
	}
	contest.RegisteredUserIDs, err = r.stringColumn(ctx,
		`SELECT user_id FROM contest_registrations WHERE contest_id = $1 ORDER BY registered_at ASC`, id)
	if err != nil {
		return nil, err
	}
	return contest, nil
}

func (r *pgContestRepository) stringColumn(ctx context.Context, query, arg string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("pgContestRepository.stringColumn query: %w", err)
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("pgContestRepository.stringColumn scan: %w", err)
		}
		values = append(values, v)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgContestRepository.stringColumn rows.Err: %w", err)
	}
	return values, nil
}

func (r *pgContestRepository) RegisterUser(ctx context.Context, contestID, userID string) error {
	query := `INSERT INTO contest_registrations (contest_id, user_id) VALUES ($1, $2)`
	if _, err := r.db.ExecContext(ctx, query, contestID, userID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Already registered
			return fmt.Errorf("user already registered for contest: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgContestRepository.RegisterUser: %w", err)
	}
	return nil
}
