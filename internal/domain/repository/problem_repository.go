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

type ProblemRepository interface {
	CreateProblem(ctx context.Context, tx *sql.Tx, problem *model.Problem) error
	FindProblemBySlug(ctx context.Context, slug string) (*model.Problem, error)
	ListProblems(ctx context.Context, limit, offset int) ([]model.Problem, error)
}

type pgProblemRepository struct {
	db *sql.DB
}

func NewPgProblemRepository(db *sql.DB) ProblemRepository {
	return &pgProblemRepository{db: db}
}

func (r *pgProblemRepository) CreateProblem(ctx context.Context, tx *sql.Tx, p *model.Problem) error {
	query := `INSERT INTO problems (id, title, slug, description, created_by)
	          VALUES ($1, $2, $3, $4, $5)`
	_, err := tx.ExecContext(ctx, query, p.ID, p.Title, p.Slug, p.Description, p.CreatedByID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique constraint for slug
			return fmt.Errorf("problem with this slug already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgProblemRepository.CreateProblem: %w", err)
	}

	caseStmt, err := tx.PrepareContext(ctx, `INSERT INTO test_cases (id, problem_id, input, expected_output, is_public, sort_order)
	          VALUES ($1, $2, $3, $4, $5, $6)`)
	if err != nil {
		return fmt.Errorf("pgProblemRepository.CreateProblem prepare cases: %w", err)
	}
	defer caseStmt.Close()

	for i, tc := range p.TestCases {
		tc.SortOrder = i + 1
		if _, err := caseStmt.ExecContext(ctx, tc.ID, p.ID, tc.Input, tc.ExpectedOutput, tc.IsPublic, tc.SortOrder); err != nil {
			return fmt.Errorf("pgProblemRepository.CreateProblem exec case %d: %w", i, err)
		}
	}

	for language, template := range p.DriverCode {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO driver_codes (problem_id, language, template) VALUES ($1, $2, $3)`,
			p.ID, language, template)
		if err != nil {
			return fmt.Errorf("pgProblemRepository.CreateProblem driver %s: %w", language, err)
		}
	}
	return nil
}

func (r *pgProblemRepository) FindProblemBySlug(ctx context.Context, slug string) (*model.Problem, error) {
	query := `SELECT id, title, slug, description, created_by, created_at, updated_at
	          FROM problems WHERE slug = $1`
	problem := &model.Problem{}
	err := r.db.QueryRowContext(ctx, query, slug).Scan(
		&problem.ID, &problem.Title, &problem.Slug, &problem.Description,
		&problem.CreatedByID, &problem.CreatedAt, &problem.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgProblemRepository.FindProblemBySlug: %w", err)
	}

	problem.TestCases, err = r.testCasesByProblemID(ctx, problem.ID)
	if err != nil {
		return nil, err
	}
	problem.DriverCode, err = r.driverCodeByProblemID(ctx, problem.ID)
	if err != nil {
		return nil, err
	}
	return problem, nil
}

func (r *pgProblemRepository) testCasesByProblemID(ctx context.Context, problemID string) ([]model.TestCase, error) {
	query := `SELECT id, problem_id, input, expected_output, is_public, sort_order
	          FROM test_cases WHERE problem_id = $1 ORDER BY sort_order ASC`
	rows, err := r.db.QueryContext(ctx, query, problemID)
	if err != nil {
		return nil, fmt.Errorf("pgProblemRepository.testCasesByProblemID query: %w", err)
	}
	defer rows.Close()

	var cases []model.TestCase
	for rows.Next() {
		var tc model.TestCase
		if err := rows.Scan(&tc.ID, &tc.ProblemID, &tc.Input, &tc.ExpectedOutput, &tc.IsPublic, &tc.SortOrder); err != nil {
			return nil, fmt.Errorf("pgProblemRepository.testCasesByProblemID scan: %w", err)
		}
		cases = append(cases, tc)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgProblemRepository.testCasesByProblemID rows.Err: %w", err)
	}
	return cases, nil
}

func (r *pgProblemRepository) driverCodeByProblemID(ctx context.Context, problemID string) (map[string]string, error) {
	query := `SELECT language, template FROM driver_codes WHERE problem_id = $1`
	rows, err := r.db.QueryContext(ctx, query, problemID)
	if err != nil {
		return nil, fmt.Errorf("pgProblemRepository.driverCodeByProblemID query: %w", err)
	}
	defer rows.Close()

	drivers := map[string]string{}
	for rows.Next() {
		var language, template string
		if err := rows.Scan(&language, &template); err != nil {
			return nil, fmt.Errorf("pgProblemRepository.driverCodeByProblemID scan: %w", err)
		}
		drivers[language] = template
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgProblemRepository.driverCodeByProblemID rows.Err: %w", err)
	}
	return drivers, nil
}

func (r *pgProblemRepository) ListProblems(ctx context.Context, limit, offset int) ([]model.Problem, error) {
	query := `SELECT id, title, slug, description, created_by, created_at, updated_at
	          FROM problems ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("pgProblemRepository.ListProblems query: %w", err)
	}
	defer rows.Close()

	problems := []model.Problem{}
	for rows.Next() {
		var p model.Problem
		if err := rows.Scan(&p.ID, &p.Title, &p.Slug, &p.Description, &p.CreatedByID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("pgProblemRepository.ListProblems scan: %w", err)
		}
		problems = append(problems, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgProblemRepository.ListProblems rows.Err: %w", err)
	}
	return problems, nil
}
