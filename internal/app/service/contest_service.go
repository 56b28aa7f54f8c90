package service

import (
	"context"
	"database/sql"
	"time"

	"codearena/internal/common"
	"codearena/internal/common/clock"
	"codearena/internal/domain/model"
	"codearena/internal/domain/repository"

	"github.com/google/uuid"
)

type ContestService struct {
	contestRepo repository.ContestRepository
	problemRepo repository.ProblemRepository
	db          *sql.DB
	clk         clock.Clock
}

func NewContestService(
	contestRepo repository.ContestRepository,
	problemRepo repository.ProblemRepository,
	db *sql.DB,
	clk clock.Clock,
) *ContestService {
	return &ContestService{contestRepo: contestRepo, problemRepo: problemRepo, db: db, clk: clk}
}

type CreateContestRequest struct {
	Title        string    `json:"title"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
	ProblemSlugs []string  `json:"problem_slugs"`
}

// ContestResponse carries the derived phase; phase is never stored.
type ContestResponse struct {
	*model.Contest
	Phase model.ContestPhase `json:"phase"`
}

func (s *ContestService) CreateContest(ctx context.Context, req CreateContestRequest) (*model.Contest, error) {
	if req.Title == "" {
		return nil, common.Errorf("title is required: %w", common.ErrValidation)
	}
	if !req.StartTime.Before(req.EndTime) {
		return nil, common.Errorf("start_time must be before end_time: %w", common.ErrValidation)
	}
	for _, problemSlug := range req.ProblemSlugs {
		if _, err := s.problemRepo.FindProblemBySlug(ctx, problemSlug); err != nil {
			return nil, common.Errorf("problem %q: %w", problemSlug, err)
		}
	}

	contest := &model.Contest{
		ID:           uuid.NewString(),
		Title:        req.Title,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		ProblemSlugs: req.ProblemSlugs,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, common.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.contestRepo.CreateContest(ctx, tx, contest); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, common.Errorf("failed to commit transaction: %w", err)
	}
	return contest, nil
}

func (s *ContestService) GetContest(ctx context.Context, contestID string) (*ContestResponse, error) {
	contest, err := s.contestRepo.FindContestByID(ctx, contestID)
	if err != nil {
		return nil, common.Errorf("contest %q: %w", contestID, err)
	}
	return &ContestResponse{Contest: contest, Phase: contest.PhaseAt(s.clk.Now())}, nil
}

// Register adds the caller to the contest roster. Registration closes
// once the contest has ended.
func (s *ContestService) Register(ctx context.Context, contestID, userID string) error {
	contest, err := s.contestRepo.FindContestByID(ctx, contestID)
	if err != nil {
		return common.Errorf("contest %q: %w", contestID, err)
	}
	if contest.PhaseAt(s.clk.Now()) == model.PhaseEnded {
		return common.Errorf("registration closed, contest has ended: %w", common.ErrBadRequest)
	}
	return s.contestRepo.RegisterUser(ctx, contestID, userID)
}
