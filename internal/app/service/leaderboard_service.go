package service

import (
	"context"
	"math"
	"sort"
	"time"

	"codearena/internal/common"
	"codearena/internal/common/clock"
	"codearena/internal/domain/model"
	"codearena/internal/domain/repository"
)

// LeaderboardService projects the append-only submission history into
// ranked views. Nothing here is cached or mutated in place; every call
// recomputes from the store, so it is safe to run concurrently with
// new submissions arriving.
type LeaderboardService struct {
	contestRepo    repository.ContestRepository
	submissionRepo repository.SubmissionRepository
	userRepo       repository.UserRepository
	clk            clock.Clock
}

func NewLeaderboardService(
	contestRepo repository.ContestRepository,
	submissionRepo repository.SubmissionRepository,
	userRepo repository.UserRepository,
	clk clock.Clock,
) *LeaderboardService {
	return &LeaderboardService{
		contestRepo:    contestRepo,
		submissionRepo: submissionRepo,
		userRepo:       userRepo,
		clk:            clk,
	}
}

// firstAccepts collapses accepted submissions to the earliest accepted
// time per (user, problem). Resubmitting a solved problem never moves
// the credited time.
func firstAccepts(accepted []model.Submission) map[string]map[string]time.Time {
	first := map[string]map[string]time.Time{}
	for _, sub := range accepted {
		byProblem, ok := first[sub.UserID]
		if !ok {
			byProblem = map[string]time.Time{}
			first[sub.UserID] = byProblem
		}
		if t, ok := byProblem[sub.ProblemSlug]; !ok || sub.CreatedAt.Before(t) {
			byProblem[sub.ProblemSlug] = sub.CreatedAt
		}
	}
	return first
}

// Admin builds the staff-facing "unique problems solved" view. Only
// the contest's registered users appear: zero-solve registrants get a
// zero row, unregistered submitters are excluded entirely.
func (s *LeaderboardService) Admin(ctx context.Context, contestID string) ([]model.AdminLeaderboardRow, error) {
	contest, err := s.contestRepo.FindContestByID(ctx, contestID)
	if err != nil {
		return nil, common.Errorf("contest %q: %w", contestID, err)
	}

	accepted, err := s.submissionRepo.ListAcceptedForContest(ctx, contestID)
	if err != nil {
		return nil, common.Errorf("failed to list accepted submissions: %w", err)
	}
	all, err := s.submissionRepo.ListForContest(ctx, contestID)
	if err != nil {
		return nil, common.Errorf("failed to list submissions: %w", err)
	}

	first := firstAccepts(accepted)

	attempts := map[string]int{}
	for _, sub := range all {
		attempts[sub.UserID]++
	}

	users, err := s.userRepo.FindByIDs(ctx, contest.RegisteredUserIDs)
	if err != nil {
		return nil, common.Errorf("failed to load registered users: %w", err)
	}

	totalProblems := len(contest.ProblemSlugs)
	rows := make([]model.AdminLeaderboardRow, 0, len(users))
	for _, user := range users {
		row := model.AdminLeaderboardRow{
			UserID:         user.ID,
			Username:       user.Username,
			Email:          user.Email,
			SolvedProblems: []string{},
			TotalAttempts:  attempts[user.ID],
		}
		for slug, acceptedAt := range first[user.ID] {
			row.SolvedProblems = append(row.SolvedProblems, slug)
			if row.LastSolvedAt == nil || acceptedAt.After(*row.LastSolvedAt) {
				t := acceptedAt
				row.LastSolvedAt = &t
			}
		}
		sort.Strings(row.SolvedProblems)
		row.SolvedCount = len(row.SolvedProblems)
		if totalProblems > 0 {
			row.Score = int(math.Round(float64(row.SolvedCount) / float64(totalProblems) * 100))
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].SolvedCount != rows[j].SolvedCount {
			return rows[i].SolvedCount > rows[j].SolvedCount
		}
		if rows[i].LastSolvedAt == nil || rows[j].LastSolvedAt == nil {
			return false // both absent within a tie; keep stable order
		}
		return rows[i].LastSolvedAt.Before(*rows[j].LastSolvedAt)
	})
	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows, nil
}

// Student builds the student-facing "score + finish time + solutions"
// view. Solution code is redacted to null unless the contest phase is
// Ended at the moment of this call, including for the caller's own
// rows.
func (s *LeaderboardService) Student(ctx context.Context, contestID string) ([]model.StudentLeaderboardRow, error) {
	contest, err := s.contestRepo.FindContestByID(ctx, contestID)
	if err != nil {
		return nil, common.Errorf("contest %q: %w", contestID, err)
	}
	revealCode := contest.PhaseAt(s.clk.Now()) == model.PhaseEnded

	accepted, err := s.submissionRepo.ListAcceptedForContest(ctx, contestID)
	if err != nil {
		return nil, common.Errorf("failed to list accepted submissions: %w", err)
	}

	first := firstAccepts(accepted)

	solutions := map[string][]model.Solution{}
	order := []string{}
	for _, sub := range accepted {
		if _, seen := solutions[sub.UserID]; !seen {
			order = append(order, sub.UserID)
		}
		var code *string
		if revealCode {
			c := sub.Code
			code = &c
		}
		solutions[sub.UserID] = append(solutions[sub.UserID], model.Solution{
			ProblemSlug: sub.ProblemSlug,
			Language:    sub.Language,
			Code:        code,
			SubmittedAt: sub.CreatedAt,
		})
	}

	userIDs := make([]string, 0, len(order))
	userIDs = append(userIDs, order...)
	users, err := s.userRepo.FindByIDs(ctx, userIDs)
	if err != nil {
		return nil, common.Errorf("failed to load users: %w", err)
	}
	usersByID := map[string]model.User{}
	for _, u := range users {
		usersByID[u.ID] = u
	}

	rows := make([]model.StudentLeaderboardRow, 0, len(order))
	for _, userID := range order {
		row := model.StudentLeaderboardRow{
			UserID:    userID,
			Username:  usersByID[userID].Username,
			Email:     usersByID[userID].Email,
			Score:     len(first[userID]),
			Solutions: solutions[userID],
		}
		for _, acceptedAt := range first[userID] {
			if row.FinishTime == nil || acceptedAt.After(*row.FinishTime) {
				t := acceptedAt
				row.FinishTime = &t
			}
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Score != rows[j].Score {
			return rows[i].Score > rows[j].Score
		}
		if rows[i].FinishTime == nil || rows[j].FinishTime == nil {
			return false
		}
		return rows[i].FinishTime.Before(*rows[j].FinishTime)
	})
	for i := range rows {
		rows[i].Rank = i + 1 // sequential ranks, ties not shared
	}
	return rows, nil
}
