package service

import (
	"context"
	"encoding/json"
	"log/slog"

	"codearena/internal/common"
	"codearena/internal/common/clock"
	"codearena/internal/domain/model"
	"codearena/internal/domain/repository"

	"github.com/redis/go-redis/v9"
)

// CertificateService hands the top leaderboard rows to the external
// certificate mailer. The mailer consumes {name, email, rank} tuples
// from a redis list; nothing else crosses that boundary.
type CertificateService struct {
	contestRepo repository.ContestRepository
	leaderboard *LeaderboardService
	rdb         *redis.Client
	queueName   string
	topN        int
	clk         clock.Clock
}

func NewCertificateService(
	contestRepo repository.ContestRepository,
	leaderboard *LeaderboardService,
	rdb *redis.Client,
	queueName string,
	topN int,
	clk clock.Clock,
) *CertificateService {
	return &CertificateService{
		contestRepo: contestRepo,
		leaderboard: leaderboard,
		rdb:         rdb,
		queueName:   queueName,
		topN:        topN,
		clk:         clk,
	}
}

// DispatchForContest enqueues the top finishers of an ended contest
// for certificate delivery and returns what was enqueued.
func (s *CertificateService) DispatchForContest(ctx context.Context, contestID string) ([]model.CertificateRow, error) {
	contest, err := s.contestRepo.FindContestByID(ctx, contestID)
	if err != nil {
		return nil, common.Errorf("contest %q: %w", contestID, err)
	}
	if contest.PhaseAt(s.clk.Now()) != model.PhaseEnded {
		return nil, common.Errorf("certificates are only dispatched after a contest ends: %w", common.ErrBadRequest)
	}

	rows, err := s.leaderboard.Student(ctx, contestID)
	if err != nil {
		return nil, err
	}

	limit := s.topN
	if limit > len(rows) {
		limit = len(rows)
	}

	dispatched := make([]model.CertificateRow, 0, limit)
	for _, row := range rows[:limit] {
		cert := model.CertificateRow{
			Name:  row.Username,
			Email: row.Email,
			Rank:  row.Rank,
		}
		payload, err := json.Marshal(cert)
		if err != nil {
			return nil, common.Errorf("failed to marshal certificate row: %w", err)
		}
		if err := s.rdb.LPush(ctx, s.queueName, payload).Err(); err != nil {
			return nil, common.Errorf("failed to enqueue certificate for %s: %w", row.UserID, err)
		}
		dispatched = append(dispatched, cert)
	}

	slog.Info("certificates dispatched", "contest_id", contestID, "count", len(dispatched))
	return dispatched, nil
}
