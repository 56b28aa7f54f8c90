package service

import (
	"context"
	"database/sql"
	"errors"
	"sync"

	"codearena/internal/app/judge"
	"codearena/internal/common"
	"codearena/internal/domain/model"
)

// In-memory repository fakes so service behavior can be exercised
// without a database.

type memProblemRepo struct {
	problems map[string]*model.Problem
}

func newMemProblemRepo(problems ...*model.Problem) *memProblemRepo {
	r := &memProblemRepo{problems: map[string]*model.Problem{}}
	for _, p := range problems {
		r.problems[p.Slug] = p
	}
	return r
}

func (r *memProblemRepo) CreateProblem(ctx context.Context, tx *sql.Tx, p *model.Problem) error {
	if _, exists := r.problems[p.Slug]; exists {
		return common.ErrConflict
	}
	r.problems[p.Slug] = p
	return nil
}

func (r *memProblemRepo) FindProblemBySlug(ctx context.Context, slug string) (*model.Problem, error) {
	p, ok := r.problems[slug]
	if !ok {
		return nil, common.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (r *memProblemRepo) ListProblems(ctx context.Context, limit, offset int) ([]model.Problem, error) {
	var out []model.Problem
	for _, p := range r.problems {
		out = append(out, *p)
	}
	return out, nil
}

type memSubmissionRepo struct {
	mu         sync.Mutex
	subs       []model.Submission
	failCreate bool
}

func (r *memSubmissionRepo) CreateSubmission(ctx context.Context, sub *model.Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCreate {
		return errors.New("store unavailable")
	}
	r.subs = append(r.subs, *sub)
	return nil
}

func (r *memSubmissionRepo) ListForUserProblem(ctx context.Context, userID, problemSlug string) ([]model.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Submission
	for i := len(r.subs) - 1; i >= 0; i-- { // newest first
		s := r.subs[i]
		if s.UserID == userID && s.ProblemSlug == problemSlug {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *memSubmissionRepo) ListAcceptedForContest(ctx context.Context, contestID string) ([]model.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Submission
	for _, s := range r.subs {
		if s.ContestID != nil && *s.ContestID == contestID && s.Status == model.VerdictAccepted {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *memSubmissionRepo) ListForContest(ctx context.Context, contestID string) ([]model.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Submission
	for _, s := range r.subs {
		if s.ContestID != nil && *s.ContestID == contestID {
			out = append(out, s)
		}
	}
	return out, nil
}

type memContestRepo struct {
	contests map[string]*model.Contest
}

func newMemContestRepo(contests ...*model.Contest) *memContestRepo {
	r := &memContestRepo{contests: map[string]*model.Contest{}}
	for _, c := range contests {
		r.contests[c.ID] = c
	}
	return r
}

func (r *memContestRepo) CreateContest(ctx context.Context, tx *sql.Tx, c *model.Contest) error {
	r.contests[c.ID] = c
	return nil
}

func (r *memContestRepo) FindContestByID(ctx context.Context, id string) (*model.Contest, error) {
	c, ok := r.contests[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	copied := *c
	return &copied, nil
}

func (r *memContestRepo) RegisterUser(ctx context.Context, contestID, userID string) error {
	c, ok := r.contests[contestID]
	if !ok {
		return common.ErrNotFound
	}
	c.RegisteredUserIDs = append(c.RegisteredUserIDs, userID)
	return nil
}

type memUserRepo struct {
	users map[string]*model.User
}

func newMemUserRepo(users ...*model.User) *memUserRepo {
	r := &memUserRepo{users: map[string]*model.User{}}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *memUserRepo) Create(ctx context.Context, u *model.User) error {
	r.users[u.ID] = u
	return nil
}

func (r *memUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *memUserRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *memUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *memUserRepo) FindByIDs(ctx context.Context, ids []string) ([]model.User, error) {
	var out []model.User
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

// fakeEvaluator passes every case unless its input is listed in fail,
// and records which inputs it was asked to judge.
type fakeEvaluator struct {
	mu     sync.Mutex
	fail   map[string]model.Verdict
	judged []string
}

func (f *fakeEvaluator) Evaluate(ctx context.Context, source string, languageID int, tc model.TestCase) judge.CaseOutcome {
	f.mu.Lock()
	f.judged = append(f.judged, tc.Input)
	f.mu.Unlock()
	if v, ok := f.fail[tc.Input]; ok {
		return judge.CaseOutcome{Verdict: v, Stdout: "wrong"}
	}
	return judge.CaseOutcome{Passed: true, Verdict: model.VerdictAccepted, Stdout: tc.ExpectedOutput}
}

func (f *fakeEvaluator) judgedInputs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.judged...)
}
