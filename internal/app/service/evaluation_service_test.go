package service

import (
	"context"
	"testing"
	"time"

	"codearena/internal/common"
	"codearena/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sumOfTwoProblem() *model.Problem {
	return &model.Problem{
		ID:    "p-1",
		Title: "Sum of Two",
		Slug:  "sum-of-two",
		TestCases: []model.TestCase{
			{ID: "t1", Input: "1 2", ExpectedOutput: "3", IsPublic: true, SortOrder: 0},
			{ID: "t2", Input: "0 0", ExpectedOutput: "0", IsPublic: true, SortOrder: 1},
			{ID: "t3", Input: "1000000 2000000", ExpectedOutput: "3000000", IsPublic: false, SortOrder: 2},
		},
		DriverCode: map[string]string{
			"python": "import sys\n{{USER_CODE}}\n",
		},
		CreatedAt: time.Now().UTC(),
	}
}

func newEvalFixture(t *testing.T, ev *fakeEvaluator) (*EvaluationService, *memSubmissionRepo) {
	t.Helper()
	subs := &memSubmissionRepo{}
	svc := NewEvaluationService(newMemProblemRepo(sumOfTwoProblem()), subs, ev, 4)
	return svc, subs
}

func TestRunUsesPublicCasesOnly(t *testing.T) {
	ev := &fakeEvaluator{}
	svc, subs := newEvalFixture(t, ev)

	res, err := svc.Run(context.Background(), "u-1", RunRequest{
		ProblemSlug: "sum-of-two",
		Code:        "print(sum(map(int, input().split())))",
		Language:    "python",
	})
	require.NoError(t, err)

	assert.Equal(t, model.VerdictAccepted, res.Status)
	assert.Equal(t, 2, res.PassedCount)
	assert.Equal(t, 2, res.TotalCount)
	assert.ElementsMatch(t, []string{"1 2", "0 0"}, ev.judgedInputs(),
		"the hidden case must never reach the judge on a run")

	// Run gives full detail for every case it judged.
	for _, cr := range res.Results {
		require.NotNil(t, cr.Input)
		require.NotNil(t, cr.ExpectedOutput)
		require.NotNil(t, cr.ActualOutput)
		assert.False(t, cr.IsHidden)
	}

	assert.Empty(t, subs.subs, "a run must not leave a submission behind")
}

func TestRunFallsBackToFirstCaseWhenNonePublic(t *testing.T) {
	problem := sumOfTwoProblem()
	for i := range problem.TestCases {
		problem.TestCases[i].IsPublic = false
	}
	ev := &fakeEvaluator{}
	svc := NewEvaluationService(newMemProblemRepo(problem), &memSubmissionRepo{}, ev, 4)

	res, err := svc.Run(context.Background(), "u-1", RunRequest{
		ProblemSlug: "sum-of-two",
		Code:        "print(3)",
		Language:    "python",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.TotalCount)
	assert.Equal(t, []string{"1 2"}, ev.judgedInputs())
}

func TestRunRejectsProblemWithoutTestCases(t *testing.T) {
	problem := &model.Problem{ID: "p-2", Title: "Empty", Slug: "empty"}
	svc := NewEvaluationService(newMemProblemRepo(problem), &memSubmissionRepo{}, &fakeEvaluator{}, 4)

	_, err := svc.Run(context.Background(), "u-1", RunRequest{
		ProblemSlug: "empty", Code: "x", Language: "python",
	})
	assert.ErrorIs(t, err, common.ErrNoTestCases)
}

func TestRunValidatesRequest(t *testing.T) {
	svc, _ := newEvalFixture(t, &fakeEvaluator{})

	_, err := svc.Run(context.Background(), "u-1", RunRequest{ProblemSlug: "sum-of-two"})
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = svc.Run(context.Background(), "u-1", RunRequest{
		ProblemSlug: "no-such-problem", Code: "x", Language: "python",
	})
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSubmitPersistsExactlyOneSubmission(t *testing.T) {
	ev := &fakeEvaluator{}
	svc, subs := newEvalFixture(t, ev)

	res, err := svc.Submit(context.Background(), "u-1", SubmitRequest{
		ProblemSlug: "sum-of-two",
		Code:        "print(sum(map(int, input().split())))",
		Language:    "python",
	})
	require.NoError(t, err)

	require.Len(t, subs.subs, 1)
	stored := subs.subs[0]
	assert.Equal(t, "u-1", stored.UserID)
	assert.Equal(t, "sum-of-two", stored.ProblemSlug)
	assert.Equal(t, model.VerdictAccepted, stored.Status)
	assert.NotEmpty(t, stored.ID)

	require.NotNil(t, res.SubmissionID)
	assert.Equal(t, stored.ID, *res.SubmissionID)
	assert.Equal(t, 3, res.PassedCount)
	assert.Equal(t, 3, res.TotalCount)
	assert.Len(t, ev.judgedInputs(), 3, "submit judges hidden cases too")
}

func TestSubmitRedactsHiddenCases(t *testing.T) {
	ev := &fakeEvaluator{fail: map[string]model.Verdict{
		"1000000 2000000": model.VerdictWrongAnswer,
	}}
	svc, _ := newEvalFixture(t, ev)

	res, err := svc.Submit(context.Background(), "u-1", SubmitRequest{
		ProblemSlug: "sum-of-two", Code: "print(3)", Language: "python",
	})
	require.NoError(t, err)

	assert.Equal(t, model.VerdictWrongAnswer, res.Status)
	assert.Equal(t, 2, res.PassedCount)
	require.Len(t, res.Results, 3)

	hidden := res.Results[2]
	assert.True(t, hidden.IsHidden)
	assert.False(t, hidden.Passed)
	assert.Equal(t, model.VerdictWrongAnswer, hidden.Verdict)
	assert.Nil(t, hidden.Input, "hidden case input must not leak")
	assert.Nil(t, hidden.ExpectedOutput)
	assert.Nil(t, hidden.ActualOutput)

	public := res.Results[0]
	assert.False(t, public.IsHidden)
	require.NotNil(t, public.Input)
	assert.Equal(t, "1 2", *public.Input)
}

func TestSubmitRecordsFailedVerdicts(t *testing.T) {
	ev := &fakeEvaluator{fail: map[string]model.Verdict{
		"1 2": model.VerdictTimeLimitExceeded,
	}}
	svc, subs := newEvalFixture(t, ev)

	res, err := svc.Submit(context.Background(), "u-1", SubmitRequest{
		ProblemSlug: "sum-of-two", Code: "while True: pass", Language: "python",
	})
	require.NoError(t, err)
	assert.Equal(t, model.VerdictTimeLimitExceeded, res.Status)

	require.Len(t, subs.subs, 1, "failed attempts are recorded like accepted ones")
	assert.Equal(t, model.VerdictTimeLimitExceeded, subs.subs[0].Status)
}

func TestSubmitSurfacesStorageFailure(t *testing.T) {
	svc, subs := newEvalFixture(t, &fakeEvaluator{})
	subs.failCreate = true

	_, err := svc.Submit(context.Background(), "u-1", SubmitRequest{
		ProblemSlug: "sum-of-two", Code: "print(3)", Language: "python",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not be recorded")
	assert.Empty(t, subs.subs)
}

func TestHistoryReturnsOwnSubmissionsNewestFirst(t *testing.T) {
	svc, subs := newEvalFixture(t, &fakeEvaluator{})
	contestID := "c-1"
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	seed := []model.Submission{
		{ID: "s1", UserID: "u-1", ProblemSlug: "sum-of-two", Status: model.VerdictWrongAnswer, CreatedAt: base},
		{ID: "s2", UserID: "u-2", ProblemSlug: "sum-of-two", Status: model.VerdictAccepted, CreatedAt: base.Add(time.Minute)},
		{ID: "s3", UserID: "u-1", ProblemSlug: "sum-of-two", ContestID: &contestID, Status: model.VerdictAccepted, CreatedAt: base.Add(2 * time.Minute)},
	}
	for i := range seed {
		require.NoError(t, subs.CreateSubmission(context.Background(), &seed[i]))
	}

	got, err := svc.History(context.Background(), "u-1", "sum-of-two")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "s3", got[0].ID)
	assert.Equal(t, "s1", got[1].ID)

	_, err = svc.History(context.Background(), "u-1", "")
	assert.ErrorIs(t, err, common.ErrValidation)
}
