package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yoockh/mockinterview/internal/models"
	"github.com/yoockh/mockinterview/internal/utils"
)

func (f *fixture) create(t *testing.T, title string) *models.Interview {
	t.Helper()
	iv, err := f.svc.Create(context.Background(), Identity{}, CreateInterviewInput{
		JobTitle:       title,
		JobDescription: "Build and run backend services.",
	})
	require.NoError(t, err)
	return iv
}

func (f *fixture) started(t *testing.T, title string) *models.Interview {
	t.Helper()
	iv := f.create(t, title)
	_, err := f.svc.Start(context.Background(), iv.ID)
	require.NoError(t, err)
	return iv
}

func TestCreateThenGet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	company := "Acme"

	iv, err := f.svc.Create(ctx, Identity{}, CreateInterviewInput{
		JobTitle:       "Software Engineer",
		JobDescription: "Go services",
		Company:        &company,
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusCreated, iv.Status)
	assert.Len(t, iv.Questions, 8)
	assert.NotNil(t, iv.Responses)
	assert.Empty(t, iv.Responses)

	got, err := f.svc.Get(ctx, iv.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCreated, got.Status)
	require.Len(t, got.Questions, 8)
	require.NotNil(t, got.Company)
	assert.Equal(t, "Acme", *got.Company)
	for i, q := range got.Questions {
		assert.Equal(t, i+1, q.OrderIndex)
		if i < 3 {
			assert.Equal(t, models.QuestionBehavioral, q.QuestionType)
		} else {
			assert.Equal(t, models.QuestionTechnical, q.QuestionType)
		}
	}

	u, err := f.store.Users.GetByID(ctx, got.UserID)
	require.NoError(t, err)
	assert.Equal(t, "test@example.com", u.Email)
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), Identity{}, CreateInterviewInput{JobTitle: "  ", JobDescription: "x"})
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))

	_, err = f.svc.Create(context.Background(), Identity{}, CreateInterviewInput{JobTitle: "x"})
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))
}

func TestGetMissing(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Get(context.Background(), 42)
	assert.True(t, utils.IsCode(err, utils.CodeNotFound))
	assert.Equal(t, 404, utils.HTTPStatus(err))
}

func TestExpiredDeadlineIsTimeout(t *testing.T) {
	f := newFixture(t)
	iv := f.create(t, "Analyst")

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	_, err := f.svc.Get(ctx, iv.ID)
	assert.True(t, utils.IsCode(err, utils.CodeTimeout), "%v", err)
	assert.Equal(t, 504, utils.HTTPStatus(err))
}

func TestStart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Start(ctx, 999)
	assert.True(t, utils.IsCode(err, utils.CodeNotFound))

	iv := f.create(t, "Data Analyst")
	first, err := f.svc.Start(ctx, iv.ID)
	require.NoError(t, err)
	second, err := f.svc.Start(ctx, iv.ID)
	require.NoError(t, err)

	assert.Equal(t, "started", first.Status)
	require.NotNil(t, first.QuestionID)
	assert.Equal(t, iv.Questions[0].ID, *first.QuestionID)
	assert.Equal(t, *first.QuestionID, *second.QuestionID)
	assert.Equal(t, *first.CurrentQuestion, *second.CurrentQuestion)

	got, err := f.svc.Get(ctx, iv.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, got.Status)
}

func TestRespondRequiresInProgress(t *testing.T) {
	f := newFixture(t)
	iv := f.create(t, "Analyst")

	_, err := f.svc.Respond(context.Background(), iv.ID, RespondInput{QuestionID: iv.Questions[0].ID, ResponseText: "hi"})
	assert.True(t, utils.IsCode(err, utils.CodeFailedPrecondition))
	assert.Equal(t, 400, utils.HTTPStatus(err))

	_, err = f.svc.Respond(context.Background(), 999, RespondInput{QuestionID: 1, ResponseText: "hi"})
	assert.True(t, utils.IsCode(err, utils.CodeNotFound))

	_, err = f.svc.Respond(context.Background(), iv.ID, RespondInput{QuestionID: iv.Questions[0].ID})
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))
}

func TestAnswerAllInOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	iv := f.started(t, "Software Developer")

	for i, q := range iv.Questions {
		res, err := f.svc.Respond(ctx, iv.ID, RespondInput{QuestionID: q.ID, ResponseText: "my answer"})
		require.NoError(t, err)
		assert.Equal(t, 7.5, res.Score)
		assert.Len(t, res.Suggestions, 3)
		assert.NotZero(t, res.ResponseID)

		last := i == len(iv.Questions)-1
		assert.Equal(t, last, res.InterviewComplete, "question %d", i+1)
		if last {
			assert.Nil(t, res.NextQuestion)
			assert.Nil(t, res.NextQuestionID)
		} else {
			require.NotNil(t, res.NextQuestionID)
			assert.Equal(t, iv.Questions[i+1].ID, *res.NextQuestionID)
		}
	}

	got, err := f.svc.Get(ctx, iv.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, got.Status)
	assert.NotNil(t, got.CompletedAt)
	assert.Len(t, got.Responses, 8)

	_, err = f.svc.Start(ctx, iv.ID)
	assert.True(t, utils.IsCode(err, utils.CodeFailedPrecondition))

	_, err = f.svc.Respond(ctx, iv.ID, RespondInput{QuestionID: iv.Questions[0].ID, ResponseText: "again"})
	assert.True(t, utils.IsCode(err, utils.CodeFailedPrecondition))
}

func TestRespondOutOfOrderWraps(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	iv := f.started(t, "Analyst")
	qs := iv.Questions

	res, err := f.svc.Respond(ctx, iv.ID, RespondInput{QuestionID: qs[7].ID, ResponseText: "last first"})
	require.NoError(t, err)
	require.NotNil(t, res.NextQuestionID)
	assert.Equal(t, qs[0].ID, *res.NextQuestionID, "wraps to the lowest unanswered")

	res, err = f.svc.Respond(ctx, iv.ID, RespondInput{QuestionID: qs[2].ID, ResponseText: "third"})
	require.NoError(t, err)
	assert.Equal(t, qs[3].ID, *res.NextQuestionID)
	assert.False(t, res.InterviewComplete)
}

func TestRespondDuplicateAndForeignQuestion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.started(t, "A")
	b := f.started(t, "B")

	_, err := f.svc.Respond(ctx, a.ID, RespondInput{QuestionID: b.Questions[0].ID, ResponseText: "wrong interview"})
	assert.True(t, utils.IsCode(err, utils.CodeNotFound))

	_, err = f.svc.Respond(ctx, a.ID, RespondInput{QuestionID: a.Questions[0].ID, ResponseText: "once"})
	require.NoError(t, err)
	_, err = f.svc.Respond(ctx, a.ID, RespondInput{QuestionID: a.Questions[0].ID, ResponseText: "twice"})
	assert.True(t, utils.IsCode(err, utils.CodeConflict))
	assert.Equal(t, 409, utils.HTTPStatus(err))

	rows, err := f.store.Responses.ListByInterview(ctx, a.ID)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestFeedback(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	iv := f.started(t, "Software Engineer")

	_, err := f.svc.Feedback(ctx, iv.ID)
	assert.True(t, utils.IsCode(err, utils.CodeFailedPrecondition))

	_, err = f.svc.Feedback(ctx, 999)
	assert.True(t, utils.IsCode(err, utils.CodeNotFound))

	for _, q := range iv.Questions {
		_, err := f.svc.Respond(ctx, iv.ID, RespondInput{QuestionID: q.ID, ResponseText: "answer to " + q.QuestionText})
		require.NoError(t, err)
	}

	report, err := f.svc.Feedback(ctx, iv.ID)
	require.NoError(t, err)
	assert.Equal(t, iv.ID, report.InterviewID)
	assert.Equal(t, 7.0, report.OverallScore)
	require.Len(t, report.DetailedFeedback, 8)
	assert.Equal(t, iv.Questions[0].QuestionText, report.DetailedFeedback[0].Question)
	require.NotNil(t, report.DetailedFeedback[0].Score)
	assert.Equal(t, 7.5, *report.DetailedFeedback[0].Score)
	assert.True(t, f.cache.has(feedbackCacheKey(iv.ID)))

	hits := f.cache.hits
	again, err := f.svc.Feedback(ctx, iv.ID)
	require.NoError(t, err)
	assert.Equal(t, hits+1, f.cache.hits)
	assert.Equal(t, report.FeedbackSummary, again.FeedbackSummary)
	assert.Len(t, again.DetailedFeedback, 8)
}

func TestHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	empty, err := f.svc.History(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	first := f.create(t, "First")
	assert.False(t, f.cache.historyCached(), "create invalidates history")
	second := f.create(t, "Second")

	items, err := f.svc.History(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, second.ID, items[0].ID)
	assert.Equal(t, first.ID, items[1].ID)
	assert.Equal(t, models.StatusCreated, items[0].Status)
	assert.True(t, f.cache.historyCached())

	_, err = f.svc.Start(ctx, first.ID)
	require.NoError(t, err)
	assert.False(t, f.cache.historyCached(), "start invalidates history")

	items, err = f.svc.History(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, items[1].Status)
}

func TestHistoryWriteDuringFill(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.create(t, "Before")

	var raced bool
	f.cache.beforeSet = func(key string) {
		if raced || key != historyCacheKey(1) {
			return
		}
		raced = true
		// commits and invalidates after History listed but before it stores
		f.create(t, "During")
	}

	stale, err := f.svc.History(ctx)
	require.NoError(t, err)
	require.True(t, raced)
	assert.Len(t, stale, 1)
	f.cache.beforeSet = nil

	fresh, err := f.svc.History(ctx)
	require.NoError(t, err)
	require.Len(t, fresh, 2)
	assert.Equal(t, "During", fresh[0].JobTitle)
}

func TestNextQuestion(t *testing.T) {
	qs := []models.Question{{ID: 10, OrderIndex: 1}, {ID: 11, OrderIndex: 2}, {ID: 12, OrderIndex: 3}}

	assert.Equal(t, uint(11), nextQuestion(qs, map[uint]bool{10: true}, 1).ID)
	assert.Equal(t, uint(10), nextQuestion(qs, map[uint]bool{12: true}, 3).ID)
	assert.Equal(t, uint(12), nextQuestion(qs, map[uint]bool{10: true, 11: true}, 2).ID)
	assert.Nil(t, nextQuestion(qs, map[uint]bool{10: true, 11: true, 12: true}, 3))
}
