package services

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yoockh/mockinterview/internal/cache"
	"github.com/yoockh/mockinterview/internal/generator"
	"github.com/yoockh/mockinterview/internal/models"
	pgrepo "github.com/yoockh/mockinterview/internal/repositories/postgres"
	"github.com/yoockh/mockinterview/internal/utils"
	"gorm.io/datatypes"
)

const (
	historyGenKey   = "interviews:history:gen"
	historyTTL      = 5 * time.Minute
	feedbackTTL     = 24 * time.Hour
)

// historyCacheKey is versioned by the generation counter, so a list read before a write
// and stored after it lands on a key nobody reads anymore.
func historyCacheKey(gen int64) string {
	return "interviews:history:" + strconv.FormatInt(gen, 10)
}

func feedbackCacheKey(interviewID uint) string {
	return "interview:" + strconv.FormatUint(uint64(interviewID), 10) + ":feedback"
}

type CreateInterviewInput struct {
	JobTitle       string
	JobDescription string
	Company        *string
}

type RespondInput struct {
	QuestionID   uint
	ResponseText string
}

type StartResult struct {
	InterviewID     uint    `json:"interview_id"`
	Status          string  `json:"status"`
	CurrentQuestion *string `json:"current_question"`
	QuestionID      *uint   `json:"question_id"`
}

type RespondResult struct {
	ResponseID        uint     `json:"response_id"`
	Feedback          string   `json:"feedback"`
	Score             float64  `json:"score"`
	Suggestions       []string `json:"suggestions"`
	NextQuestion      *string  `json:"next_question"`
	NextQuestionID    *uint    `json:"next_question_id"`
	InterviewComplete bool     `json:"interview_complete"`
}

type FeedbackReport struct {
	InterviewID      uint                       `json:"interview_id"`
	OverallScore     float64                    `json:"overall_score"`
	FeedbackSummary  string                     `json:"feedback_summary"`
	DetailedFeedback []generator.ResponseDetail `json:"detailed_feedback"`
	Strengths        []string                   `json:"strengths"`
	Improvements     []string                   `json:"improvements"`
	Recommendations  []string                   `json:"recommendations"`
}

type HistoryItem struct {
	ID          uint                   `json:"id"`
	JobTitle    string                 `json:"job_title"`
	Company     *string                `json:"company"`
	Status      models.InterviewStatus `json:"status"`
	CreatedAt   time.Time              `json:"created_at"`
	CompletedAt *time.Time             `json:"completed_at"`
}

type InterviewService interface {
	Create(ctx context.Context, who Identity, in CreateInterviewInput) (*models.Interview, error)
	Get(ctx context.Context, id uint) (*models.Interview, error)
	Start(ctx context.Context, id uint) (*StartResult, error)
	Respond(ctx context.Context, id uint, in RespondInput) (*RespondResult, error)
	Feedback(ctx context.Context, id uint) (*FeedbackReport, error)
	History(ctx context.Context) ([]HistoryItem, error)
}

type interviewService struct {
	store *pgrepo.Store
	users UserService
	gen   generator.Generator
	cache cache.Cache
	log   *logrus.Logger
	now   func() time.Time
}

func NewInterviewService(store *pgrepo.Store, users UserService, gen generator.Generator, c cache.Cache, log *logrus.Logger) InterviewService {
	if c == nil {
		c = cache.Nop{}
	}
	if log == nil {
		log = logrus.New()
	}
	return &interviewService{
		store: store,
		users: users,
		gen:   gen,
		cache: c,
		log:   log,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *interviewService) Create(ctx context.Context, who Identity, in CreateInterviewInput) (*models.Interview, error) {
	const op = "InterviewService.Create"

	title := strings.TrimSpace(in.JobTitle)
	desc := strings.TrimSpace(in.JobDescription)
	if title == "" || desc == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "job_title and job_description are required", nil)
	}
	company := in.Company
	if company != nil && strings.TrimSpace(*company) == "" {
		company = nil
	}

	drafts := s.gen.GenerateQuestions(ctx, desc, title)
	if len(drafts) == 0 {
		return nil, utils.E(utils.CodeInternal, op, "no questions generated", nil)
	}
	sort.SliceStable(drafts, func(i, j int) bool { return drafts[i].OrderIndex < drafts[j].OrderIndex })

	user, err := s.users.Resolve(ctx, who)
	if err != nil {
		return nil, err
	}

	iv := &models.Interview{
		UserID:         user.ID,
		JobTitle:       title,
		JobDescription: desc,
		Company:        company,
		Status:         models.StatusCreated,
		Questions:      make([]models.Question, 0, len(drafts)),
	}
	for _, d := range drafts {
		iv.Questions = append(iv.Questions, models.Question{
			QuestionText: d.QuestionText,
			QuestionType: d.QuestionType,
			OrderIndex:   d.OrderIndex,
		})
	}

	err = s.store.Transaction(ctx, func(tx *pgrepo.Store) error {
		return tx.Interviews.Create(ctx, iv)
	})
	if err != nil {
		return nil, utils.Wrap(op, "failed to create interview", err)
	}
	iv.Responses = []models.Response{}

	s.invalidateHistory(ctx)
	s.log.WithFields(logrus.Fields{
		"interview_id": iv.ID,
		"user_id":      user.ID,
		"questions":    len(iv.Questions),
	}).Info("interview created")
	return iv, nil
}

func (s *interviewService) Get(ctx context.Context, id uint) (*models.Interview, error) {
	const op = "InterviewService.Get"

	iv, err := s.store.Interviews.GetWithDetails(ctx, id)
	if err != nil {
		return nil, repoErr(op, "interview", err)
	}
	return iv, nil
}

func (s *interviewService) Start(ctx context.Context, id uint) (*StartResult, error) {
	const op = "InterviewService.Start"

	var first *models.Question
	var prev models.InterviewStatus
	err := s.store.Transaction(ctx, func(tx *pgrepo.Store) error {
		iv, err := tx.Interviews.GetByIDForUpdate(ctx, id)
		if err != nil {
			return repoErr(op, "interview", err)
		}
		if iv.Status == models.StatusCompleted {
			return utils.E(utils.CodeFailedPrecondition, op, "interview is already completed", nil)
		}
		prev = iv.Status
		if iv.Status != models.StatusInProgress {
			if err := tx.Interviews.UpdateStatus(ctx, id, models.StatusInProgress, nil); err != nil {
				return utils.Wrap(op, "failed to start interview", err)
			}
		}

		first, err = tx.Questions.First(ctx, id)
		if errors.Is(err, utils.ErrNotFound) {
			first, err = nil, nil
		}
		if err != nil {
			return utils.Wrap(op, "failed to load first question", err)
		}
		return nil
	})
	if err != nil {
		return nil, asAppError(op, err)
	}

	if prev != models.StatusInProgress {
		s.invalidateHistory(ctx)
		s.log.WithField("interview_id", id).Info("interview started")
	}

	out := &StartResult{InterviewID: id, Status: "started"}
	if first != nil {
		out.CurrentQuestion = &first.QuestionText
		out.QuestionID = &first.ID
	}
	return out, nil
}

func (s *interviewService) Respond(ctx context.Context, id uint, in RespondInput) (*RespondResult, error) {
	const op = "InterviewService.Respond"

	text := strings.TrimSpace(in.ResponseText)
	if in.QuestionID == 0 || text == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "question_id and response_text are required", nil)
	}

	iv, err := s.store.Interviews.GetByID(ctx, id)
	if err != nil {
		return nil, repoErr(op, "interview", err)
	}
	if iv.Status != models.StatusInProgress {
		return nil, utils.E(utils.CodeFailedPrecondition, op, "interview is not in progress", nil)
	}
	q, err := s.store.Questions.GetInInterview(ctx, id, in.QuestionID)
	if err != nil {
		return nil, repoErr(op, "question", err)
	}
	answered, err := s.store.Responses.ExistsForQuestion(ctx, id, q.ID)
	if err != nil {
		return nil, utils.Wrap(op, "failed to check existing response", err)
	}
	if answered {
		return nil, utils.E(utils.CodeConflict, op, "question already answered", nil)
	}

	eval := s.gen.EvaluateResponse(ctx, q.QuestionText, text, q.QuestionType)
	if eval.Suggestions == nil {
		eval.Suggestions = []string{}
	}
	suggestions, err := json.Marshal(eval.Suggestions)
	if err != nil {
		return nil, utils.Wrap(op, "failed to encode suggestions", err)
	}

	resp := &models.Response{
		InterviewID:  id,
		QuestionID:   q.ID,
		ResponseText: text,
		AIFeedback:   &eval.Feedback,
		Score:        &eval.Score,
		Suggestions:  datatypes.JSON(suggestions),
	}

	var next *models.Question
	var complete bool
	err = s.store.Transaction(ctx, func(tx *pgrepo.Store) error {
		locked, err := tx.Interviews.GetByIDForUpdate(ctx, id)
		if err != nil {
			return repoErr(op, "interview", err)
		}
		if locked.Status != models.StatusInProgress {
			return utils.E(utils.CodeFailedPrecondition, op, "interview is not in progress", nil)
		}
		exists, err := tx.Responses.ExistsForQuestion(ctx, id, q.ID)
		if err != nil {
			return utils.Wrap(op, "failed to check existing response", err)
		}
		if exists {
			return utils.E(utils.CodeConflict, op, "question already answered", nil)
		}
		if err := tx.Responses.Insert(ctx, resp); err != nil {
			if errors.Is(err, utils.ErrDuplicate) {
				return utils.E(utils.CodeConflict, op, "question already answered", err)
			}
			return utils.Wrap(op, "failed to save response", err)
		}

		questions, err := tx.Questions.ListByInterview(ctx, id)
		if err != nil {
			return utils.Wrap(op, "failed to load questions", err)
		}
		ids, err := tx.Responses.AnsweredQuestionIDs(ctx, id)
		if err != nil {
			return utils.Wrap(op, "failed to load answered questions", err)
		}
		done := make(map[uint]bool, len(ids))
		for _, qid := range ids {
			done[qid] = true
		}

		next = nextQuestion(questions, done, q.OrderIndex)
		if next != nil {
			return nil
		}
		complete = true
		now := s.now()
		if err := tx.Interviews.UpdateStatus(ctx, id, models.StatusCompleted, &now); err != nil {
			return utils.Wrap(op, "failed to complete interview", err)
		}
		return nil
	})
	if err != nil {
		return nil, asAppError(op, err)
	}

	s.invalidateHistory(ctx)
	entry := s.log.WithFields(logrus.Fields{
		"interview_id": id,
		"question_id":  q.ID,
		"score":        eval.Score,
	})
	if complete {
		entry.Info("interview completed")
	} else {
		entry.Debug("response recorded")
	}

	out := &RespondResult{
		ResponseID:        resp.ID,
		Feedback:          eval.Feedback,
		Score:             eval.Score,
		Suggestions:       eval.Suggestions,
		InterviewComplete: complete,
	}
	if next != nil {
		out.NextQuestion = &next.QuestionText
		out.NextQuestionID = &next.ID
	}
	return out, nil
}

// nextQuestion picks the lowest-ordered unanswered question after current. When none
// follows, it wraps to the lowest unanswered question instead of ending the interview,
// so questions skipped earlier are offered again and completion happens only once every
// question has an answer. questions must be sorted by order_index. nil means all done.
func nextQuestion(questions []models.Question, answered map[uint]bool, current int) *models.Question {
	var wrap *models.Question
	for i := range questions {
		q := &questions[i]
		if answered[q.ID] {
			continue
		}
		if q.OrderIndex > current {
			return q
		}
		if wrap == nil {
			wrap = q
		}
	}
	return wrap
}

func (s *interviewService) Feedback(ctx context.Context, id uint) (*FeedbackReport, error) {
	const op = "InterviewService.Feedback"

	iv, err := s.store.Interviews.GetByID(ctx, id)
	if err != nil {
		return nil, repoErr(op, "interview", err)
	}
	if iv.Status != models.StatusCompleted {
		return nil, utils.E(utils.CodeFailedPrecondition, op, "interview is not completed", nil)
	}

	key := feedbackCacheKey(id)
	var cached FeedbackReport
	if hit, err := s.cache.GetJSON(ctx, key, &cached); err != nil {
		s.log.WithError(err).WithField("key", key).Warn("cache read failed")
	} else if hit {
		return &cached, nil
	}

	questions, err := s.store.Questions.ListByInterview(ctx, id)
	if err != nil {
		return nil, utils.Wrap(op, "failed to load questions", err)
	}
	responses, err := s.store.Responses.ListByInterview(ctx, id)
	if err != nil {
		return nil, utils.Wrap(op, "failed to load responses", err)
	}
	byQuestion := make(map[uint]models.Response, len(responses))
	for _, r := range responses {
		byQuestion[r.QuestionID] = r
	}

	details := make([]generator.ResponseDetail, 0, len(responses))
	for _, q := range questions {
		r, ok := byQuestion[q.ID]
		if !ok {
			continue
		}
		details = append(details, generator.ResponseDetail{
			Question: q.QuestionText,
			Response: r.ResponseText,
			Score:    r.Score,
			Feedback: r.AIFeedback,
		})
	}

	overall := s.gen.GenerateOverallFeedback(ctx, iv.JobTitle, details)
	report := &FeedbackReport{
		InterviewID:      id,
		OverallScore:     overall.OverallScore,
		FeedbackSummary:  overall.Summary,
		DetailedFeedback: details,
		Strengths:        nonNil(overall.Strengths),
		Improvements:     nonNil(overall.Improvements),
		Recommendations:  nonNil(overall.Recommendations),
	}

	if err := s.cache.SetJSON(ctx, key, report, feedbackTTL); err != nil {
		s.log.WithError(err).WithField("key", key).Warn("cache write failed")
	}
	return report, nil
}

func (s *interviewService) History(ctx context.Context) ([]HistoryItem, error) {
	const op = "InterviewService.History"

	// the generation must be read before the list
	gen, genOK := s.historyGeneration(ctx)
	if genOK {
		var cached []HistoryItem
		if hit, err := s.cache.GetJSON(ctx, historyCacheKey(gen), &cached); err != nil {
			s.log.WithError(err).Warn("cache read failed")
		} else if hit {
			return cached, nil
		}
	}

	rows, err := s.store.Interviews.ListHistory(ctx)
	if err != nil {
		return nil, utils.Wrap(op, "failed to list interviews", err)
	}
	out := make([]HistoryItem, 0, len(rows))
	for _, iv := range rows {
		out = append(out, HistoryItem{
			ID:          iv.ID,
			JobTitle:    iv.JobTitle,
			Company:     iv.Company,
			Status:      iv.Status,
			CreatedAt:   iv.CreatedAt,
			CompletedAt: iv.CompletedAt,
		})
	}

	if genOK {
		if err := s.cache.SetJSON(ctx, historyCacheKey(gen), out, historyTTL); err != nil {
			s.log.WithError(err).Warn("cache write failed")
		}
	}
	return out, nil
}

// historyGeneration returns the current history generation; false when it cannot be
// read, in which case the cache is bypassed.
func (s *interviewService) historyGeneration(ctx context.Context) (int64, bool) {
	var gen int64
	if _, err := s.cache.GetJSON(ctx, historyGenKey, &gen); err != nil {
		s.log.WithError(err).Warn("cache read failed")
		return 0, false
	}
	return gen, true
}

func (s *interviewService) invalidateHistory(ctx context.Context) {
	if _, err := s.cache.Incr(ctx, historyGenKey); err != nil {
		s.log.WithError(err).Warn("cache invalidation failed")
	}
}

// repoErr maps repository sentinels; what names the missing entity.
func repoErr(op, what string, err error) error {
	if errors.Is(err, utils.ErrNotFound) {
		return utils.E(utils.CodeNotFound, op, what+" not found", err)
	}
	return utils.Wrap(op, "failed to load "+what, err)
}

// asAppError keeps AppErrors raised inside a transaction and wraps anything else
// (commit failures).
func asAppError(op string, err error) error {
	var ae *utils.AppError
	if errors.As(err, &ae) {
		return err
	}
	return utils.Wrap(op, "transaction failed", err)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
