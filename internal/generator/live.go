package generator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
	"github.com/yoockh/mockinterview/internal/models"
	"github.com/yoockh/mockinterview/internal/providers/llm"
)

// ErrMalformed marks a provider reply that does not have the expected shape.
var ErrMalformed = errors.New("malformed model output")

// Live asks an llm.Provider and falls back to the fixed payloads when the provider
// keeps failing or answers with something unusable.
type Live struct {
	provider llm.Provider
	fallback *Fallback
	log      *logrus.Logger

	maxRetries     uint64
	initialBackoff time.Duration
}

type LiveOption func(*Live)

// WithRetries sets how many times a transient provider error is retried.
func WithRetries(n uint64) LiveOption {
	return func(l *Live) { l.maxRetries = n }
}

func WithInitialBackoff(d time.Duration) LiveOption {
	return func(l *Live) { l.initialBackoff = d }
}

func NewLive(p llm.Provider, log *logrus.Logger, opts ...LiveOption) *Live {
	if log == nil {
		log = logrus.New()
	}
	l := &Live{
		provider:       p,
		fallback:       NewFallback(),
		log:            log,
		maxRetries:     2,
		initialBackoff: 500 * time.Millisecond,
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

func (l *Live) GenerateQuestions(ctx context.Context, jobDescription, jobTitle string) []QuestionDraft {
	var out []QuestionDraft
	err := l.ask(ctx, questionsPrompt(jobDescription, jobTitle), func(raw string) error {
		qs, err := decodeQuestions(raw)
		if err != nil {
			return err
		}
		out = qs
		return nil
	})
	if err != nil {
		l.log.WithError(err).WithField("job_title", jobTitle).Warn("question generation fell back to templates")
		return l.fallback.GenerateQuestions(ctx, jobDescription, jobTitle)
	}
	return out
}

func (l *Live) EvaluateResponse(ctx context.Context, questionText, responseText string, questionType models.QuestionType) Evaluation {
	var out Evaluation
	err := l.ask(ctx, evaluationPrompt(questionText, responseText, questionType), func(raw string) error {
		if err := json.Unmarshal([]byte(raw), &out); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		if out.Score < 0 || out.Score > 10 || strings.TrimSpace(out.Feedback) == "" {
			return fmt.Errorf("%w: score %.2f out of range or empty feedback", ErrMalformed, out.Score)
		}
		if out.Suggestions == nil {
			out.Suggestions = []string{}
		}
		return nil
	})
	if err != nil {
		l.log.WithError(err).Warn("response evaluation fell back")
		return FailedEvaluation()
	}
	return out
}

func (l *Live) GenerateOverallFeedback(ctx context.Context, jobTitle string, responses []ResponseDetail) OverallFeedback {
	var out OverallFeedback
	err := l.ask(ctx, overallPrompt(jobTitle, responses), func(raw string) error {
		if err := json.Unmarshal([]byte(raw), &out); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		if out.OverallScore < 0 || out.OverallScore > 10 || strings.TrimSpace(out.Summary) == "" {
			return fmt.Errorf("%w: overall score %.2f out of range or empty summary", ErrMalformed, out.OverallScore)
		}
		for _, s := range []*[]string{&out.Strengths, &out.Improvements, &out.Recommendations} {
			if *s == nil {
				*s = []string{}
			}
		}
		return nil
	})
	if err != nil {
		l.log.WithError(err).WithField("job_title", jobTitle).Warn("overall feedback fell back")
		return FailedOverallFeedback()
	}
	return out
}

// ask retries transient provider errors with exponential backoff. A reply that
// decode rejects is not retried.
func (l *Live) ask(ctx context.Context, prompt string, decode func(raw string) error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = l.initialBackoff

	attempt := 0
	op := func() error {
		attempt++
		raw, err := llm.Collect(ctx, l.provider, prompt)
		if err != nil {
			if !retryable(err) {
				return backoff.Permanent(err)
			}
			l.log.WithError(err).WithField("attempt", attempt).Debug("llm call failed")
			return err
		}
		if err := decode(cleanJSON(raw)); err != nil {
			return backoff.Permanent(err)
		}
		return nil
	}

	return backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(b, l.maxRetries), ctx))
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, llm.ErrEmptyAnswer) {
		return true
	}
	var temp interface{ Temporary() bool }
	if errors.As(err, &temp) {
		return temp.Temporary()
	}
	return true
}

func decodeQuestions(raw string) ([]QuestionDraft, error) {
	var qs []QuestionDraft
	if err := json.Unmarshal([]byte(raw), &qs); err != nil {
		var wrapped struct {
			Questions []QuestionDraft `json:"questions"`
		}
		if err2 := json.Unmarshal([]byte(raw), &wrapped); err2 != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		qs = wrapped.Questions
	}

	if len(qs) != QuestionCount {
		return nil, fmt.Errorf("%w: want %d questions, got %d", ErrMalformed, QuestionCount, len(qs))
	}
	sort.SliceStable(qs, func(i, j int) bool { return qs[i].OrderIndex < qs[j].OrderIndex })
	for i, q := range qs {
		if q.OrderIndex != i+1 {
			return nil, fmt.Errorf("%w: order_index values must be 1..%d", ErrMalformed, QuestionCount)
		}
		if strings.TrimSpace(q.QuestionText) == "" {
			return nil, fmt.Errorf("%w: question %d is empty", ErrMalformed, q.OrderIndex)
		}
		if want := expectedType(q.OrderIndex); q.QuestionType != want {
			return nil, fmt.Errorf("%w: question %d has type %q, want %q", ErrMalformed, q.OrderIndex, q.QuestionType, want)
		}
	}
	return qs, nil
}

// expectedType is the type every interview uses at order: behavioral first, then technical.
func expectedType(order int) models.QuestionType {
	if order <= behavioralCount {
		return models.QuestionBehavioral
	}
	return models.QuestionTechnical
}
