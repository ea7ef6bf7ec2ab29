// Package generator produces interview questions, per-answer evaluations and the
// aggregate report. Implementations never fail: on any internal problem they return a
// fixed fallback payload of the same shape.
package generator

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/yoockh/mockinterview/internal/models"
	"github.com/yoockh/mockinterview/internal/providers/llm"
)

type QuestionDraft struct {
	QuestionText string              `json:"question_text"`
	QuestionType models.QuestionType `json:"question_type"`
	OrderIndex   int                 `json:"order_index"`
}

type Evaluation struct {
	Score       float64  `json:"score"`
	Feedback    string   `json:"feedback"`
	Suggestions []string `json:"suggestions"`
}

// ResponseDetail is one answered question as fed to the aggregate step.
type ResponseDetail struct {
	Question string   `json:"question"`
	Response string   `json:"response"`
	Score    *float64 `json:"score"`
	Feedback *string  `json:"feedback"`
}

type OverallFeedback struct {
	OverallScore    float64  `json:"overall_score"`
	Summary         string   `json:"summary"`
	Strengths       []string `json:"strengths"`
	Improvements    []string `json:"improvements"`
	Recommendations []string `json:"recommendations"`
}

type QuestionGenerator interface {
	GenerateQuestions(ctx context.Context, jobDescription, jobTitle string) []QuestionDraft
}

type ResponseEvaluator interface {
	EvaluateResponse(ctx context.Context, questionText, responseText string, questionType models.QuestionType) Evaluation
}

type FeedbackAggregator interface {
	GenerateOverallFeedback(ctx context.Context, jobTitle string, responses []ResponseDetail) OverallFeedback
}

type Generator interface {
	QuestionGenerator
	ResponseEvaluator
	FeedbackAggregator
}

// New returns the live generator for p, or the fixed fallback when p is nil.
func New(p llm.Provider, log *logrus.Logger, opts ...LiveOption) Generator {
	if p == nil {
		return NewFallback()
	}
	return NewLive(p, log, opts...)
}
