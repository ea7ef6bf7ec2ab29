package generator

import (
	"context"
	"strings"

	"github.com/yoockh/mockinterview/internal/models"
)

var behavioralQuestions = []string{
	"Tell me about a challenging project you worked on and how you overcame obstacles.",
	"Describe a time when you had to work with a difficult team member.",
	"How do you handle tight deadlines and competing priorities?",
}

var softwareQuestions = []string{
	"Explain the difference between REST and GraphQL APIs.",
	"How would you optimize a slow database query?",
	"Describe your experience with version control systems like Git.",
	"How do you approach debugging a production issue?",
	"What's your experience with testing methodologies?",
}

var genericQuestions = []string{
	"What tools and technologies are you most proficient with?",
	"How do you stay updated with industry trends?",
	"Describe a technical problem you solved recently.",
	"How do you approach learning new technologies?",
	"What's your experience with project management tools?",
}

// QuestionCount is the number of questions every interview receives; the first
// behavioralCount are behavioral and the rest technical.
const (
	QuestionCount   = 8
	behavioralCount = 3
)

// Fallback is the deterministic generator used when no provider is configured and as
// the recovery path of Live.
type Fallback struct{}

func NewFallback() *Fallback { return &Fallback{} }

func (Fallback) GenerateQuestions(_ context.Context, _ string, jobTitle string) []QuestionDraft {
	out := make([]QuestionDraft, 0, QuestionCount)
	for _, q := range behavioralQuestions {
		out = append(out, QuestionDraft{
			QuestionText: q,
			QuestionType: models.QuestionBehavioral,
			OrderIndex:   len(out) + 1,
		})
	}
	for _, q := range technicalTemplate(jobTitle) {
		out = append(out, QuestionDraft{
			QuestionText: q,
			QuestionType: models.QuestionTechnical,
			OrderIndex:   len(out) + 1,
		})
	}
	return out
}

func technicalTemplate(jobTitle string) []string {
	t := strings.ToLower(jobTitle)
	if strings.Contains(t, "software") || strings.Contains(t, "developer") {
		return softwareQuestions
	}
	return genericQuestions
}

func (Fallback) EvaluateResponse(context.Context, string, string, models.QuestionType) Evaluation {
	return Evaluation{
		Score:    7.5,
		Feedback: "Good response with room for improvement. Consider providing more specific examples.",
		Suggestions: []string{
			"Include specific metrics or outcomes",
			"Use the STAR method for behavioral questions",
			"Provide concrete examples",
		},
	}
}

func (Fallback) GenerateOverallFeedback(context.Context, string, []ResponseDetail) OverallFeedback {
	return OverallFeedback{
		OverallScore:    7.0,
		Summary:         "Good performance with room for improvement in technical areas.",
		Strengths:       []string{"Clear communication", "Good behavioral examples"},
		Improvements:    []string{"More technical depth", "Better STAR method usage"},
		Recommendations: []string{"Practice technical questions", "Prepare more examples"},
	}
}

// FailedEvaluation is returned when an evaluation could not be produced.
func FailedEvaluation() Evaluation {
	return Evaluation{
		Score:       5.0,
		Feedback:    "Unable to evaluate response at this time.",
		Suggestions: []string{},
	}
}

// FailedOverallFeedback is returned when the aggregate report could not be produced.
func FailedOverallFeedback() OverallFeedback {
	return OverallFeedback{
		OverallScore:    5.0,
		Summary:         "Unable to generate feedback at this time.",
		Strengths:       []string{},
		Improvements:    []string{},
		Recommendations: []string{},
	}
}
