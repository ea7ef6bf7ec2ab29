package generator

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/yoockh/mockinterview/internal/models"
)

// SystemPrompt is the system instruction given to every provider.
const SystemPrompt = "You are an expert HR professional, technical interviewer and career coach. Always answer with a single JSON document and nothing else."

func questionsPrompt(jobDescription, jobTitle string) string {
	return fmt.Sprintf(`You are an expert HR professional and technical interviewer.

Based on this job description for a %s role, generate a mock interview with 8 questions.

Job Description:
%s

Please generate:
- 3 behavioral questions (focusing on past experiences, teamwork, problem-solving)
- 5 technical questions (specific to the role and skills mentioned)

For each question, provide:
- question_text: The actual question
- question_type: "behavioral" or "technical"
- order_index: The order in which to ask (1-8), behavioral questions first

Return ONLY a JSON array of objects with exactly those keys.`, jobTitle, jobDescription)
}

func evaluationPrompt(questionText, responseText string, questionType models.QuestionType) string {
	return fmt.Sprintf(`You are an expert interviewer providing constructive feedback.

Evaluate this response to the following question:

Question: %s
Question Type: %s
Response: %s

Please provide:
1. A score from 1-10 (where 10 is excellent)
2. Constructive feedback highlighting strengths and areas for improvement
3. Specific suggestions for better responses

Return ONLY a JSON object with keys: score (number), feedback (string), suggestions (array of strings).`,
		questionText, questionType, responseText)
}

func overallPrompt(jobTitle string, responses []ResponseDetail) string {
	if jobTitle == "" {
		jobTitle = "Unknown"
	}
	data, err := json.MarshalIndent(responses, "", "  ")
	if err != nil {
		data = []byte("[]")
	}
	return fmt.Sprintf(`You are an expert career coach providing interview feedback.

Based on this interview data, provide comprehensive feedback:

Job Title: %s
Questions and Responses:
%s

Return ONLY a JSON object with keys:
overall_score (number 1-10), summary (string), strengths (array of strings),
improvements (array of strings), recommendations (array of strings).`, jobTitle, data)
}

// cleanJSON removes markdown fences and any prose around the first JSON value.
func cleanJSON(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	s = strings.TrimSpace(s)

	start := strings.IndexAny(s, "[{")
	if start < 0 {
		return s
	}
	end := strings.LastIndexAny(s, "]}")
	if end < start {
		return s[start:]
	}
	return s[start : end+1]
}
