package models

import "time"

type QuestionType string

const (
	QuestionBehavioral QuestionType = "behavioral"
	QuestionTechnical  QuestionType = "technical"
	QuestionGeneral    QuestionType = "general"
)

func (t QuestionType) Valid() bool {
	switch t {
	case QuestionBehavioral, QuestionTechnical, QuestionGeneral:
		return true
	}
	return false
}

// Question is immutable once created. OrderIndex is 1-based and unique per interview.
type Question struct {
	ID           uint         `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	InterviewID  uint         `gorm:"column:interview_id;not null;uniqueIndex:uniq_question_order" json:"interview_id"`
	QuestionText string       `gorm:"column:question_text;type:text;not null" json:"question_text"`
	QuestionType QuestionType `gorm:"column:question_type;type:text;not null" json:"question_type"`
	OrderIndex   int          `gorm:"column:order_index;not null;uniqueIndex:uniq_question_order" json:"order_index"`
	CreatedAt    time.Time    `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Question) TableName() string { return "questions" }
