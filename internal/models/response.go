package models

import (
	"time"

	"gorm.io/datatypes"
)

// Response is one answer to one question. At most one row exists per
// (interview_id, question_id).
type Response struct {
	ID           uint     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	InterviewID  uint     `gorm:"column:interview_id;not null;uniqueIndex:uniq_response_question" json:"interview_id"`
	QuestionID   uint     `gorm:"column:question_id;not null;uniqueIndex:uniq_response_question" json:"question_id"`
	ResponseText string   `gorm:"column:response_text;type:text;not null" json:"response_text"`
	AIFeedback   *string  `gorm:"column:ai_feedback;type:text" json:"ai_feedback"`
	Score        *float64 `gorm:"column:score" json:"score"`

	// JSON array of strings
	Suggestions datatypes.JSON `gorm:"column:suggestions" json:"suggestions,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`

	Question *Question `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Response) TableName() string { return "responses" }
