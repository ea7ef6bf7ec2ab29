package models

import "time"

type InterviewStatus string

const (
	StatusCreated    InterviewStatus = "created"
	StatusInProgress InterviewStatus = "in_progress"
	StatusCompleted  InterviewStatus = "completed"
)

type Interview struct {
	ID             uint            `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UserID         uint            `gorm:"column:user_id;index;not null" json:"user_id"`
	JobTitle       string          `gorm:"column:job_title;type:text;not null" json:"job_title"`
	JobDescription string          `gorm:"column:job_description;type:text;not null" json:"job_description"`
	Company        *string         `gorm:"column:company;type:text" json:"company"`
	Status         InterviewStatus `gorm:"column:status;type:text;not null;default:created;index" json:"status"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime;index" json:"created_at"`
	CompletedAt    *time.Time      `gorm:"column:completed_at" json:"completed_at"`

	Questions []Question `gorm:"foreignKey:InterviewID;constraint:OnDelete:CASCADE" json:"questions"`
	Responses []Response `gorm:"foreignKey:InterviewID;constraint:OnDelete:CASCADE" json:"responses"`
}

func (Interview) TableName() string { return "interviews" }
