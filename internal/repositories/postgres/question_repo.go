package postgres

import (
	"context"
	"errors"

	"github.com/yoockh/mockinterview/internal/models"
	"github.com/yoockh/mockinterview/internal/utils"
	"gorm.io/gorm"
)

type QuestionRepository interface {
	ListByInterview(ctx context.Context, interviewID uint) ([]models.Question, error)
	First(ctx context.Context, interviewID uint) (*models.Question, error)
	GetInInterview(ctx context.Context, interviewID, questionID uint) (*models.Question, error)
}

type questionRepo struct {
	db *gorm.DB
}

func NewQuestionRepo(db *gorm.DB) QuestionRepository {
	return &questionRepo{db: db}
}

func (r *questionRepo) ListByInterview(ctx context.Context, interviewID uint) ([]models.Question, error) {
	var rows []models.Question
	err := r.db.WithContext(ctx).
		Where("interview_id = ?", interviewID).
		Order("order_index ASC").
		Find(&rows).Error
	return rows, err
}

func (r *questionRepo) First(ctx context.Context, interviewID uint) (*models.Question, error) {
	var q models.Question
	err := r.db.WithContext(ctx).
		Where("interview_id = ?", interviewID).
		Order("order_index ASC").
		Take(&q).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *questionRepo) GetInInterview(ctx context.Context, interviewID, questionID uint) (*models.Question, error) {
	var q models.Question
	err := r.db.WithContext(ctx).
		Where("id = ? AND interview_id = ?", questionID, interviewID).
		Take(&q).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &q, nil
}
