package postgres

import (
	"context"

	"github.com/yoockh/mockinterview/internal/models"
	"github.com/yoockh/mockinterview/internal/utils"
	"gorm.io/gorm"
)

type ResponseRepository interface {
	// Insert returns utils.ErrDuplicate when the question already has a response.
	Insert(ctx context.Context, resp *models.Response) error
	ExistsForQuestion(ctx context.Context, interviewID, questionID uint) (bool, error)
	AnsweredQuestionIDs(ctx context.Context, interviewID uint) ([]uint, error)
	ListByInterview(ctx context.Context, interviewID uint) ([]models.Response, error)
}

type responseRepo struct {
	db *gorm.DB
}

func NewResponseRepo(db *gorm.DB) ResponseRepository {
	return &responseRepo{db: db}
}

func (r *responseRepo) Insert(ctx context.Context, resp *models.Response) error {
	err := r.db.WithContext(ctx).Omit("Question").Create(resp).Error
	if isDuplicate(err) {
		return utils.ErrDuplicate
	}
	return err
}

func (r *responseRepo) ExistsForQuestion(ctx context.Context, interviewID, questionID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Response{}).
		Where("interview_id = ? AND question_id = ?", interviewID, questionID).
		Count(&count).Error
	return count > 0, err
}

func (r *responseRepo) AnsweredQuestionIDs(ctx context.Context, interviewID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.Response{}).
		Where("interview_id = ?", interviewID).
		Pluck("question_id", &ids).Error
	return ids, err
}

func (r *responseRepo) ListByInterview(ctx context.Context, interviewID uint) ([]models.Response, error) {
	var rows []models.Response
	err := r.db.WithContext(ctx).
		Where("interview_id = ?", interviewID).
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}
