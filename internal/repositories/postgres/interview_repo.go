package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/yoockh/mockinterview/internal/models"
	"github.com/yoockh/mockinterview/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InterviewRepository interface {
	// Create inserts the interview together with its Questions.
	Create(ctx context.Context, iv *models.Interview) error
	GetByID(ctx context.Context, id uint) (*models.Interview, error)
	GetByIDForUpdate(ctx context.Context, id uint) (*models.Interview, error)
	GetWithDetails(ctx context.Context, id uint) (*models.Interview, error)
	UpdateStatus(ctx context.Context, id uint, status models.InterviewStatus, completedAt *time.Time) error
	ListHistory(ctx context.Context) ([]models.Interview, error)
}

type interviewRepo struct {
	db *gorm.DB
}

func NewInterviewRepo(db *gorm.DB) InterviewRepository {
	return &interviewRepo{db: db}
}

func (r *interviewRepo) Create(ctx context.Context, iv *models.Interview) error {
	return r.db.WithContext(ctx).Create(iv).Error
}

func (r *interviewRepo) GetByID(ctx context.Context, id uint) (*models.Interview, error) {
	return r.take(r.db.WithContext(ctx), id)
}

func (r *interviewRepo) GetByIDForUpdate(ctx context.Context, id uint) (*models.Interview, error) {
	return r.take(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *interviewRepo) GetWithDetails(ctx context.Context, id uint) (*models.Interview, error) {
	q := r.db.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_index ASC")
		}).
		Preload("Responses", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		})
	return r.take(q, id)
}

func (r *interviewRepo) take(q *gorm.DB, id uint) (*models.Interview, error) {
	var iv models.Interview
	err := q.Where("id = ?", id).Take(&iv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &iv, nil
}

func (r *interviewRepo) UpdateStatus(ctx context.Context, id uint, status models.InterviewStatus, completedAt *time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&models.Interview{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":       status,
			"completed_at": completedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.ErrNotFound
	}
	return nil
}

func (r *interviewRepo) ListHistory(ctx context.Context) ([]models.Interview, error) {
	var rows []models.Interview
	err := r.db.WithContext(ctx).
		Select("id", "user_id", "job_title", "company", "status", "created_at", "completed_at").
		Order("created_at DESC").
		Order("id DESC").
		Find(&rows).Error
	return rows, err
}
