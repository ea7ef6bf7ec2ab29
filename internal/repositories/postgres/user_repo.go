package postgres

import (
	"context"
	"errors"

	"github.com/yoockh/mockinterview/internal/models"
	"github.com/yoockh/mockinterview/internal/utils"
	"gorm.io/gorm"
)

type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	FirstOrCreateByEmail(ctx context.Context, email, name string) (*models.User, error)
}

type userRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, u *models.User) error {
	err := r.db.WithContext(ctx).Create(u).Error
	if isDuplicate(err) {
		return utils.ErrDuplicate
	}
	return err
}

func (r *userRepo) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// FirstOrCreateByEmail returns the user with email, inserting it when missing. A
// concurrent insert of the same email is resolved by reading the winner's row.
func (r *userRepo) FirstOrCreateByEmail(ctx context.Context, email, name string) (*models.User, error) {
	var u models.User
	err := r.db.WithContext(ctx).
		Where(models.User{Email: email}).
		Attrs(models.User{Name: name}).
		FirstOrCreate(&u).Error
	if isDuplicate(err) {
		return r.getByEmail(ctx, email)
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) getByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := r.db.WithContext(ctx).Where("email = ?", email).Take(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
