package postgres

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
)

// Store groups the repositories that share one connection or one transaction.
type Store struct {
	db *gorm.DB

	Users      UserRepository
	Interviews InterviewRepository
	Questions  QuestionRepository
	Responses  ResponseRepository
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:         db,
		Users:      NewUserRepo(db),
		Interviews: NewInterviewRepo(db),
		Questions:  NewQuestionRepo(db),
		Responses:  NewResponseRepo(db),
	}
}

// Transaction runs fn against a Store bound to a single transaction. The transaction
// commits when fn returns nil and rolls back otherwise.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}

// isDuplicate reports unique-constraint violations. Dialectors that do not translate
// errors still surface the driver message.
func isDuplicate(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}
