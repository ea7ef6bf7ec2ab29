package models

import "time"

// User owns interviews. Rows are created on first use, either for the configured
// default identity or for an anonymous session; they are never updated afterwards.
type User struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Email     string    `gorm:"column:email;type:text;uniqueIndex;not null" json:"email"`
	Name      string    `gorm:"column:name;type:text" json:"name"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`

	Interviews []Interview `gorm:"foreignKey:UserID" json:"-"`
}

func (User) TableName() string { return "users" }
