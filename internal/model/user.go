package model

import (
	"time"
)

type User struct {
	ID         uint64 `gorm:"primaryKey"`
	Email      string `gorm:"type:varchar(50);uniqueIndex:idx_email"`
	Password   string `gorm:"type:varchar(255)"`
	Nickname   string `gorm:"type:varchar(50)"`
	Bio        string `gorm:"type:varchar(300)"`
	Verified   bool   `gorm:"type:tinyint(1);default:0"`
	IsDisabled bool   `gorm:"type:tinyint(1);default:0"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (User) TableName() string {
	return "users"
}
