package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID       uuid.UUID `json:"id"`
	FullName string    `json:"fullName"`
	Email    string    `json:"email"`
	Password string    `json:"-"`

	CreatedAt time.Time `json:"createdAt"`
}

// UserInfo is the subset of User embedded in game responses.
type UserInfo struct {
	ID       uuid.UUID `json:"id"`
	FullName string    `json:"fullName"`
	Email    string    `json:"email"`
}

func (u *User) Info() UserInfo {
	return UserInfo{ID: u.ID, FullName: u.FullName, Email: u.Email}
}
