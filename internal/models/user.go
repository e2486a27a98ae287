package models

import (
	"time"
)

type User struct {
	ID             string
	Username       string
	Email          string
	HashedPassword string
	FirstName      string
	LastName       string
	CellPhone      string
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// UserInfo is the read-only identity view handed to request handlers.
// It never carries the password hash.
type UserInfo struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	IsActive  bool   `json:"is_active"`
	CellPhone string `json:"cell_phone"`
}

func (u User) Info() UserInfo {
	return UserInfo{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		IsActive:  u.IsActive,
		CellPhone: u.CellPhone,
	}
}
