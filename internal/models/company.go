package models

import (
	"time"
)

type Company struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	NIT         string    `json:"nit"`
	Address     string    `json:"address"`
	Phone       string    `json:"phone"`
	Email       string    `json:"email"`
	AdminUserID string    `json:"admin_user_id"`
	Users       []string  `json:"users"`
	CreatedAt   time.Time `json:"created_at"`
}

// HasMember reports whether the user administers or belongs to the company.
func (c Company) HasMember(userID string) bool {
	if c.AdminUserID == userID {
		return true
	}
	for _, id := range c.Users {
		if id == userID {
			return true
		}
	}
	return false
}
