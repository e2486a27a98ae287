package mongodb

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/fluyo/backend/internal/models"
)

const (
	usersCollection     = "users"
	sessionsCollection  = "sessions"
	companiesCollection = "companies"
)

// Stored document shapes. They never leave this package.

type userDoc struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	Username  string        `bson:"username"`
	Email     string        `bson:"email"`
	Password  string        `bson:"password"`
	FirstName string        `bson:"first_name"`
	LastName  string        `bson:"last_name"`
	IsActive  bool          `bson:"is_active"`
	CellPhone string        `bson:"cell_phone"`
	CreatedAt time.Time     `bson:"created_at"`
	UpdatedAt time.Time     `bson:"updated_at"`
}

func (d userDoc) model() models.User {
	return models.User{
		ID:             d.ID.Hex(),
		Username:       d.Username,
		Email:          d.Email,
		HashedPassword: d.Password,
		FirstName:      d.FirstName,
		LastName:       d.LastName,
		CellPhone:      d.CellPhone,
		IsActive:       d.IsActive,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

// Sessions written by earlier deployments carry ObjectID keys, ours carry ULID strings.
type sessionDoc struct {
	ID        any        `bson:"_id"`
	Token     string     `bson:"token"`
	UserID    string     `bson:"user_id"`
	Revoked   bool       `bson:"revoked"`
	RevokedAt *time.Time `bson:"revoked_at"`
	CreatedAt time.Time  `bson:"created_at"`
	ExpiresAt time.Time  `bson:"expires_at"`
}

func (d sessionDoc) model() models.Session {
	return models.Session{
		ID:        sessionID(d.ID),
		UserID:    d.UserID,
		Token:     d.Token,
		Revoked:   d.Revoked,
		RevokedAt: d.RevokedAt,
		CreatedAt: d.CreatedAt,
		ExpiresAt: d.ExpiresAt,
	}
}

func sessionID(v any) string {
	switch id := v.(type) {
	case string:
		return id
	case bson.ObjectID:
		return id.Hex()
	case nil:
		return ""
	default:
		return fmt.Sprint(id)
	}
}

type companyDoc struct {
	ID          bson.ObjectID `bson:"_id,omitempty"`
	Name        string        `bson:"name"`
	NIT         string        `bson:"nit"`
	Address     string        `bson:"address"`
	Phone       string        `bson:"phone"`
	Email       string        `bson:"email"`
	AdminUserID string        `bson:"admin_user_id"`
	Users       []string      `bson:"users"`
	CreatedAt   time.Time     `bson:"created_at"`
}

func (d companyDoc) model() models.Company {
	users := d.Users
	if users == nil {
		users = []string{}
	}
	return models.Company{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		NIT:         d.NIT,
		Address:     d.Address,
		Phone:       d.Phone,
		Email:       d.Email,
		AdminUserID: d.AdminUserID,
		Users:       users,
		CreatedAt:   d.CreatedAt,
	}
}
