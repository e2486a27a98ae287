package company

import (
	"context"
	"fmt"
	"strings"

	"github.com/fluyo/backend/internal/apperrors"
	"github.com/fluyo/backend/internal/models"
	"github.com/fluyo/backend/internal/repository"
)

type CompanyService struct {
	storage repository.Storage
}

func NewService(storage repository.Storage) *CompanyService {
	return &CompanyService{storage: storage}
}

type CreateParams struct {
	Name    string
	NIT     string
	Address string
	Phone   string
	Email   string
	Users   []string // members besides the admin
}

// Create registers a company administered by adminUserID.
// The admin must exist and is always the first member.
func (s *CompanyService) Create(ctx context.Context, adminUserID string, p CreateParams) (models.Company, error) {
	if _, err := s.storage.User().GetUserByID(ctx, adminUserID); err != nil {
		return models.Company{}, fmt.Errorf("create company: %w", err)
	}

	users := []string{adminUserID}
	seen := map[string]bool{adminUserID: true}
	for _, id := range p.Users {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		users = append(users, id)
	}

	c, err := s.storage.Company().Create(ctx, models.Company{
		Name:        strings.TrimSpace(p.Name),
		NIT:         strings.TrimSpace(p.NIT),
		Address:     p.Address,
		Phone:       p.Phone,
		Email:       p.Email,
		AdminUserID: adminUserID,
		Users:       users,
	})
	if err != nil {
		return c, fmt.Errorf("create company: %w", err)
	}

	return c, nil
}

// Get returns the company if the user administers or belongs to it.
// Companies of other tenants are reported as not found.
func (s *CompanyService) Get(ctx context.Context, id string, userID string) (models.Company, error) {
	c, err := s.storage.Company().GetByID(ctx, id)
	if err != nil {
		return c, fmt.Errorf("get company: %w", err)
	}

	if !c.HasMember(userID) {
		return models.Company{}, fmt.Errorf("get company: %w", apperrors.ErrCompanyNotFound)
	}

	return c, nil
}

func (s *CompanyService) ListByUser(ctx context.Context, userID string) ([]models.Company, error) {
	companies, err := s.storage.Company().ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}

	return companies, nil
}
