// Package tenants exposes the workshop profile and member lookups.
package tenants

import (
	"context"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/thermolaq/atelier-backend/internal/audit"
	"github.com/thermolaq/atelier-backend/internal/repo"
	"github.com/thermolaq/atelier-backend/pkg/db/models"
	pkgerrors "github.com/thermolaq/atelier-backend/pkg/errors"
)

type tenantRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	Update(ctx context.Context, tenant *models.Tenant) error
	FindUser(ctx context.Context, userID uuid.UUID) (*models.User, error)
}

// Service exposes tenant operations.
type Service interface {
	Get(ctx context.Context, tenantID uuid.UUID) (*TenantDTO, error)
	Update(ctx context.Context, tenantID uuid.UUID, userID *uuid.UUID, input UpdateTenantInput) (*TenantDTO, error)
	Membership(ctx context.Context, userID uuid.UUID) (*Membership, error)
}

type service struct {
	repo  tenantRepository
	audit *audit.Recorder
}

func NewService(r tenantRepository, recorder *audit.Recorder) (Service, error) {
	if r == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "tenant repository required")
	}
	return &service{repo: r, audit: recorder}, nil
}

func (s *service) load(ctx context.Context, tenantID uuid.UUID) (*models.Tenant, error) {
	tenant, err := s.repo.FindByID(ctx, tenantID)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "tenant not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load tenant")
	}
	return tenant, nil
}

func (s *service) Get(ctx context.Context, tenantID uuid.UUID) (*TenantDTO, error) {
	tenant, err := s.load(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	dto := FromModel(*tenant)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, tenantID uuid.UUID, userID *uuid.UUID, input UpdateTenantInput) (*TenantDTO, error) {
	tenant, err := s.load(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be blank")
		}
		tenant.Name = name
	}
	if input.SIRET.Set && input.SIRET.Value != nil {
		compact := stripSpaces(*input.SIRET.Value)
		if !validSIRET(compact) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "siret must be 14 digits")
		}
		input.SIRET.Value = &compact
	}
	input.LegalName.Apply(&tenant.LegalName)
	input.SIRET.Apply(&tenant.SIRET)
	input.VATNumber.Apply(&tenant.VATNumber)
	input.Address.Apply(&tenant.Address)
	input.Email.Apply(&tenant.Email)
	input.Phone.Apply(&tenant.Phone)
	if input.Locale != nil {
		tenant.Locale = *input.Locale
	}

	if err := s.repo.Update(ctx, tenant); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update tenant")
	}
	s.audit.Record(ctx, nil, audit.Entry{
		TenantID: tenant.ID,
		UserID:   userID,
		Action:   "tenant.updated",
		Entity:   audit.EntityTenant,
		EntityID: tenant.ID,
	})
	dto := FromModel(*tenant)
	return &dto, nil
}

// Membership resolves the caller's workshop and role. A user without a
// member row is not allowed into the tenant API.
func (s *service) Membership(ctx context.Context, userID uuid.UUID) (*Membership, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user id required")
	}
	user, err := s.repo.FindUser(ctx, userID)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "user is not a member of any workshop")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load membership")
	}
	if !user.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "unknown member role")
	}
	return &Membership{UserID: user.ID, TenantID: user.TenantID, Email: user.Email, Role: user.Role}, nil
}

func stripSpaces(v string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, v)
}

func validSIRET(v string) bool {
	if len(v) != 14 {
		return false
	}
	for _, r := range v {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
