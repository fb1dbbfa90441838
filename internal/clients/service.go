// Package clients is the workshop's customer book.
package clients

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/thermolaq/atelier-backend/internal/audit"
	"github.com/thermolaq/atelier-backend/internal/repo"
	"github.com/thermolaq/atelier-backend/pkg/db/models"
	"github.com/thermolaq/atelier-backend/pkg/enums"
	pkgerrors "github.com/thermolaq/atelier-backend/pkg/errors"
	"github.com/thermolaq/atelier-backend/pkg/pagination"
	"github.com/thermolaq/atelier-backend/pkg/types"
)

// Service exposes client operations.
type Service interface {
	Create(ctx context.Context, tenantID uuid.UUID, userID *uuid.UUID, input CreateClientInput) (*models.Client, error)
	Get(ctx context.Context, tenantID, id uuid.UUID) (*models.Client, error)
	Update(ctx context.Context, tenantID, id uuid.UUID, userID *uuid.UUID, input UpdateClientInput) (*models.Client, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID, userID *uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID, filter ListFilter, params pagination.Params) (*types.Page[models.Client], error)
	Summary(ctx context.Context, tenantID, id uuid.UUID) (*Summary, error)
}

type service struct {
	repo  Repository
	audit *audit.Recorder
}

func NewService(r Repository, recorder *audit.Recorder) (Service, error) {
	if r == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "clients repository required")
	}
	return &service{repo: r, audit: recorder}, nil
}

func (s *service) Create(ctx context.Context, tenantID uuid.UUID, userID *uuid.UUID, input CreateClientInput) (*models.Client, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	kind := enums.ClientKindCompany
	if input.Kind != "" {
		parsed, err := enums.ParseClientKind(input.Kind)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid client kind")
		}
		kind = parsed
	}
	client := &models.Client{
		TenantID:    tenantID,
		Kind:        kind,
		Name:        name,
		ContactName: trimmed(input.ContactName),
		Email:       lowered(input.Email),
		Phone:       trimmed(input.Phone),
		Address:     trimmed(input.Address),
		PostalCode:  trimmed(input.PostalCode),
		City:        trimmed(input.City),
		SIRET:       trimmed(input.SIRET),
		VATNumber:   trimmed(input.VATNumber),
		Notes:       input.Notes,
		Tags:        normalizeTags(input.Tags),
	}
	if err := s.repo.Create(ctx, client); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create client")
	}
	s.record(ctx, client, userID, "client.created")
	return client, nil
}

func (s *service) Get(ctx context.Context, tenantID, id uuid.UUID) (*models.Client, error) {
	client, err := s.repo.FindByID(ctx, tenantID, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "client not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load client")
	}
	return client, nil
}

func (s *service) Update(ctx context.Context, tenantID, id uuid.UUID, userID *uuid.UUID, input UpdateClientInput) (*models.Client, error) {
	client, err := s.Get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if input.Kind != nil {
		kind, err := enums.ParseClientKind(*input.Kind)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid client kind")
		}
		client.Kind = kind
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be blank")
		}
		client.Name = name
	}
	input.ContactName.Apply(&client.ContactName)
	input.Email.Apply(&client.Email)
	client.Email = lowered(client.Email)
	input.Phone.Apply(&client.Phone)
	input.Address.Apply(&client.Address)
	input.PostalCode.Apply(&client.PostalCode)
	input.City.Apply(&client.City)
	input.SIRET.Apply(&client.SIRET)
	input.VATNumber.Apply(&client.VATNumber)
	input.Notes.Apply(&client.Notes)
	if input.Tags != nil {
		client.Tags = normalizeTags(*input.Tags)
	}

	if err := s.repo.Update(ctx, client); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update client")
	}
	s.record(ctx, client, userID, "client.updated")
	return client, nil
}

func (s *service) Delete(ctx context.Context, tenantID, id uuid.UUID, userID *uuid.UUID) error {
	deleted, err := s.repo.Delete(ctx, tenantID, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete client")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "client not found")
	}
	s.audit.Record(ctx, nil, audit.Entry{TenantID: tenantID, UserID: userID, Action: "client.deleted", Entity: audit.EntityClient, EntityID: id})
	return nil
}

func (s *service) List(ctx context.Context, tenantID uuid.UUID, filter ListFilter, params pagination.Params) (*types.Page[models.Client], error) {
	if _, err := pagination.ParseCursor(params.Cursor); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, err := s.repo.List(ctx, tenantID, filter, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list clients")
	}
	items, next := pagination.Trim(rows, params.Limit, func(c models.Client) pagination.Cursor {
		return pagination.Cursor{CreatedAt: c.CreatedAt, ID: c.ID}
	})
	return &types.Page[models.Client]{Items: items, NextCursor: next}, nil
}

func (s *service) Summary(ctx context.Context, tenantID, id uuid.UUID) (*Summary, error) {
	if _, err := s.Get(ctx, tenantID, id); err != nil {
		return nil, err
	}
	summary, err := s.repo.Summary(ctx, tenantID, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "client summary")
	}
	return &summary, nil
}

func (s *service) record(ctx context.Context, client *models.Client, userID *uuid.UUID, action string) {
	s.audit.Record(ctx, nil, audit.Entry{
		TenantID: client.TenantID,
		UserID:   userID,
		Action:   action,
		Entity:   audit.EntityClient,
		EntityID: client.ID,
		Payload:  map[string]any{"name": client.Name},
	})
}

func normalizeTags(tags []string) pq.StringArray {
	seen := map[string]struct{}{}
	out := pq.StringArray{}
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" || strings.ContainsAny(tag, ",{}\"") {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}

func lowered(v *string) *string {
	v = trimmed(v)
	if v == nil {
		return nil
	}
	l := strings.ToLower(*v)
	return &l
}
