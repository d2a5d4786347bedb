package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Activos-api/internal/application/dto"
	"github.com/jhoicas/Activos-api/internal/application/ports"
	"github.com/jhoicas/Activos-api/internal/domain"
	"github.com/jhoicas/Activos-api/internal/domain/entity"
	"github.com/jhoicas/Activos-api/internal/domain/repository"
)

// LocationUseCase casos de uso CRUD para ubicaciones (sedes, bodegas, oficinas).
type LocationUseCase struct {
	txRunner ports.TxRunner
	repo     repository.LocationRepository
}

// NewLocationUseCase construye el caso de uso.
func NewLocationUseCase(txRunner ports.TxRunner, repo repository.LocationRepository) *LocationUseCase {
	return &LocationUseCase{txRunner: txRunner, repo: repo}
}

// Create crea una nueva ubicación.
func (uc *LocationUseCase) Create(ctx context.Context, actor entity.AuthContext, in dto.CreateLocationRequest) (*dto.LocationResponse, error) {
	if !actor.CanManageReference() {
		return nil, fmt.Errorf("%w: el rol %s no puede gestionar ubicaciones", domain.ErrForbidden, actor.Role)
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name es requerido", domain.ErrInvalidInput)
	}
	now := time.Now().UTC()
	location := &entity.Location{
		ID:          uuid.New().String(),
		Name:        name,
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repo.Create(ctx, location); err != nil {
		return nil, err
	}
	return toLocationResponse(location), nil
}

// GetByID obtiene una ubicación por ID.
func (uc *LocationUseCase) GetByID(ctx context.Context, id string) (*dto.LocationResponse, error) {
	location, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if location == nil {
		return nil, fmt.Errorf("%w: ubicación %s", domain.ErrNotFound, id)
	}
	return toLocationResponse(location), nil
}

// Update actualiza una ubicación.
func (uc *LocationUseCase) Update(ctx context.Context, actor entity.AuthContext, id string, in dto.UpdateLocationRequest) (*dto.LocationResponse, error) {
	if !actor.CanManageReference() {
		return nil, fmt.Errorf("%w: el rol %s no puede gestionar ubicaciones", domain.ErrForbidden, actor.Role)
	}
	location, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if location == nil {
		return nil, fmt.Errorf("%w: ubicación %s", domain.ErrNotFound, id)
	}
	if in.Name != nil {
		location.Name = strings.TrimSpace(*in.Name)
		if location.Name == "" {
			return nil, fmt.Errorf("%w: name no puede quedar vacío", domain.ErrInvalidInput)
		}
	}
	if in.Description != nil {
		location.Description = *in.Description
	}
	location.UpdatedAt = time.Now().UTC()
	if err := uc.repo.Update(ctx, location); err != nil {
		return nil, err
	}
	return toLocationResponse(location), nil
}

// List lista ubicaciones ordenadas por nombre.
func (uc *LocationUseCase) List(ctx context.Context, page dto.PageRequest) (*dto.LocationListResponse, error) {
	page.DefaultPage()
	list, total, err := uc.repo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.LocationResponse, 0, len(list))
	for _, l := range list {
		items = append(items, *toLocationResponse(l))
	}
	return &dto.LocationListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}, nil
}

// Delete elimina la ubicación si no hay activos en ella ni entradas del libro que la mencionen.
func (uc *LocationUseCase) Delete(ctx context.Context, actor entity.AuthContext, id string) error {
	if !actor.CanManageReference() {
		return fmt.Errorf("%w: el rol %s no puede gestionar ubicaciones", domain.ErrForbidden, actor.Role)
	}
	return uc.txRunner.Run(ctx, func(repos ports.TxRepos) error {
		location, err := repos.Locations.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if location == nil {
			return fmt.Errorf("%w: ubicación %s", domain.ErrNotFound, id)
		}
		assets, err := repos.Assets.CountByLocation(ctx, id)
		if err != nil {
			return err
		}
		entries, err := repos.Transactions.CountByLocation(ctx, id)
		if err != nil {
			return err
		}
		if assets+entries > 0 {
			return fmt.Errorf("%w: la ubicación %s tiene %d activos y %d entradas en el libro",
				domain.ErrReferencedEntity, location.Name, assets, entries)
		}
		return repos.Locations.Delete(ctx, id)
	})
}

func toLocationResponse(l *entity.Location) *dto.LocationResponse {
	if l == nil {
		return nil
	}
	return &dto.LocationResponse{
		ID:          l.ID,
		Name:        l.Name,
		Description: l.Description,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
}
