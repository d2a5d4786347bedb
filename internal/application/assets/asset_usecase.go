package assets

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Activos-api/internal/application/dto"
	"github.com/jhoicas/Activos-api/internal/application/ports"
	"github.com/jhoicas/Activos-api/internal/domain"
	"github.com/jhoicas/Activos-api/internal/domain/entity"
	"github.com/jhoicas/Activos-api/internal/domain/lifecycle"
	"github.com/jhoicas/Activos-api/internal/domain/repository"
	"github.com/jhoicas/Activos-api/pkg/logger"
)

// AssetUseCase alta, consulta, edición directa y borrado de activos.
// La edición directa no pasa por la máquina de estados ni genera entrada en el libro,
// por eso está restringida a ADMIN y revalida invariante y referencias.
type AssetUseCase struct {
	txRunner ports.TxRunner
	repo     repository.AssetRepository
	log      *logger.Logger
	now      func() time.Time
}

// NewAssetUseCase construye el caso de uso.
func NewAssetUseCase(txRunner ports.TxRunner, repo repository.AssetRepository, log *logger.Logger) *AssetUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &AssetUseCase{txRunner: txRunner, repo: repo, log: log.Component("assets"), now: time.Now}
}

// Create registra un activo. Requiere ADMIN o CUSTODIAN.
func (uc *AssetUseCase) Create(ctx context.Context, actor entity.AuthContext, in dto.CreateAssetRequest) (*dto.AssetResponse, error) {
	if !actor.CanMoveAssets() {
		return nil, fmt.Errorf("%w: el rol %s no puede registrar activos", domain.ErrForbidden, actor.Role)
	}
	now := uc.now().UTC()
	asset := &entity.Asset{
		ID:                uuid.New().String(),
		AssetTag:          strings.TrimSpace(in.AssetTag),
		Name:              strings.TrimSpace(in.Name),
		CategoryID:        in.CategoryID,
		CurrentLocationID: in.CurrentLocationID,
		AssignedToID:      trimmedOrNil(in.AssignedToID),
		Status:            in.Status,
		UnitCost:          decimal.Zero,
		SerialNo:          trimmedOrNil(in.SerialNo),
		Brand:             in.Brand,
		Model:             in.Model,
		Notes:             in.Notes,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if asset.Status == "" {
		asset.Status = entity.AssetStatusAvailable
	}
	if in.UnitCost != nil {
		asset.UnitCost = *in.UnitCost
	}
	var err error
	if asset.PurchaseDate, err = parseDate("purchase_date", in.PurchaseDate); err != nil {
		return nil, err
	}
	if asset.WarrantyEnd, err = parseDate("warranty_end", in.WarrantyEnd); err != nil {
		return nil, err
	}
	if asset.AssetTag == "" || asset.Name == "" {
		return nil, fmt.Errorf("%w: asset_tag y name son requeridos", domain.ErrInvalidInput)
	}
	if err := lifecycle.CheckInvariant(asset); err != nil {
		return nil, err
	}

	err = uc.txRunner.Run(ctx, func(repos ports.TxRepos) error {
		if err := checkReferences(ctx, repos, asset); err != nil {
			return err
		}
		if err := checkUnique(ctx, repos, asset); err != nil {
			return err
		}
		return repos.Assets.Create(ctx, asset)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("asset_id", asset.ID).Str("asset_tag", asset.AssetTag).Str("actor", actor.UserID).Msg("activo creado")
	return dto.ToAssetResponse(asset), nil
}

// GetByID obtiene un activo por ID. domain.ErrNotFound si no existe.
func (uc *AssetUseCase) GetByID(ctx context.Context, id string) (*dto.AssetResponse, error) {
	asset, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if asset == nil {
		return nil, fmt.Errorf("%w: activo %s", domain.ErrNotFound, id)
	}
	return dto.ToAssetResponse(asset), nil
}

// List lista activos con filtros y paginación.
func (uc *AssetUseCase) List(ctx context.Context, in dto.AssetListRequest) (*dto.AssetListResponse, error) {
	in.DefaultPage()
	list, total, err := uc.repo.List(ctx, repository.AssetFilter{
		Status:       in.Status,
		CategoryID:   in.CategoryID,
		LocationID:   in.LocationID,
		AssignedToID: in.AssignedToID,
		Query:        in.Query,
		Limit:        in.Limit,
		Offset:       in.Offset,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.AssetResponse, 0, len(list))
	for _, a := range list {
		items = append(items, *dto.ToAssetResponse(a))
	}
	return &dto.AssetListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: in.Limit, Offset: in.Offset, Total: total},
	}, nil
}

// Update edición directa de campos (incluido status). Solo ADMIN o superusuario.
func (uc *AssetUseCase) Update(ctx context.Context, actor entity.AuthContext, id string, in dto.UpdateAssetRequest) (*dto.AssetResponse, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: la edición directa requiere ADMIN", domain.ErrForbidden)
	}

	var out *entity.Asset
	err := uc.txRunner.Run(ctx, func(repos ports.TxRepos) error {
		asset, err := repos.Assets.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if asset == nil {
			return fmt.Errorf("%w: activo %s", domain.ErrNotFound, id)
		}
		if in.Version != nil && *in.Version != asset.Version {
			return fmt.Errorf("%w: versión enviada %d, actual %d", domain.ErrConcurrentModification, *in.Version, asset.Version)
		}
		if err := applyUpdate(asset, in); err != nil {
			return err
		}
		asset.UpdatedAt = uc.now().UTC()
		if err := lifecycle.CheckInvariant(asset); err != nil {
			return err
		}
		if err := checkReferences(ctx, repos, asset); err != nil {
			return err
		}
		if err := checkUnique(ctx, repos, asset); err != nil {
			return err
		}
		if err := repos.Assets.Update(ctx, asset); err != nil {
			return err
		}
		out = asset
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("asset_id", out.ID).Str("status", out.Status).Str("actor", actor.UserID).Msg("activo editado directamente")
	return dto.ToAssetResponse(out), nil
}

// Delete borra un activo sin historial. Con entradas en el libro responde ErrAssetHasHistory
// (se debe usar retire). Solo ADMIN o superusuario.
func (uc *AssetUseCase) Delete(ctx context.Context, actor entity.AuthContext, id string) error {
	if !actor.IsAdmin() {
		return fmt.Errorf("%w: borrar activos requiere ADMIN", domain.ErrForbidden)
	}
	err := uc.txRunner.Run(ctx, func(repos ports.TxRepos) error {
		asset, err := repos.Assets.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if asset == nil {
			return fmt.Errorf("%w: activo %s", domain.ErrNotFound, id)
		}
		n, err := repos.Transactions.CountByAsset(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("%w: %s tiene %d entradas, use retire", domain.ErrAssetHasHistory, asset.AssetTag, n)
		}
		return repos.Assets.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	uc.log.Info().Str("asset_id", id).Str("actor", actor.UserID).Msg("activo eliminado")
	return nil
}

func applyUpdate(a *entity.Asset, in dto.UpdateAssetRequest) error {
	if in.AssetTag != nil {
		a.AssetTag = strings.TrimSpace(*in.AssetTag)
	}
	if in.Name != nil {
		a.Name = strings.TrimSpace(*in.Name)
	}
	if in.CategoryID != nil {
		a.CategoryID = *in.CategoryID
	}
	if in.CurrentLocationID != nil {
		a.CurrentLocationID = *in.CurrentLocationID
	}
	if in.Status != nil {
		a.Status = *in.Status
	}
	if in.AssignedToID.Set {
		a.AssignedToID = trimmedOrNil(in.AssignedToID.Value)
	}
	if in.UnitCost != nil {
		a.UnitCost = *in.UnitCost
	}
	if in.SerialNo.Set {
		a.SerialNo = trimmedOrNil(in.SerialNo.Value)
	}
	if in.Brand != nil {
		a.Brand = *in.Brand
	}
	if in.Model != nil {
		a.Model = *in.Model
	}
	if in.Notes != nil {
		a.Notes = *in.Notes
	}
	var err error
	if in.PurchaseDate.Set {
		if a.PurchaseDate, err = parseDate("purchase_date", in.PurchaseDate.Value); err != nil {
			return err
		}
	}
	if in.WarrantyEnd.Set {
		if a.WarrantyEnd, err = parseDate("warranty_end", in.WarrantyEnd.Value); err != nil {
			return err
		}
	}
	if a.AssetTag == "" || a.Name == "" {
		return fmt.Errorf("%w: asset_tag y name no pueden quedar vacíos", domain.ErrInvalidInput)
	}
	return nil
}

// checkReferences relee categoría, ubicación y custodio dentro de la transacción.
func checkReferences(ctx context.Context, repos ports.TxRepos, a *entity.Asset) error {
	cat, err := repos.Categories.GetByID(ctx, a.CategoryID)
	if err != nil {
		return err
	}
	if cat == nil {
		return fmt.Errorf("%w: categoría %s", domain.ErrDanglingReference, a.CategoryID)
	}
	if err := requireLocation(ctx, repos, a.CurrentLocationID); err != nil {
		return err
	}
	if a.AssignedToID != nil {
		user, err := repos.Users.GetByID(ctx, *a.AssignedToID)
		if err != nil {
			return err
		}
		if user == nil {
			return fmt.Errorf("%w: usuario %s", domain.ErrDanglingReference, *a.AssignedToID)
		}
	}
	return nil
}

func checkUnique(ctx context.Context, repos ports.TxRepos, a *entity.Asset) error {
	other, err := repos.Assets.GetByTag(ctx, a.AssetTag)
	if err != nil {
		return err
	}
	if other != nil && other.ID != a.ID {
		return fmt.Errorf("%w: asset_tag %s ya existe", domain.ErrUniquenessViolation, a.AssetTag)
	}
	return nil
}

func parseDate(field string, s *string) (*time.Time, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	t, err := time.Parse(dto.DateLayout, strings.TrimSpace(*s))
	if err != nil {
		return nil, fmt.Errorf("%w: %s debe tener formato YYYY-MM-DD", domain.ErrInvalidInput, field)
	}
	return &t, nil
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
