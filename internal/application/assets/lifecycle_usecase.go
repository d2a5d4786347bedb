// Package assets contiene los casos de uso del ciclo de vida de activos:
// movimientos (checkout, return, transfer, repair, retire) y el CRUD con edición directa.
package assets

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Activos-api/internal/application/dto"
	"github.com/jhoicas/Activos-api/internal/application/ports"
	"github.com/jhoicas/Activos-api/internal/domain"
	"github.com/jhoicas/Activos-api/internal/domain/entity"
	"github.com/jhoicas/Activos-api/internal/domain/lifecycle"
	"github.com/jhoicas/Activos-api/pkg/logger"
)

// Nombres de operación para métricas y logs.
const (
	OpCheckout = "checkout"
	OpReturn   = "return"
	OpTransfer = "transfer"
	OpRepair   = "repair"
	OpRetire   = "retire"
)

// LifecycleUseCase registra los movimientos de activos de forma transaccional:
// bloquea la fila del activo (SELECT FOR UPDATE), evalúa la transición pura,
// valida referencias, escribe el activo con compare-and-set y agrega la entrada al libro.
// Activo y entrada se confirman juntos o ninguno.
type LifecycleUseCase struct {
	txRunner ports.TxRunner
	metrics  ports.MetricsRecorder
	log      *logger.Logger
	now      func() time.Time
}

// NewLifecycleUseCase construye el caso de uso. metrics y log pueden ser nil.
func NewLifecycleUseCase(txRunner ports.TxRunner, metrics ports.MetricsRecorder, log *logger.Logger) *LifecycleUseCase {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &LifecycleUseCase{
		txRunner: txRunner,
		metrics:  metrics,
		log:      log.Component("lifecycle"),
		now:      time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (uc *LifecycleUseCase) WithClock(now func() time.Time) *LifecycleUseCase {
	uc.now = now
	return uc
}

// step aplica la transición pura y valida las referencias que introduce.
type step func(ctx context.Context, repos ports.TxRepos, a *entity.Asset, now time.Time) (*entity.Asset, *entity.Transaction, error)

// Checkout asigna el activo a un usuario existente y activo.
func (uc *LifecycleUseCase) Checkout(ctx context.Context, actor entity.AuthContext, assetID string, in dto.CheckoutRequest) (*dto.AssetResponse, error) {
	cmd := lifecycle.CheckoutCommand{AssignedToID: in.AssignedToID, Remarks: in.Remarks}
	return uc.apply(ctx, actor, OpCheckout, assetID, func(ctx context.Context, repos ports.TxRepos, a *entity.Asset, now time.Time) (*entity.Asset, *entity.Transaction, error) {
		next, entry, err := lifecycle.Checkout(a, cmd, actor.UserID, now)
		if err != nil {
			return nil, nil, err
		}
		user, err := repos.Users.GetByID(ctx, *next.AssignedToID)
		if err != nil {
			return nil, nil, err
		}
		if user == nil {
			return nil, nil, fmt.Errorf("%w: usuario %s", domain.ErrDanglingReference, *next.AssignedToID)
		}
		if !user.IsActive {
			return nil, nil, fmt.Errorf("%w: el usuario %s está inactivo", domain.ErrInvalidInput, user.Username)
		}
		return next, entry, nil
	})
}

// Return devuelve el activo; la ubicación destino, si viene, debe existir.
func (uc *LifecycleUseCase) Return(ctx context.Context, actor entity.AuthContext, assetID string, in dto.ReturnRequest) (*dto.AssetResponse, error) {
	cmd := lifecycle.ReturnCommand{Condition: in.ConditionOnReturn, ToLocationID: in.ToLocationID, Remarks: in.Remarks}
	return uc.apply(ctx, actor, OpReturn, assetID, func(ctx context.Context, repos ports.TxRepos, a *entity.Asset, now time.Time) (*entity.Asset, *entity.Transaction, error) {
		next, entry, err := lifecycle.Return(a, cmd, actor.UserID, now)
		if err != nil {
			return nil, nil, err
		}
		if next.CurrentLocationID != a.CurrentLocationID {
			if err := requireLocation(ctx, repos, next.CurrentLocationID); err != nil {
				return nil, nil, err
			}
		}
		return next, entry, nil
	})
}

// Transfer mueve el activo a otra ubicación existente.
func (uc *LifecycleUseCase) Transfer(ctx context.Context, actor entity.AuthContext, assetID string, in dto.TransferRequest) (*dto.AssetResponse, error) {
	cmd := lifecycle.TransferCommand{ToLocationID: in.ToLocationID, Remarks: in.Remarks}
	return uc.apply(ctx, actor, OpTransfer, assetID, func(ctx context.Context, repos ports.TxRepos, a *entity.Asset, now time.Time) (*entity.Asset, *entity.Transaction, error) {
		next, entry, err := lifecycle.Transfer(a, cmd, actor.UserID, now)
		if err != nil {
			return nil, nil, err
		}
		if err := requireLocation(ctx, repos, next.CurrentLocationID); err != nil {
			return nil, nil, err
		}
		return next, entry, nil
	})
}

// Repair envía a reparación un activo disponible.
func (uc *LifecycleUseCase) Repair(ctx context.Context, actor entity.AuthContext, assetID string, in dto.RemarksRequest) (*dto.AssetResponse, error) {
	cmd := lifecycle.NoteCommand{Remarks: in.Remarks}
	return uc.apply(ctx, actor, OpRepair, assetID, func(_ context.Context, _ ports.TxRepos, a *entity.Asset, now time.Time) (*entity.Asset, *entity.Transaction, error) {
		return lifecycle.Repair(a, cmd, actor.UserID, now)
	})
}

// Retire da de baja el activo.
func (uc *LifecycleUseCase) Retire(ctx context.Context, actor entity.AuthContext, assetID string, in dto.RemarksRequest) (*dto.AssetResponse, error) {
	cmd := lifecycle.NoteCommand{Remarks: in.Remarks}
	return uc.apply(ctx, actor, OpRetire, assetID, func(_ context.Context, _ ports.TxRepos, a *entity.Asset, now time.Time) (*entity.Asset, *entity.Transaction, error) {
		return lifecycle.Retire(a, cmd, actor.UserID, now)
	})
}

func (uc *LifecycleUseCase) apply(ctx context.Context, actor entity.AuthContext, op, assetID string, fn step) (*dto.AssetResponse, error) {
	start := time.Now()
	if !actor.CanMoveAssets() {
		uc.metrics.Observe(ctx, op, false, time.Since(start))
		return nil, fmt.Errorf("%w: el rol %s no puede registrar movimientos", domain.ErrForbidden, actor.Role)
	}

	var (
		updated *entity.Asset
		entry   *entity.Transaction
	)
	err := uc.txRunner.Run(ctx, func(repos ports.TxRepos) error {
		current, err := repos.Assets.GetForUpdate(ctx, assetID)
		if err != nil {
			return err
		}
		if current == nil {
			return fmt.Errorf("%w: activo %s", domain.ErrNotFound, assetID)
		}
		next, e, err := fn(ctx, repos, current, uc.now())
		if err != nil {
			return err
		}
		if err := lifecycle.CheckInvariant(next); err != nil {
			return err
		}
		if err := repos.Assets.Update(ctx, next); err != nil {
			return err
		}
		if err := repos.Transactions.Append(ctx, e); err != nil {
			return err
		}
		updated, entry = next, e
		return nil
	})
	uc.metrics.Observe(ctx, op, err == nil, time.Since(start))
	if err != nil {
		ev := uc.log.Warn()
		if !domain.IsDomainError(err) {
			ev = uc.log.Error()
		}
		ev.Err(err).Str("op", op).Str("asset_id", assetID).Str("actor", actor.UserID).Msg("movimiento rechazado")
		return nil, err
	}

	uc.log.Info().
		Str("op", op).
		Str("asset_id", updated.ID).
		Str("asset_tag", updated.AssetTag).
		Str("transaction_id", entry.ID).
		Str("status", updated.Status).
		Str("actor", actor.UserID).
		Msg("movimiento registrado")
	return dto.ToAssetResponse(updated), nil
}

func requireLocation(ctx context.Context, repos ports.TxRepos, id string) error {
	loc, err := repos.Locations.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if loc == nil {
		return fmt.Errorf("%w: ubicación %s", domain.ErrDanglingReference, id)
	}
	return nil
}
