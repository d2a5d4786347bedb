// Package ledger casos de uso de lectura del libro de movimientos, comprobantes
// de custodia y archivo del libro en almacenamiento de objetos.
package ledger

import (
	"context"
	"fmt"

	"github.com/jhoicas/Activos-api/internal/application/dto"
	"github.com/jhoicas/Activos-api/internal/domain"
	"github.com/jhoicas/Activos-api/internal/domain/entity"
	"github.com/jhoicas/Activos-api/internal/domain/repository"
)

// MaxRecent tope de entradas en el feed reciente.
const MaxRecent = 100

// QueryUseCase consultas sobre el libro. No existe operación de escritura aquí:
// las entradas solo nacen de una transición del ciclo de vida.
type QueryUseCase struct {
	txs    repository.TransactionRepository
	assets repository.AssetRepository
}

// NewQueryUseCase construye el caso de uso.
func NewQueryUseCase(txs repository.TransactionRepository, assets repository.AssetRepository) *QueryUseCase {
	return &QueryUseCase{txs: txs, assets: assets}
}

// ListByAsset historial completo de un activo, más antiguo primero.
func (uc *QueryUseCase) ListByAsset(ctx context.Context, assetID string) ([]dto.TransactionResponse, error) {
	asset, err := uc.assets.GetByID(ctx, assetID)
	if err != nil {
		return nil, err
	}
	if asset == nil {
		return nil, fmt.Errorf("%w: activo %s", domain.ErrNotFound, assetID)
	}
	list, err := uc.txs.ListByAsset(ctx, assetID)
	if err != nil {
		return nil, err
	}
	return dto.ToTransactionResponses(list), nil
}

// List listado paginado con filtros. Con filtro de activo el orden es ascendente,
// el feed global va del más reciente al más antiguo.
func (uc *QueryUseCase) List(ctx context.Context, in dto.TransactionListRequest) (*dto.TransactionListResponse, error) {
	if in.Type != "" && !entity.IsValidTxType(in.Type) {
		return nil, fmt.Errorf("%w: type %q", domain.ErrInvalidInput, in.Type)
	}
	in.DefaultPage()
	list, total, err := uc.txs.List(ctx, repository.TransactionFilter{
		AssetID:       in.AssetID,
		Type:          in.Type,
		PerformedByID: in.PerformedByID,
		Limit:         in.Limit,
		Offset:        in.Offset,
	})
	if err != nil {
		return nil, err
	}
	return &dto.TransactionListResponse{
		Items: dto.ToTransactionResponses(list),
		Page:  dto.PageResponse{Limit: in.Limit, Offset: in.Offset, Total: total},
	}, nil
}

// Recent últimas n entradas; n fuera de [1, MaxRecent] se ajusta.
func (uc *QueryUseCase) Recent(ctx context.Context, n int) ([]dto.TransactionResponse, error) {
	if n <= 0 {
		n = 10
	}
	if n > MaxRecent {
		n = MaxRecent
	}
	list, err := uc.txs.ListRecent(ctx, n)
	if err != nil {
		return nil, err
	}
	return dto.ToTransactionResponses(list), nil
}

// GetByID una entrada del libro.
func (uc *QueryUseCase) GetByID(ctx context.Context, id string) (*dto.TransactionResponse, error) {
	tx, err := uc.txs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, fmt.Errorf("%w: movimiento %s", domain.ErrNotFound, id)
	}
	return dto.ToTransactionResponse(tx), nil
}
