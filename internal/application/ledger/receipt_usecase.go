package ledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/Activos-api/internal/application/ports"
	"github.com/jhoicas/Activos-api/internal/domain"
)

// ReceiptUseCase arma el comprobante de custodia de una entrada del libro.
type ReceiptUseCase struct {
	repos     ports.TxRepos
	generator ports.ReceiptGenerator
}

// NewReceiptUseCase construye el caso de uso.
func NewReceiptUseCase(repos ports.TxRepos, generator ports.ReceiptGenerator) *ReceiptUseCase {
	return &ReceiptUseCase{repos: repos, generator: generator}
}

// Generate devuelve el PDF del comprobante. Los nombres se resuelven al momento de
// imprimir; si una referencia ya no existe se imprime su ID.
func (uc *ReceiptUseCase) Generate(ctx context.Context, txID string) ([]byte, error) {
	tx, err := uc.repos.Transactions.GetByID(ctx, txID)
	if err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, fmt.Errorf("%w: movimiento %s", domain.ErrNotFound, txID)
	}
	data := ports.ReceiptData{Transaction: tx}

	asset, err := uc.repos.Assets.GetByID(ctx, tx.AssetID)
	if err != nil {
		return nil, err
	}
	data.Asset = asset
	if asset != nil {
		cat, err := uc.repos.Categories.GetByID(ctx, asset.CategoryID)
		if err != nil {
			return nil, err
		}
		if cat != nil {
			data.CategoryName = cat.Name
		}
	}
	if data.FromLocation, err = uc.locationName(ctx, tx.FromLocationID); err != nil {
		return nil, err
	}
	if data.ToLocation, err = uc.locationName(ctx, tx.ToLocationID); err != nil {
		return nil, err
	}
	if data.AssignedTo, err = uc.userName(ctx, tx.AssignedToID); err != nil {
		return nil, err
	}
	if data.PerformedBy, err = uc.userName(ctx, &tx.PerformedByID); err != nil {
		return nil, err
	}
	return uc.generator.Generate(data)
}

func (uc *ReceiptUseCase) locationName(ctx context.Context, id *string) (string, error) {
	if id == nil {
		return "", nil
	}
	loc, err := uc.repos.Locations.GetByID(ctx, *id)
	if err != nil || loc == nil {
		return *id, err
	}
	return loc.Name, nil
}

func (uc *ReceiptUseCase) userName(ctx context.Context, id *string) (string, error) {
	if id == nil || *id == "" {
		return "", nil
	}
	u, err := uc.repos.Users.GetByID(ctx, *id)
	if err != nil || u == nil {
		return *id, err
	}
	full := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if full == "" {
		return u.Username, nil
	}
	return fmt.Sprintf("%s (%s)", full, u.Username), nil
}
