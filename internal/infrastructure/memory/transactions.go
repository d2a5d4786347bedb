package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/Activos-api/internal/domain"
	"github.com/jhoicas/Activos-api/internal/domain/entity"
	"github.com/jhoicas/Activos-api/internal/domain/repository"
)

// TransactionRepo libro de movimientos en memoria (solo append).
type TransactionRepo struct {
	acc access
}

// Append asigna Seq y agrega la entrada al final.
func (r *TransactionRepo) Append(_ context.Context, tx *entity.Transaction) error {
	return r.acc.write(func(st *state) error {
		if _, ok := st.assets[tx.AssetID]; !ok {
			return fmt.Errorf("%w: activo %s", domain.ErrDanglingReference, tx.AssetID)
		}
		for _, loc := range []*string{tx.FromLocationID, tx.ToLocationID} {
			if loc != nil {
				if _, ok := st.locations[*loc]; !ok {
					return fmt.Errorf("%w: ubicación %s", domain.ErrDanglingReference, *loc)
				}
			}
		}
		if tx.AssignedToID != nil {
			if _, ok := st.users[*tx.AssignedToID]; !ok {
				return fmt.Errorf("%w: usuario %s", domain.ErrDanglingReference, *tx.AssignedToID)
			}
		}
		if _, ok := st.users[tx.PerformedByID]; !ok {
			return fmt.Errorf("%w: usuario %s", domain.ErrDanglingReference, tx.PerformedByID)
		}
		for _, t := range st.transactions {
			if t.ID == tx.ID {
				return fmt.Errorf("%w: transacción %s", domain.ErrUniquenessViolation, tx.ID)
			}
		}
		st.seq++
		tx.Seq = st.seq
		st.transactions = append(st.transactions, tx.Clone())
		return nil
	})
}

// GetByID obtiene una entrada por ID.
func (r *TransactionRepo) GetByID(_ context.Context, id string) (*entity.Transaction, error) {
	var out *entity.Transaction
	err := r.acc.read(func(st *state) error {
		for _, t := range st.transactions {
			if t.ID == id {
				out = t.Clone()
				return nil
			}
		}
		return nil
	})
	return out, err
}

// ListByAsset historial del activo en orden (created_at, seq) ascendente.
func (r *TransactionRepo) ListByAsset(_ context.Context, assetID string) ([]*entity.Transaction, error) {
	list := r.filter(func(t *entity.Transaction) bool { return t.AssetID == assetID })
	sortAsc(list)
	return list, nil
}

// ListRecent las n entradas más recientes.
func (r *TransactionRepo) ListRecent(_ context.Context, n int) ([]*entity.Transaction, error) {
	list := r.filter(func(*entity.Transaction) bool { return true })
	sortDesc(list)
	return page(list, n, 0), nil
}

// List filtra y pagina. Con AssetID el orden es ascendente; sin él, lo más reciente primero.
func (r *TransactionRepo) List(_ context.Context, f repository.TransactionFilter) ([]*entity.Transaction, int, error) {
	list := r.filter(func(t *entity.Transaction) bool {
		if f.AssetID != "" && t.AssetID != f.AssetID {
			return false
		}
		if f.Type != "" && t.Type != f.Type {
			return false
		}
		if f.PerformedByID != "" && t.PerformedByID != f.PerformedByID {
			return false
		}
		return true
	})
	if f.AssetID != "" {
		sortAsc(list)
	} else {
		sortDesc(list)
	}
	return page(list, f.Limit, f.Offset), len(list), nil
}

// ListBetween entradas con from <= created_at < to, ascendente.
func (r *TransactionRepo) ListBetween(_ context.Context, from, to time.Time) ([]*entity.Transaction, error) {
	list := r.filter(func(t *entity.Transaction) bool {
		return !t.CreatedAt.Before(from) && t.CreatedAt.Before(to)
	})
	sortAsc(list)
	return list, nil
}

// CountByAsset entradas de un activo.
func (r *TransactionRepo) CountByAsset(_ context.Context, assetID string) (int, error) {
	return len(r.filter(func(t *entity.Transaction) bool { return t.AssetID == assetID })), nil
}

// CountByLocation entradas que mencionan la ubicación como origen o destino.
func (r *TransactionRepo) CountByLocation(_ context.Context, locationID string) (int, error) {
	return len(r.filter(func(t *entity.Transaction) bool {
		return eq(t.FromLocationID, locationID) || eq(t.ToLocationID, locationID)
	})), nil
}

// CountByUser entradas donde el usuario es custodio o actor.
func (r *TransactionRepo) CountByUser(_ context.Context, userID string) (int, error) {
	return len(r.filter(func(t *entity.Transaction) bool {
		return t.PerformedByID == userID || eq(t.AssignedToID, userID)
	})), nil
}

func (r *TransactionRepo) filter(pred func(t *entity.Transaction) bool) []*entity.Transaction {
	var out []*entity.Transaction
	_ = r.acc.read(func(st *state) error {
		for _, t := range st.transactions {
			if pred(t) {
				out = append(out, t.Clone())
			}
		}
		return nil
	})
	return out
}

func sortAsc(list []*entity.Transaction) {
	sort.SliceStable(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.Before(list[j].CreatedAt)
		}
		return list[i].Seq < list[j].Seq
	})
}

func sortDesc(list []*entity.Transaction) {
	sort.SliceStable(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].Seq > list[j].Seq
	})
}

func eq(p *string, v string) bool { return p != nil && *p == v }
