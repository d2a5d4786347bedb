package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jhoicas/Activos-api/internal/domain"
	"github.com/jhoicas/Activos-api/internal/domain/entity"
	"github.com/jhoicas/Activos-api/internal/domain/repository"
)

// AssetRepo activos en memoria.
type AssetRepo struct {
	acc access
}

// Create valida unicidad y referencias como lo harían las constraints de la BD.
func (r *AssetRepo) Create(_ context.Context, asset *entity.Asset) error {
	return r.acc.write(func(st *state) error {
		if _, ok := st.assets[asset.ID]; ok {
			return fmt.Errorf("%w: id %s", domain.ErrUniquenessViolation, asset.ID)
		}
		if err := checkAssetConstraints(st, asset); err != nil {
			return err
		}
		cp := asset.Clone()
		if cp.Version == 0 {
			cp.Version = 1
			asset.Version = 1
		}
		st.assets[asset.ID] = cp
		return nil
	})
}

// GetByID obtiene un activo por ID.
func (r *AssetRepo) GetByID(_ context.Context, id string) (*entity.Asset, error) {
	var out *entity.Asset
	err := r.acc.read(func(st *state) error {
		out = st.assets[id].Clone()
		return nil
	})
	return out, err
}

// GetForUpdate en memoria el bloqueo lo da el mutex de la transacción.
func (r *AssetRepo) GetForUpdate(ctx context.Context, id string) (*entity.Asset, error) {
	return r.GetByID(ctx, id)
}

// GetByTag busca por asset_tag exacto.
func (r *AssetRepo) GetByTag(_ context.Context, tag string) (*entity.Asset, error) {
	var out *entity.Asset
	err := r.acc.read(func(st *state) error {
		for _, a := range st.assets {
			if a.AssetTag == tag {
				out = a.Clone()
				return nil
			}
		}
		return nil
	})
	return out, err
}

// Update compare-and-set sobre Version.
func (r *AssetRepo) Update(_ context.Context, asset *entity.Asset) error {
	return r.acc.write(func(st *state) error {
		current, ok := st.assets[asset.ID]
		if !ok {
			return fmt.Errorf("%w: activo %s", domain.ErrNotFound, asset.ID)
		}
		if current.Version != asset.Version {
			return fmt.Errorf("%w: versión esperada %d, actual %d", domain.ErrConcurrentModification, asset.Version, current.Version)
		}
		if err := checkAssetConstraints(st, asset); err != nil {
			return err
		}
		cp := asset.Clone()
		cp.Version = current.Version + 1
		st.assets[asset.ID] = cp
		asset.Version = cp.Version
		return nil
	})
}

// Delete falla con ErrAssetHasHistory si alguna entrada del libro lo referencia.
func (r *AssetRepo) Delete(_ context.Context, id string) error {
	return r.acc.write(func(st *state) error {
		for _, t := range st.transactions {
			if t.AssetID == id {
				return fmt.Errorf("%w: %s", domain.ErrAssetHasHistory, id)
			}
		}
		delete(st.assets, id)
		return nil
	})
}

// List filtra, ordena (created_at DESC, asset_tag) y pagina.
func (r *AssetRepo) List(_ context.Context, f repository.AssetFilter) ([]*entity.Asset, int, error) {
	var matched []*entity.Asset
	err := r.acc.read(func(st *state) error {
		q := strings.ToLower(strings.TrimSpace(f.Query))
		for _, a := range st.assets {
			if f.Status != "" && a.Status != f.Status {
				continue
			}
			if f.CategoryID != "" && a.CategoryID != f.CategoryID {
				continue
			}
			if f.LocationID != "" && a.CurrentLocationID != f.LocationID {
				continue
			}
			if f.AssignedToID != "" && (a.AssignedToID == nil || *a.AssignedToID != f.AssignedToID) {
				continue
			}
			if q != "" && !matchesQuery(a, q) {
				continue
			}
			matched = append(matched, a.Clone())
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].AssetTag < matched[j].AssetTag
	})
	return page(matched, f.Limit, f.Offset), len(matched), nil
}

// CountByCategory activos de una categoría.
func (r *AssetRepo) CountByCategory(_ context.Context, categoryID string) (int, error) {
	return r.count(func(a *entity.Asset) bool { return a.CategoryID == categoryID })
}

// CountByLocation activos en una ubicación.
func (r *AssetRepo) CountByLocation(_ context.Context, locationID string) (int, error) {
	return r.count(func(a *entity.Asset) bool { return a.CurrentLocationID == locationID })
}

// CountByAssignee activos asignados a un usuario.
func (r *AssetRepo) CountByAssignee(_ context.Context, userID string) (int, error) {
	return r.count(func(a *entity.Asset) bool { return a.AssignedToID != nil && *a.AssignedToID == userID })
}

func (r *AssetRepo) count(pred func(a *entity.Asset) bool) (int, error) {
	n := 0
	err := r.acc.read(func(st *state) error {
		for _, a := range st.assets {
			if pred(a) {
				n++
			}
		}
		return nil
	})
	return n, err
}

func matchesQuery(a *entity.Asset, q string) bool {
	fields := []string{a.AssetTag, a.Name, a.Brand, a.Model}
	if a.SerialNo != nil {
		fields = append(fields, *a.SerialNo)
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

// checkAssetConstraints equivalente a los UNIQUE y FOREIGN KEY de la tabla assets.
func checkAssetConstraints(st *state, asset *entity.Asset) error {
	for id, other := range st.assets {
		if id == asset.ID {
			continue
		}
		if other.AssetTag == asset.AssetTag {
			return fmt.Errorf("%w: asset_tag %s", domain.ErrUniquenessViolation, asset.AssetTag)
		}
		if asset.SerialNo != nil && other.SerialNo != nil && *other.SerialNo == *asset.SerialNo {
			return fmt.Errorf("%w: serial_no %s", domain.ErrUniquenessViolation, *asset.SerialNo)
		}
	}
	if _, ok := st.categories[asset.CategoryID]; !ok {
		return fmt.Errorf("%w: categoría %s", domain.ErrDanglingReference, asset.CategoryID)
	}
	if _, ok := st.locations[asset.CurrentLocationID]; !ok {
		return fmt.Errorf("%w: ubicación %s", domain.ErrDanglingReference, asset.CurrentLocationID)
	}
	if asset.AssignedToID != nil {
		if _, ok := st.users[*asset.AssignedToID]; !ok {
			return fmt.Errorf("%w: usuario %s", domain.ErrDanglingReference, *asset.AssignedToID)
		}
	}
	return nil
}
