package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jhoicas/Activos-api/internal/domain"
	"github.com/jhoicas/Activos-api/internal/domain/entity"
)

// CategoryRepo categorías en memoria.
type CategoryRepo struct {
	acc access
}

// Create falla con ErrUniquenessViolation si el nombre ya existe.
func (r *CategoryRepo) Create(_ context.Context, c *entity.Category) error {
	return r.acc.write(func(st *state) error {
		if err := uniqueName(c.ID, c.Name, categoryNames(st)); err != nil {
			return err
		}
		cp := *c
		st.categories[c.ID] = &cp
		return nil
	})
}

// GetByID obtiene una categoría por ID.
func (r *CategoryRepo) GetByID(_ context.Context, id string) (*entity.Category, error) {
	var out *entity.Category
	err := r.acc.read(func(st *state) error {
		if c, ok := st.categories[id]; ok {
			cp := *c
			out = &cp
		}
		return nil
	})
	return out, err
}

// GetForUpdate igual que GetByID; el mutex de Run serializa.
func (r *CategoryRepo) GetForUpdate(ctx context.Context, id string) (*entity.Category, error) {
	return r.GetByID(ctx, id)
}

// GetByName búsqueda exacta por nombre.
func (r *CategoryRepo) GetByName(_ context.Context, name string) (*entity.Category, error) {
	var out *entity.Category
	err := r.acc.read(func(st *state) error {
		for _, c := range st.categories {
			if c.Name == name {
				cp := *c
				out = &cp
				return nil
			}
		}
		return nil
	})
	return out, err
}

// Update reemplaza la categoría.
func (r *CategoryRepo) Update(_ context.Context, c *entity.Category) error {
	return r.acc.write(func(st *state) error {
		if _, ok := st.categories[c.ID]; !ok {
			return fmt.Errorf("%w: categoría %s", domain.ErrNotFound, c.ID)
		}
		if err := uniqueName(c.ID, c.Name, categoryNames(st)); err != nil {
			return err
		}
		cp := *c
		st.categories[c.ID] = &cp
		return nil
	})
}

// List ordenado por nombre.
func (r *CategoryRepo) List(_ context.Context, limit, offset int) ([]*entity.Category, int, error) {
	var list []*entity.Category
	_ = r.acc.read(func(st *state) error {
		for _, c := range st.categories {
			cp := *c
			list = append(list, &cp)
		}
		return nil
	})
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return page(list, limit, offset), len(list), nil
}

// Delete falla con ErrReferencedEntity si algún activo la usa (ON DELETE RESTRICT).
func (r *CategoryRepo) Delete(_ context.Context, id string) error {
	return r.acc.write(func(st *state) error {
		for _, a := range st.assets {
			if a.CategoryID == id {
				return fmt.Errorf("%w: categoría %s", domain.ErrReferencedEntity, id)
			}
		}
		delete(st.categories, id)
		return nil
	})
}

// LocationRepo ubicaciones en memoria.
type LocationRepo struct {
	acc access
}

// Create falla con ErrUniquenessViolation si el nombre ya existe.
func (r *LocationRepo) Create(_ context.Context, l *entity.Location) error {
	return r.acc.write(func(st *state) error {
		if err := uniqueName(l.ID, l.Name, locationNames(st)); err != nil {
			return err
		}
		cp := *l
		st.locations[l.ID] = &cp
		return nil
	})
}

// GetByID obtiene una ubicación por ID.
func (r *LocationRepo) GetByID(_ context.Context, id string) (*entity.Location, error) {
	var out *entity.Location
	err := r.acc.read(func(st *state) error {
		if l, ok := st.locations[id]; ok {
			cp := *l
			out = &cp
		}
		return nil
	})
	return out, err
}

// GetForUpdate igual que GetByID; el mutex de Run serializa.
func (r *LocationRepo) GetForUpdate(ctx context.Context, id string) (*entity.Location, error) {
	return r.GetByID(ctx, id)
}

// GetByName búsqueda exacta por nombre.
func (r *LocationRepo) GetByName(_ context.Context, name string) (*entity.Location, error) {
	var out *entity.Location
	err := r.acc.read(func(st *state) error {
		for _, l := range st.locations {
			if l.Name == name {
				cp := *l
				out = &cp
				return nil
			}
		}
		return nil
	})
	return out, err
}

// Update reemplaza la ubicación.
func (r *LocationRepo) Update(_ context.Context, l *entity.Location) error {
	return r.acc.write(func(st *state) error {
		if _, ok := st.locations[l.ID]; !ok {
			return fmt.Errorf("%w: ubicación %s", domain.ErrNotFound, l.ID)
		}
		if err := uniqueName(l.ID, l.Name, locationNames(st)); err != nil {
			return err
		}
		cp := *l
		st.locations[l.ID] = &cp
		return nil
	})
}

// List ordenado por nombre.
func (r *LocationRepo) List(_ context.Context, limit, offset int) ([]*entity.Location, int, error) {
	var list []*entity.Location
	_ = r.acc.read(func(st *state) error {
		for _, l := range st.locations {
			cp := *l
			list = append(list, &cp)
		}
		return nil
	})
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return page(list, limit, offset), len(list), nil
}

// Delete falla si un activo está en la ubicación o una entrada del libro la menciona.
func (r *LocationRepo) Delete(_ context.Context, id string) error {
	return r.acc.write(func(st *state) error {
		for _, a := range st.assets {
			if a.CurrentLocationID == id {
				return fmt.Errorf("%w: ubicación %s", domain.ErrReferencedEntity, id)
			}
		}
		for _, t := range st.transactions {
			if eq(t.FromLocationID, id) || eq(t.ToLocationID, id) {
				return fmt.Errorf("%w: ubicación %s", domain.ErrReferencedEntity, id)
			}
		}
		delete(st.locations, id)
		return nil
	})
}

func categoryNames(st *state) map[string]string {
	m := make(map[string]string, len(st.categories))
	for id, c := range st.categories {
		m[id] = c.Name
	}
	return m
}

func locationNames(st *state) map[string]string {
	m := make(map[string]string, len(st.locations))
	for id, l := range st.locations {
		m[id] = l.Name
	}
	return m
}

// uniqueName compara sin distinguir mayúsculas, como el índice único sobre lower(name).
func uniqueName(id, name string, existing map[string]string) error {
	for otherID, other := range existing {
		if otherID != id && strings.EqualFold(other, name) {
			return fmt.Errorf("%w: nombre %s", domain.ErrUniquenessViolation, name)
		}
	}
	return nil
}
