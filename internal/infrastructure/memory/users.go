package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jhoicas/Activos-api/internal/domain"
	"github.com/jhoicas/Activos-api/internal/domain/entity"
)

// UserRepo usuarios en memoria.
type UserRepo struct {
	acc access
}

// Create falla con ErrUniquenessViolation si el username ya existe.
func (r *UserRepo) Create(_ context.Context, u *entity.User) error {
	return r.acc.write(func(st *state) error {
		if err := uniqueUsername(st, u); err != nil {
			return err
		}
		cp := *u
		st.users[u.ID] = &cp
		return nil
	})
}

// GetByID obtiene un usuario por ID.
func (r *UserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	var out *entity.User
	err := r.acc.read(func(st *state) error {
		if u, ok := st.users[id]; ok {
			cp := *u
			out = &cp
		}
		return nil
	})
	return out, err
}

// GetForUpdate igual que GetByID; el mutex de Run serializa.
func (r *UserRepo) GetForUpdate(ctx context.Context, id string) (*entity.User, error) {
	return r.GetByID(ctx, id)
}

// GetByUsername búsqueda por username (sin distinguir mayúsculas).
func (r *UserRepo) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	var out *entity.User
	err := r.acc.read(func(st *state) error {
		for _, u := range st.users {
			if strings.EqualFold(u.Username, username) {
				cp := *u
				out = &cp
				return nil
			}
		}
		return nil
	})
	return out, err
}

// Update reemplaza el usuario.
func (r *UserRepo) Update(_ context.Context, u *entity.User) error {
	return r.acc.write(func(st *state) error {
		if _, ok := st.users[u.ID]; !ok {
			return fmt.Errorf("%w: usuario %s", domain.ErrNotFound, u.ID)
		}
		if err := uniqueUsername(st, u); err != nil {
			return err
		}
		cp := *u
		st.users[u.ID] = &cp
		return nil
	})
}

// List ordenado por username.
func (r *UserRepo) List(_ context.Context, limit, offset int) ([]*entity.User, int, error) {
	var list []*entity.User
	_ = r.acc.read(func(st *state) error {
		for _, u := range st.users {
			cp := *u
			list = append(list, &cp)
		}
		return nil
	})
	sort.Slice(list, func(i, j int) bool { return list[i].Username < list[j].Username })
	return page(list, limit, offset), len(list), nil
}

// Delete falla si el usuario custodia activos o aparece en el libro.
func (r *UserRepo) Delete(_ context.Context, id string) error {
	return r.acc.write(func(st *state) error {
		for _, a := range st.assets {
			if eq(a.AssignedToID, id) {
				return fmt.Errorf("%w: usuario %s", domain.ErrReferencedEntity, id)
			}
		}
		for _, t := range st.transactions {
			if t.PerformedByID == id || eq(t.AssignedToID, id) {
				return fmt.Errorf("%w: usuario %s", domain.ErrReferencedEntity, id)
			}
		}
		delete(st.users, id)
		return nil
	})
}

func uniqueUsername(st *state, u *entity.User) error {
	for id, other := range st.users {
		if id != u.ID && strings.EqualFold(other.Username, u.Username) {
			return fmt.Errorf("%w: username %s", domain.ErrUniquenessViolation, u.Username)
		}
	}
	return nil
}
