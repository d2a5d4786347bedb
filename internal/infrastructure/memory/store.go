// Package memory implementa todos los repositorios y el TxRunner sobre un estado en memoria.
// Se usa en tests y con STORE_DRIVER=memory. Las transacciones se serializan con un mutex
// y trabajan sobre una copia del estado que solo se publica si fn termina sin error.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/Activos-api/internal/application/ports"
	"github.com/jhoicas/Activos-api/internal/domain/entity"
	"github.com/jhoicas/Activos-api/internal/domain/repository"
)

var (
	_ ports.TxRunner                   = (*Store)(nil)
	_ repository.AssetRepository       = (*AssetRepo)(nil)
	_ repository.TransactionRepository = (*TransactionRepo)(nil)
	_ repository.CategoryRepository    = (*CategoryRepo)(nil)
	_ repository.LocationRepository    = (*LocationRepo)(nil)
	_ repository.UserRepository        = (*UserRepo)(nil)
	_ repository.AnalyticsRepository   = (*AnalyticsRepo)(nil)
)

// state datos del store. Los valores guardados nunca se mutan en sitio:
// toda escritura reemplaza la entrada, así clone() puede copiar solo los mapas.
type state struct {
	assets       map[string]*entity.Asset
	transactions []*entity.Transaction // orden de inserción
	categories   map[string]*entity.Category
	locations    map[string]*entity.Location
	users        map[string]*entity.User
	seq          int64
}

func newState() state {
	return state{
		assets:     map[string]*entity.Asset{},
		categories: map[string]*entity.Category{},
		locations:  map[string]*entity.Location{},
		users:      map[string]*entity.User{},
	}
}

func (s state) clone() state {
	cp := state{
		assets:       make(map[string]*entity.Asset, len(s.assets)),
		transactions: make([]*entity.Transaction, len(s.transactions)),
		categories:   make(map[string]*entity.Category, len(s.categories)),
		locations:    make(map[string]*entity.Location, len(s.locations)),
		users:        make(map[string]*entity.User, len(s.users)),
		seq:          s.seq,
	}
	for k, v := range s.assets {
		cp.assets[k] = v
	}
	copy(cp.transactions, s.transactions)
	for k, v := range s.categories {
		cp.categories[k] = v
	}
	for k, v := range s.locations {
		cp.locations[k] = v
	}
	for k, v := range s.users {
		cp.users[k] = v
	}
	return cp
}

// Store estado compartido por los repositorios en memoria.
type Store struct {
	mu    sync.RWMutex
	state state
}

// NewStore construye un store vacío.
func NewStore() *Store {
	return &Store{state: newState()}
}

// access da acceso al estado: dentro de una transacción usa la copia de trabajo
// (el lock ya lo tiene Run); fuera toma el lock del store.
type access struct {
	store *Store
	tx    *state
}

func (a access) read(fn func(st *state) error) error {
	if a.tx != nil {
		return fn(a.tx)
	}
	a.store.mu.RLock()
	defer a.store.mu.RUnlock()
	return fn(&a.store.state)
}

// write fuera de transacción aplica sobre una copia y la publica solo si fn no falla.
func (a access) write(fn func(st *state) error) error {
	if a.tx != nil {
		return fn(a.tx)
	}
	a.store.mu.Lock()
	defer a.store.mu.Unlock()
	work := a.store.state.clone()
	if err := fn(&work); err != nil {
		return err
	}
	a.store.state = work
	return nil
}

// Run ejecuta fn con repositorios atados a una copia del estado; Commit = publicar la copia.
func (s *Store) Run(ctx context.Context, fn func(repos ports.TxRepos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.state.clone()
	acc := access{store: s, tx: &work}
	if err := fn(reposFor(acc)); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.state = work
	return nil
}

// Repos devuelve los repositorios fuera de transacción (cada llamada es atómica por sí sola).
func (s *Store) Repos() ports.TxRepos {
	return reposFor(access{store: s})
}

// Analytics devuelve el repositorio de consultas del dashboard.
func (s *Store) Analytics() *AnalyticsRepo {
	return &AnalyticsRepo{acc: access{store: s}}
}

func reposFor(acc access) ports.TxRepos {
	return ports.TxRepos{
		Assets:       &AssetRepo{acc: acc},
		Transactions: &TransactionRepo{acc: acc},
		Categories:   &CategoryRepo{acc: acc},
		Locations:    &LocationRepo{acc: acc},
		Users:        &UserRepo{acc: acc},
	}
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}
