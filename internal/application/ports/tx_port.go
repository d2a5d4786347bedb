package ports

import (
	"context"

	"github.com/jhoicas/Activos-api/internal/domain/repository"
)

// TxRepos repositorios atados a una misma transacción de BD.
type TxRepos struct {
	Assets       repository.AssetRepository
	Transactions repository.TransactionRepository
	Categories   repository.CategoryRepository
	Locations    repository.LocationRepository
	Users        repository.UserRepository
}

// TxRunner ejecuta fn dentro de una transacción: Commit si fn retorna nil, Rollback en cualquier otro caso.
// Lo implementan el adaptador PostgreSQL y el store en memoria.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos TxRepos) error) error
}
