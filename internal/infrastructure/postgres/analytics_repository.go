package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Activos-api/internal/domain/repository"
)

var _ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)

// AnalyticsRepo consultas de solo lectura para el dashboard.
type AnalyticsRepo struct {
	q Querier
}

// NewAnalyticsRepository construye el adaptador de analítica.
func NewAnalyticsRepository(q Querier) *AnalyticsRepo {
	return &AnalyticsRepo{q: q}
}

// CountAssetsByStatus status -> cantidad. Los estados sin activos no aparecen.
func (r *AnalyticsRepo) CountAssetsByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := r.q.Query(ctx, `SELECT status, COUNT(*) FROM assets GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("CountAssetsByStatus: %w", err)
	}
	defer rows.Close()
	out := map[string]int{}
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("CountAssetsByStatus scan: %w", err)
		}
		out[status] = n
	}
	return out, rows.Err()
}

// CountAssetsByCategory incluye categorías vacías, ordenado por nombre.
func (r *AnalyticsRepo) CountAssetsByCategory(ctx context.Context) ([]repository.CategoryCount, error) {
	const query = `
	SELECT c.id, c.name, COUNT(a.id)
	FROM categories c
	LEFT JOIN assets a ON a.category_id = c.id
	GROUP BY c.id, c.name
	ORDER BY c.name`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("CountAssetsByCategory: %w", err)
	}
	defer rows.Close()
	var out []repository.CategoryCount
	for rows.Next() {
		var c repository.CategoryCount
		if err := rows.Scan(&c.CategoryID, &c.CategoryName, &c.Count); err != nil {
			return nil, fmt.Errorf("CountAssetsByCategory scan: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
