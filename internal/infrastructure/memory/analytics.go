package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/Activos-api/internal/domain/repository"
)

// AnalyticsRepo consultas del dashboard sobre el estado en memoria.
type AnalyticsRepo struct {
	acc access
}

// CountAssetsByStatus status -> cantidad.
func (r *AnalyticsRepo) CountAssetsByStatus(_ context.Context) (map[string]int, error) {
	out := map[string]int{}
	err := r.acc.read(func(st *state) error {
		for _, a := range st.assets {
			out[a.Status]++
		}
		return nil
	})
	return out, err
}

// CountAssetsByCategory incluye categorías vacías.
func (r *AnalyticsRepo) CountAssetsByCategory(_ context.Context) ([]repository.CategoryCount, error) {
	var out []repository.CategoryCount
	err := r.acc.read(func(st *state) error {
		counts := map[string]int{}
		for _, a := range st.assets {
			counts[a.CategoryID]++
		}
		for id, c := range st.categories {
			out = append(out, repository.CategoryCount{CategoryID: id, CategoryName: c.Name, Count: counts[id]})
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CategoryName < out[j].CategoryName })
	return out, err
}
