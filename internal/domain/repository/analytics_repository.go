package repository

import "context"

// CategoryCount cantidad de activos de una categoría.
type CategoryCount struct {
	CategoryID   string
	CategoryName string
	Count        int
}

// AnalyticsRepository consultas de solo lectura para el dashboard.
type AnalyticsRepository interface {
	// CountAssetsByStatus devuelve status -> cantidad. Estados sin activos pueden faltar.
	CountAssetsByStatus(ctx context.Context) (map[string]int, error)
	// CountAssetsByCategory incluye categorías sin activos (Count = 0), ordenadas por nombre.
	CountAssetsByCategory(ctx context.Context) ([]CategoryCount, error)
}
