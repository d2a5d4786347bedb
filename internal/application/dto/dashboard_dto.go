package dto

// DashboardSummaryDTO respuesta de GET /api/dashboard/summary.
type DashboardSummaryDTO struct {
	TotalAssets  int            `json:"total_assets"`
	StatusCounts map[string]int `json:"status_counts"` // siempre incluye los cinco estados

	Categories []CategoryCountDTO `json:"categories"`

	// Últimas entradas del libro, la más reciente primero.
	RecentTransactions []TransactionResponse `json:"recent_transactions"`
}

// CategoryCountDTO activos por categoría.
type CategoryCountDTO struct {
	CategoryID   string `json:"category_id"`
	CategoryName string `json:"category_name"`
	Count        int    `json:"count"`
}
