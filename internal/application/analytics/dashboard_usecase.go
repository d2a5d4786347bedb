// Package analytics contiene los casos de uso de reportes del inventario de activos.
package analytics

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/Activos-api/internal/application/dto"
	"github.com/jhoicas/Activos-api/internal/domain/entity"
	"github.com/jhoicas/Activos-api/internal/domain/repository"
)

const dashboardRecent = 5 // entradas del libro en el widget del dashboard

// DashboardUseCase genera el resumen del inventario.
//
// Fuente de datos: AnalyticsRepository (consultas read-only) y el feed reciente del libro.
type DashboardUseCase struct {
	analyticsRepo repository.AnalyticsRepository
	txRepo        repository.TransactionRepository
}

// NewDashboardUseCase construye el caso de uso.
func NewDashboardUseCase(analyticsRepo repository.AnalyticsRepository, txRepo repository.TransactionRepository) *DashboardUseCase {
	return &DashboardUseCase{analyticsRepo: analyticsRepo, txRepo: txRepo}
}

// GetSummary construye el DashboardSummaryDTO.
//
// Tres consultas en paralelo:
//  1. CountAssetsByStatus   → StatusCounts + TotalAssets
//  2. CountAssetsByCategory → Categories
//  3. ListRecent(5)         → RecentTransactions
func (uc *DashboardUseCase) GetSummary(ctx context.Context) (*dto.DashboardSummaryDTO, error) {
	var (
		byStatus   map[string]int
		byCategory []repository.CategoryCount
		recent     []*entity.Transaction
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if byStatus, err = uc.analyticsRepo.CountAssetsByStatus(gctx); err != nil {
			return fmt.Errorf("dashboard: activos por estado: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if byCategory, err = uc.analyticsRepo.CountAssetsByCategory(gctx); err != nil {
			return fmt.Errorf("dashboard: activos por categoría: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if recent, err = uc.txRepo.ListRecent(gctx, dashboardRecent); err != nil {
			return fmt.Errorf("dashboard: movimientos recientes: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &dto.DashboardSummaryDTO{
		StatusCounts:       make(map[string]int, len(entity.AssetStatuses)),
		Categories:         make([]dto.CategoryCountDTO, 0, len(byCategory)),
		RecentTransactions: dto.ToTransactionResponses(recent),
	}
	for _, s := range entity.AssetStatuses {
		out.StatusCounts[s] = byStatus[s]
		out.TotalAssets += byStatus[s]
	}
	for _, c := range byCategory {
		out.Categories = append(out.Categories, dto.CategoryCountDTO{
			CategoryID:   c.CategoryID,
			CategoryName: c.CategoryName,
			Count:        c.Count,
		})
	}
	return out, nil
}
