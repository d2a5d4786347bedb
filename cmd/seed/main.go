// seed crea el usuario admin y el catálogo de demostración (categorías, ubicaciones y activos).
// Es idempotente: lo que ya existe (por nombre, username o asset_tag) no se toca.
//
// Uso: go run ./cmd/seed [--csv activos.csv] [--encoding latin1]
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"

	"github.com/jhoicas/Activos-api/internal/application/assets"
	"github.com/jhoicas/Activos-api/internal/application/dto"
	"github.com/jhoicas/Activos-api/internal/application/ports"
	"github.com/jhoicas/Activos-api/internal/application/usecase"
	"github.com/jhoicas/Activos-api/internal/domain/entity"
	"github.com/jhoicas/Activos-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Activos-api/pkg/config"
	"github.com/jhoicas/Activos-api/pkg/logger"
)

var demoCategories = []string{"Laptop", "Desktop", "Monitor", "Printer", "Phone", "Tablet"}

var demoLocations = []dto.CreateLocationRequest{
	{Name: "Main Office", Description: "Main office building"},
	{Name: "Branch Office", Description: "Branch office location"},
	{Name: "Warehouse", Description: "Storage warehouse"},
	{Name: "IT Department", Description: "IT department room"},
}

var demoAssets = []assetRow{
	{Tag: "LT-001", Name: "Dell Latitude 5520", Category: "Laptop", Serial: "ABC123456", Brand: "Dell", Model: "Latitude 5520", Cost: "1200.00", Location: "Main Office"},
	{Tag: "LT-002", Name: "HP EliteBook 840", Category: "Laptop", Serial: "XYZ789012", Brand: "HP", Model: "EliteBook 840", Cost: "1350.00", Location: "Main Office"},
	{Tag: "DT-001", Name: "Dell OptiPlex 7080", Category: "Desktop", Serial: "DEF345678", Brand: "Dell", Model: "OptiPlex 7080", Cost: "950.00", Location: "IT Department"},
	{Tag: "MN-001", Name: `Samsung 27" Monitor`, Category: "Monitor", Serial: "MON111222", Brand: "Samsung", Model: `27" LED`, Cost: "300.00", Location: "Main Office"},
	{Tag: "MN-002", Name: `LG 24" Monitor`, Category: "Monitor", Serial: "MON333444", Brand: "LG", Model: `24" LED`, Cost: "250.00", Location: "Branch Office"},
	{Tag: "PR-001", Name: "HP LaserJet Pro", Category: "Printer", Serial: "PRT555666", Brand: "HP", Model: "LaserJet Pro M404", Cost: "400.00", Location: "Main Office"},
	{Tag: "PH-001", Name: "iPhone 13", Category: "Phone", Serial: "IPH777888", Brand: "Apple", Model: "iPhone 13", Cost: "800.00", Location: "Warehouse"},
	{Tag: "TB-001", Name: "iPad Pro", Category: "Tablet", Serial: "IPD999000", Brand: "Apple", Model: `iPad Pro 11"`, Cost: "950.00", Location: "Warehouse"},
}

// seedActor identidad con la que se registran los datos de demostración.
var seedActor = entity.AuthContext{UserID: "seed", Username: "seed", Role: entity.RoleAdmin, IsSuperuser: true}

type seeder struct {
	repos      ports.TxRepos
	users      *usecase.UserUseCase
	categories *usecase.CategoryUseCase
	locations  *usecase.LocationUseCase
	assets     *assets.AssetUseCase
	log        *logger.Logger

	categoryIDs map[string]string
	locationIDs map[string]string
}

func main() {
	csvPath := pflag.String("csv", "", "archivo CSV con activos adicionales")
	encoding := pflag.String("encoding", "utf8", "codificación del CSV: utf8 | latin1")
	adminPassword := pflag.String("admin-password", "admin123", "password del usuario admin si se crea")
	pflag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()
	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("aplicar esquema")
	}

	txRunner := postgres.NewTxRunner(pool)
	repos := postgres.NewRepos(pool)
	s := &seeder{
		repos:       repos,
		users:       usecase.NewUserUseCase(txRunner, repos.Users),
		categories:  usecase.NewCategoryUseCase(txRunner, repos.Categories),
		locations:   usecase.NewLocationUseCase(txRunner, repos.Locations),
		assets:      assets.NewAssetUseCase(txRunner, repos.Assets, log),
		log:         log,
		categoryIDs: map[string]string{},
		locationIDs: map[string]string{},
	}

	rows := demoAssets
	if *csvPath != "" {
		extra, err := readAssetsFile(*csvPath, *encoding)
		if err != nil {
			log.Fatal().Err(err).Str("file", *csvPath).Msg("leer CSV")
		}
		rows = append(rows, extra...)
		log.Info().Int("rows", len(extra)).Str("file", *csvPath).Msg("CSV leído")
	}

	if err := s.run(ctx, *adminPassword, rows); err != nil {
		log.Fatal().Err(err).Msg("seed")
	}
	log.Info().Msg("base de datos poblada; login: admin / " + *adminPassword)
}

func (s *seeder) run(ctx context.Context, adminPassword string, rows []assetRow) error {
	if err := s.ensureAdmin(ctx, adminPassword); err != nil {
		return err
	}
	for _, name := range demoCategories {
		if _, err := s.category(ctx, name); err != nil {
			return err
		}
	}
	for _, loc := range demoLocations {
		if _, err := s.location(ctx, loc); err != nil {
			return err
		}
	}
	for _, row := range rows {
		if err := s.ensureAsset(ctx, row); err != nil {
			return fmt.Errorf("activo %s: %w", row.Tag, err)
		}
	}
	return nil
}

func (s *seeder) ensureAdmin(ctx context.Context, password string) error {
	existing, err := s.repos.Users.GetByUsername(ctx, "admin")
	if err != nil || existing != nil {
		return err
	}
	if _, err := s.users.Create(ctx, seedActor, dto.CreateUserRequest{
		Username:    "admin",
		Email:       "admin@example.com",
		Password:    password,
		Role:        entity.RoleAdmin,
		IsSuperuser: true,
	}); err != nil {
		return fmt.Errorf("crear admin: %w", err)
	}
	s.log.Info().Msg("usuario admin creado")
	return nil
}

func (s *seeder) category(ctx context.Context, name string) (string, error) {
	if id, ok := s.categoryIDs[name]; ok {
		return id, nil
	}
	existing, err := s.repos.Categories.GetByName(ctx, name)
	if err != nil {
		return "", err
	}
	id := ""
	if existing != nil {
		id = existing.ID
	} else {
		out, err := s.categories.Create(ctx, seedActor, dto.CreateCategoryRequest{Name: name})
		if err != nil {
			return "", fmt.Errorf("crear categoría %s: %w", name, err)
		}
		id = out.ID
		s.log.Info().Str("category", name).Msg("categoría creada")
	}
	s.categoryIDs[name] = id
	return id, nil
}

func (s *seeder) location(ctx context.Context, in dto.CreateLocationRequest) (string, error) {
	if id, ok := s.locationIDs[in.Name]; ok {
		return id, nil
	}
	existing, err := s.repos.Locations.GetByName(ctx, in.Name)
	if err != nil {
		return "", err
	}
	id := ""
	if existing != nil {
		id = existing.ID
	} else {
		out, err := s.locations.Create(ctx, seedActor, in)
		if err != nil {
			return "", fmt.Errorf("crear ubicación %s: %w", in.Name, err)
		}
		id = out.ID
		s.log.Info().Str("location", in.Name).Msg("ubicación creada")
	}
	s.locationIDs[in.Name] = id
	return id, nil
}

func (s *seeder) ensureAsset(ctx context.Context, row assetRow) error {
	existing, err := s.repos.Assets.GetByTag(ctx, row.Tag)
	if err != nil || existing != nil {
		return err
	}
	categoryID, err := s.category(ctx, row.Category)
	if err != nil {
		return err
	}
	locationID, err := s.location(ctx, dto.CreateLocationRequest{Name: row.Location})
	if err != nil {
		return err
	}
	cost, err := decimal.NewFromString(row.Cost)
	if err != nil {
		return fmt.Errorf("unit_cost %q: %w", row.Cost, err)
	}
	today := time.Now().Format(dto.DateLayout)
	in := dto.CreateAssetRequest{
		AssetTag:          row.Tag,
		Name:              row.Name,
		CategoryID:        categoryID,
		CurrentLocationID: locationID,
		Status:            row.Status,
		UnitCost:          &cost,
		Brand:             row.Brand,
		Model:             row.Model,
		PurchaseDate:      &today,
	}
	if row.Serial != "" {
		in.SerialNo = &row.Serial
	}
	if _, err := s.assets.Create(ctx, seedActor, in); err != nil {
		return err
	}
	s.log.Info().Str("asset_tag", row.Tag).Str("name", row.Name).Msg("activo creado")
	return nil
}
