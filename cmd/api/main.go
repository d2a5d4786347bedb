package main

import (
	"context"
	"errors"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"golang.org/x/sync/errgroup"

	_ "github.com/jhoicas/Activos-api/docs"
	appanalytics "github.com/jhoicas/Activos-api/internal/application/analytics"
	"github.com/jhoicas/Activos-api/internal/application/assets"
	"github.com/jhoicas/Activos-api/internal/application/auth"
	"github.com/jhoicas/Activos-api/internal/application/ledger"
	"github.com/jhoicas/Activos-api/internal/application/ports"
	"github.com/jhoicas/Activos-api/internal/application/usecase"
	"github.com/jhoicas/Activos-api/internal/domain/repository"
	s3store "github.com/jhoicas/Activos-api/internal/infrastructure/blob/s3"
	"github.com/jhoicas/Activos-api/internal/infrastructure/cache"
	"github.com/jhoicas/Activos-api/internal/infrastructure/memory"
	"github.com/jhoicas/Activos-api/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/Activos-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Activos-api/internal/infrastructure/postgres"
	grpcHealth "github.com/jhoicas/Activos-api/internal/interfaces/grpc"
	httpRouter "github.com/jhoicas/Activos-api/internal/interfaces/http"
	"github.com/jhoicas/Activos-api/pkg/config"
	"github.com/jhoicas/Activos-api/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

// storage lo que cada driver aporta al resto del arranque.
type storage struct {
	txRunner  ports.TxRunner
	repos     ports.TxRepos
	analytics repository.AnalyticsRepository
	ping      func(ctx context.Context) error
	close     func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.App.StoreDriver).
		Msg("iniciando aplicación")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacenamiento")
	}
	defer store.close()

	// Idempotency-Key: solo con Redis configurado
	var idem ports.IdempotencyStore
	if cfg.Redis.Enabled() {
		rdb, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer rdb.Close()
		idem = cache.NewRedisIdempotencyStore(rdb, cfg.Redis.IdempotencyTTL)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("idempotencia con Redis habilitada")
	}

	// Archivo del libro en S3/MinIO
	var archiveStore ports.ArchiveStore
	if cfg.Archive.Enabled() {
		s3, err := s3store.New(ctx, cfg.Archive)
		if err != nil {
			log.Fatal().Err(err).Msg("cliente S3")
		}
		archiveStore = s3
		log.Info().Str("bucket", cfg.Archive.Bucket).Msg("archivo del libro habilitado")
	}

	recorder := metrics.NewRecorder("activos")
	repos := store.repos

	lifecycleUC := assets.NewLifecycleUseCase(store.txRunner, recorder, log)
	assetUC := assets.NewAssetUseCase(store.txRunner, repos.Assets, log)
	categoryUC := usecase.NewCategoryUseCase(store.txRunner, repos.Categories)
	locationUC := usecase.NewLocationUseCase(store.txRunner, repos.Locations)
	userUC := usecase.NewUserUseCase(store.txRunner, repos.Users)
	ledgerUC := ledger.NewQueryUseCase(repos.Transactions, repos.Assets)
	receiptUC := ledger.NewReceiptUseCase(repos, infrapdf.NewMarotoReceiptGenerator())
	archiveUC := ledger.NewArchiveUseCase(repos.Transactions, archiveStore, cfg.Archive.Prefix, log)
	dashboardUC := appanalytics.NewDashboardUseCase(store.analytics, repos.Transactions)
	authUC := auth.NewAuthUseCase(repos.Users, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	if cfg.JWT.Secret == "" {
		log.Warn().Msg("JWT_SECRET vacío: solo funcionará la autenticación Basic")
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: httpRouter.ErrorHandler(log),
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log.Component("http"), recorder))

	// Swagger UI en local: http://localhost:<port>/docs
	if cfg.App.SwaggerEnabled {
		if _, err := os.Stat(swaggerFile); err == nil {
			app.Use(swagger.New(swagger.Config{
				BasePath: "/",
				FilePath: swaggerFile,
				Path:     "docs",
				Title:    "Activos API",
			}))
		} else {
			log.Warn().Str("file", swaggerFile).Msg("swagger habilitado pero no se encontró el archivo")
		}
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:      authUC,
		AssetUC:     assetUC,
		LifecycleUC: lifecycleUC,
		CategoryUC:  categoryUC,
		LocationUC:  locationUC,
		UserUC:      userUC,
		LedgerUC:    ledgerUC,
		ReceiptUC:   receiptUC,
		ArchiveUC:   archiveUC,
		DashboardUC: dashboardUC,
		UserRepo:    repos.Users,
		Idempotency: idem,
		Metrics:     recorder.Handler(),
		JWTSecret:   cfg.JWT.Secret,
		AppName:     cfg.App.Name,
		Log:         log,
	})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			return err
		}
		return nil
	})

	if cfg.GRPC.Enabled() {
		healthSrv := grpcHealth.NewHealthServer(log)
		lis, err := net.Listen("tcp", cfg.GRPC.Addr())
		if err != nil {
			log.Fatal().Err(err).Str("addr", cfg.GRPC.Addr()).Msg("escuchar gRPC")
		}
		g.Go(func() error {
			return healthSrv.Serve(lis)
		})
		g.Go(func() error {
			healthSrv.Watch(gctx, 5*time.Second, store.ping)
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			healthSrv.GracefulStop()
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("señal de apagado recibida, cerrando servidor...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return app.ShutdownWithContext(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("servidor finalizado con error")
	}
	log.Info().Msg("aplicación detenida")
}

func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (*storage, error) {
	if cfg.App.StoreDriver == config.StoreDriverMemory {
		log.Warn().Msg("STORE_DRIVER=memory: los datos se pierden al reiniciar")
		mem := memory.NewStore()
		return &storage{
			txRunner:  mem,
			repos:     mem.Repos(),
			analytics: mem.Analytics(),
			ping:      func(context.Context) error { return nil },
			close:     func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	if cfg.DB.ApplySchema {
		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		log.Info().Msg("esquema de base de datos verificado")
	}
	return &storage{
		txRunner:  postgres.NewTxRunner(pool),
		repos:     postgres.NewRepos(pool),
		analytics: postgres.NewAnalyticsRepository(pool),
		ping:      pool.Ping,
		close:     pool.Close,
	}, nil
}
