package grpc

import (
	"context"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/jhoicas/Activos-api/pkg/logger"
)

// ServiceName nombre registrado en el servicio de health ("" es el estado global).
const ServiceName = "activos.v1.AssetLifecycle"

// HealthServer servidor gRPC que solo expone grpc.health.v1 para orquestadores.
type HealthServer struct {
	server *grpc.Server
	health *health.Server
	log    *logger.Logger
}

// NewHealthServer construye el servidor con ambos servicios en NOT_SERVING hasta el primer chequeo.
func NewHealthServer(log *logger.Logger) *HealthServer {
	if log == nil {
		log = logger.Nop()
	}
	srv := grpc.NewServer()
	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	reflection.Register(srv)

	h := &HealthServer{server: srv, health: hs, log: log.Component("grpc")}
	h.SetServing(false)
	return h
}

// SetServing actualiza el estado global y el del servicio.
func (h *HealthServer) SetServing(ok bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if ok {
		status = healthpb.HealthCheckResponse_SERVING
	}
	h.health.SetServingStatus("", status)
	h.health.SetServingStatus(ServiceName, status)
}

// Watch ejecuta check cada interval y publica el resultado hasta que ctx termine.
// El primer chequeo es inmediato.
func (h *HealthServer) Watch(ctx context.Context, interval time.Duration, check func(ctx context.Context) error) {
	last := true
	runCheck := func() {
		cctx, cancel := context.WithTimeout(ctx, interval)
		defer cancel()
		err := check(cctx)
		ok := err == nil
		if ok != last {
			if ok {
				h.log.Info().Msg("dependencias disponibles")
			} else {
				h.log.Warn().Err(err).Msg("dependencias no disponibles")
			}
		}
		last = ok
		h.SetServing(ok)
	}

	runCheck()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runCheck()
		}
	}
}

// Serve bloquea atendiendo en lis hasta GracefulStop.
func (h *HealthServer) Serve(lis net.Listener) error {
	h.log.Info().Str("addr", lis.Addr().String()).Msg("gRPC health escuchando")
	return h.server.Serve(lis)
}

// GracefulStop marca NOT_SERVING y espera a que terminen las llamadas en curso.
func (h *HealthServer) GracefulStop() {
	h.health.Shutdown()
	h.server.GracefulStop()
}
