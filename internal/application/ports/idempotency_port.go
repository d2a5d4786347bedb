package ports

import "context"

// IdempotencyStore reserva llaves Idempotency-Key de los comandos del ciclo de vida.
type IdempotencyStore interface {
	// Reserve devuelve false si la llave ya estaba reservada.
	Reserve(ctx context.Context, key string) (bool, error)
	// Release libera la llave de un comando fallido para que el cliente pueda reintentar.
	Release(ctx context.Context, key string) error
}
