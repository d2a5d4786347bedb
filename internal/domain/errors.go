package domain

import "errors"

// Errores de dominio (sin dependencias externas).
// Los casos de uso los envuelven con detalle vía fmt.Errorf("%w: ...").
var (
	ErrNotFound               = errors.New("recurso no encontrado")
	ErrInvalidInput           = errors.New("entrada inválida")
	ErrUnauthorized           = errors.New("no autorizado")
	ErrForbidden              = errors.New("acceso denegado")
	ErrInvalidTransition      = errors.New("transición de estado no permitida")
	ErrDanglingReference      = errors.New("referencia a un registro inexistente")
	ErrUniquenessViolation    = errors.New("valor duplicado en un campo único")
	ErrReferencedEntity       = errors.New("el registro está referenciado y no puede eliminarse")
	ErrConcurrentModification = errors.New("el activo fue modificado por otra operación")
	ErrAssetHasHistory        = errors.New("el activo tiene historial de transacciones")
	ErrSameLocation           = errors.New("la ubicación destino es la ubicación actual")
	ErrDuplicateRequest       = errors.New("solicitud duplicada")
)

// IsDomainError indica si err es un error de negocio esperado (no una falla de infraestructura).
func IsDomainError(err error) bool {
	for _, target := range []error{
		ErrNotFound,
		ErrInvalidInput,
		ErrUnauthorized,
		ErrForbidden,
		ErrInvalidTransition,
		ErrDanglingReference,
		ErrUniquenessViolation,
		ErrReferencedEntity,
		ErrConcurrentModification,
		ErrAssetHasHistory,
		ErrSameLocation,
		ErrDuplicateRequest,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
