// Package lifecycle implementa la máquina de estados de los activos (servicio de dominio).
//
// Cada transición es una función pura: recibe la foto actual del activo, el comando,
// el actor y la hora del servidor, y devuelve la nueva foto más la entrada del libro.
// No toca persistencia; el caso de uso confirma ambos resultados en una sola transacción.
//
//	AVAILABLE --checkout--> ASSIGNED --return--> AVAILABLE
//	AVAILABLE --repair--> REPAIR
//	AVAILABLE | REPAIR | LOST --retire--> RETIRED
//	cualquiera excepto RETIRED --transfer--> mismo estado, otra ubicación
package lifecycle

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Activos-api/internal/domain"
	"github.com/jhoicas/Activos-api/internal/domain/entity"
)

// CheckoutCommand asigna el activo a un custodio.
type CheckoutCommand struct {
	AssignedToID string
	Remarks      string
}

// ReturnCommand devuelve el activo; ToLocationID nil conserva la ubicación actual.
type ReturnCommand struct {
	Condition    string
	ToLocationID *string
	Remarks      string
}

// TransferCommand mueve el activo a otra ubicación sin cambiar su estado.
type TransferCommand struct {
	ToLocationID string
	Remarks      string
}

// NoteCommand comando sin más datos que las observaciones (repair, retire).
type NoteCommand struct {
	Remarks string
}

// Checkout AVAILABLE -> ASSIGNED. La entrada CHECKOUT queda con to_location nulo.
func Checkout(a *entity.Asset, cmd CheckoutCommand, actorID string, now time.Time) (*entity.Asset, *entity.Transaction, error) {
	if a.Status != entity.AssetStatusAvailable {
		return nil, nil, fmt.Errorf("%w: checkout requiere AVAILABLE, el activo %s está en %s", domain.ErrInvalidTransition, a.AssetTag, a.Status)
	}
	userID := strings.TrimSpace(cmd.AssignedToID)
	if userID == "" {
		return nil, nil, fmt.Errorf("%w: assigned_to_id es requerido", domain.ErrInvalidInput)
	}
	if err := requireActor(actorID); err != nil {
		return nil, nil, err
	}

	at := stamp(a, now)
	next := a.Clone()
	next.Status = entity.AssetStatusAssigned
	next.AssignedToID = &userID
	next.UpdatedAt = at

	tx := newEntry(a, entity.TxTypeCheckout, actorID, cmd.Remarks, at)
	tx.FromLocationID = strPtr(a.CurrentLocationID)
	tx.AssignedToID = strPtr(userID)
	return next, tx, nil
}

// Return ASSIGNED -> AVAILABLE. Libera al custodio y opcionalmente cambia la ubicación.
func Return(a *entity.Asset, cmd ReturnCommand, actorID string, now time.Time) (*entity.Asset, *entity.Transaction, error) {
	if a.Status != entity.AssetStatusAssigned {
		return nil, nil, fmt.Errorf("%w: return requiere ASSIGNED, el activo %s está en %s", domain.ErrInvalidTransition, a.AssetTag, a.Status)
	}
	if !entity.IsValidCondition(cmd.Condition) {
		return nil, nil, fmt.Errorf("%w: condition_on_return %q no es válida", domain.ErrInvalidInput, cmd.Condition)
	}
	if err := requireActor(actorID); err != nil {
		return nil, nil, err
	}

	target := a.CurrentLocationID
	if cmd.ToLocationID != nil {
		target = strings.TrimSpace(*cmd.ToLocationID)
		if target == "" {
			return nil, nil, fmt.Errorf("%w: to_location_id vacío", domain.ErrInvalidInput)
		}
	}

	at := stamp(a, now)
	next := a.Clone()
	next.Status = entity.AssetStatusAvailable
	next.AssignedToID = nil
	next.CurrentLocationID = target
	next.UpdatedAt = at

	tx := newEntry(a, entity.TxTypeReturn, actorID, cmd.Remarks, at)
	tx.FromLocationID = strPtr(a.CurrentLocationID)
	tx.ToLocationID = strPtr(target)
	tx.ConditionOnReturn = strPtr(cmd.Condition)
	return next, tx, nil
}

// Transfer cambia la ubicación sin tocar estado ni custodio. RETIRED no se mueve.
func Transfer(a *entity.Asset, cmd TransferCommand, actorID string, now time.Time) (*entity.Asset, *entity.Transaction, error) {
	if a.Status == entity.AssetStatusRetired {
		return nil, nil, fmt.Errorf("%w: el activo %s está RETIRED", domain.ErrInvalidTransition, a.AssetTag)
	}
	target := strings.TrimSpace(cmd.ToLocationID)
	if target == "" {
		return nil, nil, fmt.Errorf("%w: to_location_id es requerido", domain.ErrInvalidInput)
	}
	if target == a.CurrentLocationID {
		return nil, nil, fmt.Errorf("%w: %s", domain.ErrSameLocation, target)
	}
	if err := requireActor(actorID); err != nil {
		return nil, nil, err
	}

	at := stamp(a, now)
	next := a.Clone()
	next.CurrentLocationID = target
	next.UpdatedAt = at

	tx := newEntry(a, entity.TxTypeTransfer, actorID, cmd.Remarks, at)
	tx.FromLocationID = strPtr(a.CurrentLocationID)
	tx.ToLocationID = strPtr(target)
	tx.AssignedToID = cloneStr(a.AssignedToID)
	return next, tx, nil
}

// Repair AVAILABLE -> REPAIR.
func Repair(a *entity.Asset, cmd NoteCommand, actorID string, now time.Time) (*entity.Asset, *entity.Transaction, error) {
	if a.Status != entity.AssetStatusAvailable {
		return nil, nil, fmt.Errorf("%w: repair requiere AVAILABLE, el activo %s está en %s", domain.ErrInvalidTransition, a.AssetTag, a.Status)
	}
	if err := requireActor(actorID); err != nil {
		return nil, nil, err
	}

	at := stamp(a, now)
	next := a.Clone()
	next.Status = entity.AssetStatusRepair
	next.UpdatedAt = at

	tx := newEntry(a, entity.TxTypeRepair, actorID, cmd.Remarks, at)
	tx.FromLocationID = strPtr(a.CurrentLocationID)
	return next, tx, nil
}

// Retire AVAILABLE | REPAIR | LOST -> RETIRED. Un activo asignado debe devolverse primero.
func Retire(a *entity.Asset, cmd NoteCommand, actorID string, now time.Time) (*entity.Asset, *entity.Transaction, error) {
	switch a.Status {
	case entity.AssetStatusAvailable, entity.AssetStatusRepair, entity.AssetStatusLost:
	default:
		return nil, nil, fmt.Errorf("%w: retire no permitido desde %s (activo %s)", domain.ErrInvalidTransition, a.Status, a.AssetTag)
	}
	if err := requireActor(actorID); err != nil {
		return nil, nil, err
	}

	at := stamp(a, now)
	next := a.Clone()
	next.Status = entity.AssetStatusRetired
	next.UpdatedAt = at

	tx := newEntry(a, entity.TxTypeRetire, actorID, cmd.Remarks, at)
	tx.FromLocationID = strPtr(a.CurrentLocationID)
	return next, tx, nil
}

// CheckInvariant valida la foto de un activo: estado conocido y
// assigned_to presente si y solo si el estado es ASSIGNED.
func CheckInvariant(a *entity.Asset) error {
	if !entity.IsValidAssetStatus(a.Status) {
		return fmt.Errorf("%w: status %q desconocido", domain.ErrInvalidInput, a.Status)
	}
	assigned := a.AssignedToID != nil && *a.AssignedToID != ""
	if a.Status == entity.AssetStatusAssigned && !assigned {
		return fmt.Errorf("%w: un activo ASSIGNED requiere assigned_to_id", domain.ErrInvalidInput)
	}
	if a.Status != entity.AssetStatusAssigned && assigned {
		return fmt.Errorf("%w: assigned_to_id solo se permite con status ASSIGNED", domain.ErrInvalidInput)
	}
	if a.UnitCost.IsNegative() {
		return fmt.Errorf("%w: unit_cost no puede ser negativo", domain.ErrInvalidInput)
	}
	return nil
}

// stamp hora de la transición: nunca anterior a la última modificación del activo,
// así created_at no decrece dentro del historial de un mismo activo.
func stamp(a *entity.Asset, now time.Time) time.Time {
	now = now.UTC()
	if a.UpdatedAt.After(now) {
		return a.UpdatedAt
	}
	return now
}

func newEntry(a *entity.Asset, txType, actorID, remarks string, at time.Time) *entity.Transaction {
	return &entity.Transaction{
		ID:            uuid.New().String(),
		AssetID:       a.ID,
		AssetTag:      a.AssetTag,
		AssetName:     a.Name,
		Type:          txType,
		PerformedByID: actorID,
		Remarks:       strings.TrimSpace(remarks),
		CreatedAt:     at,
	}
}

func requireActor(actorID string) error {
	if actorID == "" {
		return fmt.Errorf("%w: actor requerido", domain.ErrUnauthorized)
	}
	return nil
}

func strPtr(s string) *string { return &s }

func cloneStr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
