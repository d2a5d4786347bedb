package entity

import "time"

// Tipos de entrada del libro de transacciones.
const (
	TxTypeCheckout = "CHECKOUT"
	TxTypeReturn   = "RETURN"
	TxTypeTransfer = "TRANSFER"
	TxTypeRepair   = "REPAIR"
	TxTypeRetire   = "RETIRE"
)

// Condición del activo al ser devuelto.
const (
	ConditionGood         = "GOOD"
	ConditionDamaged      = "DAMAGED"
	ConditionMissingParts = "MISSING_PARTS"
)

// IsValidTxType indica si t es un tipo de transacción conocido.
func IsValidTxType(t string) bool {
	switch t {
	case TxTypeCheckout, TxTypeReturn, TxTypeTransfer, TxTypeRepair, TxTypeRetire:
		return true
	}
	return false
}

// IsValidCondition indica si c es una condición de devolución conocida.
func IsValidCondition(c string) bool {
	switch c {
	case ConditionGood, ConditionDamaged, ConditionMissingParts:
		return true
	}
	return false
}

// Transaction es una entrada inmutable del libro de movimientos de activos.
// AssetTag y AssetName son una copia al momento de escribir.
type Transaction struct {
	ID                string
	Seq               int64 // asignado por el store, desempate en el orden
	AssetID           string
	AssetTag          string
	AssetName         string
	Type              string
	FromLocationID    *string
	ToLocationID      *string
	AssignedToID      *string
	PerformedByID     string
	ConditionOnReturn *string
	Remarks           string
	CreatedAt         time.Time
}

// Clone copia profunda de la entrada.
func (t *Transaction) Clone() *Transaction {
	if t == nil {
		return nil
	}
	c := *t
	c.FromLocationID = cloneString(t.FromLocationID)
	c.ToLocationID = cloneString(t.ToLocationID)
	c.AssignedToID = cloneString(t.AssignedToID)
	c.ConditionOnReturn = cloneString(t.ConditionOnReturn)
	return &c
}
