package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin     = "ADMIN"
	RoleCustodian = "CUSTODIAN"
	RoleStaff     = "STAFF"
	RoleAuditor   = "AUDITOR"
)

// IsValidRole indica si r es un rol conocido.
func IsValidRole(r string) bool {
	switch r {
	case RoleAdmin, RoleCustodian, RoleStaff, RoleAuditor:
		return true
	}
	return false
}

// User representa un usuario del sistema y posible custodio de activos.
type User struct {
	ID           string
	Username     string // único
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Role         string
	IsSuperuser  bool
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AuthContext identidad del actor que ejecuta una operación.
// Se pasa explícitamente a los casos de uso; UserID queda como performed_by en el libro.
type AuthContext struct {
	UserID      string
	Username    string
	Role        string
	IsSuperuser bool
}

// IsAdmin ADMIN o superusuario.
func (a AuthContext) IsAdmin() bool {
	return a.IsSuperuser || a.Role == RoleAdmin
}

// CanMoveAssets ADMIN, CUSTODIAN o superusuario pueden registrar movimientos.
func (a AuthContext) CanMoveAssets() bool {
	return a.IsAdmin() || a.Role == RoleCustodian
}

// CanManageReference mismas reglas que los movimientos: categorías y ubicaciones.
func (a AuthContext) CanManageReference() bool {
	return a.CanMoveAssets()
}
