package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/Activos-api/internal/application/dto"
	"github.com/jhoicas/Activos-api/internal/application/ports"
	"github.com/jhoicas/Activos-api/internal/domain"
	"github.com/jhoicas/Activos-api/internal/domain/entity"
	"github.com/jhoicas/Activos-api/internal/domain/repository"
)

// UserUseCase administración de usuarios. Todas las operaciones requieren ADMIN o superusuario.
type UserUseCase struct {
	txRunner ports.TxRunner
	repo     repository.UserRepository
}

// NewUserUseCase construye el caso de uso con el puerto de persistencia.
func NewUserUseCase(txRunner ports.TxRunner, repo repository.UserRepository) *UserUseCase {
	return &UserUseCase{txRunner: txRunner, repo: repo}
}

// Create crea un usuario: hashea password con bcrypt y persiste.
func (uc *UserUseCase) Create(ctx context.Context, actor entity.AuthContext, in dto.CreateUserRequest) (*dto.UserResponse, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if !entity.IsValidRole(in.Role) {
		return nil, fmt.Errorf("%w: rol %q", domain.ErrInvalidInput, in.Role)
	}
	if in.IsSuperuser && !actor.IsSuperuser {
		return nil, fmt.Errorf("%w: solo un superusuario crea superusuarios", domain.ErrForbidden)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	user := &entity.User{
		ID:           uuid.New().String(),
		Username:     strings.TrimSpace(in.Username),
		Email:        strings.TrimSpace(in.Email),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PasswordHash: string(hash),
		Role:         in.Role,
		IsSuperuser:  in.IsSuperuser,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return dto.ToUserResponse(user), nil
}

// GetByID obtiene un usuario por ID.
func (uc *UserUseCase) GetByID(ctx context.Context, actor entity.AuthContext, id string) (*dto.UserResponse, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	user, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: usuario %s", domain.ErrNotFound, id)
	}
	return dto.ToUserResponse(user), nil
}

// List lista usuarios ordenados por username.
func (uc *UserUseCase) List(ctx context.Context, actor entity.AuthContext, page dto.PageRequest) (*dto.UserListResponse, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	page.DefaultPage()
	list, total, err := uc.repo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.UserResponse, 0, len(list))
	for _, u := range list {
		items = append(items, *dto.ToUserResponse(u))
	}
	return &dto.UserListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}, nil
}

// Update actualiza datos, rol, estado o password.
func (uc *UserUseCase) Update(ctx context.Context, actor entity.AuthContext, id string, in dto.UpdateUserRequest) (*dto.UserResponse, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	user, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: usuario %s", domain.ErrNotFound, id)
	}
	if in.Email != nil {
		user.Email = strings.TrimSpace(*in.Email)
	}
	if in.FirstName != nil {
		user.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		user.LastName = *in.LastName
	}
	if in.Role != nil {
		if !entity.IsValidRole(*in.Role) {
			return nil, fmt.Errorf("%w: rol %q", domain.ErrInvalidInput, *in.Role)
		}
		user.Role = *in.Role
	}
	if in.IsSuperuser != nil && *in.IsSuperuser != user.IsSuperuser {
		if !actor.IsSuperuser {
			return nil, fmt.Errorf("%w: solo un superusuario cambia is_superuser", domain.ErrForbidden)
		}
		user.IsSuperuser = *in.IsSuperuser
	}
	if in.IsActive != nil {
		if !*in.IsActive && user.ID == actor.UserID {
			return nil, fmt.Errorf("%w: no puede desactivarse a sí mismo", domain.ErrInvalidInput)
		}
		user.IsActive = *in.IsActive
	}
	if in.Password != nil && *in.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = string(hash)
	}
	user.UpdatedAt = time.Now().UTC()
	if err := uc.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return dto.ToUserResponse(user), nil
}

// Delete elimina un usuario sin activos asignados ni participación en el libro.
// Un usuario no puede eliminarse a sí mismo.
func (uc *UserUseCase) Delete(ctx context.Context, actor entity.AuthContext, id string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if id == actor.UserID {
		return fmt.Errorf("%w: no puede eliminarse a sí mismo", domain.ErrInvalidInput)
	}
	return uc.txRunner.Run(ctx, func(repos ports.TxRepos) error {
		user, err := repos.Users.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if user == nil {
			return fmt.Errorf("%w: usuario %s", domain.ErrNotFound, id)
		}
		assets, err := repos.Assets.CountByAssignee(ctx, id)
		if err != nil {
			return err
		}
		entries, err := repos.Transactions.CountByUser(ctx, id)
		if err != nil {
			return err
		}
		if assets+entries > 0 {
			return fmt.Errorf("%w: %s tiene %d activos asignados y %d entradas en el libro; desactívelo",
				domain.ErrReferencedEntity, user.Username, assets, entries)
		}
		return repos.Users.Delete(ctx, id)
	})
}

func requireAdmin(actor entity.AuthContext) error {
	if !actor.IsAdmin() {
		return fmt.Errorf("%w: la administración de usuarios requiere ADMIN", domain.ErrForbidden)
	}
	return nil
}
