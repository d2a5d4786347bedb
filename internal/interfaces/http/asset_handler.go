package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Activos-api/internal/application/assets"
	"github.com/jhoicas/Activos-api/internal/application/dto"
	"github.com/jhoicas/Activos-api/internal/application/ledger"
	"github.com/jhoicas/Activos-api/pkg/logger"
)

// AssetHandler CRUD de activos, movimientos del ciclo de vida e historial.
type AssetHandler struct {
	assets    *assets.AssetUseCase
	lifecycle *assets.LifecycleUseCase
	ledger    *ledger.QueryUseCase
	log       *logger.Logger
}

// NewAssetHandler construye el handler.
func NewAssetHandler(assetUC *assets.AssetUseCase, lifecycleUC *assets.LifecycleUseCase, ledgerUC *ledger.QueryUseCase, log *logger.Logger) *AssetHandler {
	return &AssetHandler{assets: assetUC, lifecycle: lifecycleUC, ledger: ledgerUC, log: log}
}

// Create godoc
// @Summary      Registrar activo
// @Tags         assets
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateAssetRequest  true  "Datos del activo"
// @Success      201   {object}  dto.AssetResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/assets [post]
func (h *AssetHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateAssetRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	out, err := h.assets.Create(c.Context(), GetAuth(c), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener activo por ID
// @Tags         assets
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del activo"
// @Success      200  {object}  dto.AssetResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/assets/{id} [get]
func (h *AssetHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.assets.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar activos
// @Tags         assets
// @Security     Bearer
// @Produce      json
// @Param        status       query  string  false  "AVAILABLE|ASSIGNED|REPAIR|LOST|RETIRED"
// @Param        category     query  string  false  "ID de categoría"
// @Param        location     query  string  false  "ID de ubicación"
// @Param        assigned_to  query  string  false  "ID de usuario"
// @Param        q            query  string  false  "Busca en tag, nombre y serial"
// @Param        limit        query  int     false  "Límite"  default(20)
// @Param        offset       query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.AssetListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/assets [get]
func (h *AssetHandler) List(c *fiber.Ctx) error {
	var in dto.AssetListRequest
	if ok, err := bindQuery(c, &in); !ok {
		return err
	}
	out, err := h.assets.List(c.Context(), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Editar activo (ADMIN)
// @Description  Edición directa. Revalida referencias y la regla status/assigned_to. Si viene version debe coincidir.
// @Tags         assets
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "ID del activo"
// @Param        body  body  dto.UpdateAssetRequest  true  "Campos a modificar"
// @Success      200   {object}  dto.AssetResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/assets/{id} [put]
func (h *AssetHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateAssetRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	out, err := h.assets.Update(c.Context(), GetAuth(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar activo (ADMIN)
// @Description  Solo activos sin movimientos; con historial use retire.
// @Tags         assets
// @Security     Bearer
// @Param        id   path  string  true  "ID del activo"
// @Success      204
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/assets/{id} [delete]
func (h *AssetHandler) Delete(c *fiber.Ctx) error {
	if err := h.assets.Delete(c.Context(), GetAuth(c), c.Params("id")); err != nil {
		return writeError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Checkout godoc
// @Summary      Asignar activo a un usuario
// @Tags         lifecycle
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id               path    string               true   "ID del activo"
// @Param        Idempotency-Key  header  string               false  "Llave de idempotencia"
// @Param        body             body    dto.CheckoutRequest  true   "Usuario destino"
// @Success      200  {object}  dto.AssetResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/assets/{id}/checkout [post]
func (h *AssetHandler) Checkout(c *fiber.Ctx) error {
	var in dto.CheckoutRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	out, err := h.lifecycle.Checkout(c.Context(), GetAuth(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Return godoc
// @Summary      Devolver activo asignado
// @Tags         lifecycle
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id               path    string             true   "ID del activo"
// @Param        Idempotency-Key  header  string             false  "Llave de idempotencia"
// @Param        body             body    dto.ReturnRequest  true   "Condición y ubicación opcional"
// @Success      200  {object}  dto.AssetResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/assets/{id}/return_asset [post]
func (h *AssetHandler) Return(c *fiber.Ctx) error {
	var in dto.ReturnRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	out, err := h.lifecycle.Return(c.Context(), GetAuth(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Transfer godoc
// @Summary      Trasladar activo de ubicación
// @Tags         lifecycle
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id               path    string               true   "ID del activo"
// @Param        Idempotency-Key  header  string               false  "Llave de idempotencia"
// @Param        body             body    dto.TransferRequest  true   "Ubicación destino"
// @Success      200  {object}  dto.AssetResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/assets/{id}/transfer [post]
func (h *AssetHandler) Transfer(c *fiber.Ctx) error {
	var in dto.TransferRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	out, err := h.lifecycle.Transfer(c.Context(), GetAuth(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Repair godoc
// @Summary      Enviar activo a reparación
// @Tags         lifecycle
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id               path    string              true   "ID del activo"
// @Param        Idempotency-Key  header  string              false  "Llave de idempotencia"
// @Param        body             body    dto.RemarksRequest  false  "Observaciones"
// @Success      200  {object}  dto.AssetResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/assets/{id}/repair [post]
func (h *AssetHandler) Repair(c *fiber.Ctx) error {
	in, ok, err := h.remarks(c)
	if !ok {
		return err
	}
	out, err := h.lifecycle.Repair(c.Context(), GetAuth(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Retire godoc
// @Summary      Dar de baja un activo
// @Tags         lifecycle
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id               path    string              true   "ID del activo"
// @Param        Idempotency-Key  header  string              false  "Llave de idempotencia"
// @Param        body             body    dto.RemarksRequest  false  "Observaciones"
// @Success      200  {object}  dto.AssetResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/assets/{id}/retire [post]
func (h *AssetHandler) Retire(c *fiber.Ctx) error {
	in, ok, err := h.remarks(c)
	if !ok {
		return err
	}
	out, err := h.lifecycle.Retire(c.Context(), GetAuth(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// remarks el cuerpo es opcional en repair/retire.
func (h *AssetHandler) remarks(c *fiber.Ctx) (dto.RemarksRequest, bool, error) {
	var in dto.RemarksRequest
	if len(c.Body()) == 0 {
		return in, true, nil
	}
	ok, err := bindBody(c, &in)
	return in, ok, err
}

// Transactions godoc
// @Summary      Historial de movimientos del activo
// @Description  Orden ascendente por fecha; entradas con la misma fecha en orden de inserción.
// @Tags         assets
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del activo"
// @Success      200  {array}   dto.TransactionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/assets/{id}/transactions [get]
func (h *AssetHandler) Transactions(c *fiber.Ctx) error {
	out, err := h.ledger.ListByAsset(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}
