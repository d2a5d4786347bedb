package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Activos-api/internal/application/dto"
	"github.com/jhoicas/Activos-api/internal/application/ledger"
	"github.com/jhoicas/Activos-api/pkg/logger"
)

// TransactionHandler consultas del libro de movimientos, comprobantes y archivo.
type TransactionHandler struct {
	query   *ledger.QueryUseCase
	receipt *ledger.ReceiptUseCase
	archive *ledger.ArchiveUseCase
	log     *logger.Logger
}

// NewTransactionHandler construye el handler. receipt y archive pueden ser nil.
func NewTransactionHandler(query *ledger.QueryUseCase, receipt *ledger.ReceiptUseCase, archive *ledger.ArchiveUseCase, log *logger.Logger) *TransactionHandler {
	return &TransactionHandler{query: query, receipt: receipt, archive: archive, log: log}
}

// List godoc
// @Summary      Listar movimientos
// @Description  Con filtro asset: orden ascendente. Sin él: los más recientes primero.
// @Tags         transactions
// @Security     Bearer
// @Produce      json
// @Param        asset         query  string  false  "ID del activo"
// @Param        type          query  string  false  "CHECKOUT|RETURN|TRANSFER|REPAIR|RETIRE"
// @Param        performed_by  query  string  false  "ID del usuario que ejecutó"
// @Param        limit         query  int     false  "Límite"  default(20)
// @Param        offset        query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.TransactionListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/transactions [get]
func (h *TransactionHandler) List(c *fiber.Ctx) error {
	var in dto.TransactionListRequest
	if ok, err := bindQuery(c, &in); !ok {
		return err
	}
	out, err := h.query.List(c.Context(), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Recent godoc
// @Summary      Últimos movimientos
// @Tags         transactions
// @Security     Bearer
// @Produce      json
// @Param        n    query  int  false  "Cantidad (máx 100)"  default(10)
// @Success      200  {array}  dto.TransactionResponse
// @Router       /api/transactions/recent [get]
func (h *TransactionHandler) Recent(c *fiber.Ctx) error {
	out, err := h.query.Recent(c.Context(), c.QueryInt("n", 10))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener movimiento por ID
// @Tags         transactions
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del movimiento"
// @Success      200  {object}  dto.TransactionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/transactions/{id} [get]
func (h *TransactionHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.query.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Receipt godoc
// @Summary      Comprobante de custodia en PDF
// @Tags         transactions
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID del movimiento"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/transactions/{id}/receipt [get]
func (h *TransactionHandler) Receipt(c *fiber.Ctx) error {
	if h.receipt == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "RECEIPT_DISABLED", Message: "generador de comprobantes no configurado"})
	}
	id := c.Params("id")
	pdf, err := h.receipt.Generate(c.Context(), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="comprobante-`+id+`.pdf"`)
	return c.Send(pdf)
}

// Archive godoc
// @Summary      Archivar el libro en almacenamiento de objetos (ADMIN)
// @Description  Exporta las entradas de [from, to) como JSON Lines. Sin rango: el día anterior (UTC).
// @Tags         transactions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ArchiveRequest  false  "Rango de fechas"
// @Success      201   {object}  dto.ArchiveResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/transactions/archive [post]
func (h *TransactionHandler) Archive(c *fiber.Ctx) error {
	var in dto.ArchiveRequest
	if len(c.Body()) > 0 {
		if ok, err := bindBody(c, &in); !ok {
			return err
		}
	}
	if h.archive == nil {
		return writeError(c, h.log, ledger.ErrArchiveDisabled)
	}
	out, err := h.archive.Archive(c.Context(), GetAuth(c), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}
