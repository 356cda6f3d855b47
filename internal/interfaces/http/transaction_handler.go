package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/rfranzoia/cloud-ready-stock/internal/application/dto"
	"github.com/rfranzoia/cloud-ready-stock/internal/application/inventory"
	"github.com/rfranzoia/cloud-ready-stock/pkg/logger"
)

// TransactionHandler maneja las peticiones HTTP de transacciones de entrada/salida.
type TransactionHandler struct {
	uc  *inventory.TransactionLedger
	log *logger.Logger
}

// NewTransactionHandler construye el handler.
func NewTransactionHandler(uc *inventory.TransactionLedger, log *logger.Logger) *TransactionHandler {
	return &TransactionHandler{uc: uc, log: log}
}

// List godoc
// @Summary      Listar transacciones
// @Tags         transactions
// @Produce      json
// @Success      200  {array}   dto.TransactionResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/v1/transactions [get]
func (h *TransactionHandler) List(c *fiber.Ctx) error {
	list, err := h.uc.ListAll(c.Context())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(list)
}

// GetByID godoc
// @Summary      Obtener transacción por ID
// @Tags         transactions
// @Produce      json
// @Param        id   path      int  true  "ID de la transacción"
// @Success      200  {object}  dto.TransactionResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/v1/transactions/{id} [get]
func (h *TransactionHandler) GetByID(c *fiber.Ctx) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "INVALID_ID", "id debe ser numérico")
	}
	out, err := h.uc.GetByID(c.Context(), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Registrar transacción
// @Description  Persiste la transacción y actualiza el saldo del mes y los meses posteriores.
// @Tags         transactions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CreateTransactionRequest  true  "date (YYYY-MM-DD), type (INPUT|OUTPUT), product_id, price, quantity"
// @Success      201   {object}  dto.TransactionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/v1/transactions [post]
func (h *TransactionHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateTransactionRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	out, err := h.uc.Create(c.Context(), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Delete godoc
// @Summary      Eliminar transacción
// @Description  Revierte el efecto de la transacción sobre los saldos y la elimina.
// @Tags         transactions
// @Security     Bearer
// @Produce      json
// @Param        id   path      int  true  "ID de la transacción"
// @Success      202  {object}  dto.MessageResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/v1/transactions/{id} [delete]
func (h *TransactionHandler) Delete(c *fiber.Ctx) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "INVALID_ID", "id debe ser numérico")
	}
	if err := h.uc.Delete(c.Context(), id); err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(dto.MessageResponse{Message: "transacción eliminada"})
}

// ListByDates godoc
// @Summary      Listar transacciones por rango de fechas
// @Description  Sin startDate se usa el primer día del mes actual; sin endDate, el último.
// @Tags         transactions
// @Produce      json
// @Param        startDate  query     string  false  "YYYY-MM-DD"
// @Param        endDate    query     string  false  "YYYY-MM-DD"
// @Success      200        {array}   dto.TransactionResponse
// @Failure      400        {object}  dto.ErrorResponse
// @Router       /api/v1/transactions/dates [get]
func (h *TransactionHandler) ListByDates(c *fiber.Ctx) error {
	list, err := h.uc.ListByDates(c.Context(), c.Query("startDate"), c.Query("endDate"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(list)
}

// ListByDatesAndProduct godoc
// @Summary      Listar transacciones de un producto por rango de fechas
// @Tags         transactions
// @Produce      json
// @Param        productId  path      int     true   "ID del producto"
// @Param        startDate  query     string  false  "YYYY-MM-DD"
// @Param        endDate    query     string  false  "YYYY-MM-DD"
// @Success      200        {array}   dto.TransactionResponse
// @Failure      400        {object}  dto.ErrorResponse
// @Failure      404        {object}  dto.ErrorResponse
// @Router       /api/v1/transactions/datesAndProduct/{productId} [get]
func (h *TransactionHandler) ListByDatesAndProduct(c *fiber.Ctx) error {
	productID, ok := pathID(c, "productId")
	if !ok {
		return badRequest(c, "INVALID_ID", "productId debe ser numérico")
	}
	list, err := h.uc.ListByDatesAndProduct(c.Context(), c.Query("startDate"), c.Query("endDate"), productID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(list)
}

// ListByType godoc
// @Summary      Listar transacciones por tipo
// @Tags         transactions
// @Produce      json
// @Param        type  path      string  true  "INPUT u OUTPUT"
// @Success      200   {object}  map[string][]dto.TransactionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/v1/transactions/type/{type} [get]
func (h *TransactionHandler) ListByType(c *fiber.Ctx) error {
	grouped, err := h.uc.ListByType(c.Context(), c.Params("type"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(grouped)
}

func pathID(c *fiber.Ctx, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
