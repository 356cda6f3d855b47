package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/rfranzoia/cloud-ready-stock/internal/application/dto"
	"github.com/rfranzoia/cloud-ready-stock/internal/application/inventory"
	"github.com/rfranzoia/cloud-ready-stock/pkg/logger"
)

// StockHandler maneja las consultas y ajustes de saldos mensuales.
type StockHandler struct {
	uc  *inventory.StockLedger
	log *logger.Logger
}

// NewStockHandler construye el handler.
func NewStockHandler(uc *inventory.StockLedger, log *logger.Logger) *StockHandler {
	return &StockHandler{uc: uc, log: log}
}

// List godoc
// @Summary      Listar saldos
// @Tags         stocks
// @Produce      json
// @Success      200  {array}   dto.StockResponse
// @Router       /api/v1/stocks [get]
func (h *StockHandler) List(c *fiber.Ctx) error {
	list, err := h.uc.ListAll(c.Context())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(list)
}

// ListByPeriod godoc
// @Summary      Listar saldos de un mes
// @Tags         stocks
// @Produce      json
// @Param        yearMonth  path      string  true  "YYYYMM"
// @Success      200        {array}   dto.StockResponse
// @Failure      400        {object}  dto.ErrorResponse
// @Router       /api/v1/stocks/yearMonth/{yearMonth} [get]
func (h *StockHandler) ListByPeriod(c *fiber.Ctx) error {
	list, err := h.uc.ListByPeriod(c.Context(), c.Params("yearMonth"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(list)
}

// GetByPeriodAndProduct godoc
// @Summary      Obtener saldo de un producto en un mes
// @Tags         stocks
// @Produce      json
// @Param        yearMonth  path      string  true  "YYYYMM"
// @Param        productId  path      int     true  "ID del producto"
// @Success      200        {object}  dto.StockResponse
// @Failure      400        {object}  dto.ErrorResponse
// @Failure      404        {object}  dto.ErrorResponse
// @Router       /api/v1/stocks/yearMonth/{yearMonth}/product/{productId} [get]
func (h *StockHandler) GetByPeriodAndProduct(c *fiber.Ctx) error {
	productID, ok := pathID(c, "productId")
	if !ok {
		return badRequest(c, "INVALID_ID", "productId debe ser numérico")
	}
	out, err := h.uc.GetByPeriodAndProduct(c.Context(), c.Params("yearMonth"), productID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// ListByProduct godoc
// @Summary      Listar saldos de un producto
// @Tags         stocks
// @Produce      json
// @Param        productId  path      int  true  "ID del producto"
// @Success      200        {array}   dto.StockResponse
// @Failure      404        {object}  dto.ErrorResponse
// @Router       /api/v1/stocks/product/{productId} [get]
func (h *StockHandler) ListByProduct(c *fiber.Ctx) error {
	productID, ok := pathID(c, "productId")
	if !ok {
		return badRequest(c, "INVALID_ID", "productId debe ser numérico")
	}
	list, err := h.uc.ListByProduct(c.Context(), productID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(list)
}

// Report godoc
// @Summary      Tarjeta de kardex en PDF
// @Tags         stocks
// @Produce      application/pdf
// @Param        productId  path      int  true  "ID del producto"
// @Success      200        {file}    binary
// @Failure      404        {object}  dto.ErrorResponse
// @Failure      503        {object}  dto.ErrorResponse
// @Router       /api/v1/stocks/product/{productId}/report [get]
func (h *StockHandler) Report(c *fiber.Ctx) error {
	productID, ok := pathID(c, "productId")
	if !ok {
		return badRequest(c, "INVALID_ID", "productId debe ser numérico")
	}
	doc, err := h.uc.StockCardReport(c.Context(), productID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("inline; filename=\"kardex-%d.pdf\"", productID))
	return c.Send(doc)
}

// Update godoc
// @Summary      Ajustar saldo
// @Description  Aplica una entrada o salida directa sobre el saldo del mes y reconcilia el año del producto.
// @Tags         stocks
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.StockUpdateRequest  true  "key {period, product_id}, type, quantity"
// @Success      200   {object}  dto.StockResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/v1/stocks [post]
func (h *StockHandler) Update(c *fiber.Ctx) error {
	var in dto.StockUpdateRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	out, err := h.uc.UpdateStock(c.Context(), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}
