package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/pos-stock-api/internal/application/dto"
	"github.com/jhoicas/pos-stock-api/internal/application/inventory"
)

// InventoryHandler ajustes manuales y consulta del libro de movimientos.
type InventoryHandler struct {
	ledger    *inventory.Ledger
	movements *inventory.MovementsUseCase
	log       zerolog.Logger
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(ledger *inventory.Ledger, movements *inventory.MovementsUseCase, log zerolog.Logger) *InventoryHandler {
	return &InventoryHandler{ledger: ledger, movements: movements, log: log}
}

// Adjust godoc
// @Summary      Ajuste manual de stock
// @Description  quantity con signo: positivo suma, negativo resta. Rechaza dejar el stock negativo.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustStockRequest  true  "Ajuste"
// @Success      200   {object}  dto.ProductResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/adjustments [post]
func (h *InventoryHandler) Adjust(c *fiber.Ctx) error {
	var in dto.AdjustStockRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if in.ShopID == "" {
		in.ShopID = GetShopID(c)
	}
	out, err := h.ledger.AdjustStockFromRequest(c.UserContext(), GetUserID(c), GetOwnerID(c), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// ListMovements godoc
// @Summary      Consultar movimientos de stock
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id  query  string  false  "Producto"
// @Param        shop_id     query  string  false  "Tienda"
// @Param        type        query  string  false  "in | out | adjustment"
// @Param        reference   query  string  false  "Número de venta u orden"
// @Param        limit       query  int     false  "Límite"  default(100)
// @Success      200  {object}  dto.MovementListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	var q dto.MovementQuery
	if err := c.QueryParser(&q); err != nil {
		return badRequest(c, "INVALID_QUERY", "parámetros inválidos", "invalid query parameters")
	}
	out, err := h.movements.List(c.UserContext(), GetOwnerID(c), q)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}
