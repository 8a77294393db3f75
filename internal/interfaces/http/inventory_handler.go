package http

import (
	"github.com/Ey-luccas/luanova-sub000/internal/application/dto"
	"github.com/Ey-luccas/luanova-sub000/internal/application/inventory"
	"github.com/Ey-luccas/luanova-sub000/internal/domain/repository"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// InventoryHandler maneja las peticiones HTTP del ledger de stock (protegido).
type InventoryHandler struct {
	uc  *inventory.MovementUseCase
	log zerolog.Logger
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *inventory.MovementUseCase, log zerolog.Logger) *InventoryHandler {
	return &InventoryHandler{uc: uc, log: log}
}

// RegisterMovement godoc
// @Summary      Registrar movimiento de inventario
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterMovementRequest  true  "product_id, type (IN|OUT), quantity, reason, unit_cost (entradas)"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.InsufficientStockResponse
// @Router       /api/inventory/movements [post]
func (h *InventoryHandler) RegisterMovement(c *fiber.Ctx) error {
	userID, companyID, ok := requireIdentity(c)
	if !ok {
		return nil
	}
	var in dto.RegisterMovementRequest
	if !parseBody(c, &in) {
		return nil
	}
	mov, err := h.uc.RecordMovement(c.UserContext(), inventory.MovementInputDTO{
		CompanyID: companyID,
		UserID:    userID,
		ProductID: in.ProductID,
		Type:      in.Type,
		Quantity:  in.Quantity,
		Reason:    in.Reason,
		UnitCost:  in.UnitCost,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToMovementResponse(mov))
}

// CreateBatch godoc
// @Summary      Registrar lote de movimientos (todo o nada)
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.BatchMovementRequest  true  "movements"
// @Success      201   {array}   dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.InsufficientStockResponse
// @Router       /api/inventory/movements/batch [post]
func (h *InventoryHandler) CreateBatch(c *fiber.Ctx) error {
	userID, companyID, ok := requireIdentity(c)
	if !ok {
		return nil
	}
	var in dto.BatchMovementRequest
	if !parseBody(c, &in) {
		return nil
	}
	items := make([]inventory.BatchItemDTO, 0, len(in.Movements))
	for _, m := range in.Movements {
		items = append(items, inventory.BatchItemDTO{
			ProductID: m.ProductID,
			Type:      m.Type,
			Quantity:  m.Quantity,
			Reason:    m.Reason,
			UnitCost:  m.UnitCost,
		})
	}
	movements, err := h.uc.CreateBatch(c.UserContext(), companyID, userID, items)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToMovementResponses(movements))
}

// ListMovements godoc
// @Summary      Listar movimientos (más recientes primero)
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id  query  string  false  "Producto"
// @Param        type        query  string  false  "IN | OUT"
// @Param        from        query  string  false  "YYYY-MM-DD"
// @Param        to          query  string  false  "YYYY-MM-DD (inclusive)"
// @Param        limit       query  int     false  "default 20, máx 100"
// @Param        offset      query  int     false  "offset"
// @Success      200  {object}  dto.MovementListResponse
// @Router       /api/inventory/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	_, companyID, ok := requireIdentity(c)
	if !ok {
		return nil
	}
	var q dto.MovementListRequest
	if err := c.QueryParser(&q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	if !validate(c, &q) {
		return nil
	}
	from, to, err := parseRange(q.From, q.To)
	if err != nil {
		return writeError(c, h.log, err)
	}
	q.DefaultPage()
	list, total, err := h.uc.ListMovements(c.UserContext(), repository.MovementFilter{
		CompanyID: companyID,
		ProductID: q.ProductID,
		Type:      q.Type,
		From:      from,
		To:        to,
		Limit:     q.Limit,
		Offset:    q.Offset,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.MovementListResponse{
		Items: dto.ToMovementResponses(list),
		Page:  q.PageOf(total),
	})
}
