package http

import (
	"strconv"

	"github.com/Ey-luccas/luanova-sub000/internal/application/dto"
	"github.com/Ey-luccas/luanova-sub000/internal/application/inventory"
	"github.com/Ey-luccas/luanova-sub000/internal/domain"
	"github.com/Ey-luccas/luanova-sub000/internal/domain/entity"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// UnitHandler registro de unidades con código de barras (protegido).
type UnitHandler struct {
	uc  *inventory.UnitUseCase
	log zerolog.Logger
}

// NewUnitHandler construye el handler.
func NewUnitHandler(uc *inventory.UnitUseCase, log zerolog.Logger) *UnitHandler {
	return &UnitHandler{uc: uc, log: log}
}

// CreateUnits godoc
// @Summary      Crear unidades con código de barras (IN de la misma cantidad)
// @Tags         units
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "Product ID"
// @Param        body  body  dto.CreateUnitsRequest  true  "quantity"
// @Success      201   {array}   dto.UnitResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/products/{id}/units [post]
func (h *UnitHandler) CreateUnits(c *fiber.Ctx) error {
	userID, companyID, ok := requireIdentity(c)
	if !ok {
		return nil
	}
	var in dto.CreateUnitsRequest
	if !parseBody(c, &in) {
		return nil
	}
	units, err := h.uc.CreateUnits(c.UserContext(), inventory.CreateUnitsInput{
		CompanyID: companyID,
		UserID:    userID,
		ProductID: c.Params("id"),
		Quantity:  in.Quantity,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToUnitResponses(units))
}

// ListByProduct godoc
// @Summary      Unidades de un producto (por id)
// @Tags         units
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "Product ID"
// @Success      200  {array}   dto.UnitResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id}/units [get]
func (h *UnitHandler) ListByProduct(c *fiber.Ctx) error {
	_, companyID, ok := requireIdentity(c)
	if !ok {
		return nil
	}
	units, err := h.uc.GetUnitsByProduct(c.UserContext(), companyID, c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.ToUnitResponses(units))
}

// ListByDate godoc
// @Summary      Unidades creadas en un día
// @Tags         units
// @Security     Bearer
// @Produce      json
// @Param        date  query  string  true  "YYYY-MM-DD"
// @Success      200   {array}   dto.UnitResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/units [get]
func (h *UnitHandler) ListByDate(c *fiber.Ctx) error {
	_, companyID, ok := requireIdentity(c)
	if !ok {
		return nil
	}
	day, err := parseDay(c.Query("date"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	units, err := h.uc.GetUnitsByDate(c.UserContext(), companyID, day)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.ToUnitResponses(units))
}

// ListCreationDates godoc
// @Summary      Días con unidades creadas (más recientes primero)
// @Tags         units
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.UnitCreationDateResponse
// @Router       /api/units/dates [get]
func (h *UnitHandler) ListCreationDates(c *fiber.Ctx) error {
	_, companyID, ok := requireIdentity(c)
	if !ok {
		return nil
	}
	dates, err := h.uc.ListUnitCreationDates(c.UserContext(), companyID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	out := make([]dto.UnitCreationDateResponse, 0, len(dates))
	for _, d := range dates {
		out = append(out, dto.UnitCreationDateResponse{Date: d.Date.Format(dateLayout), Count: d.Count})
	}
	return c.JSON(out)
}

// Sell godoc
// @Summary      Vender una unidad suelta (OUT de 1)
// @Tags         units
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int                  true  "Unit ID"
// @Param        body  body  dto.SellUnitRequest  false "datos de la venta"
// @Success      200   {object}  dto.UnitResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/units/{id}/sell [post]
func (h *UnitHandler) Sell(c *fiber.Ctx) error {
	userID, companyID, ok := requireIdentity(c)
	if !ok {
		return nil
	}
	unitID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || unitID <= 0 {
		return writeError(c, h.log, domain.NewNotFound("unidad", c.Params("id")))
	}
	var in dto.SellUnitRequest
	if len(c.Body()) > 0 {
		if !parseBody(c, &in) {
			return nil
		}
	}
	unit, err := h.uc.MarkUnitSold(c.UserContext(), inventory.MarkUnitSoldInput{
		CompanyID: companyID,
		UserID:    userID,
		UnitID:    unitID,
		SaleID:    in.SaleID,
		Details: entity.UnitSaleDetails{
			SellerName:       in.SellerName,
			BuyerDescription: in.BuyerDescription,
			PaymentMethods:   in.PaymentMethods,
			SaleDescription:  in.SaleDescription,
		},
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.ToUnitResponses([]*entity.ProductUnit{unit})[0])
}
