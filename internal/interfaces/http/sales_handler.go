package http

import (
	"github.com/Ey-luccas/luanova-sub000/internal/application/dto"
	"github.com/Ey-luccas/luanova-sub000/internal/application/sales"
	"github.com/Ey-luccas/luanova-sub000/internal/domain/entity"
	"github.com/Ey-luccas/luanova-sub000/internal/domain/repository"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// SalesHandler ventas, devoluciones, reembolsos y cambios (protegido).
type SalesHandler struct {
	uc  *sales.SalesUseCase
	log zerolog.Logger
}

// NewSalesHandler construye el handler.
func NewSalesHandler(uc *sales.SalesUseCase, log zerolog.Logger) *SalesHandler {
	return &SalesHandler{uc: uc, log: log}
}

func toCustomer(c dto.CustomerDTO) entity.Customer {
	return entity.Customer{Name: c.Name, Document: c.Document, Phone: c.Phone, Email: c.Email}
}

// CreateSale godoc
// @Summary      Registrar venta (SALE) o servicio (SERVICE)
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateSaleRequest  true  "product_id, type, quantity, customer"
// @Success      201   {object}  dto.SaleResultResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.InsufficientStockResponse
// @Router       /api/sales [post]
func (h *SalesHandler) CreateSale(c *fiber.Ctx) error {
	userID, companyID, ok := requireIdentity(c)
	if !ok {
		return nil
	}
	var in dto.CreateSaleRequest
	if !parseBody(c, &in) {
		return nil
	}
	res, err := h.uc.CreateSale(c.UserContext(), sales.CreateSaleInput{
		CompanyID:     companyID,
		UserID:        userID,
		ProductID:     in.ProductID,
		Type:          in.Type,
		Quantity:      in.Quantity,
		Customer:      toCustomer(in.Customer),
		PaymentMethod: in.PaymentMethod,
		SellerName:    in.SellerName,
		Observations:  in.Observations,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SaleResultResponse{
		Sale:  dto.ToSaleResponse(res.Sale),
		Units: dto.ToUnitResponses(res.Units),
	})
}

// CreateReturn godoc
// @Summary      Devolución, reembolso o cambio contra una venta original
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateReturnRequest  true  "sale_id, type (RETURN|REFUND|EXCHANGE), ..."
// @Success      201   {object}  dto.ReturnResultResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.InsufficientStockResponse
// @Router       /api/sales/returns [post]
func (h *SalesHandler) CreateReturn(c *fiber.Ctx) error {
	userID, companyID, ok := requireIdentity(c)
	if !ok {
		return nil
	}
	var in dto.CreateReturnRequest
	if !parseBody(c, &in) {
		return nil
	}
	res, err := h.uc.CreateReturn(c.UserContext(), sales.CreateReturnInput{
		CompanyID:         companyID,
		UserID:            userID,
		OriginalSaleID:    in.SaleID,
		Type:              in.Type,
		Quantity:          in.Quantity,
		ReturnAction:      in.ReturnAction,
		RefundAmount:      in.RefundAmount,
		ExchangeProductID: in.ExchangeProductID,
		ExchangeQuantity:  in.ExchangeQuantity,
		AdditionalPayment: in.AdditionalPayment,
		PaymentMethod:     in.PaymentMethod,
		SellerName:        in.SellerName,
		Observations:      in.Observations,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ReturnResultResponse{
		Sale:           dto.ToSaleResponse(res.Sale),
		ReturnedUnits:  dto.ToUnitResponses(res.ReturnedUnits),
		ExchangeSale:   dto.ToSaleResponsePtr(res.ExchangeSale),
		ExchangeUnits:  dto.ToUnitResponses(res.ExchangeUnits),
		SettlementSale: dto.ToSaleResponsePtr(res.SettlementSale),
		Settlement:     dto.ToSettlementResponse(res.Settlement),
	})
}

// ListSales godoc
// @Summary      Listar transacciones de venta (más recientes primero)
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        product_id  query  string  false  "Producto"
// @Param        type        query  string  false  "SALE | SERVICE | RETURN | REFUND | EXCHANGE"
// @Param        from        query  string  false  "YYYY-MM-DD"
// @Param        to          query  string  false  "YYYY-MM-DD (inclusive)"
// @Param        limit       query  int     false  "default 20, máx 100"
// @Param        offset      query  int     false  "offset"
// @Success      200  {object}  dto.SaleListResponse
// @Router       /api/sales [get]
func (h *SalesHandler) ListSales(c *fiber.Ctx) error {
	_, companyID, ok := requireIdentity(c)
	if !ok {
		return nil
	}
	var q dto.SaleListRequest
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
	list, total, err := h.uc.ListSales(c.UserContext(), repository.SaleFilter{
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
	return c.JSON(dto.SaleListResponse{
		Items: dto.ToSaleResponses(list),
		Page:  q.PageOf(total),
	})
}

// FindByCustomer godoc
// @Summary      Buscar ventas originales por cliente (para iniciar devoluciones)
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        name      query  string  false  "Nombre (parcial)"
// @Param        document  query  string  false  "Documento (parcial)"
// @Param        phone     query  string  false  "Teléfono (parcial)"
// @Param        email     query  string  false  "Email (parcial)"
// @Param        limit     query  int     false  "máx 50"
// @Success      200  {array}   dto.SaleResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/sales/customers [get]
func (h *SalesHandler) FindByCustomer(c *fiber.Ctx) error {
	_, companyID, ok := requireIdentity(c)
	if !ok {
		return nil
	}
	var q dto.CustomerSearchRequest
	if err := c.QueryParser(&q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	if !validate(c, &q) {
		return nil
	}
	list, err := h.uc.FindSalesByCustomer(c.UserContext(), repository.CustomerCriteria{
		CompanyID: companyID,
		Name:      q.Name,
		Document:  q.Document,
		Phone:     q.Phone,
		Email:     q.Email,
		Limit:     q.Limit,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.ToSaleResponses(list))
}
