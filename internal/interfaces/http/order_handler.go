package http

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/tienda-api/internal/application/dto"
	"github.com/jhoicas/tienda-api/internal/application/inventory"
	"github.com/jhoicas/tienda-api/pkg/logger"
)

// OrderHandler recibe los pedidos completados del checkout.
type OrderHandler struct {
	uc       *inventory.OrderCompletionUseCase
	validate *validator.Validate
	log      *logger.Logger
}

// NewOrderHandler construye el handler.
func NewOrderHandler(uc *inventory.OrderCompletionUseCase, log *logger.Logger) *OrderHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &OrderHandler{uc: uc, validate: newValidator(), log: log.Component("orders_http")}
}

// OrderCompleted godoc
// @Summary      Descontar stock de un pedido completado
// @Description  Cada línea genera una transacción SALE. Una línea fallida no afecta a las demás;
//
//	las fallas se devuelven en failures. Con auto_adjust_on_sale desactivado responde skipped=true.
//
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.OrderCompletedRequest  true  "pedido y líneas"
// @Success      200   {object}  dto.OrderCompletedResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/orders/completed [post]
func (h *OrderHandler) OrderCompleted(c *fiber.Ctx) error {
	var in dto.OrderCompletedRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if err := h.validate.Struct(in); err != nil {
		return validationError(c, err)
	}
	res, err := h.uc.OnOrderCompleted(c.UserContext(), in.ToOrder())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.FromOrderResult(res))
}
