package http

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/tienda-api/internal/application/dto"
	"github.com/jhoicas/tienda-api/internal/application/inventory"
	"github.com/jhoicas/tienda-api/internal/domain"
	"github.com/jhoicas/tienda-api/internal/domain/entity"
	"github.com/jhoicas/tienda-api/internal/domain/repository"
	"github.com/jhoicas/tienda-api/pkg/logger"
)

// InventoryHandler maneja las peticiones HTTP de ajustes, alertas y reportes de stock (personal).
type InventoryHandler struct {
	adjust   *inventory.AdjustStockUseCase
	bulk     *inventory.BulkAdjustUseCase
	alerts   *inventory.AlertUseCase
	settings *inventory.SettingsProvider
	queries  *inventory.QueryUseCase
	report   *inventory.StockReportUseCase
	validate *validator.Validate
	log      *logger.Logger
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(
	adjust *inventory.AdjustStockUseCase,
	bulk *inventory.BulkAdjustUseCase,
	alerts *inventory.AlertUseCase,
	settings *inventory.SettingsProvider,
	queries *inventory.QueryUseCase,
	report *inventory.StockReportUseCase,
	log *logger.Logger,
) *InventoryHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &InventoryHandler{
		adjust:   adjust,
		bulk:     bulk,
		alerts:   alerts,
		settings: settings,
		queries:  queries,
		report:   report,
		validate: newValidator(),
		log:      log.Component("inventory_http"),
	}
}

// AdjustStock godoc
// @Summary      Ajustar stock de un producto
// @Description  Aplica un delta con signo y lo registra en el libro. OUT/SALE se normalizan a negativo, IN/RETURN a positivo.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.AdjustStockRequest  true  "product_id, quantity, transaction_type, reason, notes"
// @Success      201   {object}  dto.StockTransactionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/adjustments [post]
func (h *InventoryHandler) AdjustStock(c *fiber.Ctx) error {
	var in dto.AdjustStockRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if err := h.validate.Struct(in); err != nil {
		return validationError(c, err)
	}
	t, err := h.adjust.AdjustStock(c.UserContext(), inventory.AdjustStockInput{
		ProductID: in.ProductID,
		Quantity:  in.Quantity,
		Kind:      in.TransactionType,
		Reason:    in.Reason,
		Notes:     in.Notes,
		UserID:    userIDPtr(c),
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromStockTransaction(t))
}

// QuickAdjust godoc
// @Summary      Ajuste rápido (sumar / restar)
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.QuickAdjustRequest  true  "action add|remove; reason por defecto MANUAL"
// @Success      201   {object}  dto.StockTransactionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/adjustments/quick [post]
func (h *InventoryHandler) QuickAdjust(c *fiber.Ctx) error {
	var in dto.QuickAdjustRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if err := h.validate.Struct(in); err != nil {
		return validationError(c, err)
	}
	reason := in.Reason
	if reason == "" {
		reason = entity.ReasonMANUAL
	}
	t, err := h.adjust.QuickAdjust(c.UserContext(), in.ProductID, in.Action, in.Quantity, reason, in.Notes, userIDPtr(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromStockTransaction(t))
}

// BulkAdjust godoc
// @Summary      Ajuste masivo (JSON)
// @Description  Cada fila se aplica por separado; los errores se devuelven por fila sin detener el lote.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.BulkAdjustRequest  true  "filas por product_slug"
// @Success      200   {object}  inventory.BulkResult
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/inventory/bulk [post]
func (h *InventoryHandler) BulkAdjust(c *fiber.Ctx) error {
	var in dto.BulkAdjustRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if err := h.validate.Struct(in); err != nil {
		return validationError(c, err)
	}
	return c.JSON(h.bulkResult(c, in.ToBulkRows()))
}

// BulkAdjustCSV godoc
// @Summary      Ajuste masivo (CSV)
// @Description  Columnas: product_slug, quantity, transaction_type, reason, notes (opcional).
// @Tags         inventory
// @Security     Bearer
// @Accept       multipart/form-data
// @Produce      json
// @Param        file     formData  file    true   "archivo CSV"
// @Param        charset  formData  string  false  "utf-8 (defecto), latin1, windows-1252"
// @Success      200      {object}  inventory.BulkResult
// @Failure      400      {object}  dto.ErrorResponse
// @Router       /api/inventory/bulk/csv [post]
func (h *InventoryHandler) BulkAdjustCSV(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_FILE", Message: "campo file requerido"})
	}
	f, err := fh.Open()
	if err != nil {
		return writeError(c, h.log, err)
	}
	defer f.Close()

	rows, err := inventory.ParseBulkCSV(f, c.FormValue("charset"))
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return writeError(c, h.log, err)
		}
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_CSV", Message: err.Error()})
	}
	return c.JSON(h.bulkResult(c, rows))
}

func (h *InventoryHandler) bulkResult(c *fiber.Ctx, rows []inventory.BulkRow) inventory.BulkResult {
	return h.bulk.BulkAdjust(c.UserContext(), rows, userIDPtr(c))
}

// ListTransactions godoc
// @Summary      Libro de stock
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id        query  string  false  "producto"
// @Param        transaction_type  query  string  false  "IN, OUT, ADJUSTMENT, SALE, RETURN"
// @Param        reason            query  string  false  "motivo"
// @Param        date_from         query  string  false  "YYYY-MM-DD o RFC3339"
// @Param        date_to           query  string  false  "YYYY-MM-DD (inclusive) o RFC3339"
// @Param        limit             query  int     false  "tamaño de página"
// @Param        offset            query  int     false  "desplazamiento"
// @Success      200  {object}  dto.TransactionListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/transactions [get]
func (h *InventoryHandler) ListTransactions(c *fiber.Ctx) error {
	pg, err := h.pageParams(c, inventory.DefaultTransactionsPageSize)
	if err != nil {
		return validationError(c, err)
	}
	from, err := parseDateParam(c.Query("date_from"), false)
	if err != nil {
		return writeError(c, h.log, domain.Invalid("date_from", "formato inválido"))
	}
	to, err := parseDateParam(c.Query("date_to"), true)
	if err != nil {
		return writeError(c, h.log, domain.Invalid("date_to", "formato inválido"))
	}
	page, err := h.queries.ListTransactions(c.UserContext(), repository.TransactionFilter{
		ProductID: c.Query("product_id"),
		Kind:      strings.ToUpper(c.Query("transaction_type")),
		Reason:    strings.ToUpper(c.Query("reason")),
		From:      from,
		To:        to,
		Limit:     pg.Limit,
		Offset:    pg.Offset,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.TransactionListResponse{
		Items: dto.FromStockTransactions(page.Items),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: page.Total},
	})
}

// StockHistory godoc
// @Summary      Historial de stock de un producto
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id    path   string  true   "producto"
// @Param        days  query  int     false  "ventana en días (defecto 30)"
// @Success      200  {array}   dto.StockTransactionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/products/{id}/history [get]
func (h *InventoryHandler) StockHistory(c *fiber.Ctx) error {
	days := c.QueryInt("days", inventory.DefaultHistoryDays)
	if days <= 0 || days > 3650 {
		return writeError(c, h.log, domain.Invalid("days", "debe estar entre 1 y 3650"))
	}
	items, err := h.queries.StockHistory(c.UserContext(), c.Params("id"), days)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.FromStockTransactions(items))
}

// ListAlerts godoc
// @Summary      Alertas de stock
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        is_active   query  bool    false  "solo activas / inactivas"
// @Param        alert_type  query  string  false  "LOW_STOCK, OUT_OF_STOCK, NEGATIVE_STOCK"
// @Param        product_id  query  string  false  "producto"
// @Param        limit       query  int     false  "tamaño de página"
// @Param        offset      query  int     false  "desplazamiento"
// @Success      200  {object}  dto.AlertListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/alerts [get]
func (h *InventoryHandler) ListAlerts(c *fiber.Ctx) error {
	pg, err := h.pageParams(c, inventory.DefaultAlertsPageSize)
	if err != nil {
		return validationError(c, err)
	}
	f := repository.AlertFilter{
		Kind:      strings.ToUpper(c.Query("alert_type")),
		ProductID: c.Query("product_id"),
		Limit:     pg.Limit,
		Offset:    pg.Offset,
	}
	if raw := c.Query("is_active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			return writeError(c, h.log, domain.Invalid("is_active", "debe ser true o false"))
		}
		f.Active = &active
	}
	page, err := h.queries.ListAlerts(c.UserContext(), f)
	if err != nil {
		return writeError(c, h.log, err)
	}
	items := make([]dto.StockAlertResponse, 0, len(page.Items))
	for _, a := range page.Items {
		items = append(items, dto.FromStockAlert(a))
	}
	return c.JSON(dto.AlertListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: page.Total},
	})
}

// ResolveAlert godoc
// @Summary      Resolver alerta
// @Description  Resolver una alerta ya inactiva no cambia nada.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "alerta"
// @Success      200  {object}  dto.StockAlertResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/alerts/{id}/resolve [post]
func (h *InventoryHandler) ResolveAlert(c *fiber.Ctx) error {
	alert, err := h.alerts.Resolve(c.UserContext(), c.Params("id"), userIDPtr(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.FromStockAlert(alert))
}

// GetSettings godoc
// @Summary      Configuración de inventario
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.StockSettingsResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/inventory/settings [get]
func (h *InventoryHandler) GetSettings(c *fiber.Ctx) error {
	s, err := h.settings.Get(c.UserContext())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.FromStockSettings(s))
}

// UpdateSettings godoc
// @Summary      Actualizar configuración de inventario
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.UpdateStockSettingsRequest  true  "campos a cambiar"
// @Success      200   {object}  dto.StockSettingsResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/inventory/settings [put]
func (h *InventoryHandler) UpdateSettings(c *fiber.Ctx) error {
	var in dto.UpdateStockSettingsRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if err := h.validate.Struct(in); err != nil {
		return validationError(c, err)
	}
	s, err := h.settings.Update(c.UserContext(), in.ToPatch())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.FromStockSettings(s))
}

// Summary godoc
// @Summary      Resumen de inventario
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  inventory.InventorySummary
// @Router       /api/inventory/summary [get]
func (h *InventoryHandler) Summary(c *fiber.Ctx) error {
	s, err := h.queries.Summary(c.UserContext())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(s)
}

// LowStock godoc
// @Summary      Productos con stock bajo
// @Description  Stock por debajo del umbral configurado (incluye agotados y negativos).
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.ProductStockResponse
// @Router       /api/inventory/low-stock [get]
func (h *InventoryHandler) LowStock(c *fiber.Ctx) error {
	s, err := h.settings.Get(c.UserContext())
	if err != nil {
		return writeError(c, h.log, err)
	}
	ps, err := h.queries.LowStockProducts(c.UserContext())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.FromProducts(ps, s.LowStockThreshold))
}

// OutOfStock godoc
// @Summary      Productos agotados
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.ProductStockResponse
// @Router       /api/inventory/out-of-stock [get]
func (h *InventoryHandler) OutOfStock(c *fiber.Ctx) error {
	s, err := h.settings.Get(c.UserContext())
	if err != nil {
		return writeError(c, h.log, err)
	}
	ps, err := h.queries.OutOfStockProducts(c.UserContext())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.FromProducts(ps, s.LowStockThreshold))
}

// StockReport godoc
// @Summary      Reporte de niveles de stock
// @Description  format=json devuelve una página; csv, pdf y xml descargan el reporte completo.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Produce      text/csv
// @Produce      application/pdf
// @Produce      application/xml
// @Param        format        query  string  false  "json (defecto), csv, pdf, xml"
// @Param        category      query  string  false  "slug de categoría"
// @Param        stock_status  query  string  false  "low, out, negative"
// @Param        threshold     query  int     false  "umbral (defecto: configurado)"
// @Param        limit         query  int     false  "tamaño de página (solo json)"
// @Param        offset        query  int     false  "desplazamiento (solo json)"
// @Success      200  {object}  inventory.StockReport
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/report [get]
func (h *InventoryHandler) StockReport(c *fiber.Ctx) error {
	f := inventory.StockReportFilter{
		CategorySlug: c.Query("category"),
		Status:       c.Query("stock_status"),
	}
	if raw := c.Query("threshold"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return writeError(c, h.log, domain.Invalid("threshold", "debe ser entero"))
		}
		f.Threshold = &n
	}

	format := strings.ToLower(c.Query("format", "json"))
	if format == "json" {
		pg, err := h.pageParams(c, inventory.DefaultReportPageSize)
		if err != nil {
			return validationError(c, err)
		}
		f.Limit, f.Offset = pg.Limit, pg.Offset
		rep, err := h.report.Build(c.UserContext(), f)
		if err != nil {
			return writeError(c, h.log, err)
		}
		return c.JSON(rep)
	}

	out, err := h.report.Export(c.UserContext(), f, format)
	if err != nil {
		return writeError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, out.ContentType)
	c.Attachment(out.Filename)
	return c.Send(out.Content)
}

func (h *InventoryHandler) pageParams(c *fiber.Ctx, def int) (dto.PageRequest, error) {
	var pg dto.PageRequest
	if err := c.QueryParser(&pg); err != nil {
		return pg, domain.Invalid("limit", "debe ser entero")
	}
	pg.DefaultPage(def)
	return pg, h.validate.Struct(pg)
}

// parseDateParam acepta YYYY-MM-DD o RFC3339. Con endOfDay, una fecha sola cubre el día completo.
func parseDateParam(s string, endOfDay bool) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}
