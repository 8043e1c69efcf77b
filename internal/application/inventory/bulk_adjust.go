package inventory

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/tienda-api/internal/domain"
	"github.com/jhoicas/tienda-api/internal/domain/entity"
	"github.com/jhoicas/tienda-api/internal/domain/repository"
	"github.com/jhoicas/tienda-api/pkg/logger"
)

// BulkRow fila de un ajuste masivo. ParseErr se llena cuando la fila no se pudo interpretar
// (se reporta como error de esa fila sin detener el lote).
type BulkRow struct {
	Row         int
	ProductSlug string
	Quantity    int
	Kind        string
	Reason      string
	Notes       string
	ParseErr    error
}

// BulkError error de una fila.
type BulkError struct {
	Row        int    `json:"row"`
	ProductKey string `json:"product_slug"`
	Message    string `json:"message"`
}

// BulkResult resultado del lote.
type BulkResult struct {
	SuccessCount int         `json:"success_count"`
	Errors       []BulkError `json:"errors"`
}

// BulkAdjustUseCase ajuste masivo: cada fila se procesa en su propia unidad atómica.
type BulkAdjustUseCase struct {
	adjust      *AdjustStockUseCase
	productRepo repository.ProductRepository
	log         *logger.Logger
}

// NewBulkAdjustUseCase construye el caso de uso.
func NewBulkAdjustUseCase(adjust *AdjustStockUseCase, productRepo repository.ProductRepository, log *logger.Logger) *BulkAdjustUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &BulkAdjustUseCase{adjust: adjust, productRepo: productRepo, log: log.Component("bulk_adjust")}
}

// BulkAdjust aplica las filas de forma independiente y acumula los errores por fila.
func (uc *BulkAdjustUseCase) BulkAdjust(ctx context.Context, rows []BulkRow, userID *string) BulkResult {
	res := BulkResult{Errors: []BulkError{}}
	for i, row := range rows {
		if row.Row == 0 {
			row.Row = i + 1
		}
		if err := uc.applyRow(ctx, row, userID); err != nil {
			uc.log.Warn().Err(err).Int("row", row.Row).Str("product_slug", row.ProductSlug).Msg("fila de ajuste masivo rechazada")
			res.Errors = append(res.Errors, BulkError{
				Row:        row.Row,
				ProductKey: row.ProductSlug,
				Message:    fmt.Sprintf("Fila %d: %s", row.Row, err.Error()),
			})
			continue
		}
		res.SuccessCount++
	}
	uc.log.Info().Int("success", res.SuccessCount).Int("errors", len(res.Errors)).Msg("ajuste masivo procesado")
	return res
}

func (uc *BulkAdjustUseCase) applyRow(ctx context.Context, row BulkRow, userID *string) error {
	if row.ParseErr != nil {
		return row.ParseErr
	}
	slug := strings.TrimSpace(row.ProductSlug)
	if slug == "" {
		return domain.Invalid("product_slug", "requerido")
	}
	product, err := uc.productRepo.GetBySlug(ctx, slug)
	if err != nil {
		return err
	}
	if product == nil {
		return fmt.Errorf("producto con slug %q no encontrado: %w", slug, domain.ErrNotFound)
	}
	kind := strings.ToUpper(strings.TrimSpace(row.Kind))
	if kind == "" {
		kind = entity.TransactionKindADJUSTMENT
	}
	reason := strings.ToUpper(strings.TrimSpace(row.Reason))
	if reason == "" {
		reason = entity.ReasonMANUAL
	}
	_, err = uc.adjust.AdjustStock(ctx, AdjustStockInput{
		ProductID: product.ID,
		Quantity:  row.Quantity,
		Kind:      kind,
		Reason:    reason,
		Notes:     row.Notes,
		UserID:    userID,
	})
	return err
}

// Columnas del CSV de ajuste masivo.
const (
	colProductSlug = "product_slug"
	colQuantity    = "quantity"
	colKind        = "transaction_type"
	colReason      = "reason"
	colNotes       = "notes"
)

// ErrBulkCSVHeader el archivo no trae las columnas obligatorias.
var ErrBulkCSVHeader = errors.New("el CSV debe incluir las columnas product_slug, quantity, transaction_type y reason")

// ParseBulkCSV lee el CSV de ajuste masivo. La cabecera es la fila 1, los datos empiezan en la 2.
// charset admite utf-8 (por defecto), latin1/iso-8859-1 y windows-1252 (exportaciones de Excel).
func ParseBulkCSV(r io.Reader, charset string) ([]BulkRow, error) {
	switch strings.ToLower(strings.TrimSpace(charset)) {
	case "", "utf-8", "utf8":
	case "latin1", "iso-8859-1", "iso8859-1":
		r = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	case "windows-1252", "cp1252":
		r = transform.NewReader(r, charmap.Windows1252.NewDecoder())
	default:
		return nil, domain.Invalid("charset", "no soportado: "+charset)
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrBulkCSVHeader
		}
		return nil, fmt.Errorf("leer cabecera CSV: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, col := range []string{colProductSlug, colQuantity, colKind, colReason} {
		if _, ok := idx[col]; !ok {
			return nil, ErrBulkCSVHeader
		}
	}

	// Row es la línea física donde empieza el registro: un campo entre comillas puede ocupar varias.
	var rows []BulkRow
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if !errors.As(err, &perr) {
				return nil, fmt.Errorf("leer CSV: %w", err)
			}
			rows = append(rows, BulkRow{Row: perr.StartLine, ParseErr: fmt.Errorf("CSV mal formado: %w", err)})
			continue
		}
		line, _ := reader.FieldPos(0)
		get := func(col string) string {
			i, ok := idx[col]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}
		row := BulkRow{
			Row:         line,
			ProductSlug: get(colProductSlug),
			Kind:        get(colKind),
			Reason:      get(colReason),
			Notes:       get(colNotes),
		}
		qty, err := strconv.Atoi(get(colQuantity))
		if err != nil {
			row.ParseErr = domain.Invalid("quantity", fmt.Sprintf("%q no es un entero", get(colQuantity)))
		}
		row.Quantity = qty
		rows = append(rows, row)
	}
	return rows, nil
}
