package inventory_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/jhoicas/tienda-api/internal/application/inventory"
	"github.com/jhoicas/tienda-api/internal/domain"
)

func TestBulkAdjust_FilasIndependientes(t *testing.T) {
	env := newTestEnv(t)
	env.product("p1", "camiseta", 10)
	env.product("p3", "gorra", 5)

	res := env.bulk.BulkAdjust(context.Background(), []inventory.BulkRow{
		{ProductSlug: "camiseta", Quantity: 5, Kind: "in", Reason: "purchase"},
		{ProductSlug: "no-existe", Quantity: 1, Kind: "IN", Reason: "PURCHASE"},
		{ProductSlug: "gorra", Quantity: -2, Kind: "ADJUSTMENT", Reason: "CORRECTION"},
	}, strPtr("u1"))

	assert.Equal(t, 2, res.SuccessCount)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, 2, res.Errors[0].Row)
	assert.Equal(t, "no-existe", res.Errors[0].ProductKey)
	assert.True(t, strings.HasPrefix(res.Errors[0].Message, "Fila 2: "), res.Errors[0].Message)

	assert.Equal(t, 15, env.stock(t, "p1"))
	assert.Equal(t, 3, env.stock(t, "p3"))
}

func TestBulkAdjust_ValoresPorDefectoYStockInsuficiente(t *testing.T) {
	env := newTestEnv(t)
	env.product("p1", "camiseta", 2)

	res := env.bulk.BulkAdjust(context.Background(), []inventory.BulkRow{
		{Row: 2, ProductSlug: "camiseta", Quantity: 3},
		{Row: 3, ProductSlug: "camiseta", Quantity: -10},
	}, nil)

	assert.Equal(t, 1, res.SuccessCount, "ADJUSTMENT/MANUAL por defecto")
	require.Len(t, res.Errors, 1)
	assert.Equal(t, 3, res.Errors[0].Row)
	assert.Contains(t, res.Errors[0].Message, "stock insuficiente")
	assert.Equal(t, 5, env.stock(t, "p1"))
}

func TestParseBulkCSV_UTF8(t *testing.T) {
	in := "\ufeffproduct_slug,quantity,transaction_type,reason,notes\n" +
		"camiseta,5,IN,PURCHASE,compra semanal\n" +
		"gorra,abc,OUT,DAMAGED,\n" +
		"bufanda,-1,ADJUSTMENT,CORRECTION\n"

	rows, err := inventory.ParseBulkCSV(strings.NewReader(in), "")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, 2, rows[0].Row)
	assert.Equal(t, "camiseta", rows[0].ProductSlug)
	assert.Equal(t, 5, rows[0].Quantity)
	assert.Equal(t, "compra semanal", rows[0].Notes)
	assert.NoError(t, rows[0].ParseErr)

	assert.Equal(t, 3, rows[1].Row)
	assert.ErrorIs(t, rows[1].ParseErr, domain.ErrInvalidInput)

	assert.Equal(t, -1, rows[2].Quantity)
	assert.Empty(t, rows[2].Notes)
}

func TestParseBulkCSV_Latin1(t *testing.T) {
	utf8 := "product_slug,quantity,transaction_type,reason,notes\ncamiseta,2,IN,PURCHASE,reposición de año\n"
	encoded, err := charmap.ISO8859_1.NewEncoder().String(utf8)
	require.NoError(t, err)

	rows, err := inventory.ParseBulkCSV(bytes.NewBufferString(encoded), "latin1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "reposición de año", rows[0].Notes)
}

func TestParseBulkCSV_CabeceraIncompleta(t *testing.T) {
	_, err := inventory.ParseBulkCSV(strings.NewReader("slug,qty\ncamiseta,1\n"), "utf-8")
	assert.ErrorIs(t, err, inventory.ErrBulkCSVHeader)

	_, err = inventory.ParseBulkCSV(strings.NewReader(""), "utf-8")
	assert.ErrorIs(t, err, inventory.ErrBulkCSVHeader)

	_, err = inventory.ParseBulkCSV(strings.NewReader("product_slug\n"), "ebcdic")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestParseBulkCSV_ParseErrSeReportaPorFila(t *testing.T) {
	env := newTestEnv(t)
	env.product("p1", "camiseta", 10)

	rows, err := inventory.ParseBulkCSV(strings.NewReader(
		"product_slug,quantity,transaction_type,reason\ncamiseta,x,IN,PURCHASE\ncamiseta,1,IN,PURCHASE\n"), "")
	require.NoError(t, err)

	res := env.bulk.BulkAdjust(context.Background(), rows, nil)
	assert.Equal(t, 1, res.SuccessCount)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, 2, res.Errors[0].Row)
	assert.Equal(t, 11, env.stock(t, "p1"))
}

func TestParseBulkCSV_NotasMultilineaNoCorrenLasFilas(t *testing.T) {
	in := "product_slug,quantity,transaction_type,reason,notes\n" +
		"camiseta,1,IN,PURCHASE,\"primera línea\nsegunda línea\"\n" +
		"gorra,x,OUT,DAMAGED,\n" +
		"bufanda,2,IN,PURCHASE,\n"

	rows, err := inventory.ParseBulkCSV(strings.NewReader(in), "")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, 2, rows[0].Row)
	assert.Equal(t, "primera línea\nsegunda línea", rows[0].Notes)
	assert.Equal(t, 4, rows[1].Row)
	assert.Error(t, rows[1].ParseErr)
	assert.Equal(t, 5, rows[2].Row)
}

func TestParseBulkCSV_ErrorDeLecturaCorta(t *testing.T) {
	failing := errors.New("conexión cortada")
	r := io.MultiReader(
		strings.NewReader("product_slug,quantity,transaction_type,reason\ncamiseta,1,IN,PURCHASE\n"),
		iotest.ErrReader(failing),
	)
	rows, err := inventory.ParseBulkCSV(r, "")
	assert.ErrorIs(t, err, failing)
	assert.Nil(t, rows)
}
