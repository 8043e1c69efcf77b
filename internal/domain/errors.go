package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrInsufficientStock  = errors.New("stock insuficiente")
	ErrMultipleSingletons = errors.New("solo puede existir una configuración de stock")
)

// InsufficientStockError detalla un ajuste rechazado por la política de stock negativo.
// El mensaje se muestra tal cual al usuario.
type InsufficientStockError struct {
	ProductID string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente. Disponible: %d, solicitado: %d", e.Available, e.Requested)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// InvalidInputError indica qué campo de la entrada es inválido.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("entrada inválida: %s %s", e.Field, e.Reason)
}

func (e *InvalidInputError) Unwrap() error { return ErrInvalidInput }

// Invalid construye un InvalidInputError.
func Invalid(field, reason string) error {
	return &InvalidInputError{Field: field, Reason: reason}
}
