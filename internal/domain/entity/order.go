package entity

// Order pedido completado por el checkout. Lo entrega el flujo de pago; el inventario no lo persiste.
type Order struct {
	ID     string
	UserID *string
	Items  []OrderItem
}

// OrderItem línea de pedido.
type OrderItem struct {
	ID           string
	ProductID    string
	ProductTitle string
	Quantity     int
}
