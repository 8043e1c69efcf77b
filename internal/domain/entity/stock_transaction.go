package entity

import "time"

// Tipos de transacción de stock.
const (
	TransactionKindIN         = "IN"
	TransactionKindOUT        = "OUT"
	TransactionKindADJUSTMENT = "ADJUSTMENT"
	TransactionKindSALE       = "SALE"
	TransactionKindRETURN     = "RETURN"
)

// Motivos de transacción de stock.
const (
	ReasonPURCHASE   = "PURCHASE"
	ReasonSALE       = "SALE"
	ReasonDAMAGED    = "DAMAGED"
	ReasonEXPIRED    = "EXPIRED"
	ReasonMANUAL     = "MANUAL"
	ReasonRETURN     = "RETURN"
	ReasonINITIAL    = "INITIAL"
	ReasonCORRECTION = "CORRECTION"
)

// TransactionKinds lista los tipos válidos en orden de presentación.
var TransactionKinds = []string{
	TransactionKindIN, TransactionKindOUT, TransactionKindADJUSTMENT, TransactionKindSALE, TransactionKindRETURN,
}

// TransactionReasons lista los motivos válidos en orden de presentación.
var TransactionReasons = []string{
	ReasonPURCHASE, ReasonSALE, ReasonDAMAGED, ReasonEXPIRED, ReasonMANUAL, ReasonRETURN, ReasonINITIAL, ReasonCORRECTION,
}

// StockTransaction es una entrada inmutable del libro de stock.
// NewStock = PreviousStock + Quantity se fija al escribir y nunca se recalcula.
type StockTransaction struct {
	ID            string
	ProductID     string
	Kind          string
	Quantity      int // OUT/SALE <= 0, IN/RETURN >= 0, ADJUSTMENT cualquier signo
	Reason        string
	Notes         string
	PreviousStock int
	NewStock      int
	UserID        *string
	OrderItemID   *string
	CreatedAt     time.Time
}

// ValidKind indica si k es un tipo de transacción conocido.
func ValidKind(k string) bool {
	for _, v := range TransactionKinds {
		if v == k {
			return true
		}
	}
	return false
}

// ValidReason indica si r es un motivo conocido.
func ValidReason(r string) bool {
	for _, v := range TransactionReasons {
		if v == r {
			return true
		}
	}
	return false
}
