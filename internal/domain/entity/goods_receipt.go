package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una recepción de mercancía.
const (
	GRNStatusPending  = "pending"
	GRNStatusReceived = "received"
)

// Resultados de inspección.
const (
	InspectionAccepted          = "accepted"
	InspectionRejected          = "rejected"
	InspectionAcceptedWithNotes = "accepted_with_notes"
)

// GoodsReceipt nota de recepción (GRN). Pasa a received solo cuando el motor confirma todas las entradas.
type GoodsReceipt struct {
	ID               string
	Number           string
	POReference      string
	WarehouseID      string
	ReceivedBy       string
	Status           string
	InspectionResult string
	InspectionNotes  string
	InspectedBy      string
	InspectedAt      *time.Time
	ReceivedAt       *time.Time
	CreatedAt        time.Time
	Lines            []GoodsReceiptLine
}

// GoodsReceiptLine línea recibida.
type GoodsReceiptLine struct {
	ID        string
	GRNID     string
	ItemID    string
	BinID     string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
}
