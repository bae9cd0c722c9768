package dto

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// StockSnapshotRow fila del snapshot de stock.
type StockSnapshotRow struct {
	WarehouseID   string          `json:"warehouse_id"`
	WarehouseName string          `json:"warehouse_name"`
	ItemID        string          `json:"item_id"`
	SKU           string          `json:"sku"`
	ItemName      string          `json:"item_name"`
	BinID         string          `json:"bin_id,omitempty"`
	BinCode       string          `json:"bin_code,omitempty"`
	Quantity      decimal.Decimal `json:"quantity"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// StockSnapshotResponse snapshot de stock.
type StockSnapshotResponse struct {
	GeneratedAt time.Time          `json:"generated_at"`
	Rows        []StockSnapshotRow `json:"rows"`
}

// MovementHistoryRow fila del historial con nombres resueltos.
type MovementHistoryRow struct {
	ID                       string          `json:"id"`
	Kind                     string          `json:"kind"`
	SourceWarehouseName      string          `json:"source_warehouse_name"`
	DestinationWarehouseName string          `json:"destination_warehouse_name,omitempty"`
	ItemName                 string          `json:"item_name"`
	Quantity                 decimal.Decimal `json:"quantity"`
	Reason                   string          `json:"reason"`
	ReferenceType            string          `json:"reference_type,omitempty"`
	ReferenceID              string          `json:"reference_id,omitempty"`
	CreatedBy                string          `json:"created_by"`
	CreatedAt                time.Time       `json:"created_at"`
}

// MovementHistoryResponse historial paginado.
type MovementHistoryResponse struct {
	Items []MovementHistoryRow `json:"items"`
	Page  PageResponse         `json:"page"`
}

// ValuationRow valorización de un ítem en una bodega.
type ValuationRow struct {
	WarehouseID   string          `json:"warehouse_id"`
	WarehouseName string          `json:"warehouse_name"`
	ItemID        string          `json:"item_id"`
	ItemName      string          `json:"item_name"`
	Quantity      decimal.Decimal `json:"quantity"`
	LastPrice     decimal.Decimal `json:"last_price"`
	Value         decimal.Decimal `json:"value"`
}

// ValuationResponse valorización del inventario con total.
type ValuationResponse struct {
	GeneratedAt time.Time       `json:"generated_at"`
	WarehouseID string          `json:"warehouse_id,omitempty"`
	Rows        []ValuationRow  `json:"rows"`
	Total       decimal.Decimal `json:"total"`
}

// ReconciliationMismatch clave cuyo saldo no coincide con el replay del log.
type ReconciliationMismatch struct {
	WarehouseID      string          `json:"warehouse_id"`
	ItemID           string          `json:"item_id"`
	BinID            string          `json:"bin_id,omitempty"`
	LedgerQuantity   decimal.Decimal `json:"ledger_quantity"`
	ReplayedQuantity decimal.Decimal `json:"replayed_quantity"`
}

// ReconciliationResponse resultado de comparar el Ledger Store con el replay del Movement Log.
type ReconciliationResponse struct {
	Consistent    bool                     `json:"consistent"`
	LinesChecked  int                      `json:"lines_checked"`
	MovementsRead int                      `json:"movements_read"`
	Mismatches    []ReconciliationMismatch `json:"mismatches"`
	NegativeLines []StockLineResponse      `json:"negative_lines,omitempty"`
	GeneratedAt   time.Time                `json:"generated_at"`
}

// AuditLogResponse entrada de auditoría.
type AuditLogResponse struct {
	ID         string          `json:"id"`
	Actor      string          `json:"actor"`
	Action     string          `json:"action"`
	EntityType string          `json:"entity_type"`
	EntityID   string          `json:"entity_id"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// AuditListResponse lista paginada de auditoría.
type AuditListResponse struct {
	Items []AuditLogResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}
