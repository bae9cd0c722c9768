package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// StockSnapshotRow línea de stock con nombres resueltos.
type StockSnapshotRow struct {
	StockLineID   string
	WarehouseID   string
	WarehouseName string
	ItemID        string
	SKU           string
	ItemName      string
	BinID         string
	BinCode       string
	Quantity      decimal.Decimal
	UpdatedAt     time.Time
}

// MovementHistoryRow movimiento con nombres de bodegas e ítem.
type MovementHistoryRow struct {
	ID                       string
	Kind                     string
	SourceWarehouseName      string
	DestinationWarehouseName string
	ItemName                 string
	Quantity                 decimal.Decimal
	Reason                   string
	ReferenceType            string
	ReferenceID              string
	CreatedBy                string
	CreatedAt                time.Time
}

// ValuationRow valorización por bodega/ítem: cantidad x último precio.
type ValuationRow struct {
	WarehouseID   string
	WarehouseName string
	ItemID        string
	ItemName      string
	Quantity      decimal.Decimal
	LastPrice     decimal.Decimal
	Value         decimal.Decimal
}

// ReportRepository consultas de solo lectura (joins) para el colaborador de reportes.
type ReportRepository interface {
	StockSnapshot(ctx context.Context, filter StockLineFilter) ([]StockSnapshotRow, error)
	MovementHistory(ctx context.Context, filter MovementFilter) ([]MovementHistoryRow, error)
	Valuation(ctx context.Context, warehouseID string) ([]ValuationRow, error)
}
