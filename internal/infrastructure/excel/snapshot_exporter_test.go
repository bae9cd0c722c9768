package excel_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/warehouse-ledger/internal/application/dto"
	"github.com/jhoicas/warehouse-ledger/internal/infrastructure/excel"
)

func TestExportSnapshot(t *testing.T) {
	snap := &dto.StockSnapshotResponse{
		GeneratedAt: time.Now(),
		Rows: []dto.StockSnapshotRow{
			{WarehouseID: "WH1", WarehouseName: "Central", SKU: "A", ItemName: "Cable", Quantity: decimal.NewFromInt(70), UpdatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)},
			{WarehouseID: "WH1", WarehouseName: "Central", SKU: "B", ItemName: "Conector", BinCode: "A-01", Quantity: decimal.RequireFromString("2.5")},
		},
	}

	b, err := excel.NewSnapshotExporter().ExportSnapshot(context.Background(), snap)
	require.NoError(t, err)
	require.NotEmpty(t, b)

	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(excel.SnapshotSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "SKU", rows[0][2])
	assert.Equal(t, "Cable", rows[1][3])
	assert.Equal(t, "70", rows[1][5])
	assert.Equal(t, "2026-01-02 03:04:05", rows[1][6])
	assert.Equal(t, "A-01", rows[2][4])
	assert.Equal(t, "2.5", rows[2][5])
}

func TestExportSnapshot_Vacio(t *testing.T) {
	b, err := excel.NewSnapshotExporter().ExportSnapshot(context.Background(), &dto.StockSnapshotResponse{})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(excel.SnapshotSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
