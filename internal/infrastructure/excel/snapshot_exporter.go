// Package excel exporta reportes del ledger a XLSX con excelize.
package excel

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/warehouse-ledger/internal/application/dto"
)

// SnapshotSheet nombre de la hoja del snapshot.
const SnapshotSheet = "Stock"

var snapshotHeader = []interface{}{
	"Bodega", "Nombre bodega", "SKU", "Ítem", "Bin", "Cantidad", "Actualizado",
}

// SnapshotExporter implementa reporting.SnapshotExporter.
type SnapshotExporter struct{}

func NewSnapshotExporter() *SnapshotExporter { return &SnapshotExporter{} }

// ExportSnapshot escribe una fila por línea de stock debajo de la cabecera y devuelve el libro.
func (e *SnapshotExporter) ExportSnapshot(_ context.Context, snap *dto.StockSnapshotResponse) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SnapshotSheet); err != nil {
		return nil, fmt.Errorf("excel: renombrar hoja: %w", err)
	}
	if err := f.SetSheetRow(SnapshotSheet, "A1", &snapshotHeader); err != nil {
		return nil, fmt.Errorf("excel: cabecera: %w", err)
	}
	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"00467F"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("excel: estilo: %w", err)
	}
	if err := f.SetCellStyle(SnapshotSheet, "A1", "G1", style); err != nil {
		return nil, fmt.Errorf("excel: estilo cabecera: %w", err)
	}
	_ = f.SetColWidth(SnapshotSheet, "A", "G", 18)

	for i, r := range snap.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		values := []interface{}{
			r.WarehouseID,
			r.WarehouseName,
			r.SKU,
			r.ItemName,
			r.BinCode,
			r.Quantity.InexactFloat64(),
			r.UpdatedAt.Format("2006-01-02 15:04:05"),
		}
		if err := f.SetSheetRow(SnapshotSheet, cell, &values); err != nil {
			return nil, fmt.Errorf("excel: fila %d: %w", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("excel: escribir libro: %w", err)
	}
	return buf.Bytes(), nil
}
