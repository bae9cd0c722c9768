package reporting

import (
	"context"

	"github.com/jhoicas/warehouse-ledger/internal/application/dto"
)

// SnapshotExporter serializa el snapshot de stock a una hoja de cálculo (XLSX).
type SnapshotExporter interface {
	ExportSnapshot(ctx context.Context, snapshot *dto.StockSnapshotResponse) ([]byte, error)
}

// ValuationPDFGenerator genera la representación PDF de la valorización.
type ValuationPDFGenerator interface {
	GenerateValuationPDF(ctx context.Context, valuation *dto.ValuationResponse) ([]byte, error)
}
