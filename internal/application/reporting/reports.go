// Package reporting agrupa las consultas de solo lectura sobre el ledger:
// snapshot, historial, valorización, conciliación y exportaciones.
package reporting

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/warehouse-ledger/internal/application/dto"
	"github.com/jhoicas/warehouse-ledger/internal/domain"
	"github.com/jhoicas/warehouse-ledger/internal/domain/entity"
	"github.com/jhoicas/warehouse-ledger/internal/domain/inventory"
	"github.com/jhoicas/warehouse-ledger/internal/domain/repository"
	"github.com/jhoicas/warehouse-ledger/pkg/logger"
)

// ReportUseCase casos de uso de reportes. Ninguno escribe en el ledger.
type ReportUseCase struct {
	reports   repository.ReportRepository
	snapshots repository.LedgerSnapshotReader
	xlsx      SnapshotExporter
	pdf       ValuationPDFGenerator
	log       *logger.Logger
	now       func() time.Time
}

// NewReportUseCase construye el caso de uso. xlsx y pdf pueden ser nil si no se exporta.
func NewReportUseCase(
	reports repository.ReportRepository,
	snapshots repository.LedgerSnapshotReader,
	xlsx SnapshotExporter,
	pdf ValuationPDFGenerator,
	log *logger.Logger,
) *ReportUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &ReportUseCase{
		reports:   reports,
		snapshots: snapshots,
		xlsx:      xlsx,
		pdf:       pdf,
		log:       log.Component("reporting"),
		now:       time.Now,
	}
}

// Snapshot saldos actuales con nombres de bodega, ítem y bin.
func (uc *ReportUseCase) Snapshot(ctx context.Context, filter repository.StockLineFilter) (*dto.StockSnapshotResponse, error) {
	rows, err := uc.reports.StockSnapshot(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]dto.StockSnapshotRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.StockSnapshotRow{
			WarehouseID:   r.WarehouseID,
			WarehouseName: r.WarehouseName,
			ItemID:        r.ItemID,
			SKU:           r.SKU,
			ItemName:      r.ItemName,
			BinID:         r.BinID,
			BinCode:       r.BinCode,
			Quantity:      r.Quantity,
			UpdatedAt:     r.UpdatedAt,
		})
	}
	return &dto.StockSnapshotResponse{GeneratedAt: uc.now().UTC(), Rows: out}, nil
}

// MovementHistory historial paginado, más reciente primero.
func (uc *ReportUseCase) MovementHistory(ctx context.Context, filter repository.MovementFilter) (*dto.MovementHistoryResponse, error) {
	rows, err := uc.reports.MovementHistory(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MovementHistoryRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.MovementHistoryRow{
			ID:                       r.ID,
			Kind:                     r.Kind,
			SourceWarehouseName:      r.SourceWarehouseName,
			DestinationWarehouseName: r.DestinationWarehouseName,
			ItemName:                 r.ItemName,
			Quantity:                 r.Quantity,
			Reason:                   r.Reason,
			ReferenceType:            r.ReferenceType,
			ReferenceID:              r.ReferenceID,
			CreatedBy:                r.CreatedBy,
			CreatedAt:                r.CreatedAt,
		})
	}
	return &dto.MovementHistoryResponse{
		Items: out,
		Page:  dto.PageResponse{Limit: filter.Limit, Offset: filter.Offset},
	}, nil
}

// Valuation cantidad x último precio por bodega/ítem, con total general.
func (uc *ReportUseCase) Valuation(ctx context.Context, warehouseID string) (*dto.ValuationResponse, error) {
	rows, err := uc.reports.Valuation(ctx, warehouseID)
	if err != nil {
		return nil, err
	}
	total := decimal.Zero
	out := make([]dto.ValuationRow, 0, len(rows))
	for _, r := range rows {
		total = total.Add(r.Value)
		out = append(out, dto.ValuationRow{
			WarehouseID:   r.WarehouseID,
			WarehouseName: r.WarehouseName,
			ItemID:        r.ItemID,
			ItemName:      r.ItemName,
			Quantity:      r.Quantity,
			LastPrice:     r.LastPrice,
			Value:         r.Value,
		})
	}
	return &dto.ValuationResponse{
		GeneratedAt: uc.now().UTC(),
		WarehouseID: warehouseID,
		Rows:        out,
		Total:       total,
	}, nil
}

// Reconcile reconstruye los saldos desde el Movement Log y los compara con el Ledger Store.
// Ambas lecturas salen de la misma foto. Una clave que solo existe en el log (o solo en el
// ledger) se compara contra cero.
func (uc *ReportUseCase) Reconcile(ctx context.Context) (*dto.ReconciliationResponse, error) {
	replayer := inventory.NewReplayer()
	read := 0
	var lines []*entity.StockLine
	err := uc.snapshots.ReadSnapshot(ctx, func(stock repository.StockLineReader, movements repository.MovementReader) error {
		err := movements.Replay(ctx, func(m *entity.MovementRecord) error {
			replayer.Apply(m)
			read++
			return nil
		})
		if err != nil {
			return fmt.Errorf("leer log: %w", err)
		}
		lines, err = stock.List(ctx, repository.StockLineFilter{})
		if err != nil {
			return fmt.Errorf("leer ledger: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reconciliación: %w", err)
	}

	replayed := replayer.Balances()
	seen := make(map[entity.StockKey]struct{}, len(lines))
	resp := &dto.ReconciliationResponse{
		LinesChecked:  len(lines),
		MovementsRead: read,
		Mismatches:    []dto.ReconciliationMismatch{},
		GeneratedAt:   uc.now().UTC(),
	}
	for _, l := range lines {
		k := l.Key()
		seen[k] = struct{}{}
		if !sameQuantity(l.Quantity, replayed[k]) {
			resp.Mismatches = append(resp.Mismatches, mismatch(k, l.Quantity, replayed[k]))
		}
		if inventory.IsNegative(l.Quantity) {
			resp.NegativeLines = append(resp.NegativeLines, dto.StockLineResponse{
				ID:          l.ID,
				WarehouseID: l.WarehouseID,
				ItemID:      l.ItemID,
				BinID:       l.BinID,
				Quantity:    l.Quantity,
				UpdatedAt:   l.UpdatedAt,
			})
		}
	}
	for k, q := range replayed {
		if _, ok := seen[k]; ok {
			continue
		}
		if !sameQuantity(decimal.Zero, q) {
			resp.Mismatches = append(resp.Mismatches, mismatch(k, decimal.Zero, q))
		}
	}
	sort.Slice(resp.Mismatches, func(i, j int) bool {
		a, b := resp.Mismatches[i], resp.Mismatches[j]
		return entity.StockKey{WarehouseID: a.WarehouseID, ItemID: a.ItemID, BinID: a.BinID}.
			Less(entity.StockKey{WarehouseID: b.WarehouseID, ItemID: b.ItemID, BinID: b.BinID})
	})
	resp.Consistent = len(resp.Mismatches) == 0 && len(resp.NegativeLines) == 0
	if !resp.Consistent {
		uc.log.Warn().
			Int("mismatches", len(resp.Mismatches)).
			Int("negative_lines", len(resp.NegativeLines)).
			Msg("ledger inconsistente con el log de movimientos")
	}
	return resp, nil
}

// SnapshotXLSX exporta el snapshot a XLSX.
func (uc *ReportUseCase) SnapshotXLSX(ctx context.Context, filter repository.StockLineFilter) ([]byte, error) {
	if uc.xlsx == nil {
		return nil, fmt.Errorf("exportación xlsx no configurada: %w", domain.ErrInvalidInput)
	}
	snap, err := uc.Snapshot(ctx, filter)
	if err != nil {
		return nil, err
	}
	return uc.xlsx.ExportSnapshot(ctx, snap)
}

// ValuationPDF genera el PDF de la valorización.
func (uc *ReportUseCase) ValuationPDF(ctx context.Context, warehouseID string) ([]byte, error) {
	if uc.pdf == nil {
		return nil, fmt.Errorf("generación pdf no configurada: %w", domain.ErrInvalidInput)
	}
	val, err := uc.Valuation(ctx, warehouseID)
	if err != nil {
		return nil, err
	}
	return uc.pdf.GenerateValuationPDF(ctx, val)
}

func sameQuantity(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThan(inventory.Epsilon)
}

func mismatch(k entity.StockKey, ledger, replayed decimal.Decimal) dto.ReconciliationMismatch {
	return dto.ReconciliationMismatch{
		WarehouseID:      k.WarehouseID,
		ItemID:           k.ItemID,
		BinID:            k.BinID,
		LedgerQuantity:   ledger,
		ReplayedQuantity: replayed,
	}
}
