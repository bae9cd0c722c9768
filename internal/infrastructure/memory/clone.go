package memory

import (
	"time"

	"github.com/jhoicas/warehouse-ledger/internal/domain/entity"
)

func cloneStockLine(l *entity.StockLine) *entity.StockLine {
	if l == nil {
		return nil
	}
	c := *l
	return &c
}

func cloneMovement(m *entity.MovementRecord) *entity.MovementRecord {
	c := *m
	return &c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

func cloneGRN(g *entity.GoodsReceipt) *entity.GoodsReceipt {
	if g == nil {
		return nil
	}
	c := *g
	c.InspectedAt = cloneTime(g.InspectedAt)
	c.ReceivedAt = cloneTime(g.ReceivedAt)
	c.Lines = append([]entity.GoodsReceiptLine(nil), g.Lines...)
	return &c
}

func cloneDelivery(d *entity.Delivery) *entity.Delivery {
	if d == nil {
		return nil
	}
	c := *d
	c.ScheduledDate = cloneTime(d.ScheduledDate)
	c.ShippedAt = cloneTime(d.ShippedAt)
	c.Lines = append([]entity.DeliveryLine(nil), d.Lines...)
	return &c
}

// page aplica limit/offset (limit <= 0 = sin límite).
func page[T any](list []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(list) {
		return []T{}
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}
