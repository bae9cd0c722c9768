package procurement

import (
	"context"
	"sort"

	"github.com/jhoicas/warehouse-ledger/internal/application/inventory"
	"github.com/jhoicas/warehouse-ledger/internal/domain"
	"github.com/jhoicas/warehouse-ledger/internal/domain/entity"
	"github.com/jhoicas/warehouse-ledger/internal/domain/repository"
)

type lineRef struct {
	itemID string
	binID  string
}

// checkDocumentRefs valida que la bodega, los ítems y los bins de un documento existan.
func checkDocumentRefs(ctx context.Context, repos repository.TxRepos, warehouseID string, lines []lineRef) error {
	wh, err := repos.Warehouses().GetByID(ctx, warehouseID)
	if err != nil {
		return err
	}
	if wh == nil {
		return domain.ErrNotFound
	}
	for _, l := range lines {
		item, err := repos.Items().GetByID(ctx, l.itemID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}
		if l.binID == "" {
			continue
		}
		bin, err := repos.Warehouses().GetBin(ctx, l.binID)
		if err != nil {
			return err
		}
		if bin == nil || bin.WarehouseID != warehouseID {
			return domain.ErrInvalidInput
		}
	}
	return nil
}

// lockOrder índices de inputs ordenados por clave de stock. Las líneas de un documento se
// aplican en ese orden, el mismo que usa TRANSFER, para que dos transacciones no se crucen.
func lockOrder(inputs []inventory.MovementInput) []int {
	order := make([]int, len(inputs))
	for i := range order {
		order[i] = i
	}
	key := func(in inventory.MovementInput) entity.StockKey {
		return entity.StockKey{WarehouseID: in.WarehouseID, ItemID: in.ItemID, BinID: in.BinID}
	}
	sort.SliceStable(order, func(a, b int) bool {
		return key(inputs[order[a]]).Less(key(inputs[order[b]]))
	})
	return order
}
