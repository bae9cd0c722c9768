package repository

import "context"

// TxRepos agrupa los repositorios atados a una misma transacción.
type TxRepos interface {
	StockLines() StockLineRepository
	Movements() MovementRepository
	Warehouses() WarehouseRepository
	Items() ItemRepository
	GoodsReceipts() GoodsReceiptRepository
	Deliveries() DeliveryRepository
}

// LedgerSnapshotReader entrega Ledger Store y Movement Log leídos desde una misma foto,
// sin commits intermedios entre ambas lecturas.
type LedgerSnapshotReader interface {
	ReadSnapshot(ctx context.Context, fn func(stock StockLineReader, movements MovementReader) error) error
}
