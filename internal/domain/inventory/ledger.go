package inventory

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/warehouse-ledger/internal/domain/entity"
)

// Epsilon tolerancia para absorber redondeos al verificar no-negatividad (1e-6).
var Epsilon = decimal.New(1, -6)

// ExceedsStock indica si retirar requested de current deja la línea fuera de tolerancia.
// La tolerancia es exclusiva: un faltante de exactamente Epsilon ya se rechaza.
func ExceedsStock(current, requested decimal.Decimal) bool {
	return current.Sub(requested).LessThanOrEqual(Epsilon.Neg())
}

// IsNegative indica si q está por debajo de cero más allá de la tolerancia.
func IsNegative(q decimal.Decimal) bool {
	return q.LessThan(Epsilon.Neg())
}

// ReasonFor deriva la razón del movimiento a partir del tipo de documento de referencia.
func ReasonFor(referenceType string) string {
	switch strings.ToUpper(strings.TrimSpace(referenceType)) {
	case entity.ReferenceGRN:
		return "GRN"
	case entity.ReferenceDelivery:
		return "DELIVERY"
	case entity.ReferenceTransfer:
		return "TRANSFER"
	case "":
		return "MANUAL"
	}
	return strings.ToUpper(strings.TrimSpace(referenceType))
}

// Delta efecto firmado de un movimiento sobre su clave. Los marcadores TRANSFER no mueven saldo:
// sus patas OUT/IN ya lo hacen.
func Delta(m *entity.MovementRecord) decimal.Decimal {
	switch m.Kind {
	case entity.MovementKindIn:
		return m.Quantity
	case entity.MovementKindOut:
		return m.Quantity.Neg()
	}
	return decimal.Zero
}

// Replayer reconstruye saldos aplicando movimientos en orden.
type Replayer struct {
	balances map[entity.StockKey]decimal.Decimal
}

// NewReplayer crea un replayer vacío.
func NewReplayer() *Replayer {
	return &Replayer{balances: make(map[entity.StockKey]decimal.Decimal)}
}

// Apply acumula el efecto de m.
func (r *Replayer) Apply(m *entity.MovementRecord) {
	if m.Kind == entity.MovementKindTransfer {
		return
	}
	k := m.Key()
	r.balances[k] = r.balances[k].Add(Delta(m))
}

// Balances devuelve los saldos reconstruidos por clave.
func (r *Replayer) Balances() map[entity.StockKey]decimal.Decimal {
	return r.balances
}

// Replay reconstruye saldos desde una lista de movimientos.
func Replay(movements []*entity.MovementRecord) map[entity.StockKey]decimal.Decimal {
	r := NewReplayer()
	for _, m := range movements {
		r.Apply(m)
	}
	return r.Balances()
}
