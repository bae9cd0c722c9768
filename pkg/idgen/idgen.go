// Package idgen genera identificadores ordenados en el tiempo (Snowflake) con prefijo de tipo.
package idgen

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
)

// Generator genera IDs únicos y estrictamente crecientes para un nodo.
// Cada proceso que escribe en el mismo log debe usar un nodeID distinto (0..1023).
type Generator struct {
	node *snowflake.Node
}

// New crea un generador para el nodo indicado.
func New(nodeID int64) (*Generator, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("idgen: nodo %d: %w", nodeID, err)
	}
	return &Generator{node: node}, nil
}

// MustNew igual que New pero entra en pánico si el nodo es inválido.
func MustNew(nodeID int64) *Generator {
	g, err := New(nodeID)
	if err != nil {
		panic(err)
	}
	return g
}

// Next devuelve el ID con prefijo (ej. "MIN-1541815603606036480") y su secuencia numérica.
func (g *Generator) Next(prefix string) (string, int64) {
	id := g.node.Generate()
	return prefix + "-" + id.String(), id.Int64()
}

// Number devuelve solo el ID con prefijo; útil para números de documento (GRN, DO).
func (g *Generator) Number(prefix string) string {
	s, _ := g.Next(prefix)
	return s
}
