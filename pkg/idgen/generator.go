package idgen

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
)

// Generator produces unique int64 identifiers for search requests.
type Generator interface {
	GenerateID() int64
}

type SnowflakeGenerator struct {
	node *snowflake.Node
}

// NewSnowflake builds a generator for the given node id (0-1023). The
// underlying node is safe for concurrent use, so one generator can be shared
// across all request handlers.
func NewSnowflake(nodeID int64) (*SnowflakeGenerator, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("create snowflake node %d: %w", nodeID, err)
	}
	return &SnowflakeGenerator{node: node}, nil
}

func (g *SnowflakeGenerator) GenerateID() int64 {
	return g.node.Generate().Int64()
}
