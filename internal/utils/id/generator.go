// Package id produces prefixed identifiers for inputs, entities and actions.
package id

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/segmentio/ksuid"
)

// Strategy identifies the identifier generation algorithm to use.
type Strategy int

const (
	// StrategyKSUID generates lexicographically sortable identifiers using KSUID.
	StrategyKSUID Strategy = iota
	// StrategyUUIDv7 generates time-ordered identifiers using UUID version 7.
	StrategyUUIDv7
)

var defaultGenerator = &Generator{strategy: StrategyKSUID}

// Generator produces identifiers for pipeline objects.
type Generator struct {
	mu       sync.RWMutex
	strategy Strategy
}

// SetStrategy configures the generation strategy for the default generator.
func SetStrategy(strategy Strategy) {
	defaultGenerator.setStrategy(strategy)
}

func (g *Generator) setStrategy(strategy Strategy) {
	g.mu.Lock()
	g.strategy = strategy
	g.mu.Unlock()
}

// NewInputID generates an identifier for a captured input.
func NewInputID() string {
	return defaultGenerator.newIdentifier("input")
}

// NewEntityID generates an identifier for an extracted entity.
func NewEntityID() string {
	return defaultGenerator.newIdentifier("entity")
}

// NewActionID generates an identifier for a suggested action.
func NewActionID() string {
	return defaultGenerator.newIdentifier("action")
}

func (g *Generator) newIdentifier(prefix string) string {
	g.mu.RLock()
	strategy := g.strategy
	g.mu.RUnlock()

	var body string
	switch strategy {
	case StrategyUUIDv7:
		uuidv7, err := uuid.NewV7()
		if err == nil {
			body = uuidv7.String()
			break
		}
		fallthrough
	case StrategyKSUID:
		body = ksuid.New().String()
	default:
		body = ksuid.New().String()
	}

	return fmt.Sprintf("%s-%s", prefix, body)
}
