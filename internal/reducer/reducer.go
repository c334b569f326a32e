// Package reducer implements the pure block-to-command projections of
// spec §4.4: a fixed, ordered set of reducers that turn an enriched
// block into zero or more commutative commands, with no state of their
// own beyond what the sink accumulates.
package reducer

import (
	"github.com/scrollchain/scrolls/pkg/chain"
	"github.com/scrollchain/scrolls/pkg/command"
)

// Reducer is a pure projection: it must be deterministic in its inputs
// and must not retain mutable state across calls (spec §4.4 Purity).
type Reducer interface {
	// Name identifies the reducer in logs and registration order.
	Name() string
	// Reduce returns the commands a block contributes in the given
	// direction. Forward and Undo outputs for the same block must be
	// exact inverses under sink application (the commutativity
	// requirement).
	Reduce(block chain.Block, ctx *chain.BlockContext, dir chain.Direction) []command.Command
}

// Registry holds reducers in registration order; the worker concatenates
// their outputs in that same order for every block (spec §4.4 "Invoke
// each reducer; concatenate outputs in reducer-registration order").
type Registry struct {
	reducers []Reducer
}

// NewRegistry builds a Registry from reducers in the given order.
func NewRegistry(reducers ...Reducer) *Registry {
	return &Registry{reducers: reducers}
}

// Register appends a reducer, preserving the fixed registration order.
func (r *Registry) Register(red Reducer) {
	r.reducers = append(r.reducers, red)
}

// Reduce runs every registered reducer over the block and concatenates
// their command output in registration order.
func (r *Registry) Reduce(block chain.Block, ctx *chain.BlockContext, dir chain.Direction) []command.Command {
	var out []command.Command
	for _, red := range r.reducers {
		out = append(out, red.Reduce(block, ctx, dir)...)
	}
	return out
}

// Names reports the registered reducer names in order, mainly for config
// validation and log context.
func (r *Registry) Names() []string {
	names := make([]string, len(r.reducers))
	for i, red := range r.reducers {
		names[i] = red.Name()
	}
	return names
}
