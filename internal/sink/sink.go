// Package sink implements the downstream command consumer of spec §4.5:
// a reference, Badger-backed implementation of the Command algebra, plus
// cursor persistence advanced only when a block's BlockFinished command
// lands (the commit-on-advance rule of spec §5).
package sink

import (
	"context"

	"github.com/scrollchain/scrolls/pkg/chain"
	"github.com/scrollchain/scrolls/pkg/command"
)

// Sink is the external collaborator contract of spec §4.5: apply
// commands, in order, framed by BlockStarting/BlockFinished.
type Sink interface {
	Apply(ctx context.Context, cmd command.Command) error
	// Cursor returns the last point a BlockFinished advanced the
	// persisted cursor to, for Source bootstrap.
	Cursor() (chain.Point, error)
	Close() error
}
