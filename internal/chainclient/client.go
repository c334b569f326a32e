// Package chainclient defines the wire-level boundary to the chain node
// (spec §6): the one external network interface this pipeline depends
// on. The real transport is out of scope — consumers supply any
// implementation of Client, and this package also ships an in-memory
// Fake used by tests and by internal/source's own test suite.
package chainclient

import (
	"context"

	"github.com/scrollchain/scrolls/pkg/chain"
)

// Intersect describes where the Source should start streaming from.
type Intersect struct {
	Origin bool
	Tip    bool
	Points []chain.Point
}

// ResponseKind discriminates the tagged union a Client's RequestNext and
// AwaitNext return.
type ResponseKind int

const (
	RollForward ResponseKind = iota
	RollBackward
	Await
)

// Response is what RequestNext and AwaitNext yield: a new header to roll forward to,
// a point to roll back to, or a signal that the client has reached the
// tip and the caller should block for the next one.
type Response struct {
	Kind  ResponseKind
	Point chain.Point
}

// Client is the chain wire protocol boundary: header sync and block
// fetch. Implementations for different transports are pluggable; the
// pipeline core only ever talks to this interface.
type Client interface {
	// Intersect negotiates a starting point from the given candidates and
	// returns the one the node accepted, or an error if none matched.
	Intersect(ctx context.Context, spec Intersect) (chain.Point, error)

	// HasAgency reports which mode to use for the next chain-sync
	// response: RequestNext when the client holds agency, AwaitNext
	// (which blocks until the node sends one) when it does not.
	HasAgency() bool
	RequestNext(ctx context.Context) (Response, error)
	AwaitNext(ctx context.Context) (Response, error)

	// FetchBlock retrieves the raw, canonically encoded bytes for a point
	// already confirmed to roll forward to.
	FetchBlock(ctx context.Context, p chain.Point) ([]byte, error)
}
