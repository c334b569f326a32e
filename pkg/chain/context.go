package chain

// ResolvedInput pairs a consumed OutputRef with the output it resolved
// to, era-tagged the way the UTXO index stores it.
type ResolvedInput struct {
	Ref    OutputRef
	Era    uint16
	Output Output
}

// BlockContext is the per-block mapping OutputRef -> resolved output for
// every input a block consumes, built by Enrich before reducers run. A
// missing entry means the reference didn't resolve (a forward reference
// or a genesis UTXO never indexed) and is not an error.
type BlockContext struct {
	resolved map[string]ResolvedInput
}

// NewBlockContext returns an empty context ready to be populated.
func NewBlockContext() *BlockContext {
	return &BlockContext{resolved: make(map[string]ResolvedInput)}
}

// Put records the resolution of ref to the given era/output.
func (c *BlockContext) Put(ref OutputRef, era uint16, out Output) {
	c.resolved[ref.Key()] = ResolvedInput{Ref: ref, Era: era, Output: out}
}

// FindUTXO looks up the resolved output for ref.
func (c *BlockContext) FindUTXO(ref OutputRef) (ResolvedInput, bool) {
	r, ok := c.resolved[ref.Key()]
	return r, ok
}

// Len reports how many inputs resolved.
func (c *BlockContext) Len() int {
	if c == nil {
		return 0
	}
	return len(c.resolved)
}
