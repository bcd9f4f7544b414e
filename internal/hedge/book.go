package hedge

// Book is the full set of live positions, keyed by (spot, futures, base).
// Single-writer per spec §5 (the auto-trader loop); no lock is taken here.
type Book struct {
	positions map[Key]*Position
}

// NewBook returns an empty position book.
func NewBook() *Book {
	return &Book{positions: make(map[Key]*Position)}
}

// Get returns the position for key and whether it exists, without creating
// one.
func (b *Book) Get(key Key) (*Position, bool) {
	p, ok := b.positions[key]
	return p, ok
}

// GetOrCreate returns the position for key, lazily creating an empty one on
// first entry per spec §3 lifecycle rule.
func (b *Book) GetOrCreate(key Key) *Position {
	if p, ok := b.positions[key]; ok {
		return p
	}
	p := &Position{Key: key}
	b.positions[key] = p
	return p
}

// Prune removes any position whose notional has collapsed to zero.
func (b *Book) Prune() {
	for k, p := range b.positions {
		if p.IsZero() {
			delete(b.positions, k)
		}
	}
}

// All returns every live position, for snapshotting/rendering.
func (b *Book) All() []*Position {
	out := make([]*Position, 0, len(b.positions))
	for _, p := range b.positions {
		out = append(out, p)
	}
	return out
}
