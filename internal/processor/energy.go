package processor

// EnergyStorage is the energy capability a processor draws from or, for
// generators, feeds into.
type EnergyStorage interface {
	// Available is the energy that may be drawn this tick.
	Available() int64
	// Draw removes up to n and returns the amount removed.
	Draw(n int64) int64
	// Receive adds up to n and returns the amount accepted.
	Receive(n int64) int64
	Capacity() int64
}

// Buffer is a plain bounded energy store.
type Buffer struct {
	stored   int64
	capacity int64
}

// NewBuffer returns an empty buffer.
func NewBuffer(capacity int64) *Buffer {
	return &Buffer{capacity: max(capacity, 0)}
}

func (b *Buffer) Available() int64 { return b.stored }
func (b *Buffer) Capacity() int64  { return b.capacity }

func (b *Buffer) Draw(n int64) int64 {
	n = min(max(n, 0), b.stored)
	b.stored -= n
	return n
}

func (b *Buffer) Receive(n int64) int64 {
	n = min(max(n, 0), b.capacity-b.stored)
	b.stored += n
	return n
}

// SetCapacity resizes the buffer, discarding energy above the new bound.
func (b *Buffer) SetCapacity(c int64) {
	b.capacity = max(c, 0)
	b.stored = min(b.stored, b.capacity)
}

// SetStored replaces the stored energy, clamped to capacity.
func (b *Buffer) SetStored(n int64) {
	b.stored = min(max(n, 0), b.capacity)
}
