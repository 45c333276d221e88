package processor

import (
	"slices"

	"github.com/roach88/millwork/internal/stack"
)

// Tank is a bounded container for one fluid at a time.
type Tank struct {
	fluid    stack.Fluid
	capacity int
	// allowed restricts which fluids may enter; nil allows any.
	allowed []stack.ResourceID
}

// NewTank creates an empty tank.
func NewTank(capacity int, allowed []stack.ResourceID) *Tank {
	return &Tank{capacity: capacity, allowed: allowed}
}

// TankInfo summarizes a tank for sync messages and status output.
type TankInfo struct {
	ID       stack.ResourceID `json:"id,omitempty"`
	Amount   int              `json:"amount"`
	Capacity int              `json:"capacity"`
}

func (t *Tank) Fluid() stack.Fluid { return t.fluid }
func (t *Tank) Amount() int        { return t.fluid.Amount }
func (t *Tank) Capacity() int      { return t.capacity }
func (t *Tank) IsEmpty() bool      { return t.fluid.IsEmpty() }
func (t *Tank) IsFull() bool       { return t.fluid.Amount >= t.capacity }

// Info returns a summary of the tank.
func (t *Tank) Info() TankInfo {
	if t.IsEmpty() {
		return TankInfo{Capacity: t.capacity}
	}
	return TankInfo{ID: t.fluid.ID, Amount: t.fluid.Amount, Capacity: t.capacity}
}

// CanFillType reports whether f is allowed into the tank.
func (t *Tank) CanFillType(f stack.Fluid) bool {
	return !f.IsEmpty() && (t.allowed == nil || slices.Contains(t.allowed, f.ID))
}

// SetAllowed replaces the allowed fluid list; nil allows any.
func (t *Tank) SetAllowed(ids []stack.ResourceID) {
	t.allowed = ids
}

// SetFluid replaces the contents, clamped to capacity.
func (t *Tank) SetFluid(f stack.Fluid) {
	if f.IsEmpty() {
		t.fluid = stack.Fluid{}
		return
	}
	t.fluid = f.WithAmount(min(f.Amount, t.capacity))
}

// ChangeAmount adds delta to the contents, clamped to [0, capacity].
func (t *Tank) ChangeAmount(delta int) {
	if t.IsEmpty() {
		return
	}
	t.fluid = t.fluid.WithAmount(min(max(t.fluid.Amount+delta, 0), t.capacity))
}

// Clear empties the tank.
func (t *Tank) Clear() {
	t.fluid = stack.Fluid{}
}

// Fill adds as much of f as fits and returns the amount accepted. Nothing
// changes unless doFill is set.
func (t *Tank) Fill(f stack.Fluid, doFill bool) int {
	if f.IsEmpty() || (!t.IsEmpty() && !t.fluid.SameFluid(f)) {
		return 0
	}
	n := min(t.capacity-t.fluid.Amount, f.Amount)
	if n <= 0 {
		return 0
	}
	if doFill {
		t.fluid = f.WithAmount(t.fluid.Amount + n)
	}
	return n
}

// Drain removes up to n and returns what was removed.
func (t *Tank) Drain(n int, doDrain bool) stack.Fluid {
	if t.IsEmpty() || n <= 0 {
		return stack.Fluid{}
	}
	out := t.fluid.WithAmount(min(n, t.fluid.Amount))
	if doDrain {
		t.fluid = t.fluid.WithAmount(t.fluid.Amount - out.Amount)
	}
	return out
}
