package processor

import (
	"fmt"
	"strings"
)

// Side is one of the six faces of a machine.
type Side int

const (
	Down Side = iota
	Up
	North
	South
	West
	East
)

// Sides lists every face in ordinal order.
var Sides = [6]Side{Down, Up, North, South, West, East}

var sideNames = [6]string{"down", "up", "north", "south", "west", "east"}

func (s Side) String() string {
	if s < 0 || int(s) >= len(sideNames) {
		return fmt.Sprintf("side(%d)", int(s))
	}
	return sideNames[s]
}

// Opposite returns the face facing s on a neighbouring machine.
func (s Side) Opposite() Side {
	return s ^ 1
}

// Valid reports whether s names a face.
func (s Side) Valid() bool {
	return s >= Down && s <= East
}

// ParseSide parses a face name.
func ParseSide(name string) (Side, error) {
	for i, n := range sideNames {
		if strings.EqualFold(n, name) {
			return Side(i), nil
		}
	}
	return 0, fmt.Errorf("unknown side %q", name)
}

// Sorption is the transfer permission of one slot or tank on one face.
type Sorption int

const (
	SorptionNone Sorption = iota
	SorptionIn
	SorptionOut
	SorptionBoth
)

// CanFill reports whether the face accepts resources.
func (s Sorption) CanFill() bool { return s == SorptionIn || s == SorptionBoth }

// CanDrain reports whether the face gives resources.
func (s Sorption) CanDrain() bool { return s == SorptionOut || s == SorptionBoth }

// CanConnect reports whether the face transfers at all.
func (s Sorption) CanConnect() bool { return s != SorptionNone }

func (s Sorption) String() string {
	switch s {
	case SorptionIn:
		return "in"
	case SorptionOut:
		return "out"
	case SorptionBoth:
		return "both"
	default:
		return "none"
	}
}

var (
	inputCycle  = []Sorption{SorptionIn, SorptionBoth, SorptionNone}
	outputCycle = []Sorption{SorptionOut, SorptionNone}
)

// next steps s through cycle, wrapping; values outside the cycle restart it.
func (s Sorption) next(cycle []Sorption, reverse bool) Sorption {
	for i, v := range cycle {
		if v == s {
			if reverse {
				return cycle[(i+len(cycle)-1)%len(cycle)]
			}
			return cycle[(i+1)%len(cycle)]
		}
	}
	return cycle[0]
}

// connections holds the sorption of every slot on every face.
type connections [6][]Sorption

func newConnections(inputs, outputs int) connections {
	var c connections
	for i := range c {
		c[i] = make([]Sorption, inputs+outputs)
		for j := range c[i] {
			if j < inputs {
				c[i][j] = SorptionIn
			} else {
				c[i][j] = SorptionOut
			}
		}
	}
	return c
}

func (c connections) get(side Side, index int) Sorption {
	if !side.Valid() || index < 0 || index >= len(c[side]) {
		return SorptionNone
	}
	return c[side][index]
}
