package stack

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseItem parses the command-line form "id[:meta][*count]".
// A trailing ":<digits>" segment is read as meta so namespaced identifiers
// such as "minecraft:iron_ingot" survive. Count defaults to 1.
func ParseItem(s string) (Item, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Item{}, fmt.Errorf("empty item")
	}
	body, count, err := splitQuantity(s)
	if err != nil {
		return Item{}, fmt.Errorf("item %q: %w", s, err)
	}
	meta := 0
	if i := strings.LastIndexByte(body, ':'); i > 0 {
		if n, convErr := strconv.Atoi(body[i+1:]); convErr == nil {
			meta = n
			body = body[:i]
		}
	}
	if body == "" {
		return Item{}, fmt.Errorf("item %q: missing id", s)
	}
	return Item{ID: ResourceID(body).Normalize(), Meta: meta, Count: count}, nil
}

// ParseFluid parses the command-line form "id[*amount]". Amount defaults
// to 1000.
func ParseFluid(s string) (Fluid, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Fluid{}, fmt.Errorf("empty fluid")
	}
	body, amount, err := splitQuantity(s)
	if err != nil {
		return Fluid{}, fmt.Errorf("fluid %q: %w", s, err)
	}
	if !strings.Contains(s, "*") {
		amount = 1000
	}
	if body == "" {
		return Fluid{}, fmt.Errorf("fluid %q: missing id", s)
	}
	return Fluid{ID: ResourceID(body).Normalize(), Amount: amount}, nil
}

func splitQuantity(s string) (string, int, error) {
	body, qty, found := strings.Cut(s, "*")
	if !found {
		return body, 1, nil
	}
	n, err := strconv.Atoi(qty)
	if err != nil {
		return "", 0, fmt.Errorf("invalid quantity %q", qty)
	}
	if n <= 0 {
		return "", 0, fmt.Errorf("quantity must be positive, got %d", n)
	}
	return body, n, nil
}
