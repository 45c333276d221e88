package stack

import (
	"crypto/sha256"
	"encoding/binary"
	"slices"
)

// Domain prefixes for material hashes.
// Version suffix enables future algorithm migration.
const (
	DomainMaterials = "millwork/materials/v1"
	DomainMultiset  = "millwork/materials-multiset/v1"
)

// hashWithDomain computes SHA-256 with domain separation and keeps the first
// eight bytes. Format: SHA256(domain + 0x00 + data)[:8]
func hashWithDomain(domain string, data []byte) uint64 {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return binary.BigEndian.Uint64(h.Sum(nil)[:8])
}

// HashMaterials hashes an ordered combination of item and fluid resources.
// Empty positions are "". Quantities never take part: two combinations
// with the same resources in the same positions always collide, and match
// verification decides whether the quantities suffice.
func HashMaterials(items, fluids []ResourceID) uint64 {
	return hashWithDomain(DomainMaterials, encodeMaterials(items, fluids))
}

// HashMultiset hashes the combination ignoring order: item and fluid
// identifiers are sorted independently first.
func HashMultiset(items, fluids []ResourceID) uint64 {
	items = slices.Clone(items)
	fluids = slices.Clone(fluids)
	slices.Sort(items)
	slices.Sort(fluids)
	return hashWithDomain(DomainMultiset, encodeMaterials(items, fluids))
}

// HashStacks hashes live slot contents in order.
func HashStacks(items []Item, fluids []Fluid) uint64 {
	return HashMaterials(ItemIDs(items), FluidIDs(fluids))
}

// HashStacksMultiset hashes live slot contents ignoring order.
func HashStacksMultiset(items []Item, fluids []Fluid) uint64 {
	return HashMultiset(ItemIDs(items), FluidIDs(fluids))
}

func encodeMaterials(items, fluids []ResourceID) []byte {
	// Resource identifiers are plain strings; marshaling cannot fail.
	data, _ := MarshalCanonical(map[string]any{
		"items":  items,
		"fluids": fluids,
	})
	return data
}
