// Package typeid derives the 32-byte identifiers that bind a newly created
// token to the transaction creating it.
//
// An identifier is a personalized 256-bit hash over the first consumed input
// reference followed by the u64 little-endian output index of the new cell.
// Because an input can be consumed by at most one transaction, and output
// indexes are transaction-local, identifiers never collide across valid
// transactions.
//
// The hash primitive is a pluggable Hasher. Identifiers produced under
// different hashers (or labels) are unrelated; a deployment must pin one.
package typeid

import (
	"encoding/binary"
	"fmt"
	"sort"
)

// Size is the identifier length in bytes.
const Size = 32

// DefaultLabel is the personalization used by deployed token scripts.
const DefaultLabel = "ckb-default-hash"

// Hasher is a 256-bit hash bound to a fixed domain-separation label.
// Sum256 must be deterministic and must hash parts as one concatenated stream.
type Hasher interface {
	Name() string
	Sum256(parts ...[]byte) [Size]byte
}

// Derive computes the identifier for the cell at outputIndex in a transaction
// whose first input serializes to firstInput.
func Derive(h Hasher, firstInput []byte, outputIndex uint64) [Size]byte {
	var idx [8]byte
	binary.LittleEndian.PutUint64(idx[:], outputIndex)
	return h.Sum256(firstInput, idx[:])
}

// Default returns the deployment-compatible hasher: BLAKE2b-256 personalized
// with DefaultLabel.
func Default() Hasher {
	return defaultHasher
}

var defaultHasher = mustBlake2b(DefaultLabel)

type constructor func(label string) (Hasher, error)

var registry = map[string]constructor{
	"blake2b":   func(label string) (Hasher, error) { return NewBlake2b(label) },
	"blake3":    func(label string) (Hasher, error) { return NewBlake3(label), nil },
	"cshake256": func(label string) (Hasher, error) { return NewCShake256(label), nil },
}

// ByName returns the hasher registered under name, personalized with label.
// An empty name selects blake2b; an empty label selects DefaultLabel.
func ByName(name, label string) (Hasher, error) {
	if name == "" {
		name = "blake2b"
	}
	if label == "" {
		label = DefaultLabel
	}
	ctor, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("typeid: unknown hasher %q (have %v)", name, Names())
	}
	return ctor(label)
}

// Names lists registered hasher names in sorted order.
func Names() []string {
	out := make([]string, 0, len(registry))
	for n := range registry {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
