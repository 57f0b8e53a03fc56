package keys

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
)

// SeedSize is the size of every signing seed.
const SeedSize = 32

// ParseSeedHex decodes a hex seed, with or without a 0x prefix.
func ParseSeedHex(seedHex string) ([]byte, error) {
	seedHex = strings.TrimSpace(seedHex)
	seedHex = strings.TrimPrefix(seedHex, "0x")
	data, err := hex.DecodeString(seedHex)
	if err != nil {
		return nil, err
	}
	if len(data) != SeedSize {
		return nil, fmt.Errorf("expected seed length of %d bytes, got %d", SeedSize, len(data))
	}
	return data, nil
}

// LoadSeedFile reads a hex seed from path.
func LoadSeedFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	seed, err := ParseSeedHex(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return seed, nil
}

// DeriveSeed derives an algorithm-specific seed from a root seed so one key
// file can back both signers without reusing key material.
func DeriveSeed(root []byte, alg string) ([]byte, error) {
	if len(root) != SeedSize {
		return nil, fmt.Errorf("root seed must be %d bytes", SeedSize)
	}
	h := sha256.New()
	_, _ = h.Write(root)
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte("cellnft-verifier-v1"))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte("alg:"))
	_, _ = h.Write([]byte(alg))
	return h.Sum(nil), nil
}
