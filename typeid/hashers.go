package typeid

import (
	"fmt"

	blake2b "github.com/minio/blake2b-simd"
	"github.com/zeebo/blake3"
	"golang.org/x/crypto/sha3"
)

// blake2bPersonLen is the maximum BLAKE2b personalization length.
const blake2bPersonLen = 16

// Blake2b is BLAKE2b-256 with a personalization string.
type Blake2b struct {
	label string
	cfg   blake2b.Config
}

// NewBlake2b returns a BLAKE2b-256 hasher personalized with label.
// Labels longer than 16 bytes are rejected.
func NewBlake2b(label string) (*Blake2b, error) {
	if len(label) > blake2bPersonLen {
		return nil, fmt.Errorf("typeid: blake2b personalization %q exceeds %d bytes", label, blake2bPersonLen)
	}
	return &Blake2b{
		label: label,
		cfg:   blake2b.Config{Size: Size, Person: []byte(label)},
	}, nil
}

func mustBlake2b(label string) *Blake2b {
	h, err := NewBlake2b(label)
	if err != nil {
		panic(err)
	}
	return h
}

func (b *Blake2b) Name() string { return "blake2b" }

func (b *Blake2b) Sum256(parts ...[]byte) [Size]byte {
	cfg := b.cfg
	h, err := blake2b.New(&cfg)
	if err != nil {
		// Config was validated in NewBlake2b.
		panic(err)
	}
	for _, p := range parts {
		_, _ = h.Write(p)
	}
	var out [Size]byte
	copy(out[:], h.Sum(nil))
	return out
}

// Blake3 is BLAKE3 in derive-key mode with label as the context string.
type Blake3 struct {
	label string
}

func NewBlake3(label string) *Blake3 { return &Blake3{label: label} }

func (b *Blake3) Name() string { return "blake3" }

func (b *Blake3) Sum256(parts ...[]byte) [Size]byte {
	h := blake3.NewDeriveKey(b.label)
	for _, p := range parts {
		_, _ = h.Write(p)
	}
	var out [Size]byte
	copy(out[:], h.Sum(nil))
	return out
}

// CShake256 is cSHAKE256 with label as the customization string and a
// 32-byte output.
type CShake256 struct {
	label []byte
}

func NewCShake256(label string) *CShake256 { return &CShake256{label: []byte(label)} }

func (c *CShake256) Name() string { return "cshake256" }

func (c *CShake256) Sum256(parts ...[]byte) [Size]byte {
	h := sha3.NewCShake256(nil, c.label)
	for _, p := range parts {
		_, _ = h.Write(p)
	}
	var out [Size]byte
	_, _ = h.Read(out[:])
	return out
}
