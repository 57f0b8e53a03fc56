package keys

import (
	"crypto/ed25519"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudflare/circl/sign/dilithium/mode3"
	"golang.org/x/crypto/sha3"
)

// Signature algorithms.
const (
	AlgEd25519    = "ed25519"
	AlgDilithium3 = "dilithium3"
)

var ErrBadSignature = errors.New("keys: signature did not verify")

// Signer signs messages under one verifier key. Messages are hashed with
// HashAlg before signing.
type Signer interface {
	Alg() string
	HashAlg() string
	// PublicKey returns the verifier key string.
	PublicKey() string
	Sign(message []byte) (string, error)
}

func digestFor(hashAlg string, message []byte) ([]byte, error) {
	switch hashAlg {
	case "sha256":
		s := sha256.Sum256(message)
		return s[:], nil
	case "sha512":
		s := sha512.Sum512(message)
		return s[:], nil
	case "sha3-256":
		s := sha3.Sum256(message)
		return s[:], nil
	default:
		return nil, fmt.Errorf("unsupported hash algorithm: %q", hashAlg)
	}
}

// NewSigner builds a signer for alg from a seed. An empty hashAlg selects
// sha256 for ed25519 and sha3-256 for dilithium3.
func NewSigner(alg, hashAlg string, seed []byte) (Signer, error) {
	switch alg {
	case AlgEd25519:
		return NewEd25519Signer(seed, hashAlg)
	case AlgDilithium3:
		return NewDilithium3Signer(seed, hashAlg)
	default:
		return nil, fmt.Errorf("unsupported signature algorithm: %q", alg)
	}
}

type Ed25519Signer struct {
	priv    ed25519.PrivateKey
	hashAlg string
}

func NewEd25519Signer(seed []byte, hashAlg string) (*Ed25519Signer, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("ed25519 seed must be %d bytes, got %d", ed25519.SeedSize, len(seed))
	}
	if hashAlg == "" {
		hashAlg = "sha256"
	}
	if _, err := digestFor(hashAlg, nil); err != nil {
		return nil, err
	}
	return &Ed25519Signer{priv: ed25519.NewKeyFromSeed(seed), hashAlg: hashAlg}, nil
}

func (s *Ed25519Signer) Alg() string     { return AlgEd25519 }
func (s *Ed25519Signer) HashAlg() string { return s.hashAlg }

func (s *Ed25519Signer) PublicKey() string {
	return formatKey(AlgEd25519, s.priv.Public().(ed25519.PublicKey))
}

func (s *Ed25519Signer) Sign(message []byte) (string, error) {
	digest, err := digestFor(s.hashAlg, message)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(ed25519.Sign(s.priv, digest)), nil
}

type Dilithium3Signer struct {
	pub     *mode3.PublicKey
	priv    *mode3.PrivateKey
	hashAlg string
}

func NewDilithium3Signer(seed []byte, hashAlg string) (*Dilithium3Signer, error) {
	if len(seed) != mode3.SeedSize {
		return nil, fmt.Errorf("dilithium3 seed must be %d bytes, got %d", mode3.SeedSize, len(seed))
	}
	if hashAlg == "" {
		hashAlg = "sha3-256"
	}
	if _, err := digestFor(hashAlg, nil); err != nil {
		return nil, err
	}
	var s [mode3.SeedSize]byte
	copy(s[:], seed)
	pub, priv := mode3.NewKeyFromSeed(&s)
	return &Dilithium3Signer{pub: pub, priv: priv, hashAlg: hashAlg}, nil
}

func (s *Dilithium3Signer) Alg() string     { return AlgDilithium3 }
func (s *Dilithium3Signer) HashAlg() string { return s.hashAlg }

func (s *Dilithium3Signer) PublicKey() string {
	return formatKey(AlgDilithium3, s.pub.Bytes())
}

func (s *Dilithium3Signer) Sign(message []byte) (string, error) {
	digest, err := digestFor(s.hashAlg, message)
	if err != nil {
		return "", err
	}
	sig := make([]byte, mode3.SignatureSize)
	mode3.SignTo(s.priv, digest, sig)
	return base64.StdEncoding.EncodeToString(sig), nil
}

func formatKey(alg string, pub []byte) string {
	return alg + ":" + base64.StdEncoding.EncodeToString(pub)
}

// Verify checks a base64 signature over message made by the key string
// verifierKey. sigAlg must match the key's algorithm.
func Verify(verifierKey, sigAlg, hashAlg string, message []byte, sigB64 string) error {
	alg, b64, ok := strings.Cut(verifierKey, ":")
	if !ok {
		return fmt.Errorf("keys: malformed verifier key %q", verifierKey)
	}
	if alg != sigAlg {
		return fmt.Errorf("keys: key algorithm %q does not match signature algorithm %q", alg, sigAlg)
	}
	pubBytes, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return fmt.Errorf("keys: invalid verifier key encoding: %w", err)
	}
	sig, err := base64.StdEncoding.DecodeString(sigB64)
	if err != nil {
		return fmt.Errorf("keys: invalid signature encoding: %w", err)
	}
	digest, err := digestFor(hashAlg, message)
	if err != nil {
		return err
	}

	switch alg {
	case AlgEd25519:
		if len(pubBytes) != ed25519.PublicKeySize {
			return errors.New("keys: invalid ed25519 key length")
		}
		if len(sig) != ed25519.SignatureSize {
			return errors.New("keys: invalid ed25519 signature length")
		}
		if !ed25519.Verify(ed25519.PublicKey(pubBytes), digest, sig) {
			return ErrBadSignature
		}
		return nil
	case AlgDilithium3:
		if len(pubBytes) != mode3.PublicKeySize {
			return errors.New("keys: invalid dilithium3 key length")
		}
		if len(sig) != mode3.SignatureSize {
			return errors.New("keys: invalid dilithium3 signature length")
		}
		var pub mode3.PublicKey
		if err := pub.UnmarshalBinary(pubBytes); err != nil {
			return fmt.Errorf("keys: invalid dilithium3 key: %w", err)
		}
		if !mode3.Verify(&pub, digest, sig) {
			return ErrBadSignature
		}
		return nil
	default:
		return fmt.Errorf("keys: unsupported signature algorithm %q", alg)
	}
}
