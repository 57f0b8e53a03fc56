// Package cidutil derives IPFS-compatible content identifiers for the
// artifacts a verification run produces.
package cidutil

import (
	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

// CIDv1RawSHA256 returns a CIDv1 string using the "raw" multicodec
// and a sha2-256 multihash. Used for evidence documents.
func CIDv1RawSHA256(data []byte) string {
	id, err := CIDv1RawSHA256CID(data)
	if err != nil {
		// multihash.Sum only errors for invalid inputs; with SHA2_256 and -1 length,
		// this should be unreachable.
		return ""
	}
	return id.String()
}

// CIDv1RawSHA256CID returns a CIDv1 (raw + sha2-256) derived from data.
func CIDv1RawSHA256CID(data []byte) (cid.Cid, error) {
	return Sum(cid.Raw, data)
}

// CIDv1CBORSHA256 returns a CIDv1 (dag-cbor + sha2-256) for canonical CBOR bytes.
// Used for transaction snapshots.
func CIDv1CBORSHA256(data []byte) (cid.Cid, error) {
	return Sum(cid.DagCBOR, data)
}

// Sum returns a CIDv1 with the given multicodec over a sha2-256 multihash of data.
func Sum(codec uint64, data []byte) (cid.Cid, error) {
	mh, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return cid.Undef, err
	}
	return cid.NewCidV1(codec, mh), nil
}

// Matches reports whether data hashes to id under id's own codec.
func Matches(id cid.Cid, data []byte) bool {
	if !id.Defined() {
		return false
	}
	got, err := Sum(id.Prefix().Codec, data)
	if err != nil {
		return false
	}
	return got.Equals(id)
}
