// Package storage archives the artifacts of verification runs, snapshots and
// evidence documents, in content-addressed stores.
package storage

import "github.com/ipfs/go-cid"

// CAS is a minimal content-addressable storage interface.
//
// Contract:
// - Put MUST be idempotent.
// - Stored objects MUST be immutable.
// - The returned CID is a CIDv1 of codec over a sha2-256 multihash of the bytes.
// - Get MUST verify bytes against the requested CID and return ErrNotFound when
//   the CID is absent.
type CAS interface {
	Reader
	Put(codec uint64, bytes []byte) (cid.Cid, error)
}

// Reader is the read half of CAS, served to remote clients.
type Reader interface {
	Get(id cid.Cid) ([]byte, error)
	Has(id cid.Cid) bool
}
