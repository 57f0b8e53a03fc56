package storage

import (
	"fmt"

	"github.com/ipfs/go-cid"

	"xdao.co/cellnft/cell"
	"xdao.co/cellnft/evidence"
)

// Archive stores snapshots as dag-cbor and evidence documents as raw blocks.
type Archive struct {
	CAS CAS
}

func (a Archive) PutSnapshot(s *cell.Snapshot) (cid.Cid, error) {
	b, err := s.MarshalCBOR()
	if err != nil {
		return cid.Undef, err
	}
	return a.CAS.Put(cid.DagCBOR, b)
}

func (a Archive) GetSnapshot(id cid.Cid) (*cell.Snapshot, error) {
	return ReadSnapshot(a.CAS, id)
}

// ReadSnapshot fetches and decodes an archived snapshot from any reader.
func ReadSnapshot(r Reader, id cid.Cid) (*cell.Snapshot, error) {
	if id.Prefix().Codec != cid.DagCBOR {
		return nil, fmt.Errorf("storage: %s is not a snapshot", id)
	}
	b, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	return cell.UnmarshalSnapshot(b)
}

// PutEvidence stores a canonical evidence document. Non-canonical documents
// are rejected before anything is written.
func (a Archive) PutEvidence(doc []byte) (cid.Cid, error) {
	if _, err := evidence.Parse(doc); err != nil {
		return cid.Undef, err
	}
	return a.CAS.Put(cid.Raw, doc)
}

func (a Archive) GetEvidence(id cid.Cid) (*evidence.Document, error) {
	return ReadEvidence(a.CAS, id)
}

// ReadEvidence fetches an archived evidence document and checks that it is
// still canonical.
func ReadEvidence(r Reader, id cid.Cid) (*evidence.Document, error) {
	if id.Prefix().Codec != cid.Raw {
		return nil, fmt.Errorf("storage: %s is not an evidence document", id)
	}
	b, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	return evidence.Parse(b)
}
