// Package verifysvc exposes token verification as a gRPC service.
package verifysvc

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"xdao.co/cellnft/cell"
	"xdao.co/cellnft/nft"
)

// Request asks for every token group of a snapshot to be verified.
type Request struct {
	_        struct{} `cbor:",toarray"`
	Snapshot []byte   // cell.Snapshot CBOR
	CodeHash []byte
	HashType uint8
	Hasher   string // empty selects the server default
	Label    string // empty selects the server label
}

// ClassifyRequest asks which action a snapshot performs on one token type.
type ClassifyRequest struct {
	_        struct{} `cbor:",toarray"`
	Snapshot []byte
	Token    []byte // cell.MarshalScript form
}

type GroupResult struct {
	_        struct{} `cbor:",toarray"`
	TypeArgs []byte
	Action   string
	Kind     string
	RuleID   string
	ExitCode int
	Message  string
}

func (g GroupResult) Accepted() bool { return g.ExitCode == 0 }

// Response carries per-group outcomes. A rejected transaction is a successful
// RPC with Accepted false.
type Response struct {
	_           struct{} `cbor:",toarray"`
	SnapshotCID string
	Accepted    bool
	ExitCode    int
	Results     []GroupResult
	Evidence    []byte
	EvidenceCID string
}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	decMode, err = cbor.DecOptions{MaxArrayElements: 1 << 16}.DecMode()
	if err != nil {
		panic(err)
	}
}

func marshal(v any) ([]byte, error) { return encMode.Marshal(v) }

func unmarshal(b []byte, v any) error { return decMode.Unmarshal(b, v) }

// NewRequest encodes snapshot into a Request. Empty hasher and label defer to
// the server's configuration.
func NewRequest(s *cell.Snapshot, codeHash [cell.HashLen]byte, hashType byte, hasher, label string) (Request, error) {
	b, err := s.MarshalCBOR()
	if err != nil {
		return Request{}, err
	}
	return Request{Snapshot: b, CodeHash: append([]byte(nil), codeHash[:]...), HashType: hashType, Hasher: hasher, Label: label}, nil
}

func (r Request) codeHash() ([cell.HashLen]byte, error) {
	var h [cell.HashLen]byte
	if len(r.CodeHash) != cell.HashLen {
		return h, fmt.Errorf("code hash must be %d bytes, got %d", cell.HashLen, len(r.CodeHash))
	}
	copy(h[:], r.CodeHash)
	return h, nil
}

func toGroupResult(r nft.Result) GroupResult {
	g := GroupResult{TypeArgs: append([]byte{}, r.Type.Args...)}
	if r.Action != 0 {
		g.Action = r.Action.String()
	}
	if r.Err != nil {
		g.Kind = string(nft.KindOf(r.Err))
		g.RuleID = nft.RuleID(r.Err)
		g.ExitCode = nft.ExitCode(r.Err)
		g.Message = r.Err.Error()
	}
	return g
}
