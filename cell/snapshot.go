package cell

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/ipfs/go-cid"

	"xdao.co/cellnft/cidutil"
)

// Input is a consumed cell together with the reference that consumed it.
type Input struct {
	Ref  CellInput
	Cell Cell
}

// Snapshot is an in-memory View over fully materialized record sets.
type Snapshot struct {
	Inputs  []Input
	Outputs []Cell
	Deps    []Cell
}

var _ View = (*Snapshot)(nil)

func (s *Snapshot) Len(src Source) int {
	switch src {
	case Inputs:
		return len(s.Inputs)
	case Outputs:
		return len(s.Outputs)
	case Deps:
		return len(s.Deps)
	default:
		return 0
	}
}

func (s *Snapshot) cell(src Source, i int) (*Cell, error) {
	if i < 0 || i >= s.Len(src) {
		return nil, fmt.Errorf("%w: %s[%d]", ErrIndexOutOfBound, src, i)
	}
	switch src {
	case Inputs:
		return &s.Inputs[i].Cell, nil
	case Outputs:
		return &s.Outputs[i], nil
	default:
		return &s.Deps[i], nil
	}
}

func (s *Snapshot) TypeScript(src Source, i int) (*Script, error) {
	c, err := s.cell(src, i)
	if err != nil {
		return nil, err
	}
	return c.Type, nil
}

func (s *Snapshot) Lock(src Source, i int) (Script, error) {
	c, err := s.cell(src, i)
	if err != nil {
		return Script{}, err
	}
	return c.Lock, nil
}

func (s *Snapshot) Data(src Source, i int) ([]byte, error) {
	c, err := s.cell(src, i)
	if err != nil {
		return nil, err
	}
	return c.Data, nil
}

func (s *Snapshot) FirstInput() ([]byte, error) {
	if len(s.Inputs) == 0 {
		return nil, fmt.Errorf("%w: first input", ErrItemMissing)
	}
	return s.Inputs[0].Ref.Serialize(), nil
}

// Wire form. Structs are encoded as CBOR arrays so field order is part of the
// format and field names are not.

type wireScript struct {
	_        struct{} `cbor:",toarray"`
	CodeHash []byte
	HashType uint8
	Args     []byte
}

type wireCell struct {
	_    struct{} `cbor:",toarray"`
	Lock wireScript
	Type *wireScript
	Data []byte
}

type wireInput struct {
	_      struct{} `cbor:",toarray"`
	Since  uint64
	TxHash []byte
	Index  uint32
	Cell   wireCell
}

type wireSnapshot struct {
	_       struct{} `cbor:",toarray"`
	Inputs  []wireInput
	Outputs []wireCell
	Deps    []wireCell
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

// MarshalCBOR returns the deterministic CBOR encoding of s.
func (s *Snapshot) MarshalCBOR() ([]byte, error) {
	w := wireSnapshot{
		Inputs:  make([]wireInput, 0, len(s.Inputs)),
		Outputs: make([]wireCell, 0, len(s.Outputs)),
		Deps:    make([]wireCell, 0, len(s.Deps)),
	}
	for _, in := range s.Inputs {
		w.Inputs = append(w.Inputs, wireInput{
			Since:  in.Ref.Since,
			TxHash: append([]byte(nil), in.Ref.PreviousOutput.TxHash[:]...),
			Index:  in.Ref.PreviousOutput.Index,
			Cell:   toWireCell(in.Cell),
		})
	}
	for _, c := range s.Outputs {
		w.Outputs = append(w.Outputs, toWireCell(c))
	}
	for _, c := range s.Deps {
		w.Deps = append(w.Deps, toWireCell(c))
	}
	return encMode.Marshal(w)
}

// UnmarshalSnapshot decodes the CBOR form produced by MarshalCBOR.
func UnmarshalSnapshot(b []byte) (*Snapshot, error) {
	var w wireSnapshot
	if err := decMode.Unmarshal(b, &w); err != nil {
		return nil, fmt.Errorf("cell: decode snapshot: %w", err)
	}
	s := &Snapshot{
		Inputs:  make([]Input, 0, len(w.Inputs)),
		Outputs: make([]Cell, 0, len(w.Outputs)),
		Deps:    make([]Cell, 0, len(w.Deps)),
	}
	for i, in := range w.Inputs {
		txHash, err := toHash(in.TxHash)
		if err != nil {
			return nil, fmt.Errorf("cell: input %d tx hash: %w", i, err)
		}
		c, err := fromWireCell(in.Cell)
		if err != nil {
			return nil, fmt.Errorf("cell: input %d: %w", i, err)
		}
		s.Inputs = append(s.Inputs, Input{
			Ref:  CellInput{Since: in.Since, PreviousOutput: OutPoint{TxHash: txHash, Index: in.Index}},
			Cell: c,
		})
	}
	for i, wc := range w.Outputs {
		c, err := fromWireCell(wc)
		if err != nil {
			return nil, fmt.Errorf("cell: output %d: %w", i, err)
		}
		s.Outputs = append(s.Outputs, c)
	}
	for i, wc := range w.Deps {
		c, err := fromWireCell(wc)
		if err != nil {
			return nil, fmt.Errorf("cell: dep %d: %w", i, err)
		}
		s.Deps = append(s.Deps, c)
	}
	return s, nil
}

// CID returns the content identifier of the snapshot's canonical CBOR bytes.
func (s *Snapshot) CID() (cid.Cid, error) {
	b, err := s.MarshalCBOR()
	if err != nil {
		return cid.Undef, err
	}
	return cidutil.CIDv1CBORSHA256(b)
}

// MarshalScript returns the CBOR form of a single script, as carried in
// service requests.
func MarshalScript(s Script) ([]byte, error) {
	return encMode.Marshal(toWireScript(s))
}

// UnmarshalScript decodes the form produced by MarshalScript.
func UnmarshalScript(b []byte) (Script, error) {
	var w wireScript
	if err := decMode.Unmarshal(b, &w); err != nil {
		return Script{}, fmt.Errorf("cell: decode script: %w", err)
	}
	return fromWireScript(w)
}

func toWireScript(s Script) wireScript {
	return wireScript{
		CodeHash: append([]byte(nil), s.CodeHash[:]...),
		HashType: s.HashType,
		Args:     append([]byte{}, s.Args...),
	}
}

func fromWireScript(w wireScript) (Script, error) {
	h, err := toHash(w.CodeHash)
	if err != nil {
		return Script{}, fmt.Errorf("code hash: %w", err)
	}
	return Script{CodeHash: h, HashType: w.HashType, Args: append([]byte{}, w.Args...)}, nil
}

func toWireCell(c Cell) wireCell {
	w := wireCell{Lock: toWireScript(c.Lock), Data: append([]byte{}, c.Data...)}
	if c.Type != nil {
		t := toWireScript(*c.Type)
		w.Type = &t
	}
	return w
}

func fromWireCell(w wireCell) (Cell, error) {
	lock, err := fromWireScript(w.Lock)
	if err != nil {
		return Cell{}, fmt.Errorf("lock: %w", err)
	}
	c := Cell{Lock: lock, Data: append([]byte{}, w.Data...)}
	if w.Type != nil {
		t, err := fromWireScript(*w.Type)
		if err != nil {
			return Cell{}, fmt.Errorf("type: %w", err)
		}
		c.Type = &t
	}
	return c, nil
}

func toHash(b []byte) ([HashLen]byte, error) {
	var h [HashLen]byte
	if len(b) != HashLen {
		return h, fmt.Errorf("want %d bytes, got %d", HashLen, len(b))
	}
	copy(h[:], b)
	return h, nil
}
