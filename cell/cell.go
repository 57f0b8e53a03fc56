// Package cell models the record sets of a UTXO-style transaction as seen by a
// type-script verifier.
//
// A transaction consumes input cells, produces output cells and may reference
// dependency cells. Verifiers only ever read these sets; the View interface is
// the whole contract between a verifier and whatever runtime supplies the cells.
package cell

import (
	"bytes"
	"encoding/binary"
)

// Source names one of the three record collections in a transaction.
type Source int

const (
	Inputs Source = iota
	Outputs
	Deps
)

func (s Source) String() string {
	switch s {
	case Inputs:
		return "inputs"
	case Outputs:
		return "outputs"
	case Deps:
		return "deps"
	default:
		return "unknown"
	}
}

// Hash types accepted in Script.HashType.
const (
	HashTypeData  byte = 0
	HashTypeType  byte = 1
	HashTypeData1 byte = 2
)

const (
	HashLen = 32

	// CellInputLen is the serialized size of a CellInput: since(8) + tx_hash(32) + index(4).
	CellInputLen = 8 + HashLen + 4

	scriptFieldCount = 3
	scriptHeaderLen  = 4 * (1 + scriptFieldCount)
)

// Script is either a type descriptor or an owner predicate (lock).
type Script struct {
	CodeHash [HashLen]byte
	HashType byte
	Args     []byte
}

// Serialize returns the molecule table encoding of s:
//
//	total_size:u32 | offset[3]:u32 | code_hash[32] | hash_type:u8 | args_len:u32 | args
//
// All integers are little-endian.
func (s Script) Serialize() []byte {
	argsLen := 4 + len(s.Args)
	total := scriptHeaderLen + HashLen + 1 + argsLen

	out := make([]byte, 0, total)
	out = binary.LittleEndian.AppendUint32(out, uint32(total))
	out = binary.LittleEndian.AppendUint32(out, uint32(scriptHeaderLen))
	out = binary.LittleEndian.AppendUint32(out, uint32(scriptHeaderLen+HashLen))
	out = binary.LittleEndian.AppendUint32(out, uint32(scriptHeaderLen+HashLen+1))
	out = append(out, s.CodeHash[:]...)
	out = append(out, s.HashType)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(s.Args)))
	out = append(out, s.Args...)
	return out
}

// Equal reports whether s and other serialize to the same bytes.
func (s Script) Equal(other Script) bool {
	return s.CodeHash == other.CodeHash &&
		s.HashType == other.HashType &&
		bytes.Equal(s.Args, other.Args)
}

// Clone returns a deep copy of s.
func (s Script) Clone() Script {
	out := s
	out.Args = append([]byte(nil), s.Args...)
	return out
}

type OutPoint struct {
	TxHash [HashLen]byte
	Index  uint32
}

// CellInput references the cell consumed by a transaction input.
type CellInput struct {
	Since          uint64
	PreviousOutput OutPoint
}

// Serialize returns the fixed-size struct encoding of in.
func (in CellInput) Serialize() []byte {
	out := make([]byte, 0, CellInputLen)
	out = binary.LittleEndian.AppendUint64(out, in.Since)
	out = append(out, in.PreviousOutput.TxHash[:]...)
	out = binary.LittleEndian.AppendUint32(out, in.PreviousOutput.Index)
	return out
}

// Cell is one unit of ledger state. A nil Type means the cell is untyped.
type Cell struct {
	Lock Script
	Type *Script
	Data []byte
}
