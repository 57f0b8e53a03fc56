package cell

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Fixture files describe a snapshot in YAML with 0x-prefixed hex strings:
//
//	inputs:
//	  - tx_hash: 0x…
//	    index: 0
//	    lock: {code_hash: 0x…, hash_type: 1, args: 0x…}
//	    type: {code_hash: 0x…, hash_type: 1, args: 0x…}
//	    data: 0x…
//	outputs:
//	  - lock: …
//	deps:
//	  - lock: …

type fixtureScript struct {
	CodeHash string `yaml:"code_hash"`
	HashType uint8  `yaml:"hash_type"`
	Args     string `yaml:"args,omitempty"`
}

type fixtureCell struct {
	Lock fixtureScript  `yaml:"lock"`
	Type *fixtureScript `yaml:"type,omitempty"`
	Data string         `yaml:"data,omitempty"`
}

type fixtureInput struct {
	Since       uint64 `yaml:"since,omitempty"`
	TxHash      string `yaml:"tx_hash"`
	Index       uint32 `yaml:"index"`
	fixtureCell `yaml:",inline"`
}

type fixture struct {
	Inputs  []fixtureInput `yaml:"inputs"`
	Outputs []fixtureCell  `yaml:"outputs"`
	Deps    []fixtureCell  `yaml:"deps,omitempty"`
}

// LoadFixture reads a YAML snapshot fixture from path.
func LoadFixture(path string) (*Snapshot, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseFixture(b)
}

// ParseFixture decodes a YAML snapshot fixture.
func ParseFixture(b []byte) (*Snapshot, error) {
	var f fixture
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("cell: parse fixture: %w", err)
	}
	s := &Snapshot{}
	for i, in := range f.Inputs {
		txHash, err := hashFromHex(in.TxHash)
		if err != nil {
			return nil, fmt.Errorf("cell: inputs[%d].tx_hash: %w", i, err)
		}
		c, err := in.fixtureCell.toCell()
		if err != nil {
			return nil, fmt.Errorf("cell: inputs[%d]: %w", i, err)
		}
		s.Inputs = append(s.Inputs, Input{
			Ref:  CellInput{Since: in.Since, PreviousOutput: OutPoint{TxHash: txHash, Index: in.Index}},
			Cell: c,
		})
	}
	for i, fc := range f.Outputs {
		c, err := fc.toCell()
		if err != nil {
			return nil, fmt.Errorf("cell: outputs[%d]: %w", i, err)
		}
		s.Outputs = append(s.Outputs, c)
	}
	for i, fc := range f.Deps {
		c, err := fc.toCell()
		if err != nil {
			return nil, fmt.Errorf("cell: deps[%d]: %w", i, err)
		}
		s.Deps = append(s.Deps, c)
	}
	return s, nil
}

// MarshalFixture renders s in the YAML fixture format.
func MarshalFixture(s *Snapshot) ([]byte, error) {
	var f fixture
	for _, in := range s.Inputs {
		f.Inputs = append(f.Inputs, fixtureInput{
			Since:       in.Ref.Since,
			TxHash:      EncodeHex(in.Ref.PreviousOutput.TxHash[:]),
			Index:       in.Ref.PreviousOutput.Index,
			fixtureCell: fromCell(in.Cell),
		})
	}
	for _, c := range s.Outputs {
		f.Outputs = append(f.Outputs, fromCell(c))
	}
	for _, c := range s.Deps {
		f.Deps = append(f.Deps, fromCell(c))
	}
	return yaml.Marshal(&f)
}

func (fs fixtureScript) toScript() (Script, error) {
	h, err := hashFromHex(fs.CodeHash)
	if err != nil {
		return Script{}, fmt.Errorf("code_hash: %w", err)
	}
	args, err := DecodeHex(fs.Args)
	if err != nil {
		return Script{}, fmt.Errorf("args: %w", err)
	}
	return Script{CodeHash: h, HashType: fs.HashType, Args: args}, nil
}

func (fc fixtureCell) toCell() (Cell, error) {
	lock, err := fc.Lock.toScript()
	if err != nil {
		return Cell{}, fmt.Errorf("lock: %w", err)
	}
	data, err := DecodeHex(fc.Data)
	if err != nil {
		return Cell{}, fmt.Errorf("data: %w", err)
	}
	c := Cell{Lock: lock, Data: data}
	if fc.Type != nil {
		t, err := fc.Type.toScript()
		if err != nil {
			return Cell{}, fmt.Errorf("type: %w", err)
		}
		c.Type = &t
	}
	return c, nil
}

func fromScript(s Script) fixtureScript {
	fs := fixtureScript{CodeHash: EncodeHex(s.CodeHash[:]), HashType: s.HashType}
	if len(s.Args) > 0 {
		fs.Args = EncodeHex(s.Args)
	}
	return fs
}

func fromCell(c Cell) fixtureCell {
	fc := fixtureCell{Lock: fromScript(c.Lock)}
	if c.Type != nil {
		t := fromScript(*c.Type)
		fc.Type = &t
	}
	if len(c.Data) > 0 {
		fc.Data = EncodeHex(c.Data)
	}
	return fc
}

// DecodeHex decodes s with an optional 0x prefix. The empty string decodes to
// an empty, non-nil slice.
func DecodeHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, err
	}
	if b == nil {
		b = []byte{}
	}
	return b, nil
}

// EncodeHex returns b as a 0x-prefixed lowercase hex string.
func EncodeHex(b []byte) string {
	return "0x" + hex.EncodeToString(b)
}

// ParseHash decodes a 32-byte hash from hex.
func ParseHash(s string) ([HashLen]byte, error) {
	return hashFromHex(s)
}

func hashFromHex(s string) ([HashLen]byte, error) {
	b, err := DecodeHex(s)
	if err != nil {
		return [HashLen]byte{}, err
	}
	return toHash(b)
}
