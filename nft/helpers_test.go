package nft

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"xdao.co/cellnft/cell"
	"xdao.co/cellnft/typeid"
)

func fill(b byte) [32]byte {
	var h [32]byte
	for i := range h {
		h[i] = b
	}
	return h
}

var (
	tokenCode   = fill(0xA0)
	factoryCode = fill(0xF0)
	factoryArgs = fill(0xFA)

	ownerLock    = cell.Script{CodeHash: fill(0x10), HashType: cell.HashTypeType, Args: []byte("owner")}
	strangerLock = cell.Script{CodeHash: fill(0x10), HashType: cell.HashTypeType, Args: []byte("stranger")}
)

func factoryType() cell.Script {
	return cell.Script{CodeHash: factoryCode, HashType: cell.HashTypeType, Args: append([]byte{}, factoryArgs[:]...)}
}

func tokenArgs(id [32]byte) TypeArgs {
	return TypeArgs{
		FactoryCodeHash: factoryCode,
		FactoryHashType: cell.HashTypeType,
		FactoryArgs:     factoryArgs,
		TokenID:         id,
	}
}

func tokenType(id [32]byte) cell.Script {
	return cell.Script{CodeHash: tokenCode, HashType: cell.HashTypeType, Args: tokenArgs(id).Bytes()}
}

func mustTokenData(t *testing.T, payload string) []byte {
	t.Helper()
	b, err := Token{Payload: []byte(payload)}.Encode()
	require.NoError(t, err)
	return b
}

func factoryCell(t *testing.T, lock cell.Script) cell.Cell {
	t.Helper()
	data, err := Factory{Name: []byte("Kittens"), Symbol: []byte("KIT"), TokenURI: []byte("https://example.com/")}.Encode()
	require.NoError(t, err)
	ft := factoryType()
	return cell.Cell{Lock: lock, Type: &ft, Data: data}
}

func tokenCell(t *testing.T, typ cell.Script, lock cell.Script, payload string) cell.Cell {
	t.Helper()
	return cell.Cell{Lock: lock, Type: &typ, Data: mustTokenData(t, payload)}
}

func ref(b byte, index uint32) cell.CellInput {
	return cell.CellInput{PreviousOutput: cell.OutPoint{TxHash: fill(b), Index: index}}
}

// creationTx returns a minting transaction and the token type it mints.
// Input 0 is spent by the factory owner; output 1 carries the new token; the
// factory cell is the only dep.
func creationTx(t *testing.T, h typeid.Hasher) (*cell.Snapshot, cell.Script) {
	t.Helper()
	if h == nil {
		h = typeid.Default()
	}
	tx := &cell.Snapshot{
		Inputs: []cell.Input{
			{Ref: ref(0x01, 0), Cell: cell.Cell{Lock: ownerLock}},
		},
		Outputs: []cell.Cell{
			{Lock: ownerLock},
		},
		Deps: []cell.Cell{factoryCell(t, ownerLock)},
	}
	id := typeid.Derive(h, tx.Inputs[0].Ref.Serialize(), 1)
	token := tokenType(id)
	tx.Outputs = append(tx.Outputs, tokenCell(t, token, strangerLock, "first"))
	return tx, token
}

// transferTx moves token from one cell to another.
func transferTx(t *testing.T, token cell.Script) *cell.Snapshot {
	t.Helper()
	return &cell.Snapshot{
		Inputs: []cell.Input{
			{Ref: ref(0x02, 0), Cell: tokenCell(t, token, strangerLock, "first")},
		},
		Outputs: []cell.Cell{tokenCell(t, token, ownerLock, "first")},
	}
}

// burnTx consumes token without a successor.
func burnTx(t *testing.T, token cell.Script) *cell.Snapshot {
	t.Helper()
	return &cell.Snapshot{
		Inputs: []cell.Input{
			{Ref: ref(0x03, 0), Cell: tokenCell(t, token, strangerLock, "first")},
		},
		Outputs: []cell.Cell{{Lock: strangerLock}},
	}
}

func requireKind(t *testing.T, err error, kind Kind, ruleID string) {
	t.Helper()
	require.Error(t, err)
	var e *Error
	require.True(t, errors.As(err, &e), "expected *nft.Error, got %T: %v", err, err)
	require.Equal(t, kind, e.Kind, "unexpected kind: %v", err)
	if ruleID != "" {
		require.Equal(t, ruleID, e.RuleID, "unexpected rule: %v", err)
	}
}

// faultyView fails every type lookup in one source.
type faultyView struct {
	*cell.Snapshot
	fail cell.Source
}

var errFaulty = errors.New("faulty source")

func (v faultyView) TypeScript(src cell.Source, i int) (*cell.Script, error) {
	if src == v.fail {
		return nil, errFaulty
	}
	return v.Snapshot.TypeScript(src, i)
}
