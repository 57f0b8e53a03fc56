package cell

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadFixture(t *testing.T) {
	s, err := LoadFixture(filepath.Join("testdata", "create.yaml"))
	require.NoError(t, err)

	require.Len(t, s.Inputs, 1)
	require.Len(t, s.Outputs, 1)
	require.Len(t, s.Deps, 1)

	require.Equal(t, hash(0x01), s.Inputs[0].Ref.PreviousOutput.TxHash)
	require.Equal(t, []byte("owner"), s.Inputs[0].Cell.Lock.Args)
	require.Nil(t, s.Inputs[0].Cell.Type)
	require.NotNil(t, s.Inputs[0].Cell.Data)
	require.Empty(t, s.Inputs[0].Cell.Data)

	require.NotNil(t, s.Outputs[0].Type)
	require.Equal(t, hash(0xA0), s.Outputs[0].Type.CodeHash)
	require.Equal(t, []byte{0x00, 0x00}, s.Outputs[0].Data)
}

func TestMarshalFixture(t *testing.T) {
	s := sampleSnapshot()
	b, err := MarshalFixture(s)
	require.NoError(t, err)

	got, err := ParseFixture(b)
	require.NoError(t, err)
	require.Equal(t, s, got)
}

func TestParseFixture_Errors(t *testing.T) {
	_, err := ParseFixture([]byte("inputs:\n  - tx_hash: 0x01\n    lock: {code_hash: 0x00}\n"))
	require.ErrorContains(t, err, "inputs[0].tx_hash")

	_, err = ParseFixture([]byte("outputs:\n  - lock: {code_hash: 0xzz}\n"))
	require.ErrorContains(t, err, "outputs[0]")

	_, err = ParseFixture([]byte("outputs: [\n"))
	require.Error(t, err)
}

func TestHex(t *testing.T) {
	b, err := DecodeHex("")
	require.NoError(t, err)
	require.NotNil(t, b)
	require.Empty(t, b)

	b, err = DecodeHex("0xABcd")
	require.NoError(t, err)
	require.Equal(t, []byte{0xAB, 0xCD}, b)
	require.Equal(t, "0xabcd", EncodeHex(b))

	_, err = ParseHash("0x00")
	require.Error(t, err)
}
