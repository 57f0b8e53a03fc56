package typeid

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
)

func firstInput(seed byte) []byte {
	b := make([]byte, 44)
	for i := range b {
		b[i] = seed
	}
	return b
}

func TestDefault_BlankHashVector(t *testing.T) {
	// BLAKE2b-256("") personalized with "ckb-default-hash".
	got := Default().Sum256()
	require.Equal(t, "44f4c69744d5f8c55d642062949dcae49bc4e7ef43d388c5a12f42b5633d163e", hex.EncodeToString(got[:]))
}

func TestSum256_PartsAreConcatenated(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			h, err := ByName(name, "")
			require.NoError(t, err)
			require.Equal(t, h.Sum256([]byte("abcdef")), h.Sum256([]byte("abc"), []byte("def")))
			require.Equal(t, h.Sum256([]byte("abcdef")), h.Sum256([]byte("ab"), nil, []byte("cdef")))
		})
	}
}

func TestDerive_Deterministic(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			h, err := ByName(name, "")
			require.NoError(t, err)

			a := Derive(h, firstInput(0x11), 0)
			b := Derive(h, firstInput(0x11), 0)
			require.Equal(t, a, b)

			require.NotEqual(t, a, Derive(h, firstInput(0x11), 1), "output index must change the id")
			require.NotEqual(t, a, Derive(h, firstInput(0x12), 0), "first input must change the id")
		})
	}
}

func TestDerive_IndexIsLittleEndianU64(t *testing.T) {
	h := Default()
	in := firstInput(0x01)
	idx := []byte{0x02, 0x01, 0, 0, 0, 0, 0, 0}
	require.Equal(t, h.Sum256(in, idx), Derive(h, in, 0x0102))
}

func TestHashers_LabelSeparatesDomains(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			a, err := ByName(name, "label-a")
			require.NoError(t, err)
			b, err := ByName(name, "label-b")
			require.NoError(t, err)
			require.NotEqual(t, Derive(a, firstInput(0x33), 0), Derive(b, firstInput(0x33), 0))
		})
	}
}

func TestHashers_AreDistinct(t *testing.T) {
	seen := map[[Size]byte]string{}
	for _, name := range Names() {
		h, err := ByName(name, "")
		require.NoError(t, err)
		require.Equal(t, name, h.Name())
		id := Derive(h, firstInput(0x44), 3)
		if prev, ok := seen[id]; ok {
			t.Fatalf("%s and %s produced the same id", prev, name)
		}
		seen[id] = name
	}
}

func TestByName(t *testing.T) {
	h, err := ByName("", "")
	require.NoError(t, err)
	require.Equal(t, Default().Sum256([]byte("x")), h.Sum256([]byte("x")))

	_, err = ByName("md5", "")
	require.Error(t, err)

	_, err = ByName("blake2b", "this-label-is-too-long")
	require.Error(t, err)
}
