// Package testkit holds the conformance suite every storage.CAS must pass.
package testkit

import (
	"testing"

	"github.com/ipfs/go-cid"
	"github.com/stretchr/testify/require"

	"xdao.co/cellnft/cidutil"
	"xdao.co/cellnft/storage"
)

// NewCAS constructs a fresh, empty CAS instance for a test.
// The returned CAS MUST be isolated from other tests.
type NewCAS func(t *testing.T) storage.CAS

func RunCASConformance(t *testing.T, newCAS NewCAS) {
	t.Helper()

	t.Run("PutGetRoundTrip", func(t *testing.T) {
		for _, codec := range []uint64{cid.Raw, cid.DagCBOR} {
			cas := newCAS(t)
			want := []byte("verdict bytes")

			id, err := cas.Put(codec, want)
			require.NoError(t, err)
			wantID, err := cidutil.Sum(codec, want)
			require.NoError(t, err)
			require.True(t, id.Equals(wantID), "got %s want %s", id, wantID)

			got, err := cas.Get(id)
			require.NoError(t, err)
			require.Equal(t, want, got)
		}
	})

	t.Run("CodecIsPartOfIdentity", func(t *testing.T) {
		cas := newCAS(t)
		b := []byte("same bytes, two codecs")
		raw, err := cas.Put(cid.Raw, b)
		require.NoError(t, err)
		dag, err := cas.Put(cid.DagCBOR, b)
		require.NoError(t, err)
		require.False(t, raw.Equals(dag))
		require.True(t, cas.Has(raw))
		require.True(t, cas.Has(dag))
	})

	t.Run("PutIdempotent", func(t *testing.T) {
		cas := newCAS(t)
		b := []byte("same bytes")
		id1, err := cas.Put(cid.Raw, b)
		require.NoError(t, err)
		id2, err := cas.Put(cid.Raw, b)
		require.NoError(t, err)
		require.True(t, id1.Equals(id2))
	})

	t.Run("HasAndNotFound", func(t *testing.T) {
		cas := newCAS(t)
		b := []byte("missing")
		id, err := cidutil.CIDv1RawSHA256CID(b)
		require.NoError(t, err)

		require.False(t, cas.Has(id))
		_, err = cas.Get(id)
		require.True(t, storage.IsNotFound(err), "got %v", err)

		_, err = cas.Put(cid.Raw, b)
		require.NoError(t, err)
		require.True(t, cas.Has(id))
	})

	t.Run("RejectUndefCID", func(t *testing.T) {
		cas := newCAS(t)
		var undef cid.Cid
		require.False(t, cas.Has(undef))
		_, err := cas.Get(undef)
		require.Error(t, err)
	})
}
