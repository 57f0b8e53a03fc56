package archive

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"xdao.co/cellnft/internal/nfttest"
	"xdao.co/cellnft/storage"
)

func TestOpen_Disabled(t *testing.T) {
	a, err := Open(nil, "")
	require.NoError(t, err)
	require.Nil(t, a)
}

func TestOpen_Replicates(t *testing.T) {
	dirs := []string{t.TempDir(), t.TempDir()}
	a, err := Open(dirs, "")
	require.NoError(t, err)
	require.NotNil(t, a)

	tx, _ := nfttest.Mint(nil)
	id, err := a.PutSnapshot(tx)
	require.NoError(t, err)

	s := id.String()
	for _, dir := range dirs {
		_, err := os.Stat(filepath.Join(dir, s[:2], s))
		require.NoError(t, err)
	}
}

func TestOpen_IPFSBackendFailureFailsWrite(t *testing.T) {
	a, err := Open([]string{t.TempDir()}, filepath.Join(t.TempDir(), "no-such-ipfs"))
	require.NoError(t, err)

	r := a.CAS.(storage.ReplicatingCAS)
	require.Len(t, r.Backends, 2)
	require.Equal(t, "ipfs", r.Backends[1].Name)

	tx, _ := nfttest.Mint(nil)
	_, err = a.PutSnapshot(tx)
	require.ErrorContains(t, err, `backend "ipfs"`)
}
