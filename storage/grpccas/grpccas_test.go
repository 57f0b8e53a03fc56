package grpccas

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ipfs/go-cid"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"

	"xdao.co/cellnft/cidutil"
	"xdao.co/cellnft/evidence"
	"xdao.co/cellnft/storage"
	"xdao.co/cellnft/storage/localfs"
)

func startArchive(t *testing.T, store storage.Reader) *Client {
	t.Helper()
	lis := bufconn.Listen(1024 * 1024)
	srv := grpc.NewServer()
	RegisterArchiveServer(srv, &Server{Store: store})
	go func() {
		_ = srv.Serve(lis)
	}()
	t.Cleanup(srv.Stop)

	dialer := func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }
	cc, err := grpc.DialContext(
		context.Background(),
		"bufnet",
		grpc.WithContextDialer(dialer),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	c := NewClient(cc)
	c.Timeout = 2 * time.Second
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestArchive_FetchEvidence(t *testing.T) {
	cas, err := localfs.New(t.TempDir())
	require.NoError(t, err)
	a := storage.Archive{CAS: cas}

	doc, err := evidence.Render(evidence.Verdict{SnapshotCID: "bafy-test"}, evidence.Options{})
	require.NoError(t, err)
	id, err := a.PutEvidence(doc)
	require.NoError(t, err)

	c := startArchive(t, cas)
	require.True(t, c.Has(id))

	got, err := c.Get(id)
	require.NoError(t, err)
	require.Equal(t, doc, got)

	parsed, err := storage.ReadEvidence(c, id)
	require.NoError(t, err)
	require.Equal(t, id.String(), parsed.CID)
}

func TestArchive_NotFound(t *testing.T) {
	cas, err := localfs.New(t.TempDir())
	require.NoError(t, err)
	c := startArchive(t, cas)

	id, err := cidutil.Sum(cid.Raw, []byte("never stored"))
	require.NoError(t, err)
	require.False(t, c.Has(id))
	_, err = c.Get(id)
	require.ErrorIs(t, err, storage.ErrNotFound)

	_, err = c.Get(cid.Undef)
	require.ErrorIs(t, err, storage.ErrInvalidCID)
}

func TestArchive_CorruptedBackend(t *testing.T) {
	dir := t.TempDir()
	cas, err := localfs.New(dir)
	require.NoError(t, err)
	id, err := cas.Put(cid.Raw, []byte("original"))
	require.NoError(t, err)

	s := id.String()
	path := filepath.Join(dir, s[:2], s)
	require.NoError(t, os.Chmod(path, 0o644))
	require.NoError(t, os.WriteFile(path, []byte("tampered"), 0o644))

	c := startArchive(t, cas)
	_, err = c.Get(id)
	require.ErrorIs(t, err, storage.ErrCIDMismatch)
}

func TestArchive_Disabled(t *testing.T) {
	c := startArchive(t, nil)
	id, err := cidutil.Sum(cid.Raw, []byte("x"))
	require.NoError(t, err)
	_, err = c.Get(id)
	require.Error(t, err)
	require.False(t, c.Has(id))
}
