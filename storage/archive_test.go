package storage_test

import (
	"testing"

	"github.com/ipfs/go-cid"
	"github.com/stretchr/testify/require"

	"xdao.co/cellnft/cell"
	"xdao.co/cellnft/evidence"
	"xdao.co/cellnft/storage"
	"xdao.co/cellnft/storage/localfs"
)

func TestArchive(t *testing.T) {
	cas, err := localfs.New(t.TempDir())
	require.NoError(t, err)
	a := storage.Archive{CAS: cas}

	snap := &cell.Snapshot{
		Inputs:  []cell.Input{{Cell: cell.Cell{Data: []byte{}, Lock: cell.Script{Args: []byte{}}}}},
		Outputs: []cell.Cell{},
		Deps:    []cell.Cell{},
	}
	id, err := a.PutSnapshot(snap)
	require.NoError(t, err)
	want, err := snap.CID()
	require.NoError(t, err)
	require.True(t, id.Equals(want))

	got, err := a.GetSnapshot(id)
	require.NoError(t, err)
	require.Equal(t, snap, got)

	doc, err := evidence.Render(evidence.Verdict{SnapshotCID: id.String()}, evidence.Options{})
	require.NoError(t, err)
	docID, err := a.PutEvidence(doc)
	require.NoError(t, err)
	require.Equal(t, uint64(cid.Raw), docID.Prefix().Codec)

	parsed, err := a.GetEvidence(docID)
	require.NoError(t, err)
	require.Equal(t, docID.String(), parsed.CID)
	require.True(t, parsed.Accepted())

	_, err = a.GetSnapshot(docID)
	require.Error(t, err)

	_, err = a.PutEvidence([]byte("not a verdict"))
	require.Error(t, err)
}

func TestReadEvidence_RejectsSnapshotCID(t *testing.T) {
	cas, err := localfs.New(t.TempDir())
	require.NoError(t, err)
	a := storage.Archive{CAS: cas}

	snap := &cell.Snapshot{Inputs: []cell.Input{}, Outputs: []cell.Cell{}, Deps: []cell.Cell{}}
	id, err := a.PutSnapshot(snap)
	require.NoError(t, err)

	_, err = storage.ReadEvidence(cas, id)
	require.Error(t, err)
}
