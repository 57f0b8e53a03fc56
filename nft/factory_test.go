package nft

import (
	"testing"

	"github.com/stretchr/testify/require"

	"xdao.co/cellnft/cell"
)

func factoryWith(t *testing.T, f Factory) cell.Cell {
	t.Helper()
	data, err := f.Encode()
	require.NoError(t, err)
	ft := factoryType()
	return cell.Cell{Lock: ownerLock, Type: &ft, Data: data}
}

func TestVerifyFactory(t *testing.T) {
	orig := Factory{Name: []byte("Kittens"), Symbol: []byte("KIT"), TokenURI: []byte("ipfs://kit/")}
	ft := factoryType()

	t.Run("create", func(t *testing.T) {
		tx := &cell.Snapshot{
			Inputs:  []cell.Input{{Ref: ref(0x01, 0), Cell: cell.Cell{Lock: ownerLock}}},
			Outputs: []cell.Cell{factoryWith(t, orig)},
		}
		action, err := VerifyFactory(tx, ft)
		require.NoError(t, err)
		require.Equal(t, Create, action)
	})

	t.Run("create with malformed data", func(t *testing.T) {
		bad := factoryWith(t, orig)
		bad.Data = bad.Data[:4]
		tx := &cell.Snapshot{
			Inputs:  []cell.Input{{Ref: ref(0x01, 0), Cell: cell.Cell{Lock: ownerLock}}},
			Outputs: []cell.Cell{bad},
		}
		_, err := VerifyFactory(tx, ft)
		requireKind(t, err, KindDataInvalid, "NFT-DATA-003")
	})

	t.Run("update keeps data", func(t *testing.T) {
		tx := &cell.Snapshot{
			Inputs:  []cell.Input{{Ref: ref(0x01, 0), Cell: factoryWith(t, orig)}},
			Outputs: []cell.Cell{factoryWith(t, orig)},
		}
		action, err := VerifyFactory(tx, ft)
		require.NoError(t, err)
		require.Equal(t, Update, action)
	})

	t.Run("update mutates data", func(t *testing.T) {
		changed := orig
		changed.TokenURI = []byte("ipfs://other/")
		tx := &cell.Snapshot{
			Inputs:  []cell.Input{{Ref: ref(0x01, 0), Cell: factoryWith(t, orig)}},
			Outputs: []cell.Cell{factoryWith(t, changed)},
		}
		action, err := VerifyFactory(tx, ft)
		require.Equal(t, Update, action)
		requireKind(t, err, KindFactoryDataImmutable, "NFT-FACTORY-101")
	})

	t.Run("destroy", func(t *testing.T) {
		tx := &cell.Snapshot{
			Inputs:  []cell.Input{{Ref: ref(0x01, 0), Cell: factoryWith(t, orig)}},
			Outputs: []cell.Cell{{Lock: ownerLock}},
		}
		action, err := VerifyFactory(tx, ft)
		require.NoError(t, err)
		require.Equal(t, Destroy, action)
	})

	t.Run("duplicate", func(t *testing.T) {
		tx := &cell.Snapshot{
			Inputs:  []cell.Input{{Ref: ref(0x01, 0), Cell: factoryWith(t, orig)}},
			Outputs: []cell.Cell{factoryWith(t, orig), factoryWith(t, orig)},
		}
		_, err := VerifyFactory(tx, ft)
		requireKind(t, err, KindCellsCount, "NFT-COUNT-001")
	})
}
