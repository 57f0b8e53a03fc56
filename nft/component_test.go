package nft

import (
	"testing"

	"github.com/stretchr/testify/require"

	"xdao.co/cellnft/cell"
	"xdao.co/cellnft/typeid"
)

func TestBase_OnCreate_Accepts(t *testing.T) {
	tx, token := creationTx(t, nil)
	require.NoError(t, Base{}.OnCreate(tx, token))
}

func TestBase_OnCreate_TokenIDMismatch(t *testing.T) {
	tx, _ := creationTx(t, nil)
	forged := tokenType(fill(0x99))
	tx.Outputs[1].Type = &forged
	requireKind(t, Base{}.OnCreate(tx, forged), KindTypeArgsInvalid, "NFT-ARGS-002")
}

func TestBase_OnCreate_IDBoundToOutputPosition(t *testing.T) {
	tx, token := creationTx(t, nil)
	// Moving the token to another output index invalidates its id.
	tx.Outputs[0], tx.Outputs[1] = tx.Outputs[1], tx.Outputs[0]
	requireKind(t, Base{}.OnCreate(tx, token), KindTypeArgsInvalid, "NFT-ARGS-002")
}

func TestBase_OnCreate_IDBoundToFirstInput(t *testing.T) {
	tx, token := creationTx(t, nil)
	tx.Inputs[0].Ref.PreviousOutput.Index++
	requireKind(t, Base{}.OnCreate(tx, token), KindTypeArgsInvalid, "NFT-ARGS-002")
}

func TestBase_OnCreate_FactoryCount(t *testing.T) {
	t.Run("none", func(t *testing.T) {
		tx, token := creationTx(t, nil)
		tx.Deps = nil
		requireKind(t, Base{}.OnCreate(tx, token), KindFactoryCellsCount, "NFT-FACTORY-001")
	})
	t.Run("two", func(t *testing.T) {
		tx, token := creationTx(t, nil)
		tx.Deps = append(tx.Deps, factoryCell(t, strangerLock))
		requireKind(t, Base{}.OnCreate(tx, token), KindFactoryCellsCount, "NFT-FACTORY-001")
	})
	t.Run("unrelated dep ignored", func(t *testing.T) {
		tx, token := creationTx(t, nil)
		other := factoryType()
		otherArgs := fill(0x01)
		other.Args = otherArgs[:]
		tx.Deps = append(tx.Deps, cell.Cell{Lock: ownerLock, Type: &other})
		require.NoError(t, Base{}.OnCreate(tx, token))
	})
}

func TestBase_OnCreate_TokenNotInOutputs(t *testing.T) {
	tx, token := creationTx(t, nil)
	tx.Outputs = tx.Outputs[:1]
	requireKind(t, Base{}.OnCreate(tx, token), KindEncoding, "NFT-ENC-003")
}

func TestBase_OnCreate_NoInputs(t *testing.T) {
	tx, token := creationTx(t, nil)
	tx.Inputs = nil
	requireKind(t, Base{}.OnCreate(tx, token), KindEncoding, "NFT-ENC-002")
}

func TestBase_PluggableHasher(t *testing.T) {
	h, err := typeid.ByName("blake3", "")
	require.NoError(t, err)
	tx, token := creationTx(t, h)

	require.NoError(t, Base{Hasher: h}.OnCreate(tx, token))
	requireKind(t, Base{}.OnCreate(tx, token), KindTypeArgsInvalid, "NFT-ARGS-002")
}

func TestBase_UpdateAndDestroyAreNoops(t *testing.T) {
	_, token := creationTx(t, nil)
	require.NoError(t, Base{}.OnUpdate(&cell.Snapshot{}, token))
	require.NoError(t, Base{}.OnDestroy(&cell.Snapshot{}, token))
}

func TestDeriveTokenID(t *testing.T) {
	tx, token := creationTx(t, nil)
	id, err := DeriveTokenID(tx, nil, token)
	require.NoError(t, err)
	ta, err := ParseTypeArgs(token.Args)
	require.NoError(t, err)
	require.Equal(t, ta.TokenID, id)
}

func TestOnlyOwner_OnCreate(t *testing.T) {
	t.Run("owner input present", func(t *testing.T) {
		tx, token := creationTx(t, nil)
		require.NoError(t, OnlyOwner{}.OnCreate(tx, token))
	})
	t.Run("owner input among others", func(t *testing.T) {
		tx, token := creationTx(t, nil)
		tx.Inputs = append([]cell.Input{{Ref: ref(0x05, 0), Cell: cell.Cell{Lock: strangerLock}}}, tx.Inputs...)
		require.NoError(t, OnlyOwner{}.OnCreate(tx, token))
	})
	t.Run("no owner input", func(t *testing.T) {
		tx, token := creationTx(t, nil)
		tx.Inputs[0].Cell.Lock = strangerLock
		requireKind(t, OnlyOwner{}.OnCreate(tx, token), KindOnlyOwnerCondition, "NFT-OWNER-001")
	})
	t.Run("lock compared byte for byte", func(t *testing.T) {
		tx, token := creationTx(t, nil)
		near := ownerLock.Clone()
		near.HashType = cell.HashTypeData
		tx.Inputs[0].Cell.Lock = near
		requireKind(t, OnlyOwner{}.OnCreate(tx, token), KindOnlyOwnerCondition, "NFT-OWNER-001")
	})
	t.Run("factory missing", func(t *testing.T) {
		tx, token := creationTx(t, nil)
		tx.Deps = nil
		requireKind(t, OnlyOwner{}.OnCreate(tx, token), KindEncoding, "NFT-ENC-003")
	})
}

func TestOnlyOwner_EnforceSelectsTransitions(t *testing.T) {
	_, token := creationTx(t, nil)
	tx := transferTx(t, token)
	tx.Deps = []cell.Cell{factoryCell(t, ownerLock)}

	// Default configuration checks creation only.
	require.NoError(t, OnlyOwner{}.OnUpdate(tx, token))
	require.NoError(t, OnlyOwner{}.OnDestroy(tx, token))

	strict := OnlyOwner{Enforce: Actions(Create, Update, Destroy)}
	requireKind(t, strict.OnUpdate(tx, token), KindOnlyOwnerCondition, "NFT-OWNER-001")
	requireKind(t, strict.OnDestroy(tx, token), KindOnlyOwnerCondition, "NFT-OWNER-001")

	tx.Inputs[0].Cell.Lock = ownerLock
	require.NoError(t, strict.OnUpdate(tx, token))

	updateOnly := OnlyOwner{Enforce: Actions(Update)}
	creation, minted := creationTx(t, nil)
	creation.Inputs[0].Cell.Lock = strangerLock
	require.NoError(t, updateOnly.OnCreate(creation, minted))
}

func TestDataShape(t *testing.T) {
	tx, token := creationTx(t, nil)
	require.NoError(t, DataShape{}.OnCreate(tx, token))

	tx.Outputs[1].Data = []byte{0x09, 0x00, 'x'}
	requireKind(t, DataShape{}.OnCreate(tx, token), KindDataInvalid, "NFT-DATA-002")
	requireKind(t, DataShape{}.OnUpdate(tx, token), KindDataInvalid, "NFT-DATA-002")
	require.NoError(t, DataShape{}.OnDestroy(tx, token))
}

func TestActionSet(t *testing.T) {
	s := Actions(Create, Destroy)
	require.True(t, s.Has(Create))
	require.False(t, s.Has(Update))
	require.True(t, s.Has(Destroy))
	require.False(t, ActionSet(0).Has(Create))
}

func TestUniqueMint(t *testing.T) {
	tx, token := creationTx(t, nil)
	require.NoError(t, UniqueMint{}.OnCreate(tx, token))

	tx.Outputs = append(tx.Outputs, tokenCell(t, token, ownerLock, "copy"))
	requireKind(t, UniqueMint{}.OnCreate(tx, token), KindCellsCount, "NFT-COUNT-002")
	require.NoError(t, UniqueMint{}.OnUpdate(tx, token))
	require.NoError(t, UniqueMint{}.OnDestroy(tx, token))
}
