package nft

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"xdao.co/cellnft/cell"
)

// recorder records which entry points ran and returns fixed results.
type recorder struct {
	name  string
	calls *[]string
	err   error
}

func (p recorder) Name() string { return p.name }

func (p recorder) record(entry string) error {
	*p.calls = append(*p.calls, p.name+"."+entry)
	return p.err
}

func (p recorder) OnCreate(cell.View, cell.Script) error  { return p.record("create") }
func (p recorder) OnUpdate(cell.View, cell.Script) error  { return p.record("update") }
func (p recorder) OnDestroy(cell.View, cell.Script) error { return p.record("destroy") }

func TestScript_EagerEvaluationFirstErrorWins(t *testing.T) {
	var calls []string
	errA := errors.New("a rejects")
	errC := errors.New("c rejects")
	s := Compose("recorder",
		recorder{name: "a", calls: &calls, err: errA},
		recorder{name: "b", calls: &calls},
		recorder{name: "c", calls: &calls, err: errC},
	)

	err := s.HandleCreation(&cell.Snapshot{}, cell.Script{})
	require.ErrorIs(t, err, errA)
	require.Equal(t, []string{"a.create", "b.create", "c.create"}, calls)

	calls = nil
	require.ErrorIs(t, s.HandleUpdate(&cell.Snapshot{}, cell.Script{}), errA)
	require.Equal(t, []string{"a.update", "b.update", "c.update"}, calls)

	calls = nil
	require.ErrorIs(t, s.HandleDestroying(&cell.Snapshot{}, cell.Script{}), errA)
	require.Equal(t, []string{"a.destroy", "b.destroy", "c.destroy"}, calls)

	calls = nil
	violations := s.Violations(&cell.Snapshot{}, cell.Script{}, Create)
	require.Len(t, violations, 2)
	require.ErrorIs(t, violations[0], errA)
	require.ErrorIs(t, violations[1], errC)
}

func TestScript_ChecksRunAfterComponents(t *testing.T) {
	var calls []string
	errCheck := errors.New("check rejects")
	s := Compose("recorder", recorder{name: "a", calls: &calls}).WithChecks(
		func(cell.View, cell.Script) error {
			calls = append(calls, "check")
			return errCheck
		},
	)

	require.ErrorIs(t, s.HandleUpdate(&cell.Snapshot{}, cell.Script{}), errCheck)
	require.Equal(t, []string{"a.update", "check"}, calls)

	calls = nil
	require.ErrorIs(t, s.HandleDestroying(&cell.Snapshot{}, cell.Script{}), errCheck)
	require.Equal(t, []string{"a.destroy", "check"}, calls)
}

func TestScript_WithChecksDoesNotMutateReceiver(t *testing.T) {
	base := Standard()
	extended := base.WithChecks(func(cell.View, cell.Script) error { return errors.New("no") })
	require.Empty(t, base.Checks)
	require.Len(t, extended.Checks, 1)
	require.Len(t, extended.Components, 2)
}

func TestStandard_Lifecycle(t *testing.T) {
	s := Standard()

	tx, token := creationTx(t, nil)
	action, err := s.Verify(tx, token)
	require.NoError(t, err)
	require.Equal(t, Create, action)

	action, err = s.Verify(transferTx(t, token), token)
	require.NoError(t, err)
	require.Equal(t, Update, action)

	action, err = s.Verify(burnTx(t, token), token)
	require.NoError(t, err)
	require.Equal(t, Destroy, action)
}

func TestStandard_CreationRequiresBothRules(t *testing.T) {
	s := Standard()

	t.Run("ownership rejects", func(t *testing.T) {
		tx, token := creationTx(t, nil)
		tx.Inputs[0].Cell.Lock = strangerLock
		action, err := s.Verify(tx, token)
		require.Equal(t, Create, action)
		requireKind(t, err, KindOnlyOwnerCondition, "NFT-OWNER-001")
	})

	t.Run("base error reported before ownership error", func(t *testing.T) {
		tx, token := creationTx(t, nil)
		tx.Deps = nil
		_, err := s.Verify(tx, token)
		requireKind(t, err, KindFactoryCellsCount, "NFT-FACTORY-001")

		violations := s.Violations(tx, token, Create)
		require.Len(t, violations, 2)
		requireKind(t, violations[1], KindEncoding, "NFT-ENC-003")
	})

	t.Run("both reject, base wins", func(t *testing.T) {
		tx, _ := creationTx(t, nil)
		forged := tokenType(fill(0x99))
		tx.Outputs[1].Type = &forged
		tx.Inputs[0].Cell.Lock = strangerLock
		_, err := s.Verify(tx, forged)
		requireKind(t, err, KindTypeArgsInvalid, "NFT-ARGS-002")
	})
}

func TestScript_VerifyRejectsMalformedArgs(t *testing.T) {
	token := tokenType(fill(0x01))
	token.Args = token.Args[:TypeArgsLen-1]
	_, err := Standard().Verify(&cell.Snapshot{}, token)
	requireKind(t, err, KindTypeArgsInvalid, "NFT-ARGS-001")
}

func TestScript_VerifyRejectsSplit(t *testing.T) {
	_, token := creationTx(t, nil)
	tx := transferTx(t, token)
	tx.Outputs = append(tx.Outputs, tokenCell(t, token, ownerLock, "copy"))
	_, err := Standard().Verify(tx, token)
	requireKind(t, err, KindCellsCount, "NFT-COUNT-001")
}

func TestScript_StructuralComponent(t *testing.T) {
	s := Compose("nft-strict", Base{}, OnlyOwner{}, DataShape{})
	tx, token := creationTx(t, nil)
	tx.Outputs[1].Data = []byte{0x01}
	_, err := s.Verify(tx, token)
	requireKind(t, err, KindDataInvalid, "NFT-DATA-001")
}

func TestExitCode(t *testing.T) {
	require.Equal(t, 0, ExitCode(nil))
	require.Equal(t, -1, ExitCode(errors.New("plain")))

	tx, token := creationTx(t, nil)
	tx.Inputs[0].Cell.Lock = strangerLock
	_, err := Standard().Verify(tx, token)
	require.Equal(t, 9, ExitCode(err))
	require.Equal(t, KindOnlyOwnerCondition, KindOf(err))
	require.Equal(t, "NFT-OWNER-001", RuleID(err))
	require.True(t, IsKind(err, KindOnlyOwnerCondition))
}
