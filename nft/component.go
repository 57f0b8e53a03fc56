package nft

import (
	"bytes"
	"fmt"

	"xdao.co/cellnft/cell"
	"xdao.co/cellnft/typeid"
)

// Component is one independent rule applied to a token transition.
//
// Each entry point must be deterministic and side-effect free. A component
// that has nothing to check for a transition returns nil.
type Component interface {
	Name() string
	OnCreate(tx cell.View, token cell.Script) error
	OnUpdate(tx cell.View, token cell.Script) error
	OnDestroy(tx cell.View, token cell.Script) error
}

// Check is an ad-hoc rule run for every transition, after all components.
type Check func(tx cell.View, token cell.Script) error

// ActionSet is a set of actions.
type ActionSet uint8

// Actions returns the set holding as.
func Actions(as ...Action) ActionSet {
	var s ActionSet
	for _, a := range as {
		s |= 1 << a
	}
	return s
}

func (s ActionSet) Has(a Action) bool { return s&(1<<a) != 0 }

// Base binds created tokens to their creating transaction and to exactly one
// factory cell. It is mandatory in every composed script.
type Base struct {
	// Hasher derives token ids; nil means typeid.Default().
	Hasher typeid.Hasher
}

var _ Component = Base{}

func (Base) Name() string { return "base" }

func (b Base) OnCreate(tx cell.View, token cell.Script) error {
	ta, err := ParseTypeArgs(token.Args)
	if err != nil {
		return err
	}

	id, err := deriveTokenID(tx, b.hasher(), token)
	if err != nil {
		return err
	}
	if id != ta.TokenID {
		return newError(KindTypeArgsInvalid, "NFT-ARGS-002", "token id does not match the id derived from the creating transaction")
	}

	factories, err := cell.Count(tx, cell.Deps, FactoryMatcher(ta))
	if err != nil {
		return encoding("NFT-ENC-001", "load dep types", err)
	}
	if factories != 1 {
		return newError(KindFactoryCellsCount, "NFT-FACTORY-001", "token creation must reference exactly one factory cell")
	}
	return nil
}

func (Base) OnUpdate(cell.View, cell.Script) error  { return nil }
func (Base) OnDestroy(cell.View, cell.Script) error { return nil }

func (b Base) hasher() typeid.Hasher {
	if b.Hasher == nil {
		return typeid.Default()
	}
	return b.Hasher
}

// DeriveTokenID computes the id a token of type token must carry when created
// by tx: the hash of the first input and the index of the first output whose
// type equals token exactly.
func DeriveTokenID(tx cell.View, h typeid.Hasher, token cell.Script) ([typeid.Size]byte, error) {
	if h == nil {
		h = typeid.Default()
	}
	return deriveTokenID(tx, h, token)
}

func deriveTokenID(tx cell.View, h typeid.Hasher, token cell.Script) ([typeid.Size]byte, error) {
	var zero [typeid.Size]byte
	first, err := tx.FirstInput()
	if err != nil {
		return zero, encoding("NFT-ENC-002", "load first input", err)
	}
	idx, err := cell.IndexOf(tx, cell.Outputs, exactMatcher(token))
	if err != nil {
		return zero, encoding("NFT-ENC-001", "load output types", err)
	}
	if idx < 0 {
		return zero, newError(KindEncoding, "NFT-ENC-003", "no output carries the token type")
	}
	return typeid.Derive(h, first, uint64(idx)), nil
}

// OnlyOwner requires the party controlling the factory cell to authorize the
// transition: some input must be locked by the factory's lock.
type OnlyOwner struct {
	// Enforce selects the transitions checked; the zero value checks Create only.
	Enforce ActionSet
}

var _ Component = OnlyOwner{}

func (OnlyOwner) Name() string { return "only-owner" }

func (o OnlyOwner) enforces(a Action) bool {
	if o.Enforce == 0 {
		return a == Create
	}
	return o.Enforce.Has(a)
}

func (o OnlyOwner) OnCreate(tx cell.View, token cell.Script) error {
	if !o.enforces(Create) {
		return nil
	}
	return checkOwner(tx, token)
}

func (o OnlyOwner) OnUpdate(tx cell.View, token cell.Script) error {
	if !o.enforces(Update) {
		return nil
	}
	return checkOwner(tx, token)
}

func (o OnlyOwner) OnDestroy(tx cell.View, token cell.Script) error {
	if !o.enforces(Destroy) {
		return nil
	}
	return checkOwner(tx, token)
}

func checkOwner(tx cell.View, token cell.Script) error {
	ta, err := ParseTypeArgs(token.Args)
	if err != nil {
		return err
	}
	idx, err := cell.IndexOf(tx, cell.Deps, FactoryMatcher(ta))
	if err != nil {
		return encoding("NFT-ENC-001", "load dep types", err)
	}
	if idx < 0 {
		return newError(KindEncoding, "NFT-ENC-003", "factory cell not found in deps")
	}
	factoryLock, err := tx.Lock(cell.Deps, idx)
	if err != nil {
		return encoding("NFT-ENC-002", "load factory lock", err)
	}
	want := factoryLock.Serialize()

	for i, n := 0, tx.Len(cell.Inputs); i < n; i++ {
		lock, err := tx.Lock(cell.Inputs, i)
		if err != nil {
			return encoding("NFT-ENC-002", "load input lock", err)
		}
		if bytes.Equal(lock.Serialize(), want) {
			return nil
		}
	}
	return newError(KindOnlyOwnerCondition, "NFT-OWNER-001", "no input is locked by the factory owner")
}

// DataShape requires every output of the token's identity to carry
// well-formed token data.
type DataShape struct{}

var _ Component = DataShape{}

func (DataShape) Name() string { return "data-shape" }

func (DataShape) OnCreate(tx cell.View, token cell.Script) error { return checkOutputData(tx, token) }
func (DataShape) OnUpdate(tx cell.View, token cell.Script) error { return checkOutputData(tx, token) }
func (DataShape) OnDestroy(cell.View, cell.Script) error         { return nil }

func checkOutputData(tx cell.View, token cell.Script) error {
	match := TokenMatcher(token)
	err := cell.Scan(tx, cell.Outputs, func(i int, typ *cell.Script) error {
		if typ == nil || !match(typ) {
			return nil
		}
		data, err := tx.Data(cell.Outputs, i)
		if err != nil {
			return encoding("NFT-ENC-002", "load output data", err)
		}
		_, err = DecodeToken(data)
		return err
	})
	if err != nil {
		return encoding("NFT-ENC-001", "load output types", err)
	}
	return nil
}

// UniqueMint rejects a creation that places the minted type on more than one
// output. Base derives the id from the first such output only, so without it
// a mint may emit several cells sharing one identity.
type UniqueMint struct{}

var _ Component = UniqueMint{}

func (UniqueMint) Name() string { return "unique-mint" }

func (UniqueMint) OnCreate(tx cell.View, token cell.Script) error {
	n, err := cell.Count(tx, cell.Outputs, exactMatcher(token))
	if err != nil {
		return encoding("NFT-ENC-001", "load output types", err)
	}
	if n > 1 {
		return newError(KindCellsCount, "NFT-COUNT-002", fmt.Sprintf("creation emits %d outputs of one token type", n))
	}
	return nil
}

func (UniqueMint) OnUpdate(cell.View, cell.Script) error  { return nil }
func (UniqueMint) OnDestroy(cell.View, cell.Script) error { return nil }
