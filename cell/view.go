package cell

import "errors"

var (
	ErrIndexOutOfBound = errors.New("cell: index out of bound")
	ErrItemMissing     = errors.New("cell: item missing")
)

// View is read-only access to a transaction snapshot.
//
// Contract:
//   - All methods are pure; repeated calls return equal results.
//   - Indexes outside [0, Len(src)) return ErrIndexOutOfBound.
//   - TypeScript returns (nil, nil) for an untyped cell.
type View interface {
	Len(src Source) int
	TypeScript(src Source, i int) (*Script, error)
	Lock(src Source, i int) (Script, error)
	Data(src Source, i int) ([]byte, error)

	// FirstInput returns the serialized CellInput of input 0.
	FirstInput() ([]byte, error)
}

// Scan calls fn for each cell type in src, in index order, stopping at the
// first error returned by the view or by fn.
func Scan(v View, src Source, fn func(i int, typ *Script) error) error {
	n := v.Len(src)
	for i := 0; i < n; i++ {
		typ, err := v.TypeScript(src, i)
		if err != nil {
			return err
		}
		if err := fn(i, typ); err != nil {
			return err
		}
	}
	return nil
}

// Count returns how many cells in src have a type accepted by match.
// Untyped cells never match.
func Count(v View, src Source, match func(*Script) bool) (int, error) {
	count := 0
	err := Scan(v, src, func(_ int, typ *Script) error {
		if typ != nil && match(typ) {
			count++
		}
		return nil
	})
	return count, err
}

// IndexOf returns the index of the first cell in src whose type is accepted by
// match, or -1.
func IndexOf(v View, src Source, match func(*Script) bool) (int, error) {
	found := -1
	errStop := errors.New("stop")
	err := Scan(v, src, func(i int, typ *Script) error {
		if typ != nil && match(typ) {
			found = i
			return errStop
		}
		return nil
	})
	if err != nil && err != errStop {
		return -1, err
	}
	return found, nil
}
