package nft

import (
	"xdao.co/cellnft/cell"
)

// Groups returns the distinct token type scripts run by tx for the token
// script identified by codeHash and hashType: every such type on an input or
// output, deduplicated, inputs first, in first-seen order.
func Groups(tx cell.View, codeHash [cell.HashLen]byte, hashType byte) ([]cell.Script, error) {
	var out []cell.Script
	seen := make(map[string]struct{})
	for _, src := range []cell.Source{cell.Inputs, cell.Outputs} {
		err := cell.Scan(tx, src, func(_ int, typ *cell.Script) error {
			if typ == nil || typ.CodeHash != codeHash || typ.HashType != hashType {
				return nil
			}
			key := string(typ.Serialize())
			if _, ok := seen[key]; ok {
				return nil
			}
			seen[key] = struct{}{}
			out = append(out, typ.Clone())
			return nil
		})
		if err != nil {
			return nil, encoding("NFT-ENC-001", "load "+src.String()+" types", err)
		}
	}
	return out, nil
}

// Result is the outcome of verifying one script group.
type Result struct {
	Type   cell.Script
	Action Action // zero when classification failed
	Err    error
}

// Accepted reports whether the group verified.
func (r Result) Accepted() bool { return r.Err == nil }

// VerifyAll verifies every group of tx for the token script identified by
// codeHash and hashType. A transaction is accepted iff every result is.
func (s *Script) VerifyAll(tx cell.View, codeHash [cell.HashLen]byte, hashType byte) ([]Result, error) {
	groups, err := Groups(tx, codeHash, hashType)
	if err != nil {
		return nil, err
	}
	results := make([]Result, 0, len(groups))
	for _, g := range groups {
		action, err := s.Verify(tx, g)
		results = append(results, Result{Type: g, Action: action, Err: err})
	}
	return results, nil
}

// FirstRejection returns the first failing result's error, or nil.
func FirstRejection(results []Result) error {
	for _, r := range results {
		if r.Err != nil {
			return r.Err
		}
	}
	return nil
}
