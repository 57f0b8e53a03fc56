package nft

import (
	"fmt"

	"xdao.co/cellnft/cell"
)

// Action is the effect a transaction has on one token identity.
type Action int

const (
	Create Action = iota + 1
	Update
	Destroy
)

func (a Action) String() string {
	switch a {
	case Create:
		return "create"
	case Update:
		return "update"
	case Destroy:
		return "destroy"
	default:
		return "unknown"
	}
}

// ParseAction is the inverse of Action.String.
func ParseAction(s string) (Action, error) {
	switch s {
	case "create":
		return Create, nil
	case "update":
		return Update, nil
	case "destroy":
		return Destroy, nil
	default:
		return 0, fmt.Errorf("nft: unknown action %q", s)
	}
}

// Classify derives the action tx performs on the identity of token.
//
//   - no matching input: Create (outputs are not inspected)
//   - one matching input, no matching output: Destroy
//   - equal non-zero counts: Update
//   - anything else: CellsCountError
func Classify(tx cell.View, token cell.Script) (Action, error) {
	return classify(tx, TokenMatcher(token))
}

func classify(tx cell.View, match func(*cell.Script) bool) (Action, error) {
	inputs, err := cell.Count(tx, cell.Inputs, match)
	if err != nil {
		return 0, encoding("NFT-ENC-001", "load input types", err)
	}
	if inputs == 0 {
		return Create, nil
	}

	outputs, err := cell.Count(tx, cell.Outputs, match)
	if err != nil {
		return 0, encoding("NFT-ENC-001", "load output types", err)
	}
	if inputs == 1 && outputs == 0 {
		return Destroy, nil
	}
	if inputs == outputs {
		return Update, nil
	}
	return 0, newError(KindCellsCount, "NFT-COUNT-001", fmt.Sprintf("%d matching inputs, %d matching outputs", inputs, outputs))
}
