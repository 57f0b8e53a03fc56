package nft

import (
	"fmt"

	"xdao.co/cellnft/cell"
)

// Script is a composed token type-script: an ordered list of components plus
// optional ad-hoc checks, applied to whichever transition the transaction
// performs.
//
// Determinism note: declaration order is the evaluation order and decides
// which error is reported when several components reject.
type Script struct {
	ID         string
	Components []Component
	Checks     []Check
}

// Compose builds a script from components, in order.
func Compose(id string, components ...Component) *Script {
	return &Script{ID: id, Components: append([]Component(nil), components...)}
}

// WithChecks returns a copy of s with checks appended after the existing ones.
func (s *Script) WithChecks(checks ...Check) *Script {
	out := *s
	out.Components = append([]Component(nil), s.Components...)
	out.Checks = append(append([]Check(nil), s.Checks...), checks...)
	return &out
}

// Standard is the shipped rule set: Base then OnlyOwner.
func Standard() *Script {
	return Compose("nft", Base{}, OnlyOwner{})
}

// HandleCreation runs every component's OnCreate, then every check.
func (s *Script) HandleCreation(tx cell.View, token cell.Script) error {
	return firstError(s.run(tx, token, Create))
}

// HandleUpdate runs every component's OnUpdate, then every check.
func (s *Script) HandleUpdate(tx cell.View, token cell.Script) error {
	return firstError(s.run(tx, token, Update))
}

// HandleDestroying runs every component's OnDestroy, then every check.
func (s *Script) HandleDestroying(tx cell.View, token cell.Script) error {
	return firstError(s.run(tx, token, Destroy))
}

// Handle dispatches to the entry point for action.
func (s *Script) Handle(tx cell.View, token cell.Script, action Action) error {
	switch action {
	case Create:
		return s.HandleCreation(tx, token)
	case Update:
		return s.HandleUpdate(tx, token)
	case Destroy:
		return s.HandleDestroying(tx, token)
	default:
		return fmt.Errorf("nft: unknown action %d", int(action))
	}
}

// Violations runs the entry point for action and returns every rejection, in
// evaluation order.
func (s *Script) Violations(tx cell.View, token cell.Script, action Action) []error {
	var out []error
	for _, err := range s.run(tx, token, action) {
		if err != nil {
			out = append(out, err)
		}
	}
	return out
}

// Verify validates the transition tx performs on token: the args must be
// well-formed, the transition must classify, and every rule must accept.
// The action is returned whenever classification succeeded.
func (s *Script) Verify(tx cell.View, token cell.Script) (Action, error) {
	if err := ValidateArgs(token); err != nil {
		return 0, err
	}
	action, err := Classify(tx, token)
	if err != nil {
		return 0, err
	}
	return action, s.Handle(tx, token, action)
}

// ValidateArgs rejects token types whose args are not exactly TypeArgsLen long.
func ValidateArgs(token cell.Script) error {
	_, err := ParseTypeArgs(token.Args)
	return err
}

// run evaluates every component and check eagerly; results are in
// declaration order, nil for acceptance.
func (s *Script) run(tx cell.View, token cell.Script, action Action) []error {
	results := make([]error, 0, len(s.Components)+len(s.Checks))
	for _, c := range s.Components {
		var err error
		switch action {
		case Create:
			err = c.OnCreate(tx, token)
		case Update:
			err = c.OnUpdate(tx, token)
		case Destroy:
			err = c.OnDestroy(tx, token)
		}
		results = append(results, err)
	}
	for _, check := range s.Checks {
		if check == nil {
			results = append(results, fmt.Errorf("nft: nil check in script %q", s.ID))
			continue
		}
		results = append(results, check(tx, token))
	}
	return results
}

func firstError(results []error) error {
	for _, err := range results {
		if err != nil {
			return err
		}
	}
	return nil
}
