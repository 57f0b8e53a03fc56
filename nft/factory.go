package nft

import (
	"fmt"

	"xdao.co/cellnft/cell"
)

// VerifyFactory validates the transition tx performs on the factory cells of
// type factoryType. Factory template data is immutable: it may be created and
// destroyed but an update must carry every field over unchanged.
func VerifyFactory(tx cell.View, factoryType cell.Script) (Action, error) {
	match := exactMatcher(factoryType)
	action, err := classify(tx, match)
	if err != nil {
		return 0, err
	}

	switch action {
	case Create:
		outs, err := decodeFactories(tx, cell.Outputs, match)
		if err != nil {
			return action, err
		}
		if len(outs) == 0 {
			return action, newError(KindEncoding, "NFT-ENC-003", "no output carries the factory type")
		}
		return action, nil
	case Update:
		ins, err := decodeFactories(tx, cell.Inputs, match)
		if err != nil {
			return action, err
		}
		outs, err := decodeFactories(tx, cell.Outputs, match)
		if err != nil {
			return action, err
		}
		for i := range ins {
			if !ins[i].ImmutableEqual(outs[i]) {
				return action, newError(KindFactoryDataImmutable, "NFT-FACTORY-101", fmt.Sprintf("factory data changed between input and output %d", i))
			}
		}
		return action, nil
	default:
		return action, nil
	}
}

func decodeFactories(tx cell.View, src cell.Source, match func(*cell.Script) bool) ([]Factory, error) {
	var out []Factory
	err := cell.Scan(tx, src, func(i int, typ *cell.Script) error {
		if typ == nil || !match(typ) {
			return nil
		}
		data, err := tx.Data(src, i)
		if err != nil {
			return encoding("NFT-ENC-002", "load factory data", err)
		}
		f, err := DecodeFactory(data)
		if err != nil {
			return err
		}
		out = append(out, f)
		return nil
	})
	if err != nil {
		return nil, encoding("NFT-ENC-001", "load "+src.String()+" types", err)
	}
	return out, nil
}
