// Package nfttest builds token transactions for tests outside package nft.
package nfttest

import (
	"xdao.co/cellnft/cell"
	"xdao.co/cellnft/nft"
	"xdao.co/cellnft/typeid"
)

func Fill(b byte) [cell.HashLen]byte {
	var h [cell.HashLen]byte
	for i := range h {
		h[i] = b
	}
	return h
}

var (
	TokenCode   = Fill(0xA0)
	FactoryCode = Fill(0xF0)
	FactoryArgs = Fill(0xFA)

	OwnerLock    = cell.Script{CodeHash: Fill(0x10), HashType: cell.HashTypeType, Args: []byte("owner")}
	StrangerLock = cell.Script{CodeHash: Fill(0x10), HashType: cell.HashTypeType, Args: []byte("stranger")}
)

func FactoryType() cell.Script {
	return cell.Script{CodeHash: FactoryCode, HashType: cell.HashTypeType, Args: append([]byte{}, FactoryArgs[:]...)}
}

// TokenType returns the token type with the given id bound to the test factory.
func TokenType(id [typeid.Size]byte) cell.Script {
	ta := nft.TypeArgs{
		FactoryCodeHash: FactoryCode,
		FactoryHashType: cell.HashTypeType,
		FactoryArgs:     FactoryArgs,
		TokenID:         id,
	}
	return cell.Script{CodeHash: TokenCode, HashType: cell.HashTypeType, Args: ta.Bytes()}
}

func FactoryCell(lock cell.Script) cell.Cell {
	data, err := nft.Factory{Name: []byte("Kittens"), Symbol: []byte("KIT"), TokenURI: []byte("https://example.com/")}.Encode()
	if err != nil {
		panic(err)
	}
	ft := FactoryType()
	return cell.Cell{Lock: lock, Type: &ft, Data: data}
}

func TokenCell(typ cell.Script, lock cell.Script, payload string) cell.Cell {
	data, err := nft.Token{Payload: []byte(payload)}.Encode()
	if err != nil {
		panic(err)
	}
	return cell.Cell{Lock: lock, Type: &typ, Data: data}
}

// Mint returns a transaction in which the factory owner mints one token at
// output 1, and that token's type. A nil hasher means typeid.Default().
func Mint(h typeid.Hasher) (*cell.Snapshot, cell.Script) {
	if h == nil {
		h = typeid.Default()
	}
	tx := &cell.Snapshot{
		Inputs: []cell.Input{{
			Ref:  cell.CellInput{PreviousOutput: cell.OutPoint{TxHash: Fill(0x01)}},
			Cell: cell.Cell{Lock: OwnerLock, Data: []byte{}},
		}},
		Outputs: []cell.Cell{{Lock: OwnerLock, Data: []byte{}}},
		Deps:    []cell.Cell{FactoryCell(OwnerLock)},
	}
	token := TokenType(typeid.Derive(h, tx.Inputs[0].Ref.Serialize(), 1))
	tx.Outputs = append(tx.Outputs, TokenCell(token, StrangerLock, "first"))
	return tx, token
}
