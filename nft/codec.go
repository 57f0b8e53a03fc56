package nft

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// DynMinLen is the size of one length prefix, and therefore the minimum
// footprint of every variable-size field.
const DynMinLen = 2

const (
	fixedLen = 0

	// TokenDataMinLen is the shortest token record: one empty field.
	TokenDataMinLen = fixedLen + DynMinLen
	// FactoryDataMinLen is the shortest factory record: three empty fields.
	FactoryDataMinLen = fixedLen + DynMinLen*3
)

// readDynLen returns the content length declared by the prefix at off.
// Callers guarantee off+DynMinLen <= len(buf).
func readDynLen(buf []byte, off int) int {
	return int(binary.LittleEndian.Uint16(buf[off : off+DynMinLen]))
}

func appendDyn(dst, field []byte) ([]byte, error) {
	if len(field) > math.MaxUint16 {
		return nil, fmt.Errorf("nft: field of %d bytes exceeds the u16 length prefix", len(field))
	}
	dst = binary.LittleEndian.AppendUint16(dst, uint16(len(field)))
	return append(dst, field...), nil
}

// Token is the decoded data of a token cell.
//
// Layout:
//
//	payload: <size:u16> + <content>
type Token struct {
	Payload []byte
}

// DecodeToken parses raw token cell data. Trailing bytes are ignored.
func DecodeToken(raw []byte) (Token, error) {
	if len(raw) < TokenDataMinLen {
		return Token{}, newError(KindDataInvalid, "NFT-DATA-001", "token data shorter than its length prefix")
	}

	n := readDynLen(raw, fixedLen)
	start := fixedLen + DynMinLen
	if len(raw) < start+n {
		return Token{}, newError(KindDataInvalid, "NFT-DATA-002", fmt.Sprintf("token payload declares %d bytes, %d available", n, len(raw)-start))
	}
	return Token{Payload: append([]byte{}, raw[start:start+n]...)}, nil
}

// Encode returns the wire form of t.
func (t Token) Encode() ([]byte, error) {
	return appendDyn(make([]byte, 0, DynMinLen+len(t.Payload)), t.Payload)
}

// Factory is the decoded data of a factory (collection template) cell.
//
// Layout:
//
//	name:      <size:u16> + <content>
//	symbol:    <size:u16> + <content>
//	token_uri: <size:u16> + <content>
//
// Every field may be empty but its prefix is mandatory.
type Factory struct {
	Name     []byte
	Symbol   []byte
	TokenURI []byte
}

// DecodeFactory parses raw factory cell data.
//
// Bounds are checked incrementally: once a field's length is known, the buffer
// must hold that field plus the minimum footprint of every field after it.
func DecodeFactory(raw []byte) (Factory, error) {
	if len(raw) < FactoryDataMinLen {
		return Factory{}, newError(KindDataInvalid, "NFT-DATA-003", "factory data shorter than three length prefixes")
	}

	// name; symbol and token_uri still need their prefixes
	nameOff := fixedLen
	nameLen := readDynLen(raw, nameOff)
	symbolOff := nameOff + DynMinLen + nameLen
	if len(raw) < symbolOff+DynMinLen*2 {
		return Factory{}, newError(KindDataInvalid, "NFT-DATA-004", fmt.Sprintf("factory name declares %d bytes, buffer too short", nameLen))
	}

	// symbol; token_uri still needs its prefix
	symbolLen := readDynLen(raw, symbolOff)
	uriOff := symbolOff + DynMinLen + symbolLen
	if len(raw) < uriOff+DynMinLen {
		return Factory{}, newError(KindDataInvalid, "NFT-DATA-005", fmt.Sprintf("factory symbol declares %d bytes, buffer too short", symbolLen))
	}

	uriLen := readDynLen(raw, uriOff)
	end := uriOff + DynMinLen + uriLen
	if len(raw) < end {
		return Factory{}, newError(KindDataInvalid, "NFT-DATA-006", fmt.Sprintf("factory token_uri declares %d bytes, buffer too short", uriLen))
	}

	return Factory{
		Name:     append([]byte{}, raw[nameOff+DynMinLen:symbolOff]...),
		Symbol:   append([]byte{}, raw[symbolOff+DynMinLen:uriOff]...),
		TokenURI: append([]byte{}, raw[uriOff+DynMinLen:end]...),
	}, nil
}

// Encode returns the wire form of f.
func (f Factory) Encode() ([]byte, error) {
	out := make([]byte, 0, FactoryDataMinLen+len(f.Name)+len(f.Symbol)+len(f.TokenURI))
	var err error
	for _, field := range [][]byte{f.Name, f.Symbol, f.TokenURI} {
		if out, err = appendDyn(out, field); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// ImmutableEqual reports whether f and other carry identical template data.
func (f Factory) ImmutableEqual(other Factory) bool {
	return bytes.Equal(f.Name, other.Name) &&
		bytes.Equal(f.Symbol, other.Symbol) &&
		bytes.Equal(f.TokenURI, other.TokenURI)
}
