package nft

import (
	"bytes"
	"fmt"

	"xdao.co/cellnft/cell"
)

// Token type args layout:
//
//	factory_code_hash[32] | factory_hash_type[1] | factory_args[32] | token_id[32]
const (
	FactoryCodeHashIndex = 0
	FactoryCodeHashLen   = 32
	FactoryHashTypeIndex = FactoryCodeHashIndex + FactoryCodeHashLen
	FactoryHashTypeLen   = 1
	FactoryArgsIndex     = FactoryHashTypeIndex + FactoryHashTypeLen
	FactoryArgsLen       = 32
	TokenIDIndex         = FactoryArgsIndex + FactoryArgsLen
	TokenIDLen           = 32

	// TypeArgsLen is the complete length of a token's type args.
	TypeArgsLen = TokenIDIndex + TokenIDLen

	// FactoryTypeArgsLen is the args length of a factory type script (a type id).
	FactoryTypeArgsLen = 32

	// bindingPrefixLen is how much of the args two token types must share to
	// count as the same identity during classification.
	bindingPrefixLen = FactoryTypeArgsLen
)

// TypeArgs is the decoded 97-byte token type-identity.
type TypeArgs struct {
	FactoryCodeHash [FactoryCodeHashLen]byte
	FactoryHashType byte
	FactoryArgs     [FactoryArgsLen]byte
	TokenID         [TokenIDLen]byte
}

// ParseTypeArgs decodes token type args; any length other than TypeArgsLen is
// rejected.
func ParseTypeArgs(args []byte) (TypeArgs, error) {
	if len(args) != TypeArgsLen {
		return TypeArgs{}, newError(KindTypeArgsInvalid, "NFT-ARGS-001", fmt.Sprintf("type args must be %d bytes, got %d", TypeArgsLen, len(args)))
	}
	var ta TypeArgs
	copy(ta.FactoryCodeHash[:], args[FactoryCodeHashIndex:FactoryCodeHashIndex+FactoryCodeHashLen])
	ta.FactoryHashType = args[FactoryHashTypeIndex]
	copy(ta.FactoryArgs[:], args[FactoryArgsIndex:FactoryArgsIndex+FactoryArgsLen])
	copy(ta.TokenID[:], args[TokenIDIndex:TokenIDIndex+TokenIDLen])
	return ta, nil
}

// Bytes returns the wire form of ta.
func (ta TypeArgs) Bytes() []byte {
	out := make([]byte, 0, TypeArgsLen)
	out = append(out, ta.FactoryCodeHash[:]...)
	out = append(out, ta.FactoryHashType)
	out = append(out, ta.FactoryArgs[:]...)
	out = append(out, ta.TokenID[:]...)
	return out
}

// FactoryScript returns the type script a factory cell must carry to back
// tokens with these args.
func (ta TypeArgs) FactoryScript() cell.Script {
	return cell.Script{
		CodeHash: ta.FactoryCodeHash,
		HashType: ta.FactoryHashType,
		Args:     append([]byte{}, ta.FactoryArgs[:]...),
	}
}

// TokenMatcher returns the identity predicate used for classification: same
// code hash and hash type, well-formed args, and the same factory binding
// prefix as token.
func TokenMatcher(token cell.Script) func(*cell.Script) bool {
	args := token.Args
	return func(t *cell.Script) bool {
		return t.CodeHash == token.CodeHash &&
			t.HashType == token.HashType &&
			len(t.Args) == TypeArgsLen &&
			len(args) >= bindingPrefixLen &&
			bytes.Equal(t.Args[:bindingPrefixLen], args[:bindingPrefixLen])
	}
}

// FactoryMatcher returns the predicate matching the factory cell referenced by
// ta: code hash, hash type and args all equal the factory sub-fields.
func FactoryMatcher(ta TypeArgs) func(*cell.Script) bool {
	return exactMatcher(ta.FactoryScript())
}

// exactMatcher matches type scripts identical to want.
func exactMatcher(want cell.Script) func(*cell.Script) bool {
	return func(t *cell.Script) bool {
		return t.Equal(want)
	}
}
