package nft

import "errors"

// Kind is a stable rejection reason.
//
// The set is closed: every rejection produced by this package carries one of
// the kinds below. Callers should branch on Kind/RuleID rather than matching
// error strings.
type Kind string

const (
	KindEncoding             Kind = "Encoding"
	KindTypeArgsInvalid      Kind = "TypeArgsInvalid"
	KindDataInvalid          Kind = "DataInvalid"
	KindCellsCount           Kind = "CellsCountError"
	KindFactoryCellsCount    Kind = "FactoryCellsCountError"
	KindOnlyOwnerCondition   Kind = "OnlyOwnerConditionError"
	KindFactoryDataImmutable Kind = "FactoryDataImmutable"
)

// exitCodes are the script exit codes reported for each kind. Codes 1-3 are
// reserved for runtime syscall failures.
var exitCodes = map[Kind]int{
	KindEncoding:             4,
	KindTypeArgsInvalid:      5,
	KindDataInvalid:          6,
	KindCellsCount:           7,
	KindFactoryCellsCount:    8,
	KindOnlyOwnerCondition:   9,
	KindFactoryDataImmutable: 10,
}

// Error is the structured rejection type.
//
// RuleID names the violated check (e.g. NFT-DATA-002, NFT-OWNER-001) and is
// stable across versions. Message is for humans; do not match on it.
type Error struct {
	Kind    Kind
	RuleID  string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Code returns the script exit code for e's kind.
func (e *Error) Code() int {
	if e == nil {
		return 0
	}
	if c, ok := exitCodes[e.Kind]; ok {
		return c
	}
	return -1
}

func newError(kind Kind, ruleID, msg string) error {
	return &Error{Kind: kind, RuleID: ruleID, Message: msg}
}

func wrapError(kind Kind, ruleID, msg string, cause error) error {
	if cause == nil {
		return newError(kind, ruleID, msg)
	}
	return &Error{Kind: kind, RuleID: ruleID, Message: msg, Cause: cause}
}

// encoding wraps a collaborator failure. Errors that are already structured
// pass through unchanged.
func encoding(ruleID, msg string, cause error) error {
	var e *Error
	if errors.As(cause, &e) {
		return cause
	}
	return wrapError(KindEncoding, ruleID, msg, cause)
}

// IsKind reports whether err is (or wraps) a *Error with the given Kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}

// KindOf returns the Kind of a structured error, or "" if err is not one.
func KindOf(err error) Kind {
	var e *Error
	if !errors.As(err, &e) {
		return ""
	}
	return e.Kind
}

// RuleID returns the stable RuleID for a structured error, or "" if unknown.
func RuleID(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return ""
	}
	return e.RuleID
}

// ExitCode maps err to a script exit code: 0 for nil, the kind's code for a
// structured error, and -1 otherwise.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var e *Error
	if !errors.As(err, &e) {
		return -1
	}
	return e.Code()
}
