package walker

import "github.com/hades-lang/hades/internal/span"

// Kind tags a SemanticError's variant.
type Kind int

const (
	TypeMismatch Kind = iota
	UndefinedVariable
	UndefinedFunction
	UndefinedStruct
	NotAStruct
	UnknownField
	ArgumentCountMismatch
	ReturnTypeMismatch
	InvalidBinaryOperation
	InvalidUnaryOperation
	RedefinedVariable
	RedefinedFunction
	RedefinedStruct
	InvalidType
	InvalidModuleName
	InvalidImport
)

// Error is a SemanticError. The walker is fatal at the first occurrence —
// Walk returns as soon as one is produced.
type Error struct {
	span.Diagnostic
	Kind Kind
}

func (e *Error) Error() string { return e.Diagnostic.Error() }

func newError(kind Kind, msg string, sp span.Span) *Error {
	return &Error{Diagnostic: span.NewDiagnostic(msg, sp), Kind: kind}
}
