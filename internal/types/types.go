// Package types is the walker's and codegen's shared representation of
// resolved (checker-level) types, distinct from the surface ast.Type
// annotations the parser produces.
package types

import "fmt"

// Kind is the tag of a resolved Type.
type Kind int

const (
	Int Kind = iota
	Float
	Bool
	String
	Void
	Struct
	Array
	// Generic has no surface syntax; a parameter of this type is matched
	// by set membership rather than equality. No builtin signature uses it
	// at present (printf's only declared parameter is a String).
	Generic
)

// Type is a fully resolved type: either a scalar, a named struct, a
// fixed-size array of some element type, or (builtins only) a closed set
// of scalar kinds an argument may match.
type Type struct {
	Kind       Kind
	StructName string  // populated when Kind == Struct
	Elem       *Type   // populated when Kind == Array
	Size       int     // populated when Kind == Array
	Set        []Kind  // populated when Kind == Generic
}

func (t Type) String() string {
	switch t.Kind {
	case Int:
		return "int"
	case Float:
		return "float"
	case Bool:
		return "bool"
	case String:
		return "string"
	case Void:
		return "void"
	case Struct:
		return t.StructName
	case Array:
		return fmt.Sprintf("[%s; %d]", t.Elem, t.Size)
	case Generic:
		return "generic"
	default:
		return "unknown"
	}
}

// Equal reports structural equality, the rule the walker uses for
// declared-vs-inferred type checks (§4.4 Let, Return, struct-init field
// checks).
func (t Type) Equal(other Type) bool {
	if t.Kind != other.Kind {
		return false
	}
	switch t.Kind {
	case Struct:
		return t.StructName == other.StructName
	case Array:
		if t.Size != other.Size {
			return false
		}
		if t.Elem == nil || other.Elem == nil {
			return t.Elem == other.Elem
		}
		return t.Elem.Equal(*other.Elem)
	default:
		return true
	}
}

// IsNumeric reports whether t is Int or Float, the pair the binary-op table
// allows to mix with an implicit promotion.
func (t Type) IsNumeric() bool {
	return t.Kind == Int || t.Kind == Float
}

// Matches reports whether a value of type t is an acceptable argument for a
// parameter of declared type param — identical to Equal except that a
// Generic parameter matches by set membership.
func (t Type) Matches(param Type) bool {
	if param.Kind == Generic {
		for _, k := range param.Set {
			if t.Kind == k {
				return true
			}
		}
		return false
	}
	return t.Equal(param)
}

var (
	TInt    = Type{Kind: Int}
	TFloat  = Type{Kind: Float}
	TBool   = Type{Kind: Bool}
	TString = Type{Kind: String}
	TVoid   = Type{Kind: Void}
)

// TStruct builds a named struct type.
func TStruct(name string) Type { return Type{Kind: Struct, StructName: name} }

// TArray builds a fixed-size array type.
func TArray(elem Type, size int) Type { return Type{Kind: Array, Elem: &elem, Size: size} }

// TGeneric builds the variadic-builtin type matching any of kinds.
func TGeneric(kinds ...Kind) Type { return Type{Kind: Generic, Set: kinds} }

// Params is a function's parameter list: either a fixed ordered list, or a
// marker that the function is variadic over a fixed prefix.
type Params struct {
	Variadic bool
	Fixed    []Param // the fixed/required prefix; for Variadic it bounds the
	                 // required arguments, and trailing args beyond it are
	                 // checked neither in count nor in type.
}

// Param is one named, typed function parameter.
type Param struct {
	Name string
	Type Type
}

// Signature is a function's full type: its parameters and return type.
type Signature struct {
	Params Params
	Return Type
}
