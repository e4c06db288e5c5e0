package ast

import "strconv"

// Type is a surface-syntax type annotation, as written after a `:` in a let
// binding, a parameter list, or a function's return position. The walker
// resolves each Type against the struct table into a checker-level
// types.Type (internal/types); types.Generic has no surface syntax and is
// never produced here.
type Type struct {
	Kind   TypeKind
	Struct Ident // populated when Kind == TypeStruct
	Elem   *Type // populated when Kind == TypeArray
	Size   int   // populated when Kind == TypeArray
}

// TypeKind enumerates the surface type forms the parser can produce.
type TypeKind int

const (
	TypeInt TypeKind = iota
	TypeFloat
	TypeBool
	TypeString
	TypeVoid
	TypeStruct
	TypeArray
)

func (k TypeKind) String() string {
	switch k {
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeBool:
		return "bool"
	case TypeString:
		return "string"
	case TypeVoid:
		return "void"
	case TypeStruct:
		return "struct"
	case TypeArray:
		return "array"
	default:
		return "unknown"
	}
}

func (t Type) String() string {
	switch t.Kind {
	case TypeStruct:
		return t.Struct.Name
	case TypeArray:
		if t.Elem == nil {
			return "[]?"
		}
		return "[" + t.Elem.String() + "; " + strconv.Itoa(t.Size) + "]"
	default:
		return t.Kind.String()
	}
}
