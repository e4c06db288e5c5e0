package walker

import "github.com/hades-lang/hades/internal/types"

// scopeFrame is one lexical frame: a flat map of local bindings.
type scopeFrame map[string]types.Type

// currentFunction tracks the function the walker is currently inside, to
// validate `return` statements against its declared return type.
type currentFunction struct {
	Name   string
	Return types.Type
}

// Context is the compiler's symbol environment: a scope stack for locals,
// a flat function table pre-populated with builtins, and a flat struct
// table whose field order is authoritative for codegen's GEP indices.
type Context struct {
	scopes  []scopeFrame
	Funcs   map[string]types.Signature
	Structs map[string][]types.Param // ordered field list; position == GEP index
	current *currentFunction
}

// NewContext returns a fresh Context pre-populated with the builtin
// function table (currently just the variadic printf).
func NewContext() *Context {
	c := &Context{
		Funcs:   make(map[string]types.Signature),
		Structs: make(map[string][]types.Param),
	}
	c.Funcs["printf"] = types.Signature{
		Params: types.Params{
			Variadic: true,
			Fixed: []types.Param{
				{Name: "format", Type: types.TString},
			},
		},
		Return: types.TVoid,
	}
	return c
}

func (c *Context) enterScope() { c.scopes = append(c.scopes, make(scopeFrame)) }

func (c *Context) exitScope() { c.scopes = c.scopes[:len(c.scopes)-1] }

// declareLocal inserts name into the innermost scope. Shadowing an outer
// binding is legal; only redefining within the same frame is rejected.
func (c *Context) declareLocal(name string, t types.Type) bool {
	frame := c.scopes[len(c.scopes)-1]
	if _, exists := frame[name]; exists {
		return false
	}
	frame[name] = t
	return true
}

// lookupLocal walks the scope stack from innermost to outermost.
func (c *Context) lookupLocal(name string) (types.Type, bool) {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if t, ok := c.scopes[i][name]; ok {
			return t, true
		}
	}
	return types.Type{}, false
}

func (c *Context) fieldIndex(structName, field string) (int, types.Type, bool) {
	fields := c.Structs[structName]
	for i, f := range fields {
		if f.Name == field {
			return i, f.Type, true
		}
	}
	return -1, types.Type{}, false
}
