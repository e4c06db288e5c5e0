package walker

import (
	"github.com/hades-lang/hades/internal/span"
	"github.com/hades-lang/hades/internal/typedast"
)

// CheckFunc is a read-only analysis run over a successfully walked program.
// Checks never mutate the typed tree or the context, so a caller is free to
// run them in any order (or concurrently, if it synchronizes its own
// diagnostics).
type CheckFunc func(prog typedast.Program, ctx *Context) error

// RunChecks runs checks in order, stopping at the first failure.
func RunChecks(prog typedast.Program, ctx *Context, checks []CheckFunc) error {
	for _, check := range checks {
		if err := check(prog, ctx); err != nil {
			return err
		}
	}
	return nil
}

// RequireMain rejects programs that define no main function. Build paths
// that must produce a linkable executable run this; `check` does not, since
// a library-style module is still worth type-checking on its own.
func RequireMain(prog typedast.Program, ctx *Context) error {
	if _, ok := ctx.Funcs["main"]; !ok {
		return newError(UndefinedFunction, `no "main" function defined`, span.Dummy(""))
	}
	return nil
}
