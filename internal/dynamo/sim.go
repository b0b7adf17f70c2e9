package dynamo

import (
	"benchopt/internal/compiler"
	"benchopt/internal/model"
)

// SimCompiler is an in-process Compiler. Wrapped callables "compile" on
// their first call after each Reset, counted under the frames_compiled
// counter of State.
type SimCompiler struct {
	State *compiler.State
	Rec   *model.Recorder
	// Fail, when set, is returned by Optimize.
	Fail error

	generation int
	selections []Selection
}

// NewSimCompiler returns a SimCompiler recording into rec.
func NewSimCompiler(st *compiler.State, rec *model.Recorder) *SimCompiler {
	if rec == nil {
		rec = model.NewRecorder()
	}
	return &SimCompiler{State: st, Rec: rec}
}

func (c *SimCompiler) Reset() {
	c.generation++
	c.Rec.Event("dynamo reset")
}

func (c *SimCompiler) Optimize(sel Selection) (func(model.Func) model.Func, error) {
	if c.Fail != nil {
		return nil, c.Fail
	}
	c.selections = append(c.selections, sel)
	return func(next model.Func) model.Func {
		compiled := -1
		return func() error {
			if compiled != c.generation {
				compiled = c.generation
				c.Rec.Event("dynamo compile %s", sel)
				if c.State != nil {
					c.State.Incr("frames_compiled")
				}
			}
			return next()
		}
	}, nil
}

func (c *SimCompiler) Disable(fn model.Func) model.Func {
	c.Rec.Event("dynamo disable")
	return func() error {
		c.Rec.Event("dynamo skip")
		return fn()
	}
}

// Selections returns every selection Optimize was asked for.
func (c *SimCompiler) Selections() []Selection {
	out := make([]Selection, len(c.selections))
	copy(out, c.selections)
	return out
}
