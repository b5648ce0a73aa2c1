package gather

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/signadot/gatherconv/ir"
)

type selector struct {
	src     string
	program *vm.Program
}

func selectEnv(s *Server) map[string]any {
	return map[string]any{
		"key":       s.ID,
		"nickname":  ir.ToAny(s.Nickname),
		"timestamp": ir.ToAny(s.Timestamp),
		"stats":     ir.ToAny(s.Stats),
		"counters":  ir.ToAny(s.Counters),
	}
}

func newSelector(src string) (*selector, error) {
	program, err := expr.Compile(src, expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("%w: could not compile %q: %w", ErrSelect, src, err)
	}
	return &selector{src: src, program: program}, nil
}

func (sel *selector) match(s *Server) (bool, error) {
	res, err := vm.Run(sel.program, selectEnv(s))
	if err != nil {
		return false, fmt.Errorf("%w: evaluating %q: %w", ErrSelect, sel.src, err)
	}
	ok, isBool := res.(bool)
	if !isBool {
		return false, fmt.Errorf("%w: %q gave %T, not bool", ErrSelect, sel.src, res)
	}
	return ok, nil
}
