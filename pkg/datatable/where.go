// A row expression filter. The expression is evaluated against the record fields and must
// return a boolean. It is an extra conjunct of the filter engine.

package datatable

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/rs/zerolog/log"
)

const (
	whereRowIdName  = "row_id"
	whereValueName  = "value"
	whereRecordName = "record"
)

// WhereCond is a compiled row condition.
type WhereCond struct {
	program *vm.Program
	where   string
}

// NewWhereCond compiles the expression. An empty expression gives a nil condition which
// matches every row.
func NewWhereCond(where string) (*WhereCond, error) {
	if where == "" {
		return nil, nil
	}
	program, err := expr.Compile(where, expr.AsBool(), expr.AllowUndefinedVariables())
	if err != nil {
		return nil, fmt.Errorf("unable to compile where condition: %w", err)
	}
	return &WhereCond{
		program: program,
		where:   where,
	}, nil
}

func (wc *WhereCond) String() string {
	if wc == nil {
		return ""
	}
	return wc.where
}

// Evaluate runs the condition over the row. Record fields are exposed by name, and
// value("a.b") resolves dotted paths.
func (wc *WhereCond) Evaluate(row *Row) (bool, error) {
	if wc == nil {
		return true, nil
	}
	env := make(map[string]any, len(row.Record)+3)
	for k, v := range row.Record {
		env[k] = v
	}
	env[whereRowIdName] = row.ID
	env[whereRecordName] = map[string]any(row.Record)
	env[whereValueName] = func(key string) any {
		v, _ := row.Value(key)
		return v
	}

	output, err := expr.Run(wc.program, env)
	if err != nil {
		return false, fmt.Errorf("unable to evaluate where condition: %w", err)
	}
	cond, ok := output.(bool)
	if !ok {
		return false, fmt.Errorf("where condition should return boolean, got (%T) and value %+v", output, output)
	}
	return cond, nil
}

// Predicate adapts the condition to the filter engine. Evaluation errors are non-matches.
func (wc *WhereCond) Predicate() RowPredicate {
	if wc == nil {
		return nil
	}
	return func(row *Row) bool {
		ok, err := wc.Evaluate(row)
		if err != nil {
			log.Debug().
				Err(err).
				Int("RowId", row.ID).
				Str("Where", wc.where).
				Msg("where condition evaluation failed: row skipped")
			return false
		}
		return ok
	}
}
