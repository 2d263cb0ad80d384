package observer

import (
	"fmt"
	"reflect"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"

	"github.com/coral-mesh/fieldtrace/pkg/fieldtrace"
	"github.com/coral-mesh/fieldtrace/pkg/symbol"
)

// Variables available to filter expressions.
const (
	varKind       = "kind"        // "read" or "write"
	varField      = "field"       // field token name, "" without token
	varValue      = "value"       // read value, or the new value of a write
	varOldValue   = "old_value"   // value before a write, null for reads
	varNewValue   = "new_value"   // value after a write, null for reads
	varCaller     = "caller"      // demangled call-site symbol, "" when unknown
	varParentType = "parent_type" // Go type of the parent, "" without parent
	varDepth      = "depth"       // number of resolved frames
)

// NewFilter returns an observer that forwards to next only the events for
// which the CEL expression evaluates to true, for example
//
//	kind == "write" && field == "balance" && new_value < 0
//
// Expressions must be boolean; anything else is rejected here. Events whose
// evaluation fails, for instance because a value has an unexpected type, are
// dropped.
func NewFilter(expr string, next fieldtrace.ErasedObserver) (fieldtrace.ErasedObserver, error) {
	if next == nil {
		return nil, fmt.Errorf("filter needs a downstream observer")
	}

	env, err := cel.NewEnv(
		cel.Variable(varKind, cel.StringType),
		cel.Variable(varField, cel.StringType),
		cel.Variable(varValue, cel.DynType),
		cel.Variable(varOldValue, cel.DynType),
		cel.Variable(varNewValue, cel.DynType),
		cel.Variable(varCaller, cel.StringType),
		cel.Variable(varParentType, cel.StringType),
		cel.Variable(varDepth, cel.IntType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("invalid filter %q: %w", expr, issues.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, fmt.Errorf("filter %q must be boolean, got %s", expr, ast.OutputType())
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to build filter program: %w", err)
	}

	return func(e fieldtrace.ErasedAccessEvent, self fieldtrace.AnySelfToken) {
		out, _, err := prg.Eval(activation(e))
		if err != nil {
			return
		}
		if match, ok := out.Value().(bool); ok && match {
			next(e, self)
		}
	}, nil
}

func activation(e fieldtrace.ErasedAccessEvent) map[string]any {
	vars := map[string]any{
		varKind:       e.Kind.String(),
		varField:      e.FieldName(),
		varOldValue:   types.NullValue,
		varNewValue:   types.NullValue,
		varCaller:     "",
		varParentType: "",
		varDepth:      int64(len(e.Stack)),
	}

	if e.Changes != nil {
		vars[varOldValue] = celValue(e.Changes.Current)
		vars[varNewValue] = celValue(e.Changes.New)
		vars[varValue] = vars[varNewValue]
	} else {
		vars[varValue] = celValue(e.Value)
	}

	if site, ok := e.CallSite(); ok {
		vars[varCaller] = symbol.Demangle(site.SymbolName)
	}
	if e.HasParent && e.ParentType != nil {
		vars[varParentType] = e.ParentType.String()
	}

	return vars
}

// celValue maps Go values onto the CEL scalar types. Named types are reduced
// to their underlying kind; anything without a CEL equivalent is formatted
// as a string.
func celValue(v any) any {
	if v == nil {
		return types.NullValue
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint()
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	case reflect.String:
		return rv.String()
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		if rv.IsNil() {
			return types.NullValue
		}
	}

	if s, ok := v.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%v", v)
}
