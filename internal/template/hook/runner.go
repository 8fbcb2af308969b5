// Package hook evaluates the user-supplied logic declared in directive
// blocks. Hooks are HCL expressions evaluated against a narrow context:
// a read-only snapshot of the input, the template/destination/working-copy
// paths, a require(path) loader limited to the template root and a small
// function library. Hooks cannot touch the host beyond reading template
// files.
//
// A generate hook returns the inputs of the copies to produce:
//
//	generate: '[for s in input.services : merge(input, { service = s })]'
//
// A list yields one copy per element (null keeps the current input), a
// whole number N yields N copies with unchanged input, an object yields a
// single copy and null yields none.
package hook

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/spf13/afero"
	"github.com/zclconf/go-cty/cty"

	"github.com/tacogips/hoppla/internal/debug"
)

// Kind names a hook.
type Kind string

const (
	// Generate fans one template entry out into numbered copies.
	Generate Kind = "generate"
	// Init runs after the root config is read, before the working copy exists.
	Init Kind = "init"
	// Prepare runs after the working copy is created, before the walk.
	Prepare Kind = "prepare"
	// BeforeCopy runs between the walk and the copy to the destination.
	BeforeCopy Kind = "beforeCopy"
	// Finalize runs last and receives the run error.
	Finalize Kind = "finalize"
)

// Env is the context exposed to a hook.
type Env struct {
	Input       map[string]interface{}
	Template    string
	Destination string
	// Tmp is the working copy path, empty before it exists.
	Tmp string
	// Err is the run error, only set for finalize.
	Err error
}

// Result is what a lifecycle hook returned.
type Result struct {
	// Input is deep-merged into the run input when set.
	Input map[string]interface{}
	// Message is logged when set.
	Message string
}

// MaxGenerateCount bounds the number of copies a generate hook may request.
const MaxGenerateCount = 10000

// GenerateFunc produces one generated copy. A nil input keeps the current
// input.
type GenerateFunc func(ctx context.Context, input map[string]interface{}) error

// Runner evaluates hook expressions.
type Runner struct {
	fs           afero.Fs
	templateRoot string
}

// NewRunner creates a Runner whose require() loader reads below templateRoot.
func NewRunner(fs afero.Fs, templateRoot string) *Runner {
	return &Runner{fs: fs, templateRoot: templateRoot}
}

// RunLifecycle evaluates an init, prepare, beforeCopy or finalize hook.
// The result is null, a string message or an object with optional input
// and message attributes.
func (r *Runner) RunLifecycle(ctx context.Context, kind Kind, source, file string, env Env) (*Result, error) {
	val, err := r.evaluate(ctx, kind, source, file, env)
	if err != nil {
		return nil, err
	}

	if val.IsNull() {
		return &Result{}, nil
	}

	switch {
	case val.Type() == cty.String:
		return &Result{Message: val.AsString()}, nil

	case isObject(val):
		result := &Result{}
		native, err := objectToMap(val)
		if err != nil {
			return nil, newExecutionError(kind, file, "invalid result", err)
		}
		if in, ok := native["input"]; ok && in != nil {
			m, ok := in.(map[string]interface{})
			if !ok {
				return nil, newExecutionError(kind, file, "result input must be an object", nil)
			}
			result.Input = m
		}
		if msg, ok := native["message"]; ok && msg != nil {
			result.Message = fmt.Sprint(msg)
		}
		return result, nil

	default:
		return nil, newExecutionError(kind, file,
			fmt.Sprintf("result must be null, a string or an object, got %s", val.Type().FriendlyName()), nil)
	}
}

// RunGenerate evaluates a generate hook and calls generate once per copy,
// in order. It returns the number of copies produced. Errors returned by
// generate are passed through unchanged.
func (r *Runner) RunGenerate(ctx context.Context, source, file string, env Env, generate GenerateFunc) (int, error) {
	val, err := r.evaluate(ctx, Generate, source, file, env)
	if err != nil {
		return 0, err
	}

	inputs, err := generateInputs(val)
	if err != nil {
		return 0, newExecutionError(Generate, file, "invalid result", err)
	}

	debug.Debug("[hook] generate in %s produced %d copies", file, len(inputs))
	for i, input := range inputs {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		if err := generate(ctx, input); err != nil {
			return i, err
		}
	}
	return len(inputs), nil
}

// generateInputs turns a generate result into the ordered list of inputs.
func generateInputs(val cty.Value) ([]map[string]interface{}, error) {
	if val.IsNull() {
		return nil, nil
	}

	ty := val.Type()
	switch {
	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		if val.LengthInt() > MaxGenerateCount {
			return nil, fmt.Errorf("too many copies: %d (max %d)", val.LengthInt(), MaxGenerateCount)
		}
		inputs := make([]map[string]interface{}, 0, val.LengthInt())
		it := val.ElementIterator()
		idx := 0
		for it.Next() {
			_, elem := it.Element()
			if elem.IsNull() {
				inputs = append(inputs, nil)
				idx++
				continue
			}
			if !isObject(elem) {
				return nil, fmt.Errorf("element %d must be an object or null, got %s", idx, elem.Type().FriendlyName())
			}
			m, err := objectToMap(elem)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", idx, err)
			}
			inputs = append(inputs, m)
			idx++
		}
		return inputs, nil

	case ty == cty.Number:
		bf := val.AsBigFloat()
		if !bf.IsInt() || bf.Sign() < 0 {
			return nil, fmt.Errorf("count must be a whole non-negative number, got %s", bf.Text('f', -1))
		}
		n, acc := bf.Int64()
		if acc != big.Exact || n > MaxGenerateCount {
			return nil, fmt.Errorf("count out of range: %s (max %d)", bf.Text('f', -1), MaxGenerateCount)
		}
		return make([]map[string]interface{}, n), nil

	case isObject(val):
		m, err := objectToMap(val)
		if err != nil {
			return nil, err
		}
		return []map[string]interface{}{m}, nil

	default:
		return nil, fmt.Errorf("result must be a list, a number, an object or null, got %s", ty.FriendlyName())
	}
}

// evaluate parses and evaluates source with the hook context.
func (r *Runner) evaluate(ctx context.Context, kind Kind, source, file string, env Env) (cty.Value, error) {
	if err := ctx.Err(); err != nil {
		return cty.NilVal, err
	}

	source = strings.TrimSpace(source)
	if source == "" {
		return cty.NullVal(cty.DynamicPseudoType), nil
	}

	expr, diags := hclsyntax.ParseExpression([]byte(source), file, hcl.InitialPos)
	if diags.HasErrors() {
		return cty.NilVal, newExecutionError(kind, file, "failed to parse expression", diags)
	}

	evalCtx, err := r.buildEvalContext(env)
	if err != nil {
		return cty.NilVal, newExecutionError(kind, file, "failed to build context", err)
	}

	val, diags := expr.Value(evalCtx)
	if diags.HasErrors() {
		return cty.NilVal, newExecutionError(kind, file, "failed to evaluate expression", diags)
	}
	if !val.IsWhollyKnown() {
		return cty.NilVal, newExecutionError(kind, file, "result is not known", nil)
	}
	return val, nil
}

// buildEvalContext creates the HCL evaluation context for a hook.
func (r *Runner) buildEvalContext(env Env) (*hcl.EvalContext, error) {
	input, err := toCty(env.Input)
	if err != nil {
		return nil, fmt.Errorf("input: %w", err)
	}
	if input.IsNull() {
		input = cty.EmptyObjectVal
	}

	errVal := cty.NullVal(cty.String)
	if env.Err != nil {
		errVal = cty.StringVal(env.Err.Error())
	}

	vars := map[string]cty.Value{
		"input":       input,
		"template":    cty.StringVal(env.Template),
		"destination": cty.StringVal(env.Destination),
		"tmp":         cty.StringVal(env.Tmp),
		"error":       errVal,
	}
	debug.Debug("[hook] context variables: %s", strings.Join(sortedKeys(vars), ", "))

	return &hcl.EvalContext{
		Variables: vars,
		Functions: r.functions(),
	}, nil
}
