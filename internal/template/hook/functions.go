package hook

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
	"gopkg.in/yaml.v3"

	"github.com/tacogips/hoppla/internal/fsutil"
)

// functions returns the functions available to hook expressions.
func (r *Runner) functions() map[string]function.Function {
	return map[string]function.Function{
		"require": r.requireFunc(),

		"upper":      stdlib.UpperFunc,
		"lower":      stdlib.LowerFunc,
		"title":      stdlib.TitleFunc,
		"trimspace":  stdlib.TrimSpaceFunc,
		"replace":    stdlib.ReplaceFunc,
		"split":      stdlib.SplitFunc,
		"join":       stdlib.JoinFunc,
		"format":     stdlib.FormatFunc,
		"formatlist": stdlib.FormatListFunc,
		"tostring":   stdlib.MakeToFunc(cty.String),
		"tonumber":   stdlib.MakeToFunc(cty.Number),

		"length":   stdlib.LengthFunc,
		"range":    stdlib.RangeFunc,
		"concat":   stdlib.ConcatFunc,
		"flatten":  stdlib.FlattenFunc,
		"element":  stdlib.ElementFunc,
		"contains": stdlib.ContainsFunc,
		"keys":     stdlib.KeysFunc,
		"values":   stdlib.ValuesFunc,
		"lookup":   stdlib.LookupFunc,
		"merge":    stdlib.MergeFunc,
		"zipmap":   stdlib.ZipmapFunc,
		"coalesce": stdlib.CoalesceFunc,

		"jsondecode": stdlib.JSONDecodeFunc,
		"jsonencode": stdlib.JSONEncodeFunc,
	}
}

// requireFunc loads a file relative to the template root. YAML and JSON
// files are decoded; anything else is returned as a string.
func (r *Runner) requireFunc() function.Function {
	return function.New(&function.Spec{
		Params: []function.Parameter{
			{Name: "path", Type: cty.String},
		},
		Type: function.StaticReturnType(cty.DynamicPseudoType),
		Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
			rel := args[0].AsString()
			return r.require(rel)
		},
	})
}

func (r *Runner) require(rel string) (cty.Value, error) {
	path := filepath.Join(r.templateRoot, filepath.FromSlash(strings.TrimPrefix(rel, "/")))
	if !fsutil.IsWithin(r.templateRoot, path) {
		return cty.NilVal, fmt.Errorf("require path escapes template root: %s", rel)
	}

	content, err := afero.ReadFile(r.fs, path)
	if err != nil {
		return cty.NilVal, fmt.Errorf("failed to read %s: %w", rel, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		var data interface{}
		if err := yaml.Unmarshal(content, &data); err != nil {
			return cty.NilVal, fmt.Errorf("failed to decode %s: %w", rel, err)
		}
		return toCty(data)
	default:
		return cty.StringVal(string(content)), nil
	}
}
