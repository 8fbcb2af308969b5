package hook

import (
	"context"
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

const rootFile = "hopplaconfig"

func newTestRunner(t *testing.T) *Runner {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/tpl/data/services.yaml", []byte("- api\n- worker\n"), 0644))
	require.NoError(t, afero.WriteFile(fs, "/tpl/data/owner.json", []byte(`{"name": "ops", "size": 3}`), 0644))
	require.NoError(t, afero.WriteFile(fs, "/tpl/data/banner.txt", []byte("hello"), 0644))
	require.NoError(t, afero.WriteFile(fs, "/secret.yaml", []byte("k: v"), 0644))
	return NewRunner(fs, "/tpl")
}

func collect(t *testing.T, r *Runner, source string, env Env) ([]map[string]interface{}, int, error) {
	t.Helper()
	var got []map[string]interface{}
	n, err := r.RunGenerate(context.Background(), source, "file.hop.tmpl", env, func(_ context.Context, input map[string]interface{}) error {
		got = append(got, input)
		return nil
	})
	return got, n, err
}

func TestRunGenerate(t *testing.T) {
	r := newTestRunner(t)
	env := Env{Input: map[string]interface{}{
		"project":  "demo",
		"services": []interface{}{"api", "worker", "cron"},
	}}

	t.Run("list of objects in order", func(t *testing.T) {
		got, n, err := collect(t, r, `[for s in input.services : { name = s, project = input.project }]`, env)
		require.NoError(t, err)
		assert.Equal(t, 3, n)
		assert.Equal(t, []map[string]interface{}{
			{"name": "api", "project": "demo"},
			{"name": "worker", "project": "demo"},
			{"name": "cron", "project": "demo"},
		}, got)
	})

	t.Run("null element keeps input", func(t *testing.T) {
		got, n, err := collect(t, r, `[null, { id = 2 }]`, env)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		assert.Nil(t, got[0])
		assert.Equal(t, map[string]interface{}{"id": 2}, got[1])
	})

	t.Run("whole number", func(t *testing.T) {
		got, n, err := collect(t, r, `length(input.services) - 1`, env)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		assert.Equal(t, []map[string]interface{}{nil, nil}, got)
	})

	t.Run("single object", func(t *testing.T) {
		got, n, err := collect(t, r, `merge(input, { project = "other" })`, env)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		assert.Equal(t, "other", got[0]["project"])
		assert.Equal(t, []interface{}{"api", "worker", "cron"}, got[0]["services"])
	})

	t.Run("null yields nothing", func(t *testing.T) {
		got, n, err := collect(t, r, `null`, env)
		require.NoError(t, err)
		assert.Zero(t, n)
		assert.Empty(t, got)
	})

	t.Run("require yaml data", func(t *testing.T) {
		got, n, err := collect(t, r, `[for s in require("data/services.yaml") : { name = s }]`, env)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		assert.Equal(t, "worker", got[1]["name"])
	})

	t.Run("input is not changed by the hook", func(t *testing.T) {
		_, _, err := collect(t, r, `[merge(input, { project = "x" })]`, env)
		require.NoError(t, err)
		assert.Equal(t, "demo", env.Input["project"])
	})
}

func TestRunGenerate_Errors(t *testing.T) {
	r := newTestRunner(t)
	env := Env{Input: map[string]interface{}{"n": 1}}

	tests := []struct {
		name   string
		source string
	}{
		{"parse error", `[for x in`},
		{"unknown variable", `nope.value`},
		{"string result", `"text"`},
		{"negative count", `-1`},
		{"fractional count", `1.5`},
		{"count over limit", `1e9`},
		{"count just over limit", `10001`},
		{"non-object element", `[1, 2]`},
		{"require escaping root", `[require("../secret.yaml")]`},
		{"require missing file", `[require("data/missing.yaml")]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := collect(t, r, tt.source, env)
			require.Error(t, err)

			var execErr *ExecutionError
			require.True(t, errors.As(err, &execErr), "got %T: %v", err, err)
			assert.Equal(t, Generate, execErr.Hook)
			assert.Equal(t, "file.hop.tmpl", execErr.File)
		})
	}
}

func TestGenerateInputs_Limit(t *testing.T) {
	elems := make([]cty.Value, MaxGenerateCount+1)
	for i := range elems {
		elems[i] = cty.EmptyObjectVal
	}

	_, err := generateInputs(cty.TupleVal(elems))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too many copies")

	inputs, err := generateInputs(cty.TupleVal(elems[:MaxGenerateCount]))
	require.NoError(t, err)
	assert.Len(t, inputs, MaxGenerateCount)

	inputs, err = generateInputs(cty.NumberIntVal(MaxGenerateCount))
	require.NoError(t, err)
	assert.Len(t, inputs, MaxGenerateCount)
}

func TestRunGenerate_CallbackErrorPassesThrough(t *testing.T) {
	r := newTestRunner(t)
	sentinel := errors.New("walk failed")

	calls := 0
	n, err := r.RunGenerate(context.Background(), `3`, "f", Env{}, func(context.Context, map[string]interface{}) error {
		calls++
		if calls == 2 {
			return sentinel
		}
		return nil
	})

	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, 1, n)
	assert.Equal(t, 2, calls)
}

func TestRunLifecycle(t *testing.T) {
	r := newTestRunner(t)
	env := Env{
		Input:       map[string]interface{}{"name": "World"},
		Template:    "/tpl",
		Destination: "/out",
		Tmp:         "/tmp/w",
	}

	t.Run("empty source", func(t *testing.T) {
		res, err := r.RunLifecycle(context.Background(), Init, "  ", rootFile, env)
		require.NoError(t, err)
		assert.Nil(t, res.Input)
		assert.Empty(t, res.Message)
	})

	t.Run("string message", func(t *testing.T) {
		res, err := r.RunLifecycle(context.Background(), Prepare, `"working in ${tmp}"`, rootFile, env)
		require.NoError(t, err)
		assert.Equal(t, "working in /tmp/w", res.Message)
	})

	t.Run("object with input", func(t *testing.T) {
		res, err := r.RunLifecycle(context.Background(), Init,
			`{ input = { owner = require("data/owner.json").name, banner = require("data/banner.txt") }, message = "ok" }`,
			rootFile, env)
		require.NoError(t, err)
		assert.Equal(t, map[string]interface{}{"owner": "ops", "banner": "hello"}, res.Input)
		assert.Equal(t, "ok", res.Message)
	})

	t.Run("finalize sees error", func(t *testing.T) {
		withErr := env
		withErr.Err = errors.New("copy failed")

		res, err := r.RunLifecycle(context.Background(), Finalize, `error == null ? "done" : "failed: ${error}"`, rootFile, withErr)
		require.NoError(t, err)
		assert.Equal(t, "failed: copy failed", res.Message)

		res, err = r.RunLifecycle(context.Background(), Finalize, `error == null ? "done" : "failed: ${error}"`, rootFile, env)
		require.NoError(t, err)
		assert.Equal(t, "done", res.Message)
	})

	t.Run("invalid result", func(t *testing.T) {
		_, err := r.RunLifecycle(context.Background(), BeforeCopy, `[1]`, rootFile, env)
		require.Error(t, err)

		var execErr *ExecutionError
		require.True(t, errors.As(err, &execErr))
		assert.Equal(t, BeforeCopy, execErr.Hook)
	})

	t.Run("canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := r.RunLifecycle(ctx, Init, `"x"`, rootFile, env)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestConversionRoundTrip(t *testing.T) {
	in := map[string]interface{}{
		"name":    "svc",
		"port":    8080,
		"ratio":   0.5,
		"enabled": true,
		"tags":    []interface{}{"a", 1},
		"nested":  map[string]interface{}{"empty": map[string]interface{}{}},
		"nothing": nil,
	}

	val, err := toCty(in)
	require.NoError(t, err)

	out, err := fromCty(val)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}
