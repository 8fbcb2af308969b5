package hook

import (
	"fmt"
	"math/big"
	"sort"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// toCty converts decoded YAML/JSON style data into a cty.Value. Maps become
// objects and slices become tuples so mixed element types are allowed.
func toCty(v interface{}) (cty.Value, error) {
	switch val := v.(type) {
	case nil:
		return cty.NullVal(cty.DynamicPseudoType), nil
	case cty.Value:
		return val, nil
	case string:
		return cty.StringVal(val), nil
	case bool:
		return cty.BoolVal(val), nil
	case int:
		return cty.NumberIntVal(int64(val)), nil
	case int64:
		return cty.NumberIntVal(val), nil
	case int32:
		return cty.NumberIntVal(int64(val)), nil
	case uint:
		return cty.NumberUIntVal(uint64(val)), nil
	case uint64:
		return cty.NumberUIntVal(val), nil
	case float64:
		return cty.NumberFloatVal(val), nil
	case float32:
		return cty.NumberFloatVal(float64(val)), nil
	case map[string]interface{}:
		if len(val) == 0 {
			return cty.EmptyObjectVal, nil
		}
		attrs := make(map[string]cty.Value, len(val))
		for key, elem := range val {
			converted, err := toCty(elem)
			if err != nil {
				return cty.NilVal, fmt.Errorf("in attribute '%s': %w", key, err)
			}
			attrs[key] = converted
		}
		return cty.ObjectVal(attrs), nil
	case map[interface{}]interface{}:
		attrs := make(map[string]interface{}, len(val))
		for key, elem := range val {
			attrs[fmt.Sprint(key)] = elem
		}
		return toCty(attrs)
	case []interface{}:
		if len(val) == 0 {
			return cty.EmptyTupleVal, nil
		}
		elems := make([]cty.Value, 0, len(val))
		for i, elem := range val {
			converted, err := toCty(elem)
			if err != nil {
				return cty.NilVal, fmt.Errorf("in element %d: %w", i, err)
			}
			elems = append(elems, converted)
		}
		return cty.TupleVal(elems), nil
	case []string:
		elems := make([]interface{}, len(val))
		for i, s := range val {
			elems[i] = s
		}
		return toCty(elems)
	default:
		ty, err := gocty.ImpliedType(v)
		if err != nil {
			return cty.NilVal, fmt.Errorf("unable to infer cty.Type for %T: %w", v, err)
		}
		return gocty.ToCtyValue(v, ty)
	}
}

// fromCty recursively converts a cty.Value to its most natural Go
// counterpart. Whole numbers become int so they render without a decimal
// point.
func fromCty(v cty.Value) (interface{}, error) {
	if v.IsNull() {
		return nil, nil
	}
	if !v.IsKnown() {
		return nil, fmt.Errorf("value is not known")
	}

	ty := v.Type()

	switch {
	case ty == cty.String:
		return v.AsString(), nil

	case ty == cty.Number:
		return numberToNative(v.AsBigFloat())

	case ty == cty.Bool:
		return v.True(), nil

	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		slice := make([]interface{}, 0, v.LengthInt())
		it := v.ElementIterator()
		for it.Next() {
			_, elem := it.Element()
			native, err := fromCty(elem)
			if err != nil {
				return nil, err
			}
			slice = append(slice, native)
		}
		return slice, nil

	case ty.IsObjectType() || ty.IsMapType():
		goMap := make(map[string]interface{})
		it := v.ElementIterator()
		for it.Next() {
			key, elem := it.Element()
			keyStr := key.AsString()
			native, err := fromCty(elem)
			if err != nil {
				return nil, fmt.Errorf("in attribute '%s': %w", keyStr, err)
			}
			goMap[keyStr] = native
		}
		return goMap, nil

	default:
		return nil, fmt.Errorf("unsupported cty type for conversion: %s", ty.FriendlyName())
	}
}

func numberToNative(bf *big.Float) (interface{}, error) {
	if bf.IsInt() {
		if i, acc := bf.Int64(); acc == big.Exact {
			return int(i), nil
		}
	}
	f, _ := bf.Float64()
	return f, nil
}

// objectToMap converts an object or map value into a Go map.
func objectToMap(v cty.Value) (map[string]interface{}, error) {
	native, err := fromCty(v)
	if err != nil {
		return nil, err
	}
	m, ok := native.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("expected an object, got %s", v.Type().FriendlyName())
	}
	return m, nil
}

// isObject reports whether v is an object or map value.
func isObject(v cty.Value) bool {
	ty := v.Type()
	return ty.IsObjectType() || ty.IsMapType()
}

// sortedKeys is used to keep diagnostics deterministic.
func sortedKeys(m map[string]cty.Value) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
