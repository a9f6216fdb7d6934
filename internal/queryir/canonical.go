package queryir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// MarshalCanonical produces canonical JSON for a specification.
//
// Differences from json.Marshal:
//  1. Object keys are sorted
//  2. No HTML escaping (< > & are NOT escaped)
//  3. Absent optional fields are omitted rather than written as null
//
// Strings are written as stored. Unicode normalization happens when the
// specification is compiled, so equal bytes here mean equal bound values.
//
// Two specifications compiled from equal parameters always produce the same
// bytes.
func MarshalCanonical(spec *Specification) ([]byte, error) {
	if spec == nil {
		return nil, fmt.Errorf("cannot marshal nil specification")
	}
	return marshalCanonical(spec.canonical())
}

func marshalCanonical(v any) ([]byte, error) {
	switch val := v.(type) {
	case string:
		return marshalCanonicalString(val)
	case int:
		return []byte(strconv.Itoa(val)), nil
	case bool:
		return []byte(strconv.FormatBool(val)), nil
	case []any:
		return marshalCanonicalArray(val)
	case map[string]any:
		return marshalCanonicalObject(val)
	default:
		return nil, fmt.Errorf("unsupported type for canonical JSON: %T", v)
	}
}

// marshalCanonicalString encodes without HTML escaping.
func marshalCanonicalString(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	// json.Encoder adds trailing newline
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func marshalCanonicalArray(arr []any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, elem := range arr {
		if i > 0 {
			buf.WriteByte(',')
		}
		elemBytes, err := marshalCanonical(elem)
		if err != nil {
			return nil, fmt.Errorf("array[%d]: %w", i, err)
		}
		buf.Write(elemBytes)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

func marshalCanonicalObject(obj map[string]any) ([]byte, error) {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyBytes, err := marshalCanonicalString(k)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')

		valBytes, err := marshalCanonical(obj[k])
		if err != nil {
			return nil, fmt.Errorf("value for key %q: %w", k, err)
		}
		buf.Write(valBytes)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (s *Specification) canonical() map[string]any {
	out := map[string]any{}

	filters := make([]any, len(s.Filters))
	for i, f := range s.Filters {
		filters[i] = f.canonical()
	}
	out["filters"] = filters

	relations := make([]any, len(s.Relations))
	for i, r := range s.Relations {
		clauses := make([]any, len(r.Clauses))
		for j, c := range r.Clauses {
			clauses[j] = map[string]any{
				"mode":   string(c.Mode),
				"filter": c.Filter.canonical(),
			}
		}
		relations[i] = map[string]any{"name": r.Name, "clauses": clauses}
	}
	out["relations"] = relations

	jsonFilters := make([]any, len(s.JSONFilters))
	for i, j := range s.JSONFilters {
		jsonFilters[i] = map[string]any{
			"path":       stringsToAny(j.Path),
			"comparator": string(j.Comparator),
			"value":      j.Value,
		}
	}
	out["json_filters"] = jsonFilters

	arrayFilters := make([]any, len(s.ArrayFilters))
	for i, a := range s.ArrayFilters {
		arrayFilters[i] = map[string]any{
			"column": a.Column,
			"values": stringsToAny(a.Values),
		}
	}
	out["array_filters"] = arrayFilters

	if s.Locale != nil {
		out["locale"] = *s.Locale
	}
	if s.Order != nil {
		out["order"] = map[string]any{
			"columns":   stringsToAny(s.Order.Columns),
			"direction": string(s.Order.Direction),
		}
	}
	if s.Pagination != nil {
		out["pagination"] = map[string]any{
			"page":  s.Pagination.Page,
			"limit": s.Pagination.Limit,
		}
	}
	return out
}

func (f ColumnFilter) canonical() map[string]any {
	return map[string]any{
		"column": f.Column,
		"group":  canonicalPredicate(f.Group),
	}
}

func canonicalPredicate(p Predicate) map[string]any {
	switch pred := p.(type) {
	case Equals:
		return map[string]any{"kind": "equals", "column": pred.Column, "value": pred.Value, "or": pred.Or}
	case Compare:
		return map[string]any{"kind": "compare", "column": pred.Column, "op": string(pred.Op), "value": pred.Value}
	case Like:
		return map[string]any{"kind": "like", "column": pred.Column, "pattern": pred.Pattern}
	case Between:
		return map[string]any{"kind": "between", "column": pred.Column, "lo": pred.Lo, "hi": pred.Hi, "or": pred.Or}
	case RawJSONEquals:
		return map[string]any{"kind": "raw_json_equals", "expr": pred.Expr, "value": pred.Value}
	case Group:
		children := make([]any, len(pred.Children))
		for i, child := range pred.Children {
			children[i] = canonicalPredicate(child)
		}
		return map[string]any{"kind": "group", "combinator": string(pred.Combinator), "children": children}
	default:
		return map[string]any{"kind": fmt.Sprintf("%T", p)}
	}
}

func stringsToAny(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}
