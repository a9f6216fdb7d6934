package queryir

import (
	"encoding/json"
	"fmt"
)

// Predicates marshal with a "kind" discriminator so a Group's children
// survive a round trip through JSON output.

func (p Equals) MarshalJSON() ([]byte, error) {
	type plain Equals
	return marshalKind("equals", plain(p))
}

func (p Compare) MarshalJSON() ([]byte, error) {
	type plain Compare
	return marshalKind("compare", plain(p))
}

func (p Like) MarshalJSON() ([]byte, error) {
	type plain Like
	return marshalKind("like", plain(p))
}

func (p Between) MarshalJSON() ([]byte, error) {
	type plain Between
	return marshalKind("between", plain(p))
}

func (p RawJSONEquals) MarshalJSON() ([]byte, error) {
	type plain RawJSONEquals
	return marshalKind("raw_json_equals", plain(p))
}

func (p Group) MarshalJSON() ([]byte, error) {
	type plain Group
	if p.Children == nil {
		p.Children = []Predicate{}
	}
	return marshalKind("group", plain(p))
}

func marshalKind(kind string, v any) ([]byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", kind, err)
	}
	head := []byte(`{"kind":"` + kind + `"`)
	if len(body) <= 2 {
		return append(head, '}'), nil
	}
	head = append(head, ',')
	return append(head, body[1:]...), nil
}
