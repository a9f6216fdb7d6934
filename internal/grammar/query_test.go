package grammar

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/sieve/internal/queryir"
)

func TestParseQuery(t *testing.T) {
	testCases := []struct {
		name string
		raw  string
		want queryir.Params
	}{
		{"empty", "", queryir.Params{}},
		{"leading question mark", "?status=published", queryir.Params{"status": "published"}},
		{"split at first equals", "relations=comments^author=admin", queryir.Params{"relations": "comments^author=admin"}},
		{"no decoding", "title=%spam%&name=a+b", queryir.Params{"title": "%spam%", "name": "a+b"}},
		{"first value wins", "status=draft&status=published", queryir.Params{"status": "draft"}},
		{"bare key", "flag&x=1", queryir.Params{"flag": "", "x": "1"}},
		{"empty pairs skipped", "a=1&&b=2&", queryir.Params{"a": "1", "b": "2"}},
		{"operators kept", "age=>=18&price=10<>50", queryir.Params{"age": ">=18", "price": "10<>50"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseQuery(tc.raw))
		})
	}
}
