package grammar

import (
	"strings"

	"github.com/roach88/sieve/internal/queryir"
)

// ParseQuery splits a raw query string into parameters without URL
// decoding, so LIKE patterns such as "%spam%" survive as written.
//
// Pairs are separated by "&" and split at the first "=". A leading "?" is
// ignored, a pair without "=" has an empty value, and the first occurrence
// of a repeated key wins.
func ParseQuery(raw string) queryir.Params {
	params := queryir.Params{}
	for _, pair := range strings.Split(strings.TrimPrefix(raw, "?"), "&") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		if _, seen := params[key]; !seen {
			params[key] = value
		}
	}
	return params
}
