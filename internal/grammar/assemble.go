package grammar

import (
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/sieve/internal/queryir"
)

// Reserved parameter names. Every other key is a generic column filter.
const (
	KeyOrderBy   = "orderBy"
	KeyDirection = "direction"
	KeyPage      = "page"
	KeyLimit     = "limit"
	KeyRelations = "relations"
	KeyLocale    = "locale"
	KeyArray     = "array"
	KeyJSON      = "json"
)

// ReservedKeys is the set of directive parameter names. Matching is exact
// and case-sensitive.
var ReservedKeys = map[string]struct{}{
	KeyOrderBy:   {},
	KeyDirection: {},
	KeyPage:      {},
	KeyLimit:     {},
	KeyRelations: {},
	KeyLocale:    {},
	KeyArray:     {},
	KeyJSON:      {},
}

// IsReserved reports whether key is a directive rather than a column filter.
func IsReserved(key string) bool {
	_, ok := ReservedKeys[key]
	return ok
}

// DefaultDirection applies when orderBy is given without direction.
const DefaultDirection = queryir.Desc

// Assemble compiles a full parameter set.
//
// Directives are compiled in a fixed order: array, locale, relations, json,
// orderBy/direction, generic filters (sorted by key), pagination. A
// directive with an empty value is treated as absent. Without a page the
// specification fetches all rows.
//
// Keys and values are NFC-normalized first, so canonically equivalent
// spellings compile to the same specification and bind the same values.
func Assemble(params queryir.Params) (*queryir.Specification, error) {
	params = normalize(params)
	spec := &queryir.Specification{}

	if raw := params[KeyArray]; raw != "" {
		arrays, err := CompileArray(raw)
		if err != nil {
			return nil, err
		}
		spec.ArrayFilters = arrays
	}

	if raw := params[KeyLocale]; raw != "" {
		locale := raw
		spec.Locale = &locale
	}

	if raw := params[KeyRelations]; raw != "" {
		relations, err := CompileRelations(raw)
		if err != nil {
			return nil, err
		}
		spec.Relations = relations
	}

	if raw := params[KeyJSON]; raw != "" {
		pred, err := CompileJSON(raw)
		if err != nil {
			return nil, err
		}
		spec.JSONFilters = []queryir.JSONPathPredicate{pred}
	}

	if raw := params[KeyOrderBy]; raw != "" {
		order, err := compileOrder(raw, params[KeyDirection])
		if err != nil {
			return nil, err
		}
		spec.Order = order
	}

	for _, key := range genericKeys(params) {
		spec.Filters = append(spec.Filters, CompileFilter(key, params[key]))
	}

	if raw := params[KeyPage]; raw != "" {
		page, err := compilePagination(raw, params[KeyLimit])
		if err != nil {
			return nil, err
		}
		spec.Pagination = page
	}

	return spec, nil
}

// normalize returns params with NFC keys and values. When two keys
// normalize to the same key, the one sorting first byte-wise wins.
func normalize(params queryir.Params) queryir.Params {
	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	out := make(queryir.Params, len(params))
	for _, key := range keys {
		nk := norm.NFC.String(key)
		if _, ok := out[nk]; ok {
			continue
		}
		out[nk] = norm.NFC.String(params[key])
	}
	return out
}

func genericKeys(params queryir.Params) []string {
	keys := make([]string, 0, len(params))
	for key := range params {
		if !IsReserved(key) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

func compileOrder(columns, direction string) (*queryir.OrderSpec, error) {
	dir := DefaultDirection
	if direction != "" {
		switch queryir.Direction(strings.ToLower(direction)) {
		case queryir.Asc:
			dir = queryir.Asc
		case queryir.Desc:
			dir = queryir.Desc
		default:
			return nil, malformed(KeyDirection, "direction must be asc or desc, got %q", direction)
		}
	}
	return &queryir.OrderSpec{Columns: strings.Split(columns, ","), Direction: dir}, nil
}

func compilePagination(page, limit string) (*queryir.Pagination, error) {
	p, err := positiveInt(KeyPage, page)
	if err != nil {
		return nil, err
	}

	l := queryir.DefaultLimit
	if limit != "" {
		l, err = positiveInt(KeyLimit, limit)
		if err != nil {
			return nil, err
		}
	}
	return &queryir.Pagination{Page: p, Limit: l}, nil
}

func positiveInt(param, raw string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, malformed(param, "%s must be a positive integer, got %q", param, raw)
	}
	return n, nil
}
