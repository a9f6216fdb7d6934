package apply

import (
	"fmt"
	"strings"

	"github.com/roach88/sieve/internal/queryir"
)

// recorder renders builder calls as an indented trace.
type recorder struct {
	lines []string
	depth int
}

func (r *recorder) add(format string, args ...any) {
	r.lines = append(r.lines, strings.Repeat("  ", r.depth)+fmt.Sprintf(format, args...))
}

func (r *recorder) nest(label string, fn func(Builder)) {
	r.add("%s {", label)
	r.depth++
	if fn != nil {
		fn(r)
	}
	r.depth--
	r.add("}")
}

func (r *recorder) AndGroup(fn func(Builder)) { r.nest("and", fn) }
func (r *recorder) OrGroup(fn func(Builder))  { r.nest("or", fn) }

func (r *recorder) Compare(column, op, value string) {
	r.add("%s %s %q", column, op, value)
}

func (r *recorder) Raw(expr string, args ...string) {
	r.add("raw %s %q", expr, args)
}

func (r *recorder) Overlaps(column string, values []string) {
	r.add("overlaps %s %q", column, values)
}

func (r *recorder) EagerLoad(relation string, constrain func(Builder)) {
	if constrain == nil {
		r.add("with %s", relation)
		return
	}
	r.nest("with "+relation, constrain)
}

func (r *recorder) WhereHas(relation string, constrain func(Builder)) {
	r.nest("has "+relation, constrain)
}

func (r *recorder) OrderBy(column string, dir queryir.Direction) {
	r.add("order %s %s", column, dir)
}

func (r *recorder) Paginate(page, limit int) { r.add("page %d %d", page, limit) }
func (r *recorder) FetchAll()                { r.add("all") }

func (r *recorder) String() string {
	return strings.Join(r.lines, "\n")
}
