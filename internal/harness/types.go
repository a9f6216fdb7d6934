package harness

import "github.com/roach88/sieve/internal/querysql"

// Suite is a named list of conformance cases sharing one catalog and an
// optional fixture database.
type Suite struct {
	Name string `yaml:"name"`

	// Description explains what this suite validates.
	Description string `yaml:"description,omitempty"`

	// Catalog is a CUE file or directory of resource definitions.
	Catalog string `yaml:"catalog,omitempty"`

	// Schema and Seed are SQLite scripts for the fixture database.
	Schema string `yaml:"schema,omitempty"`
	Seed   string `yaml:"seed,omitempty"`

	Cases []Case `yaml:"cases"`
}

// Case compiles one query for one resource.
type Case struct {
	Name     string `yaml:"name"`
	Query    string `yaml:"query"`
	Resource string `yaml:"resource"`

	// Dialect is "sqlite" (default) or "postgres".
	Dialect string `yaml:"dialect,omitempty"`

	Expect Expect `yaml:"expect"`
}

// Expect lists what a case must produce. Nil fields are not checked.
type Expect struct {
	SQL      string   `yaml:"sql,omitempty"`
	Args     []string `yaml:"args,omitempty"`
	Error    string   `yaml:"error,omitempty"`
	Warnings []string `yaml:"warnings,omitempty"`
	Rows     []string `yaml:"rows,omitempty"`
}

func (e Expect) empty() bool {
	return e.SQL == "" && e.Args == nil && e.Error == "" && e.Warnings == nil && e.Rows == nil
}

// Result is the outcome of a suite run.
type Result struct {
	// Pass is true when every case passed.
	Pass bool `json:"pass"`

	Suite string       `json:"suite"`
	Cases []CaseResult `json:"cases"`
}

// CaseResult is the outcome of one case.
type CaseResult struct {
	Name string `json:"name"`
	Pass bool   `json:"pass"`

	// Errors contains failed expectations. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Plan is the compiled plan, nil when compilation failed.
	Plan *querysql.Plan `json:"-"`

	// Err is the compile error, if any.
	Err error `json:"-"`
}

// NewResult creates a new passing result.
func NewResult(suite string) *Result {
	return &Result{Pass: true, Suite: suite, Cases: []CaseResult{}}
}

// add appends a case result, failing the suite when the case failed.
func (r *Result) add(c CaseResult) {
	r.Cases = append(r.Cases, c)
	if !c.Pass {
		r.Pass = false
	}
}

// AddError records a failed expectation and marks the case failed.
func (c *CaseResult) AddError(err string) {
	c.Errors = append(c.Errors, err)
	c.Pass = false
}
