package harness

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/sieve/internal/catalog"
	"github.com/roach88/sieve/internal/grammar"
	"github.com/roach88/sieve/internal/logger"
	"github.com/roach88/sieve/internal/queryir"
	"github.com/roach88/sieve/internal/querysql"
	"github.com/roach88/sieve/internal/store"
)

// Harness holds what a suite's cases share: the catalog and the fixture
// database.
type Harness struct {
	catalog *catalog.Catalog
	fixture *store.Store
	l       *logger.Logger
}

// Run executes every case of a suite and returns the result.
//
// When the suite has a schema, cases run against a fresh in-memory SQLite
// database, so suites are isolated from each other.
//
// Run returns an error only when the suite itself cannot be prepared;
// failed expectations are reported in the Result.
func Run(suite *Suite) (*Result, error) {
	ctx := context.Background()

	h, err := newHarness(ctx, suite)
	if err != nil {
		return nil, err
	}
	defer h.close()

	result := NewResult(suite.Name)
	for _, c := range suite.Cases {
		result.add(h.runCase(ctx, c))
	}
	return result, nil
}

func newHarness(ctx context.Context, suite *Suite) (*Harness, error) {
	h := &Harness{l: logger.GetLogger("harness")}

	if suite.Catalog != "" {
		cat, errs := catalog.LoadPath(suite.Catalog, catalog.LoadModeFailFast)
		if len(errs) > 0 {
			return nil, fmt.Errorf("failed to load catalog: %w", errors.Join(errs...))
		}
		h.catalog = cat
	}

	if suite.Schema != "" {
		fixture, err := openFixture(ctx, suite, h.catalog)
		if err != nil {
			return nil, err
		}
		h.fixture = fixture
	}
	return h, nil
}

func openFixture(ctx context.Context, suite *Suite, cat *catalog.Catalog) (*store.Store, error) {
	st, err := store.Open(":memory:", cat)
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}

	schema, err := readScript(suite.Schema)
	if err == nil {
		err = st.ApplySchema(ctx, schema)
	}
	if err == nil && suite.Seed != "" {
		var seed string
		if seed, err = readScript(suite.Seed); err == nil {
			_, err = st.DB().ExecContext(ctx, seed)
		}
	}
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to prepare fixture: %w", err)
	}
	return st, nil
}

func (h *Harness) close() {
	if h.fixture != nil {
		h.fixture.Close()
	}
}

// runCase compiles one case and checks its expectations.
func (h *Harness) runCase(ctx context.Context, c Case) CaseResult {
	res := CaseResult{Name: c.Name, Pass: true}

	dialect, err := c.dialect()
	if err != nil {
		res.AddError(err.Error())
		return res
	}

	spec, err := grammar.Assemble(grammar.ParseQuery(c.Query))
	if err == nil {
		if c.Expect.Warnings != nil {
			if aerr := assertWarnings(c.Expect.Warnings, queryir.Inspect(spec).Warnings); aerr != nil {
				res.AddError(aerr.Error())
			}
		}
		res.Plan, err = querysql.Compile(dialect, h.catalog, c.Resource, spec)
	}
	res.Err = err

	if c.Expect.Error != "" || err != nil {
		if aerr := assertError(c.Expect.Error, err); aerr != nil {
			res.AddError(aerr.Error())
		}
		return res
	}

	if c.Expect.SQL != "" {
		if aerr := assertSQL(c.Expect.SQL, res.Plan.Root.SQL); aerr != nil {
			res.AddError(aerr.Error())
		}
	}
	if c.Expect.Args != nil {
		if aerr := assertArgs(c.Expect.Args, res.Plan.Root.Args); aerr != nil {
			res.AddError(aerr.Error())
		}
	}
	if c.Expect.Rows != nil {
		if aerr := h.assertRows(ctx, c.Expect.Rows, res.Plan); aerr != nil {
			res.AddError(aerr.Error())
		}
	}

	h.l.Debug().Str("case", c.Name).Bool("pass", res.Pass).Msg("case completed")
	return res
}
