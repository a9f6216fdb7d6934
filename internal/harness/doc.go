// Package harness runs query conformance suites.
//
// A suite pairs raw query strings with the SQL, bound arguments, errors,
// inspection warnings or result rows they must produce. Suites are
// executable documentation of the filter grammar: every case compiles its
// query end to end, through the grammar, the builder adapter and the SQL
// renderer.
//
// # Suite Format
//
// Suites are YAML files:
//
//	name: blog
//	catalog: catalog.cue      # optional; resources are synthesized without it
//	schema: schema.sql        # optional; enables rows expectations
//	seed: seed.sql            # optional
//	cases:
//	  - name: published posts
//	    query: status=published&views=>10
//	    resource: posts
//	    dialect: sqlite       # sqlite (default) or postgres
//	    expect:
//	      sql: SELECT * FROM posts WHERE views > ? AND status = ? ORDER BY posts.id ASC
//	      args: [">10", published]
//	      rows: [1, 3]
//	  - name: missing separator
//	    query: json=meta
//	    resource: posts
//	    expect:
//	      error: MALFORMED_GRAMMAR
//
// Paths are relative to the suite file. Queries are split with
// grammar.ParseQuery, so values are never URL-decoded.
//
// # Expectations
//
//   - sql: exact root statement
//   - args: exact root arguments, compared as strings
//   - error: substring of the compile error; the case must fail
//   - warnings: exact queryir.Inspect warnings
//   - rows: key values of the rows returned by the fixture database, in order
//
// # Usage
//
//	suite, err := harness.LoadSuite("testdata/suites/blog.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(suite)
//	if !result.Pass {
//	    for _, c := range result.Cases {
//	        log.Println(c.Name, c.Errors)
//	    }
//	}
package harness
