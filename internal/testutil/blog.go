package testutil

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/sieve/internal/catalog"
)

// BlogCatalogSource is a small catalog covering every relation kind.
const BlogCatalogSource = `
resource: posts: {
	relations: {
		comments: {kind: "has_many", foreign_key: "post_id"}
		author: {kind: "belongs_to", table: "users", foreign_key: "user_id"}
		cover: {kind: "has_one", table: "images", foreign_key: "post_id"}
		tags: {
			kind:          "many_to_many"
			pivot:         "post_tags"
			pivot_local:   "post_id"
			pivot_foreign: "tag_id"
		}
	}
}

resource: users: relations: posts: {kind: "has_many", foreign_key: "user_id"}
resource: comments: relations: post: {kind: "belongs_to", table: "posts", foreign_key: "post_id"}
resource: tags: {}
`

// BlogCatalog compiles BlogCatalogSource.
func BlogCatalog(t testing.TB) *catalog.Catalog {
	t.Helper()
	cat, errs := catalog.CompileString(BlogCatalogSource, "blog.cue")
	require.Empty(t, errs)
	return cat
}

// BlogSchema creates the blog tables in SQLite. Array and JSON columns hold
// JSON text.
const BlogSchema = `
CREATE TABLE users (
	id     INTEGER PRIMARY KEY,
	name   TEXT NOT NULL,
	roles  TEXT NOT NULL DEFAULT '[]'
);

CREATE TABLE posts (
	id      INTEGER PRIMARY KEY,
	user_id INTEGER REFERENCES users(id),
	title   TEXT NOT NULL,
	status  TEXT NOT NULL,
	views   INTEGER NOT NULL DEFAULT 0,
	labels  TEXT NOT NULL DEFAULT '[]',
	meta    TEXT NOT NULL DEFAULT '{}',
	locale  TEXT NOT NULL DEFAULT '{}'
);

CREATE TABLE comments (
	id      INTEGER PRIMARY KEY,
	post_id INTEGER REFERENCES posts(id),
	author  TEXT NOT NULL,
	body    TEXT NOT NULL,
	score   INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE images (
	id      INTEGER PRIMARY KEY,
	post_id INTEGER REFERENCES posts(id),
	url     TEXT NOT NULL
);

CREATE TABLE tags (
	id   INTEGER PRIMARY KEY,
	name TEXT NOT NULL
);

CREATE TABLE post_tags (
	post_id INTEGER NOT NULL REFERENCES posts(id),
	tag_id  INTEGER NOT NULL REFERENCES tags(id),
	PRIMARY KEY (post_id, tag_id)
);
`

// BlogSeed inserts a fixed data set:
//
//	posts 1 "Go generics"  published views 120 labels [go, generics] meta.tags urgent   locale en, fr
//	posts 2 "Rust traits"  draft     views 15  labels [rust]         meta.tags later    locale en
//	posts 3 "SQL joins"    published views 300 labels [sql]          meta.tags urgent   locale fr
//	posts 4 "Cheap pills"  archived  views 0   labels []             meta {}            locale {}
const BlogSeed = `
INSERT INTO users (id, name, roles) VALUES
	(1, 'alice', '["admin","editor"]'),
	(2, 'bob', '["viewer"]');

INSERT INTO posts (id, user_id, title, status, views, labels, meta, locale) VALUES
	(1, 1, 'Go generics', 'published', 120, '["go","generics"]', '{"tags":"urgent","author":{"name":"alice"}}', '{"en":"Go generics","fr":"Génériques"}'),
	(2, 1, 'Rust traits', 'draft', 15, '["rust"]', '{"tags":"later"}', '{"en":"Rust traits"}'),
	(3, 2, 'SQL joins', 'published', 300, '["sql"]', '{"tags":"urgent","author":{"name":"bob"}}', '{"fr":"Jointures"}'),
	(4, 2, 'Cheap pills', 'archived', 0, '[]', '{}', '{}');

INSERT INTO comments (id, post_id, author, body, score) VALUES
	(1, 1, 'admin', 'great post', 5),
	(2, 1, 'bob', 'buy spam now', 1),
	(3, 2, 'admin', 'nice', 4),
	(4, 3, 'carol', 'spam spam', 2);

INSERT INTO images (id, post_id, url) VALUES
	(1, 1, 'go.png'),
	(2, 3, 'sql.png');

INSERT INTO tags (id, name) VALUES
	(1, 'go'),
	(2, 'rust'),
	(3, 'db');

INSERT INTO post_tags (post_id, tag_id) VALUES
	(1, 1),
	(2, 2),
	(3, 3),
	(1, 3);
`

// SeedBlog creates the blog schema and data in db.
func SeedBlog(t testing.TB, db *sql.DB) {
	t.Helper()
	_, err := db.Exec(BlogSchema)
	require.NoError(t, err)
	_, err = db.Exec(BlogSeed)
	require.NoError(t, err)
}
