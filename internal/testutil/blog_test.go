package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBlogCatalog(t *testing.T) {
	cat := BlogCatalog(t)

	assert.Equal(t, []string{"comments", "posts", "tags", "users"}, cat.Names())

	posts, ok := cat.Lookup("posts")
	assert.True(t, ok)
	assert.Len(t, posts.Relations, 4)
}
