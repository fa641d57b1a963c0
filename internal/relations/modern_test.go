package relations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rikeda71/drizzle-docs-generator-sub000/internal/sdl"
)

func loadModern(t *testing.T, src string) []*sdl.RelationsEntry {
	t.Helper()
	l := sdl.NewLoader(sdl.DialectPostgres)
	require.NoError(t, l.LoadFile("schema.star", []byte(src)))
	return l.Result().Modern
}

func TestModernAdapter_ManyToOne(t *testing.T) {
	entries := loadModern(t, `
users = table("users", {"id": integer("id").primary_key()})
posts = table("posts", {
    "id": integer("id").primary_key(),
    "author_id": integer("author_id"),
})
rels = define_relations({"users": users, "posts": posts}, {
    "posts": {
        "author": one(users, fields=[posts.author_id], references=[users.id], on_delete="cascade"),
    },
})
`)

	rels, err := NewModernAdapter(entries).Extract()
	require.NoError(t, err)
	require.Len(t, rels, 1, "the auto-generated inverse must not produce a second record")

	rel := rels[0]
	assert.Equal(t, "posts", rel.SourceTable)
	assert.Equal(t, []string{"author_id"}, rel.SourceColumns)
	assert.Equal(t, "users", rel.TargetTable)
	assert.Equal(t, []string{"id"}, rel.TargetColumns)
	assert.Equal(t, ManyToOne, rel.Cardinality)
	assert.Equal(t, "cascade", rel.OnDelete)
}

func TestModernAdapter_OneToOne(t *testing.T) {
	entries := loadModern(t, `
users = table("users", {
    "id": integer("id").primary_key(),
    "profile_id": integer("profile_id"),
})
profiles = table("profiles", {"id": integer("id").primary_key()})
rels = define_relations({"users": users, "profiles": profiles}, {
    "users": {
        "profile": one(profiles, fields=[users.profile_id], references=[profiles.id]),
    },
    "profiles": {
        "user": one(users, fields=[profiles.id], references=[users.profile_id]),
    },
})
`)

	rels, err := NewModernAdapter(entries).Extract()
	require.NoError(t, err)
	require.Len(t, rels, 1)
	assert.Equal(t, OneToOne, rels[0].Cardinality)
}

func TestModernAdapter_JoinlessSingleSkipped(t *testing.T) {
	entries := loadModern(t, `
users = table("users", {"id": integer("id")})
posts = table("posts", {"author_id": integer("author_id")})
rels = define_relations({"users": users, "posts": posts}, {
    "posts": {
        "author": one(users),
    },
    "users": {
        "posts": many(posts),
    },
})
`)

	rels, err := NewModernAdapter(entries).Extract()
	require.NoError(t, err)
	assert.Empty(t, rels)
}

func TestModernAdapter_SeveralRelationsBetweenSameTables(t *testing.T) {
	entries := loadModern(t, `
users = table("users", {"id": integer("id").primary_key()})
posts = table("posts", {
    "id": integer("id").primary_key(),
    "author_id": integer("author_id"),
    "editor_id": integer("editor_id"),
})
rels = define_relations({"users": users, "posts": posts}, {
    "posts": {
        "author": one(users, fields=[posts.author_id], references=[users.id]),
        "editor": one(users, fields=[posts.editor_id], references=[users.id]),
    },
})
`)

	rels, err := NewModernAdapter(entries).Extract()
	require.NoError(t, err)
	require.Len(t, rels, 2, "distinct join columns are distinct relations")
	assert.Equal(t, []string{"author_id"}, rels[0].SourceColumns)
	assert.Equal(t, []string{"editor_id"}, rels[1].SourceColumns)
}
