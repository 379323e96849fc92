package ref

import (
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type account struct {
	Name  string
	Tags  []string
	Limit map[string]int
	owner string
}

func (a account) Greeting() string { return "hello " + a.Name }

func (a *account) Rename(name string) string {
	a.Name = name

	return a.Name
}

type registry map[string]string

func (r registry) Lookup(key string) (any, bool) {
	v, ok := r[key]

	return v, ok
}

func (r registry) Keys() []string { return []string{"custom"} }

func TestLookup(t *testing.T) {
	acct := &account{
		Name:  "alice",
		Tags:  []string{"admin", "ops"},
		Limit: map[string]int{"cpu": 4},
		owner: "root",
	}

	data := map[string]any{
		"users": map[string]any{
			"alice": acct,
			"nobody": nil,
		},
		"ordered": yaml.MapSlice{
			{Key: "first", Value: 1},
			{Key: "second", Value: []any{"x", "y"}},
		},
		"registry": registry{"k": "v"},
		"counts":   map[string]int{"a": 1},
	}

	tests := []struct {
		path string
		want any
		ok   bool
	}{
		{"users.alice.Name", "alice", true},
		{"users.alice.name", "alice", true},
		{"users.alice.tags.1", "ops", true},
		{"users.alice.limit.cpu", 4, true},
		{"users.nobody", nil, true},
		{"ordered.first", 1, true},
		{"ordered.second.0", "x", true},
		{"registry.k", "v", true},
		{"counts.a", 1, true},
		{"users.alice.owner", nil, false},
		{"users.alice.tags.2", nil, false},
		{"users.alice.tags.-1", nil, false},
		{"users.nobody.name", nil, false},
		{"users.bob", nil, false},
		{"ordered.third", nil, false},
		{"registry.missing", nil, false},
		{"users..alice", nil, false},
		{"counts.a.b", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := Lookup(data, tt.path)
			assert.Equal(t, tt.ok, ok)

			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestLookup_Methods(t *testing.T) {
	acct := &account{Name: "alice"}
	data := map[string]any{"acct": acct, "value": account{Name: "bob"}}

	greet, ok := Lookup(data, "acct.greeting")
	require.True(t, ok)

	fn, ok := greet.(func() string)
	require.True(t, ok, "got %T", greet)
	assert.Equal(t, "hello alice", fn())

	rename, ok := Lookup(data, "acct.Rename")
	require.True(t, ok)
	assert.Equal(t, "carol", rename.(func(string) string)("carol"))
	assert.Equal(t, "carol", acct.Name)

	_, ok = Lookup(data, "value.rename")
	assert.False(t, ok, "pointer method found on value receiver")
}

func TestKeys(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"},
		Keys(map[string]any{"c": 1, "a": 2, "b": 3}))

	assert.Equal(t, []string{"z", "a"},
		Keys(yaml.MapSlice{{Key: "z", Value: 1}, {Key: "a", Value: 2}}))

	assert.Equal(t, []string{"custom"}, Keys(registry{}))

	assert.Equal(t, []string{"Name", "Tags", "Limit", "Greeting", "Rename"},
		Keys(&account{}))

	assert.Nil(t, Keys(42))
	assert.Nil(t, Keys(nil))
}

func TestSuggest(t *testing.T) {
	node := map[string]any{"alice": 1, "alicia": 2, "bob": 3}

	got := suggest(node, "alc", 3)
	assert.ElementsMatch(t, []string{"alice", "alicia"}, got)

	assert.Len(t, suggest(node, "alc", 1), 1)
	assert.Empty(t, suggest(node, "alc", 0))
	assert.Empty(t, suggest(node, "zzz", 3))
}
