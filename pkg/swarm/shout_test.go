package swarm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestResolveShoutNoCompanions(t *testing.T) {
	checkin := &Checkin{ID: "123", Shout: strPtr("just me here")}

	shout, ok := ResolveShout(checkin, map[string]string{})
	require.True(t, ok)
	assert.Equal(t, "just me here", shout)
}

func TestResolveShoutNoCompanionsNoShout(t *testing.T) {
	checkin := &Checkin{ID: "123"}

	_, ok := ResolveShout(checkin, map[string]string{})
	assert.False(t, ok)
}

func TestResolveShoutCompanionsWithoutShout(t *testing.T) {
	checkin := &Checkin{
		ID:   "123",
		With: []User{{FirstName: "Alex"}},
	}

	_, ok := ResolveShout(checkin, map[string]string{})
	assert.False(t, ok)
}

func TestResolveShoutPureCompanionListing(t *testing.T) {
	checkin := &Checkin{
		ID:    "123",
		Shout: strPtr("with Alex, Bob"),
		With: []User{
			{FirstName: "Alex", LastName: "A"},
			{FirstName: "Bob", LastName: "B"},
		},
	}

	_, ok := ResolveShout(checkin, map[string]string{})
	assert.False(t, ok, "a shout that is only the companion listing has no content")
}

func TestResolveShoutWithContent(t *testing.T) {
	checkin := &Checkin{
		ID:    "123",
		Shout: strPtr("with this is a test with Alex, Bob"),
		With: []User{
			{FirstName: "Alex", LastName: "A", Handle: "alex"},
			{FirstName: "Bob", LastName: "B", Handle: "bob"},
		},
	}

	shout, ok := ResolveShout(checkin, map[string]string{})
	require.True(t, ok)
	assert.Equal(t, "with this is a test with Alex, Bob", shout)

	friends := map[string]string{"alex": "alex@example.com"}
	shout, ok = ResolveShout(checkin, friends)
	require.True(t, ok)
	assert.Equal(t, "with this is a test with @alex@example.com, Bob", shout)
}

func TestResolveShoutRepeatedCompanionListing(t *testing.T) {
	with := []User{
		{FirstName: "Alex", Handle: "alex"},
		{FirstName: "Bob", Handle: "bob"},
	}

	checkin := &Checkin{
		ID:    "123",
		Shout: strPtr("x with Alex, Bob with Alex, Bob"),
		With:  with,
	}
	shout, ok := ResolveShout(checkin, map[string]string{"alex": "alex@example.com"})
	require.True(t, ok)
	assert.Equal(t, "x with @alex@example.com, Bob", shout)

	checkin = &Checkin{
		ID:    "123",
		Shout: strPtr("with Alex, Bob with Alex, Bob"),
		With:  with,
	}
	_, ok = ResolveShout(checkin, map[string]string{})
	assert.False(t, ok, "repeated listings still carry no content of their own")
}

func TestResolveShoutUnknownCompanionKeepsName(t *testing.T) {
	checkin := &Checkin{
		ID:    "123",
		Shout: strPtr("great dinner with Carol"),
		With:  []User{{FirstName: "Carol", Handle: "carol"}},
	}

	shout, ok := ResolveShout(checkin, map[string]string{"someone_else": "x@example.com"})
	require.True(t, ok)
	assert.Equal(t, "great dinner with Carol", shout)
}
