package id

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Uniqueness(t *testing.T) {
	ids := make(map[string]bool)
	count := 1000

	for range count {
		id, err := Generate(PrefixBooking)
		require.NoError(t, err)
		assert.False(t, ids[id], "ID should be unique: %s", id)
		ids[id] = true
	}

	assert.Len(t, ids, count)
}

func TestGenerate_Format(t *testing.T) {
	for _, prefix := range []string{PrefixUser, PrefixBooking} {
		t.Run(prefix, func(t *testing.T) {
			id, err := Generate(prefix)
			require.NoError(t, err)

			assert.True(t, strings.HasPrefix(id, prefix+"-"))
			assert.Len(t, id, len(prefix)+1+21)
		})
	}
}

func TestMustGenerate(t *testing.T) {
	assert.NotPanics(t, func() {
		id := MustGenerate(PrefixUser)
		assert.True(t, strings.HasPrefix(id, "user-"))
	})
}

func TestForEmail_Stable(t *testing.T) {
	a := ForEmail("a@b.com")
	b := ForEmail("  A@B.com ")
	c := ForEmail("c@d.com")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.True(t, strings.HasPrefix(a, "user-"))
}

func TestNewProfile(t *testing.T) {
	p := NewProfile()

	assert.True(t, IsProfile(p))
	assert.NotEqual(t, p, NewProfile())
	assert.False(t, IsProfile("not-a-profile"))
	assert.False(t, IsProfile(""))
}
