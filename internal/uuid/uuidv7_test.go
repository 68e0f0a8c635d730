package uuid

import (
	"testing"

	googleuuid "github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("is_version_7", func(t *testing.T) {
		id := New()
		parsed, err := googleuuid.Parse(id)
		require.NoError(t, err)
		assert.Equal(t, googleuuid.Version(7), parsed.Version())
	})

	t.Run("sorts_by_creation", func(t *testing.T) {
		a := New()
		b := New()
		assert.NotEqual(t, a, b)
		assert.LessOrEqual(t, a[:13], b[:13])
	})
}

func TestParse(t *testing.T) {
	got, err := Parse("0190A5B2-0000-7000-8000-000000000001")
	require.NoError(t, err)
	assert.Equal(t, "0190a5b2-0000-7000-8000-000000000001", got)

	_, err = Parse("not-a-uuid")
	assert.Error(t, err)
	assert.False(t, IsValid("nope"))
	assert.True(t, IsValid(New()))
}
