package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUserID(t *testing.T) {
	t.Run("valid UUID parses", func(t *testing.T) {
		id, err := ParseUserID("a1b2c3d4-e5f6-7890-abcd-ef1234567890")
		require.NoError(t, err)
		assert.False(t, id.IsNil())
		assert.Equal(t, "a1b2c3d4-e5f6-7890-abcd-ef1234567890", id.String())
	})

	t.Run("whitespace is trimmed", func(t *testing.T) {
		id, err := ParseUserID("  a1b2c3d4-e5f6-7890-abcd-ef1234567890 ")
		require.NoError(t, err)
		assert.False(t, id.IsNil())
	})

	t.Run("garbage is rejected", func(t *testing.T) {
		_, err := ParseUserID("not-a-uuid")
		assert.Error(t, err)
	})
}

func TestUserIDZeroValue(t *testing.T) {
	var id UserID
	assert.True(t, id.IsNil())
}

func TestUserIDJSONRoundTrip(t *testing.T) {
	id := NewUserID()

	data, err := json.Marshal(id)
	require.NoError(t, err)

	var back UserID
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, id, back)
}
