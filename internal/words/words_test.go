package words

import (
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoomName(t *testing.T) {
	name, err := RoomName()
	require.NoError(t, err)

	parts := strings.Split(name, "-")
	require.Len(t, parts, 3)
	assert.True(t, slices.Contains(adjectives, parts[0]), parts[0])
	assert.True(t, slices.Contains(creatures, parts[1]), parts[1])
	assert.True(t, slices.Contains(things, parts[2]), parts[2])
}

func TestRoomName_Varies(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		name, err := RoomName()
		require.NoError(t, err)
		seen[name] = true
	}
	assert.Greater(t, len(seen), 1)
}

func TestRandomIndexInRange(t *testing.T) {
	for i := 0; i < 100; i++ {
		n, err := randomIndex(3)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 0)
		assert.Less(t, n, 3)
	}
}
