package broadcaster

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoomIndex(t *testing.T) {
	t.Run("join creates room once", func(t *testing.T) {
		index := NewRoomIndex()

		assert.True(t, index.Join("R1", "A"))
		assert.False(t, index.Join("R1", "B"))
		assert.False(t, index.Join("R1", "B"))

		assert.Equal(t, []string{"A", "B"}, index.Members("R1"))
		assert.Equal(t, 2, index.MemberCount("R1"))
		assert.Equal(t, 1, index.RoomCount())
	})

	t.Run("last leave deletes room", func(t *testing.T) {
		index := NewRoomIndex()
		index.Join("R1", "A")
		index.Join("R1", "B")

		assert.False(t, index.Leave("R1", "A"))
		assert.True(t, index.Exists("R1"))
		assert.True(t, index.Leave("R1", "B"))
		assert.False(t, index.Exists("R1"))
		assert.Equal(t, 0, index.RoomCount())
	})

	t.Run("leave non-member", func(t *testing.T) {
		index := NewRoomIndex()
		index.Join("R1", "A")

		assert.False(t, index.Leave("R1", "B"))
		assert.False(t, index.Leave("R2", "A"))
		assert.Equal(t, []string{"A"}, index.Members("R1"))
	})

	t.Run("unknown room", func(t *testing.T) {
		index := NewRoomIndex()

		assert.NotNil(t, index.Members("nowhere"))
		assert.Empty(t, index.Members("nowhere"))
		assert.Equal(t, 0, index.MemberCount("nowhere"))
		assert.False(t, index.Contains("nowhere", "A"))
	})

	t.Run("counts", func(t *testing.T) {
		index := NewRoomIndex()
		index.Join("R1", "A")
		index.Join("R1", "B")
		index.Join("R2", "A")

		assert.Equal(t, map[string]int{"R1": 2, "R2": 1}, index.Counts())
		assert.Equal(t, []string{"R1", "R2"}, index.RoomIds())
	})
}
