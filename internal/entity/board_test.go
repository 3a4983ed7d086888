package entity

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoard_Render(t *testing.T) {
	t.Run("Fresh board renders the empty template", func(t *testing.T) {
		// Given: a freshly constructed board
		board := NewBoard()

		// When: rendering it
		text := board.Render()

		// Then: it should match the fixed 4-row template
		expected := "· 1 2 3\n" +
			"1 _ _ _\n" +
			"2 _ _ _\n" +
			"3 _ _ _"
		require.Equal(t, expected, text)
	})

	t.Run("Marked cells render in place", func(t *testing.T) {
		// Given: a board with x in the top-left and o in the center
		board := NewBoard()
		board.Mark(1, 1, SignX)
		board.Mark(2, 2, SignO)

		// When: rendering it
		text := board.Render()

		// Then: the marks should appear at their coordinates
		expected := "· 1 2 3\n" +
			"1 x _ _\n" +
			"2 _ o _\n" +
			"3 _ _ _"
		assert.Equal(t, expected, text)
	})
}

func TestBoard_Winner(t *testing.T) {
	fullLines := [][3][2]int{
		{{1, 1}, {1, 2}, {1, 3}},
		{{2, 1}, {2, 2}, {2, 3}},
		{{3, 1}, {3, 2}, {3, 3}},
		{{1, 1}, {2, 1}, {3, 1}},
		{{1, 2}, {2, 2}, {3, 2}},
		{{1, 3}, {2, 3}, {3, 3}},
		{{1, 1}, {2, 2}, {3, 3}},
		{{1, 3}, {2, 2}, {3, 1}},
	}

	for _, sign := range []string{SignX, SignO} {
		for i, line := range fullLines {
			t.Run(fmt.Sprintf("Line %d wins for %s", i, sign), func(t *testing.T) {
				// Given: a board where the sign holds one full line
				board := NewBoard()
				for _, cell := range line {
					board.Mark(cell[0], cell[1], sign)
				}

				// When: checking for a winner
				winner := board.Winner()

				// Then: that sign should win
				require.Equal(t, sign, winner)
			})
		}
	}

	t.Run("Full board without a line has no winner", func(t *testing.T) {
		// Given: a completely filled board with no three-in-a-row
		board := NewBoard()
		board.Cells = [9]string{
			SignX, SignO, SignX,
			SignX, SignO, SignO,
			SignO, SignX, SignX,
		}

		// When: checking for a winner
		winner := board.Winner()

		// Then: there should be none, and the board should be full
		assert.Equal(t, EmptyCell, winner)
		assert.True(t, board.IsFull())
	})

	t.Run("Empty board has no winner and is not full", func(t *testing.T) {
		// Given: a fresh board
		board := NewBoard()

		// Then: no winner, not full
		assert.Equal(t, EmptyCell, board.Winner())
		assert.False(t, board.IsFull())
	})
}

func TestBoard_IsFree(t *testing.T) {
	// Given: a board with one marked cell
	board := NewBoard()
	board.Mark(3, 1, SignO)

	// Then: the marked cell is taken, its neighbours are free
	assert.False(t, board.IsFree(3, 1))
	assert.True(t, board.IsFree(3, 2))
	assert.True(t, board.IsFree(2, 1))
}
