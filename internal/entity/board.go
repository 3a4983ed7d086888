package entity

import (
	"strconv"
	"strings"
)

const (
	SignX = "x"
	SignO = "o"

	EmptyCell = ""

	boardSize = 3
)

var winCombos = [][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// Board is the 3x3 grid. Cells are indexed row-major; the row/column
// labels seen by users exist only in Render output.
type Board struct {
	Cells [9]string `json:"cells"`
}

func NewBoard() *Board {
	return &Board{}
}

// cellIndex maps 1-based (row, col) coordinates to a flat cell index.
func cellIndex(row, col int) int {
	return (row-1)*boardSize + (col - 1)
}

func (that *Board) IsFree(row, col int) bool {
	return that.Cells[cellIndex(row, col)] == EmptyCell
}

func (that *Board) Mark(row, col int, sign string) {
	that.Cells[cellIndex(row, col)] = sign
}

// Winner returns the winning sign, or EmptyCell if no line is complete.
func (that *Board) Winner() string {
	for _, combo := range winCombos {
		a, b, c := that.Cells[combo[0]], that.Cells[combo[1]], that.Cells[combo[2]]
		if a != EmptyCell && a == b && b == c {
			return a
		}
	}

	return EmptyCell
}

func (that *Board) IsFull() bool {
	for _, cell := range that.Cells {
		if cell == EmptyCell {
			return false
		}
	}

	return true
}

// Render produces the textual grid sent to users: a "· 1 2 3" header row,
// then one row-labelled line per board row with empty cells shown as "_".
// The exact layout is a wire contract with the notifier.
func (that *Board) Render() string {
	var sb strings.Builder

	sb.WriteString("· 1 2 3")

	for row := 1; row <= boardSize; row++ {
		sb.WriteString("\n")
		sb.WriteString(strconv.Itoa(row))

		for col := 1; col <= boardSize; col++ {
			cell := that.Cells[cellIndex(row, col)]
			if cell == EmptyCell {
				cell = "_"
			}

			sb.WriteString(" ")
			sb.WriteString(cell)
		}
	}

	return sb.String()
}
