package bingo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLabel(t *testing.T) {
	cases := map[int]string{
		1:  "B 1",
		15: "B 15",
		16: "I 16",
		30: "I 30",
		31: "N 31",
		45: "N 45",
		46: "G 46",
		60: "G 60",
		61: "O 61",
		75: "O 75",
		0:  "0",
		76: "76",
	}
	for n, want := range cases {
		assert.Equal(t, want, Label(n), "label for %d", n)
	}
}

func TestAssetKey(t *testing.T) {
	assert.Equal(t, "B7", AssetKey(7))
	assert.Equal(t, "O75", AssetKey(75))
	assert.Equal(t, "N31", AssetKey(31))
	assert.Equal(t, "99", AssetKey(99))
}

func TestLabelCoversEveryNumber(t *testing.T) {
	for n := MinNumber; n <= MaxNumber; n++ {
		letter, ok := Letter(n)
		assert.True(t, ok)
		lo, hi := ColumnRange(ColumnOf(n))
		assert.GreaterOrEqual(t, n, lo)
		assert.LessOrEqual(t, n, hi)
		assert.Equal(t, Letters[ColumnOf(n)], letter)
	}
}

func TestColumnRange(t *testing.T) {
	lo, hi := ColumnRange(0)
	assert.Equal(t, 1, lo)
	assert.Equal(t, 15, hi)
	lo, hi = ColumnRange(4)
	assert.Equal(t, 61, lo)
	assert.Equal(t, 75, hi)
}
