package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpriteOffsetIsInjectivePerSize(t *testing.T) {
	for _, size := range []CardSize{SizeSmall, SizeMedium, SizeLarge} {
		t.Run(string(size), func(t *testing.T) {
			seen := map[[2]int]string{}
			for suit := 0; suit <= 3; suit++ {
				for rank := 1; rank <= 13; rank++ {
					sp, err := SpriteOffset(rank, suit, size)
					require.NoError(t, err)

					again, _ := SpriteOffset(rank, suit, size)
					assert.Equal(t, sp, again, "not deterministic")

					key := [2]int{sp.X, sp.Y}
					card := Card{Rank: rank, Suit: Suit(suit)}.String()
					if prev, dup := seen[key]; dup {
						t.Fatalf("%s and %s share offset %v", prev, card, key)
					}
					seen[key] = card
				}
			}
			assert.Len(t, seen, 52)
		})
	}
}

func TestSpriteOffsetKnownPositions(t *testing.T) {
	cases := []struct {
		name       string
		rank, suit int
		size       CardSize
		wantX      int
		wantY      int
	}{
		{name: "ace of hearts large", rank: 1, suit: 3, size: SizeLarge, wantX: -75, wantY: 0},
		{name: "king of spades small", rank: 13, suit: 0, size: SizeSmall, wantX: -624, wantY: -40},
		{name: "two of clubs medium", rank: 2, suit: 1, size: SizeMedium, wantX: -135, wantY: -75},
		{name: "ten of diamonds large", rank: 10, suit: 2, size: SizeLarge, wantX: -1500, wantY: 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sp, err := SpriteOffset(tc.rank, tc.suit, tc.size)
			require.NoError(t, err)
			assert.Equal(t, tc.wantX, sp.X)
			assert.Equal(t, tc.wantY, sp.Y)
		})
	}
}

func TestSpriteOffsetHighAceMatchesLowAce(t *testing.T) {
	for suit := 0; suit <= 3; suit++ {
		high, err := SpriteOffset(14, suit, SizeMedium)
		require.NoError(t, err)
		low, err := SpriteOffset(1, suit, SizeMedium)
		require.NoError(t, err)
		assert.Equal(t, low, high)
	}
}

func TestSpriteOffsetRejectsOutOfDomain(t *testing.T) {
	cases := []struct {
		name       string
		rank, suit int
		want       error
	}{
		{name: "rank zero", rank: 0, suit: 0, want: ErrInvalidRank},
		{name: "rank fifteen", rank: 15, suit: 2, want: ErrInvalidRank},
		{name: "negative suit", rank: 5, suit: -1, want: ErrInvalidSuit},
		{name: "suit four", rank: 5, suit: 4, want: ErrInvalidSuit},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := SpriteOffset(tc.rank, tc.suit, SizeSmall)
			if !errors.Is(err, tc.want) {
				t.Fatalf("want %v, got %v", tc.want, err)
			}
		})
	}
}

func TestUnknownSizeFallsBackToLarge(t *testing.T) {
	got, err := SpriteOffset(5, 1, CardSize("huge"))
	require.NoError(t, err)
	want, _ := SpriteOffset(5, 1, SizeLarge)
	assert.Equal(t, want, got)
}

func TestScoreCategory(t *testing.T) {
	assert.Equal(t, "Highest card", ScoreCategory(0))
	assert.Equal(t, "Full house", ScoreCategory(6))
	assert.Equal(t, "Straight flush", ScoreCategory(8))
	assert.Equal(t, "", ScoreCategory(9))
}
