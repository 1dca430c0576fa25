package engine

import (
	"errors"
	"fmt"
	"strconv"
)

var ErrInvalidRank = errors.New("invalid rank")
var ErrInvalidSuit = errors.New("invalid suit")

type Suit int

const (
	Spades Suit = iota
	Clubs
	Diamonds
	Hearts
)

func (s Suit) Symbol() string {
	switch s {
	case Spades:
		return "♠"
	case Clubs:
		return "♣"
	case Diamonds:
		return "♦"
	case Hearts:
		return "♥"
	default:
		return "?"
	}
}

func (s Suit) Red() bool { return s == Diamonds || s == Hearts }

// Card is a validated card. Rank is 1..13 with the ace as 1; the zero Card
// stands for a face-down slot.
type Card struct {
	Rank int
	Suit Suit
}

// NewCard validates a wire card. Rank 14 is the server's high ace and maps to 1.
func NewCard(rank, suit int) (Card, error) {
	if suit < int(Spades) || suit > int(Hearts) {
		return Card{}, fmt.Errorf("%w: %d", ErrInvalidSuit, suit)
	}
	if rank == 14 {
		rank = 1
	}
	if rank < 1 || rank > 13 {
		return Card{}, fmt.Errorf("%w: %d", ErrInvalidRank, rank)
	}
	return Card{Rank: rank, Suit: Suit(suit)}, nil
}

func (c Card) FaceDown() bool { return c.Rank == 0 }

func (c Card) RankLabel() string {
	switch c.Rank {
	case 1:
		return "A"
	case 11:
		return "J"
	case 12:
		return "Q"
	case 13:
		return "K"
	default:
		return strconv.Itoa(c.Rank)
	}
}

func (c Card) String() string {
	if c.FaceDown() {
		return "??"
	}
	return c.RankLabel() + c.Suit.Symbol()
}

type CardSize string

const (
	SizeSmall  CardSize = "small"
	SizeMedium CardSize = "medium"
	SizeLarge  CardSize = "large"
)

type spriteSheet struct {
	url    string
	width  int
	height int
}

var spriteSheets = map[CardSize]spriteSheet{
	SizeSmall:  {url: "static/images/cards-small.png", width: 24, height: 40},
	SizeMedium: {url: "static/images/cards-medium.png", width: 45, height: 75},
	SizeLarge:  {url: "static/images/cards-large.png", width: 75, height: 125},
}

// Sprite locates a card face on a sprite sheet. X and Y are background
// offsets in pixels and are never positive.
type Sprite struct {
	Sheet  string `json:"sheet"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// SpriteOffset maps (rank, suit) to its position on the sheet of the given size.
// Each suit owns one quadrant and ranks are laid out every second column.
// Unknown sizes fall back to the large sheet.
func SpriteOffset(rank, suit int, size CardSize) (Sprite, error) {
	sheet, ok := spriteSheets[size]
	if !ok {
		sheet = spriteSheets[SizeLarge]
	}
	c, err := NewCard(rank, suit)
	if err != nil {
		return Sprite{}, err
	}

	x, y := 0, 0
	switch c.Suit {
	case Spades:
		x -= sheet.width
		y -= sheet.height
	case Clubs:
		y -= sheet.height
	case Diamonds:
		x -= sheet.width
	case Hearts:
	}
	x -= (c.Rank-1)*2*sheet.width + sheet.width

	return Sprite{Sheet: sheet.url, X: x, Y: y, Width: sheet.width, Height: sheet.height}, nil
}

// CardBack is the sprite of a face-down card of the given size.
func CardBack(size CardSize) Sprite {
	sheet, ok := spriteSheets[size]
	if !ok {
		sheet = spriteSheets[SizeLarge]
	}
	return Sprite{Sheet: sheet.url, Width: sheet.width, Height: sheet.height}
}

var scoreCategories = map[int]string{
	0: "Highest card",
	1: "Pair",
	2: "Double pair",
	3: "Three of a kind",
	4: "Straight",
	5: "Flush",
	6: "Full house",
	7: "Four of a kind",
	8: "Straight flush",
}

// ScoreCategory names a hand category; unknown categories have no label.
func ScoreCategory(category int) string {
	return scoreCategories[category]
}
