package types

// TableSnapshot is served by GET /state:
//   version: number
//   connection: "connecting" | "open" | "closed"
//   local_player_id: id
//   room: { room_id, seats: [{ index, player_id | null }], owner_id, game_modes, current_game_mode }
//   players: PlayerView[]          // seat order
//   game: { game_id, game_type, active, dealer_id, shared_cards, hand, score_category, pots, bets }
//   controls: ControlsView
//   ranking: RankingRowView[]
//   log: string[]                  // newest first
type TableSnapshot struct {
	Version       int              `json:"version"`
	Connection    string           `json:"connection"`
	ServerID      string           `json:"server_id,omitempty"`
	LocalPlayerID ID               `json:"local_player_id,omitempty"`
	Room          RoomView         `json:"room"`
	Players       []PlayerView     `json:"players"`
	Game          GameView         `json:"game"`
	Controls      ControlsView     `json:"controls"`
	Ranking       []RankingRowView `json:"ranking"`
	Log           []string         `json:"log"`
}

type RoomView struct {
	RoomID          ID         `json:"room_id,omitempty"`
	Seats           []SeatView `json:"seats"`
	OwnerID         ID         `json:"owner_id,omitempty"`
	GameModes       []GameMode `json:"game_modes,omitempty"`
	CurrentGameMode ID         `json:"current_game_mode,omitempty"`
}

type SeatView struct {
	Index    int `json:"index"`
	PlayerID *ID `json:"player_id"`
}

type PlayerView struct {
	ID               ID         `json:"id"`
	Name             string     `json:"name"`
	Money            string     `json:"money"`
	Local            bool       `json:"local"`
	Dealer           bool       `json:"dealer"`
	Folded           bool       `json:"fold"`
	Winner           bool       `json:"winner"`
	Bet              float64    `json:"bet,omitempty"`
	CountdownSeconds *int       `json:"countdown_seconds,omitempty"`
	Cards            []CardView `json:"cards"`
}

// CardView is one card slot. Sprite fields are empty while the card is face down.
type CardView struct {
	Size     string `json:"size"`
	Rank     int    `json:"rank,omitempty"`
	Suit     *int   `json:"suit,omitempty"`
	Label    string `json:"label"`
	Selected bool   `json:"selected,omitempty"`
	Sheet    string `json:"sheet"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

type GameView struct {
	GameID        string         `json:"game_id,omitempty"`
	GameType      string         `json:"game_type,omitempty"`
	Active        bool           `json:"active"`
	DealerID      ID             `json:"dealer_id,omitempty"`
	SharedCards   []CardView     `json:"shared_cards"`
	Hand          []CardView     `json:"hand"`
	ScoreCategory string         `json:"score_category,omitempty"`
	Pots          []Pot          `json:"pots"`
	Bets          map[ID]float64 `json:"bets"`
}

type ControlsView struct {
	BetMode     bool    `json:"bet_mode"`
	NoBetOnly   bool    `json:"no_bet_only"`
	BetLabel    string  `json:"bet_label,omitempty"`
	Amount      float64 `json:"amount"`
	MinBet      float64 `json:"min_bet"`
	MaxBet      float64 `json:"max_bet"`
	CanIncrease bool    `json:"can_increase"`
	CanDecrease bool    `json:"can_decrease"`
	FoldLabel   string  `json:"fold_label,omitempty"`
	DiscardMode bool    `json:"discard_mode"`
	Ready       bool    `json:"ready"`
}

type RankingRowView struct {
	Position int    `json:"position"`
	Name     string `json:"name"`
	Money    string `json:"money"`
	Avg      string `json:"avg"`
}

// CommandRequest is the body of POST /commands. Type is one of
// ToggleReady, IncreaseBet, IncreaseBetQuick, DecreaseBet, DecreaseBetQuick,
// Bet, AllIn, Fold, NoBet, ToggleCard, SubmitDiscard, ChangeGameMode.
type CommandRequest struct {
	Type   string `json:"type"`
	Card   int    `json:"card,omitempty"`
	ModeID ID     `json:"mode_id,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
