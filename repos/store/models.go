package store

import (
	"time"

	"github.com/nvbf/bingo-hall/pkg/bingo"
)

type User struct {
	ID           string    `firestore:"-" json:"id"`
	Username     string    `firestore:"username" json:"username"`
	Email        string    `firestore:"email" json:"email"`
	Role         string    `firestore:"role" json:"role"`
	Points       int64     `firestore:"points" json:"points"`
	FolderAccess []string  `firestore:"folderAccess,omitempty" json:"folderAccess,omitempty"`
	CreatedAt    time.Time `firestore:"createdAt,omitempty" json:"createdAt,omitempty"`
}

// UserUpdate carries the fields an admin may change. Nil fields are left alone.
type UserUpdate struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Role     *string `json:"role"`
	Points   *int64  `json:"points"`

	// FolderAccess follows Role and is never taken from a request.
	FolderAccess []string `json:"-"`
}

func (u UserUpdate) Empty() bool {
	return u.Username == nil && u.Email == nil && u.Role == nil && u.Points == nil
}

// Cartela is a stored bingo card. The document id is the card number.
type Cartela struct {
	ID        string    `firestore:"-" json:"id"`
	Number    int       `firestore:"number" json:"number"`
	B         []string  `firestore:"B" json:"B"`
	I         []string  `firestore:"I" json:"I"`
	N         []string  `firestore:"N" json:"N"`
	G         []string  `firestore:"G" json:"G"`
	O         []string  `firestore:"O" json:"O"`
	CreatedAt time.Time `firestore:"createdAt,omitempty" json:"createdAt,omitempty"`
}

func (c Cartela) Columns() map[string][]string {
	return map[string][]string{"B": c.B, "I": c.I, "N": c.N, "G": c.G, "O": c.O}
}

func (c Cartela) Card() (bingo.Card, error) {
	return bingo.CardFromColumns(c.Columns())
}

func CartelaFromCard(number int, card bingo.Card) Cartela {
	cols := card.Columns()
	return Cartela{
		Number: number,
		B:      cols["B"],
		I:      cols["I"],
		N:      cols["N"],
		G:      cols["G"],
		O:      cols["O"],
	}
}

// GameSession records one paid entry. Written once, never updated.
type GameSession struct {
	ID               string    `firestore:"-" json:"id"`
	UserID           string    `firestore:"userId" json:"userId"`
	UserEmail        string    `firestore:"userEmail" json:"userEmail"`
	SelectedCartelas []int     `firestore:"selectedCartelas" json:"selectedCartelas"`
	BetAmount        float64   `firestore:"betAmount" json:"betAmount"`
	Percentage       int       `firestore:"percentage" json:"percentage"`
	Pricing          string    `firestore:"pricing,omitempty" json:"pricing,omitempty"`
	CommissionRate   float64   `firestore:"commissionRate,omitempty" json:"commissionRate,omitempty"`
	TotalAmount      float64   `firestore:"totalAmount" json:"totalAmount"`
	WinAmount        float64   `firestore:"winAmount" json:"winAmount"`
	JackpotAmount    float64   `firestore:"jackpotAmount" json:"jackpotAmount"`
	BonusType        string    `firestore:"bonusType" json:"bonusType"`
	BonusAmount      float64   `firestore:"bonusAmount" json:"bonusAmount"`
	GameType         string    `firestore:"gameType,omitempty" json:"gameType,omitempty"`
	Speed            int       `firestore:"speed" json:"speed"`
	EntryCost        int64     `firestore:"entryCost" json:"entryCost"`
	BingoPageID      string    `firestore:"bingoPageId,omitempty" json:"bingoPageId,omitempty"`
	CreatedAt        time.Time `firestore:"createdAt" json:"createdAt"`
}

type Play struct {
	UserID      string    `firestore:"userId"`
	BingoPageID string    `firestore:"bingoPageId"`
	SessionID   string    `firestore:"sessionId"`
	CreatedAt   time.Time `firestore:"createdAt"`
}

type Winner struct {
	CardNumber int      `firestore:"cardNumber" json:"cardNumber"`
	Patterns   []string `firestore:"patterns" json:"patterns"`
	Sequence   int      `firestore:"sequence" json:"sequence"`
	Bonus      bool     `firestore:"bonus" json:"bonus"`
}

// Game is the stored outcome of a finished round.
type Game struct {
	RoundID   string    `firestore:"-" json:"roundId"`
	SessionID string    `firestore:"sessionId" json:"sessionId"`
	UserEmail string    `firestore:"userEmail" json:"userEmail"`
	Marked    []int     `firestore:"marked" json:"marked"`
	Winners   []Winner  `firestore:"winners" json:"winners"`
	Status    string    `firestore:"status" json:"status"`
	StartedAt time.Time `firestore:"startedAt" json:"startedAt"`
	EndedAt   time.Time `firestore:"endedAt" json:"endedAt"`
}

// Entry asks EnterGame to charge UserID Cost points and record Session.
type Entry struct {
	UserID  string
	Cost    int64
	Session GameSession
}
