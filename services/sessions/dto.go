package sessions

import "github.com/shopspring/decimal"

type EnterRequest struct {
	SelectedCartelas []int           `json:"selectedCartelas" binding:"required"`
	BetAmount        decimal.Decimal `json:"betAmount"`
	Percentage       int             `json:"percentage"`
	Pricing          string          `json:"pricing"`
	CommissionRate   decimal.Decimal `json:"commissionRate"`
	BonusType        string          `json:"bonusType"`
	BonusAmount      decimal.Decimal `json:"bonusAmount"`
	GameType         string          `json:"gameType"`
	Speed            int             `json:"speed"`
	BingoPageID      string          `json:"bingoPageId"`
}

type Quote struct {
	BetAmount      string `json:"betAmount"`
	Cards          int    `json:"cards"`
	Pricing        string `json:"pricing"`
	Percentage     int    `json:"percentage,omitempty"`
	CommissionRate string `json:"commissionRate,omitempty"`
	TotalAmount    string `json:"totalAmount"`
	WinAmount      string `json:"winAmount"`
	JackpotAmount  string `json:"jackpotAmount"`

	// NextBet and PreviousBet are the stakes the bet buttons step to.
	NextBet     string `json:"nextBet"`
	PreviousBet string `json:"previousBet"`
}
