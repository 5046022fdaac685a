package stats

import "github.com/shopspring/decimal"

// DailyReport sums the sessions of one calendar day.
type DailyReport struct {
	Date         string          `json:"date"`
	Players      int             `json:"players"`
	TotalSales   decimal.Decimal `json:"totalSales"`
	TotalWin     decimal.Decimal `json:"totalWin"`
	WinPercent   float64         `json:"winPercent"`
	TotalJackpot decimal.Decimal `json:"totalJackpot"`
	Sessions     int             `json:"sessions"`
}

type DashboardView struct {
	Points        int64           `json:"points"`
	GamesPlayed   int             `json:"gamesPlayed"`
	BonusEarned   decimal.Decimal `json:"bonusEarned"`
	GlobalJackpot decimal.Decimal `json:"globalJackpot"`
	Revenue       decimal.Decimal `json:"revenue"`
}
