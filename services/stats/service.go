package stats

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nvbf/bingo-hall/pkg/accounting"
	"github.com/nvbf/bingo-hall/pkg/auth"
	"github.com/nvbf/bingo-hall/pkg/logger"
	timehelper "github.com/nvbf/bingo-hall/pkg/timeHelper"
	"github.com/nvbf/bingo-hall/repos/store"
)

const defaultPercentage = 100

const (
	Today   = "today"
	AllDays = "all"
)

var ErrBadDate = errors.New("date must be YYYY-MM-DD, today or all")

type StatsStore interface {
	GetUser(ctx context.Context, id string) (*store.User, error)
	ListSessions(ctx context.Context) ([]*store.GameSession, error)
	ListSessionsByEmail(ctx context.Context, email string) ([]*store.GameSession, error)
}

type StatsService struct {
	store StatsStore
	loc   *time.Location
}

func NewStatsService(s StatsStore, loc *time.Location) *StatsService {
	if loc == nil {
		loc = time.UTC
	}
	return &StatsService{store: s, loc: loc}
}

// day resolves a sales date filter to midnight in loc. The zero time means
// every day.
func day(date string, loc *time.Location) (time.Time, error) {
	switch date {
	case AllDays:
		return time.Time{}, nil
	case "", Today:
		date = timehelper.GetTodaysDateString(loc)
	}
	t, err := time.ParseInLocation(timehelper.DateLayout, date, loc)
	if err != nil {
		return time.Time{}, ErrBadDate
	}
	return t, nil
}

// OnDay keeps the sessions created on the day starting at midnight.
func OnDay(sessions []*store.GameSession, midnight time.Time, loc *time.Location) []*store.GameSession {
	var out []*store.GameSession
	for _, s := range sessions {
		if timehelper.StartOfDay(s.CreatedAt, loc).Equal(midnight) {
			out = append(out, s)
		}
	}
	return out
}

// Sales reports every session for admins and the caller's own otherwise,
// limited to date. An empty date is today.
func (s *StatsService) Sales(ctx context.Context, who auth.Identity, date string) ([]DailyReport, error) {
	midnight, err := day(date, s.loc)
	if err != nil {
		return nil, err
	}

	var sessions []*store.GameSession
	if who.Role == auth.RoleAdmin {
		sessions, err = s.store.ListSessions(ctx)
	} else {
		sessions, err = s.store.ListSessionsByEmail(ctx, who.Email)
	}
	if err != nil {
		return nil, err
	}
	if !midnight.IsZero() {
		sessions = OnDay(sessions, midnight, s.loc)
	}
	return DailyReports(sessions, s.loc), nil
}

func (s *StatsService) Overview(ctx context.Context, who auth.Identity) (DashboardView, error) {
	user, err := s.store.GetUser(ctx, who.UID)
	if err != nil {
		return DashboardView{}, err
	}
	sessions, err := s.store.ListSessions(ctx)
	if err != nil {
		return DashboardView{}, err
	}
	return Dashboard(user, sessions), nil
}

// figures recomputes a session's money from its bet, cards and pricing.
// Sessions that no longer validate keep the amounts they were stored with.
func figures(s *store.GameSession) accounting.Figures {
	price := accounting.Pricing{Mode: s.Pricing, Percentage: s.Percentage}
	if s.Pricing == accounting.PricingCommission {
		price.Rate = decimal.NewFromFloat(s.CommissionRate)
	} else if price.Percentage == 0 {
		price.Percentage = defaultPercentage
	}
	f, err := price.Figures(decimal.NewFromFloat(s.BetAmount), len(s.SelectedCartelas))
	if err != nil {
		logger.Debugf("session %s: using stored figures: %v", s.ID, err)
		return accounting.Figures{
			TotalAmount:   decimal.NewFromFloat(s.TotalAmount),
			WinAmount:     decimal.NewFromFloat(s.WinAmount),
			JackpotAmount: decimal.NewFromFloat(s.JackpotAmount),
		}
	}
	return f
}

// DailyReports groups sessions by the day they were created in loc, newest
// day first.
func DailyReports(sessions []*store.GameSession, loc *time.Location) []DailyReport {
	byDate := map[string]*DailyReport{}
	for _, s := range sessions {
		key := timehelper.DateKey(s.CreatedAt, loc)
		r, ok := byDate[key]
		if !ok {
			r = &DailyReport{Date: key}
			byDate[key] = r
		}
		f := figures(s)
		r.Sessions++
		r.Players += len(s.SelectedCartelas)
		r.TotalSales = r.TotalSales.Add(f.TotalAmount)
		r.TotalWin = r.TotalWin.Add(f.WinAmount)
		r.TotalJackpot = r.TotalJackpot.Add(f.JackpotAmount)
	}

	reports := make([]DailyReport, 0, len(byDate))
	for _, r := range byDate {
		if r.TotalSales.IsPositive() {
			r.WinPercent = r.TotalWin.Mul(decimal.NewFromInt(100)).Div(r.TotalSales).Round(2).InexactFloat64()
		}
		reports = append(reports, *r)
	}
	sort.Slice(reports, func(i, j int) bool {
		return reports[i].Date > reports[j].Date
	})
	return reports
}

// Dashboard combines the user's own activity with the hall-wide jackpot.
func Dashboard(user *store.User, sessions []*store.GameSession) DashboardView {
	view := DashboardView{Points: user.Points}
	for _, s := range sessions {
		f := figures(s)
		view.GlobalJackpot = view.GlobalJackpot.Add(f.JackpotAmount)
		if s.UserID != user.ID && (user.Email == "" || s.UserEmail != user.Email) {
			continue
		}
		view.GamesPlayed++
		view.BonusEarned = view.BonusEarned.Add(decimal.NewFromFloat(s.BonusAmount))
	}
	view.Revenue = view.GlobalJackpot
	return view
}
