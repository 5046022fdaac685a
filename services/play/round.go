package play

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/nvbf/bingo-hall/pkg/bingo"
	"github.com/nvbf/bingo-hall/pkg/config"
	"github.com/nvbf/bingo-hall/pkg/logger"
	"github.com/nvbf/bingo-hall/repos/drawlog"
	"github.com/nvbf/bingo-hall/repos/store"
)

var (
	ErrRoundFinished  = errors.New("every number has been drawn")
	ErrRoundClosed    = errors.New("round is closed")
	ErrInvalidDelay   = errors.New("delay must be between 1000 and 6000 ms")
	ErrCardNotInRound = errors.New("card is not part of this round")

	errNotPlaying = errors.New("round is not playing")
)

type Status string

const (
	StatusIdle     Status = "idle"
	StatusPlaying  Status = "playing"
	StatusPaused   Status = "paused"
	StatusFinished Status = "finished"
	StatusClosed   Status = "closed"
)

const subscriberBuffer = 64

// Announcement tells a screen what to show and play for a draw.
type Announcement struct {
	Label  string `json:"label"`
	Audio  string `json:"audio"`
	Speech string `json:"speech"`
}

func Announce(n int) Announcement {
	label := bingo.Label(n)
	return Announcement{
		Label:  label,
		Audio:  "/audio/" + bingo.AssetKey(n) + ".m4a",
		Speech: label,
	}
}

type EventType string

const (
	EventSnapshot EventType = "snapshot"
	EventDraw     EventType = "draw"
	EventWinner   EventType = "winner"
	EventState    EventType = "state"
	EventReset    EventType = "reset"
)

type Event struct {
	Type         EventType     `json:"type"`
	RoundID      string        `json:"roundId"`
	Status       Status        `json:"status,omitempty"`
	Draw         *bingo.Draw   `json:"draw,omitempty"`
	Announcement *Announcement `json:"announcement,omitempty"`
	Winner       *store.Winner `json:"winner,omitempty"`
	Snapshot     *Snapshot     `json:"snapshot,omitempty"`
}

type Snapshot struct {
	RoundID   string         `json:"roundId"`
	SessionID string         `json:"sessionId"`
	Code      string         `json:"code,omitempty"`
	Status    Status         `json:"status"`
	Marked    []int          `json:"marked"`
	Last      *bingo.Draw    `json:"last,omitempty"`
	Winners   []store.Winner `json:"winners"`
	Cards     []int          `json:"cards"`
	DelayMS   int            `json:"delayMs"`
	Remaining int            `json:"remaining"`
	Bonus     string         `json:"bonus,omitempty"`
	StartedAt *time.Time     `json:"startedAt,omitempty"`
}

type CheckResult struct {
	CardNumber int      `json:"cardNumber"`
	Patterns   []string `json:"patterns"`
	Winner     bool     `json:"winner"`
	Bonus      bool     `json:"bonus"`
	Marked     []int    `json:"marked"`
}

// LoadedCard is a cartela taking part in a round.
type LoadedCard struct {
	Number int
	Card   bingo.Card
}

type RoundConfig struct {
	ID        string
	SessionID string
	UserEmail string
	Code      string
	Nonce     string
	Cards     []LoadedCard
	Patterns  []bingo.Pattern
	Bonus     bingo.Bonus
	Delay     time.Duration
	// CardPool limits draws to numbers found on the loaded cards.
	CardPool  bool
	Source    bingo.Source
	Publisher drawlog.Publisher
}

// Round is one server-side game. A single goroutine drives the draw timer;
// every other method is safe to call from any goroutine.
type Round struct {
	mu sync.Mutex

	id        string
	sessionID string
	userEmail string
	code      string
	nonce     string

	engine   *bingo.Engine
	cards    []LoadedCard
	patterns []bingo.Pattern
	bonus    bingo.Bonus
	delay    time.Duration
	status   Status
	final    Status
	last     *bingo.Draw

	winners     map[int]*store.Winner
	winnerOrder []int

	subs    map[int]chan Event
	nextSub int

	startedAt time.Time
	publisher drawlog.Publisher

	wake chan struct{}
	done chan struct{}
	exit chan struct{}
}

func NewRound(cfg RoundConfig) (*Round, error) {
	if cfg.Delay < config.MinDrawDelay || cfg.Delay > config.MaxDrawDelay {
		return nil, ErrInvalidDelay
	}
	if cfg.Source == nil {
		cfg.Source = bingo.CryptoSource()
	}
	if cfg.Patterns == nil {
		cfg.Patterns = bingo.DefaultPatterns()
	}
	if cfg.Publisher == nil {
		cfg.Publisher = drawlog.Noop{}
	}

	var pool []int
	if cfg.CardPool {
		cards := make([]bingo.Card, len(cfg.Cards))
		for i, c := range cfg.Cards {
			cards[i] = c.Card
		}
		pool = bingo.PoolFromCards(cards)
	}

	r := &Round{
		id:        cfg.ID,
		sessionID: cfg.SessionID,
		userEmail: cfg.UserEmail,
		code:      cfg.Code,
		nonce:     cfg.Nonce,
		engine:    bingo.NewEngine(cfg.Source, pool),
		cards:     cfg.Cards,
		patterns:  cfg.Patterns,
		bonus:     cfg.Bonus,
		delay:     cfg.Delay,
		status:    StatusIdle,
		winners:   map[int]*store.Winner{},
		subs:      map[int]chan Event{},
		publisher: cfg.Publisher,
		wake:      make(chan struct{}, 1),
		done:      make(chan struct{}),
		exit:      make(chan struct{}),
	}
	go r.loop()
	return r, nil
}

func (r *Round) ID() string        { return r.id }
func (r *Round) Code() string      { return r.code }
func (r *Round) SessionID() string { return r.sessionID }

func (r *Round) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

func (r *Round) Delay() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.delay
}

func (r *Round) loop() {
	defer close(r.exit)

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-r.done:
			return
		case <-r.wake:
			timer.Stop()
			if d, ok := r.nextTick(); ok {
				timer.Reset(d)
			}
		case <-timer.C:
			r.drawAndPublish(true)
			if d, ok := r.nextTick(); ok {
				timer.Reset(d)
			}
		}
	}
}

func (r *Round) nextTick() (time.Duration, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.delay, r.status == StatusPlaying
}

func (r *Round) poke() {
	select {
	case r.wake <- struct{}{}:
	default:
	}
}

// Start begins or resumes automatic drawing.
func (r *Round) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch r.status {
	case StatusClosed:
		return ErrRoundClosed
	case StatusFinished:
		return ErrRoundFinished
	case StatusPlaying:
		return nil
	}
	if r.startedAt.IsZero() {
		r.startedAt = time.Now()
	}
	r.setStatus(StatusPlaying)
	r.poke()
	logger.Infof("round %s: start", r.id)
	return nil
}

func (r *Round) Pause() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status == StatusClosed {
		return ErrRoundClosed
	}
	if r.status != StatusPlaying {
		return nil
	}
	r.setStatus(StatusPaused)
	r.poke()
	logger.Infof("round %s: pause", r.id)
	return nil
}

// Reset clears every draw and winner and stops the timer. Calling it twice
// is the same as calling it once.
func (r *Round) Reset() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status == StatusClosed {
		return ErrRoundClosed
	}
	r.engine.Reset()
	r.last = nil
	r.winners = map[int]*store.Winner{}
	r.winnerOrder = nil
	r.status = StatusIdle
	r.poke()
	r.broadcast(Event{Type: EventReset, Status: StatusIdle})
	logger.Infof("round %s: reset", r.id)
	return nil
}

// SetDelay changes the pause between draws. It takes effect from the next
// scheduled draw.
func (r *Round) SetDelay(d time.Duration) error {
	if d < config.MinDrawDelay || d > config.MaxDrawDelay {
		return ErrInvalidDelay
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.status == StatusClosed {
		return ErrRoundClosed
	}
	r.delay = d
	return nil
}

// DrawNext draws one number immediately, whatever the timer state.
func (r *Round) DrawNext() (bingo.Draw, error) {
	return r.drawAndPublish(false)
}

// drawAndPublish draws one number and appends it to the draw log. Timer
// draws (auto) are skipped unless the round is playing.
func (r *Round) drawAndPublish(auto bool) (bingo.Draw, error) {
	d, err := r.draw(auto)
	if err != nil {
		return d, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err = r.publisher.Publish(ctx, drawlog.DrawRecord{
		RoundID:   r.id,
		SessionID: r.sessionID,
		Sequence:  d.Sequence,
		Number:    d.Number,
		Label:     d.Label,
	})
	if err != nil {
		logger.Warnf("round %s: draw log failed: %v", r.id, err)
	}
	return d, nil
}

func (r *Round) draw(auto bool) (bingo.Draw, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch {
	case r.status == StatusClosed:
		return bingo.Draw{}, ErrRoundClosed
	case r.status == StatusFinished:
		return bingo.Draw{}, ErrRoundFinished
	case auto && r.status != StatusPlaying:
		return bingo.Draw{}, errNotPlaying
	}

	d, err := r.engine.Next()
	if errors.Is(err, bingo.ErrExhausted) {
		r.finish()
		return bingo.Draw{}, ErrRoundFinished
	}
	if err != nil {
		return bingo.Draw{}, err
	}
	if r.startedAt.IsZero() {
		r.startedAt = time.Now()
	}
	r.last = &d

	a := Announce(d.Number)
	r.broadcast(Event{Type: EventDraw, Draw: &d, Announcement: &a})

	for _, w := range r.scan(d.Sequence) {
		r.broadcast(Event{Type: EventWinner, Winner: &w})
		logger.Infof("round %s: winner card %d with %v", r.id, w.CardNumber, w.Patterns)
	}

	if r.engine.Exhausted() {
		r.finish()
	}
	return d, nil
}

func (r *Round) finish() {
	r.setStatus(StatusFinished)
	r.poke()
	logger.Infof("round %s: exhausted after %d draws", r.id, r.engine.Count())
}

// scan rechecks every card and returns the ones that won for the first time.
// Cards that already won keep their patterns up to date.
func (r *Round) scan(sequence int) []store.Winner {
	var fresh []store.Winner
	for _, c := range r.cards {
		won := bingo.Winning(c.Card, r.engine, r.patterns)
		if len(won) == 0 {
			continue
		}
		if w, ok := r.winners[c.Number]; ok {
			w.Patterns = won
			continue
		}
		w := &store.Winner{
			CardNumber: c.Number,
			Patterns:   won,
			Sequence:   sequence,
			Bonus:      r.bonus.Awarded(c.Card, r.engine, won, sequence),
		}
		r.winners[c.Number] = w
		r.winnerOrder = append(r.winnerOrder, c.Number)
		fresh = append(fresh, *w)
	}
	return fresh
}

// Check reports the current patterns of a loaded card.
func (r *Round) Check(number int) (CheckResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.cards {
		if c.Number != number {
			continue
		}
		won := bingo.Winning(c.Card, r.engine, r.patterns)
		res := CheckResult{
			CardNumber: number,
			Patterns:   won,
			Winner:     len(won) > 0,
			Marked:     r.markedOnCard(c.Card),
		}
		if w, ok := r.winners[number]; ok {
			res.Bonus = w.Bonus
		}
		return res, nil
	}
	return CheckResult{}, ErrCardNotInRound
}

func (r *Round) markedOnCard(card bingo.Card) []int {
	out := []int{}
	for _, n := range card.Numbers() {
		if r.engine.IsMarked(n) {
			out = append(out, n)
		}
	}
	return out
}

func (r *Round) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshot()
}

func (r *Round) snapshot() Snapshot {
	s := Snapshot{
		RoundID:   r.id,
		SessionID: r.sessionID,
		Code:      r.code,
		Status:    r.status,
		Marked:    r.engine.Marked(),
		Winners:   r.winnerList(),
		Cards:     make([]int, len(r.cards)),
		DelayMS:   int(r.delay / time.Millisecond),
		Remaining: r.engine.Remaining(),
		Bonus:     r.bonus.Raw,
	}
	if s.Marked == nil {
		s.Marked = []int{}
	}
	for i, c := range r.cards {
		s.Cards[i] = c.Number
	}
	if r.last != nil {
		last := *r.last
		s.Last = &last
	}
	if !r.startedAt.IsZero() {
		started := r.startedAt
		s.StartedAt = &started
	}
	return s
}

func (r *Round) winnerList() []store.Winner {
	out := make([]store.Winner, 0, len(r.winnerOrder))
	for _, n := range r.winnerOrder {
		out = append(out, *r.winners[n])
	}
	return out
}

// Subscribe returns a stream that starts with a snapshot. A subscriber that
// falls behind by more than its buffer is dropped and its channel closed.
func (r *Round) Subscribe() (<-chan Event, func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ch := make(chan Event, subscriberBuffer)
	if r.status == StatusClosed {
		close(ch)
		return ch, func() {}
	}

	snap := r.snapshot()
	ch <- Event{Type: EventSnapshot, RoundID: r.id, Status: r.status, Snapshot: &snap}

	id := r.nextSub
	r.nextSub++
	r.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			if c, ok := r.subs[id]; ok {
				delete(r.subs, id)
				close(c)
			}
		})
	}
}

func (r *Round) Subscribers() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs)
}

func (r *Round) setStatus(s Status) {
	r.status = s
	r.broadcast(Event{Type: EventState, Status: s})
}

// broadcast must be called with r.mu held.
func (r *Round) broadcast(e Event) {
	e.RoundID = r.id
	for id, ch := range r.subs {
		select {
		case ch <- e:
		default:
			delete(r.subs, id)
			close(ch)
			logger.Warnf("round %s: dropped slow subscriber %d", r.id, id)
		}
	}
}

// Close stops the round for good and returns its outcome.
func (r *Round) Close() *store.Game {
	r.mu.Lock()
	if r.status == StatusClosed {
		r.mu.Unlock()
		<-r.exit
		return r.result()
	}
	r.final = r.status
	r.setStatus(StatusClosed)
	for id, ch := range r.subs {
		delete(r.subs, id)
		close(ch)
	}
	close(r.done)
	r.mu.Unlock()

	<-r.exit
	logger.Infof("round %s: closed", r.id)
	return r.result()
}

func (r *Round) result() *store.Game {
	r.mu.Lock()
	defer r.mu.Unlock()

	status := r.status
	if status == StatusClosed && r.final != "" {
		status = r.final
	}
	g := &store.Game{
		RoundID:   r.id,
		SessionID: r.sessionID,
		UserEmail: r.userEmail,
		Marked:    r.engine.Marked(),
		Winners:   r.winnerList(),
		Status:    string(status),
		StartedAt: r.startedAt,
		EndedAt:   time.Now(),
	}
	if g.Marked == nil {
		g.Marked = []int{}
	}
	return g
}

// matches reports whether nonce is the one issued with the round's join code.
func (r *Round) matches(nonce string) bool {
	return r.nonce != "" && r.nonce == nonce
}
