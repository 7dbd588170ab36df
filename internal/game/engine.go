package game

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/eldritch-elbow/rock-paper-etc/internal/rules"
)

// DefaultRoundDelay paces rounds for human spectators.
const DefaultRoundDelay = 2 * time.Second

var (
	ErrInvalidRounds = errors.New("round count must be positive")
	ErrInterrupted   = errors.New("match interrupted between rounds")
)

const tracerName = "github.com/eldritch-elbow/rock-paper-etc/internal/game"

// Status tracks where a Match is in its lifecycle.
type Status uint8

const (
	NotStarted Status = iota
	Playing
	Finished
	Aborted
)

func (s Status) String() string {
	switch s {
	case NotStarted:
		return "not_started"
	case Playing:
		return "playing"
	case Finished:
		return "finished"
	case Aborted:
		return "aborted"
	default:
		return fmt.Sprintf("status(%d)", uint8(s))
	}
}

// State holds the scores of one game. Rounds counts completed rounds.
type State struct {
	P1Score int `json:"p1Score"`
	P2Score int `json:"p2Score"`
	Rounds  int `json:"rounds"`
}

// Option configures a Match.
type Option func(*Match)

// WithRoundDelay sets the pause between rounds. Zero disables it.
func WithRoundDelay(d time.Duration) Option {
	return func(m *Match) {
		if d < 0 {
			d = 0
		}
		m.delay = d
	}
}

// Match plays a fixed number of rounds between two players.
// A Match is not safe for concurrent use; the rules engine it reads is.
type Match struct {
	p1, p2    Player
	engine    *rules.Engine
	rounds    int
	delay     time.Duration
	observers []Observer

	status Status
	state  State
}

// NewMatch prepares a match of rounds rounds.
func NewMatch(p1, p2 Player, engine *rules.Engine, rounds int, opts ...Option) (*Match, error) {
	if p1 == nil || p2 == nil {
		return nil, errors.New("two players are required")
	}
	if engine == nil {
		return nil, errors.New("rules engine is required")
	}
	if rounds <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidRounds, rounds)
	}
	m := &Match{
		p1:     p1,
		p2:     p2,
		engine: engine,
		rounds: rounds,
		delay:  DefaultRoundDelay,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Observe registers obs. Observers are notified in registration order.
func (m *Match) Observe(obs Observer) {
	if obs == nil {
		return
	}
	m.observers = append(m.observers, obs)
}

// Players returns both players in seat order.
func (m *Match) Players() (Player, Player) { return m.p1, m.p2 }

// Rounds is the configured round count.
func (m *Match) Rounds() int { return m.rounds }

// Status reports the lifecycle state.
func (m *Match) Status() Status { return m.status }

// Outcome returns the scores of the last game. After an aborted game it
// holds the partial score and must not be read as a final result.
func (m *Match) Outcome() State { return m.state }

// Play runs every round on the calling goroutine. Any player or rules
// error aborts the game before the game outcome is published.
func (m *Match) Play(ctx context.Context) (err error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "game.Match.Play",
		trace.WithAttributes(
			attribute.String("rps.player1", m.p1.Name()),
			attribute.String("rps.player2", m.p2.Name()),
			attribute.Int("rps.rounds", m.rounds),
		))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	m.state = State{}
	m.status = Playing

	for round := 1; round <= m.rounds; round++ {
		if round > 1 {
			if err := m.pause(ctx); err != nil {
				m.status = Aborted
				return err
			}
		}
		res, err := m.playRound(ctx)
		if err != nil {
			m.status = Aborted
			return fmt.Errorf("round %d: %w", round, err)
		}
		span.AddEvent("round", trace.WithAttributes(
			attribute.Int("rps.round", round),
			attribute.String("rps.outcome", res.String()),
		))
	}

	m.status = Finished
	m.notifyGameOutcome()
	return nil
}

func (m *Match) playRound(ctx context.Context) (rules.Outcome, error) {
	play1, err := m.p1.NextMove(ctx)
	if err != nil {
		return rules.Outcome{}, fmt.Errorf("player %s: move: %w", m.p1.Name(), err)
	}
	play2, err := m.p2.NextMove(ctx)
	if err != nil {
		return rules.Outcome{}, fmt.Errorf("player %s: move: %w", m.p2.Name(), err)
	}

	m.notifyPlay(m.p1, play1)
	m.notifyPlay(m.p2, play2)

	res, err := m.engine.Resolve(play1, play2)
	if err != nil {
		return rules.Outcome{}, err
	}

	if !res.IsDraw() {
		if res.Winner == play1 {
			m.state.P1Score++
		} else {
			m.state.P2Score++
		}
	}
	m.state.Rounds++

	m.notifyRoundOutcome(res)
	return res, nil
}

// pause waits out the round delay. Cancellation here is fatal to the game.
func (m *Match) pause(ctx context.Context) error {
	if m.delay <= 0 {
		return nil
	}
	t := time.NewTimer(m.delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrInterrupted, ctx.Err())
	case <-t.C:
		return nil
	}
}

func (m *Match) notifyPlay(p Player, token string) {
	for _, obs := range m.observers {
		obs.MovePlayed(p, token)
	}
}

func (m *Match) notifyRoundOutcome(res rules.Outcome) {
	for _, obs := range m.observers {
		obs.RoundOutcome(res)
	}
}

func (m *Match) notifyGameOutcome() {
	for _, obs := range m.observers {
		obs.GameOutcome(m.p1, m.state.P1Score, m.p2, m.state.P2Score)
	}
}
