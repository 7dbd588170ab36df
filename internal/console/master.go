package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/eldritch-elbow/rock-paper-etc/internal/game"
	"github.com/eldritch-elbow/rock-paper-etc/internal/rules"
)

// Game is the part of *game.Match the master drives.
type Game interface {
	Observe(obs game.Observer)
	Play(ctx context.Context) error
}

// Hooks supply the user-facing steps of a game. ShowIntro and Prepare
// are optional; Prepare defaults to game.NewMatch. Hooks that wait for
// input return the context error once ctx is done.
type Hooks struct {
	ShowIntro func(ctx context.Context) error
	PlayerOne func(ctx context.Context) (game.Player, error)
	PlayerTwo func(ctx context.Context) (game.Player, error)
	Rounds    func(ctx context.Context) (int, error)
	Prepare   func(p1, p2 game.Player, rounds int) (Game, error)
}

// Master runs games one after another using its hooks.
type Master struct {
	engine   *rules.Engine
	hooks    Hooks
	observer game.Observer
	delay    time.Duration
}

// NewMaster returns a master that registers observer on every game.
func NewMaster(engine *rules.Engine, hooks Hooks, observer game.Observer, delay time.Duration) (*Master, error) {
	if engine == nil {
		return nil, errors.New("rules engine is required")
	}
	if hooks.PlayerOne == nil || hooks.PlayerTwo == nil || hooks.Rounds == nil {
		return nil, errors.New("player and round hooks are required")
	}
	return &Master{engine: engine, hooks: hooks, observer: observer, delay: delay}, nil
}

// RunGames plays one game, or keeps playing until an error or a
// cancelled context when continuous is set.
func (m *Master) RunGames(ctx context.Context, continuous bool) error {
	for {
		if err := m.runGame(ctx); err != nil {
			return err
		}
		if !continuous {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
}

func (m *Master) runGame(ctx context.Context) error {
	if m.hooks.ShowIntro != nil {
		if err := m.hooks.ShowIntro(ctx); err != nil {
			return fmt.Errorf("show intro: %w", err)
		}
	}

	p1, err := m.hooks.PlayerOne(ctx)
	if err != nil {
		return fmt.Errorf("player one: %w", err)
	}
	defer closePlayer(p1)
	p2, err := m.hooks.PlayerTwo(ctx)
	if err != nil {
		return fmt.Errorf("player two: %w", err)
	}
	defer closePlayer(p2)

	rounds, err := m.hooks.Rounds(ctx)
	if err != nil {
		return fmt.Errorf("rounds: %w", err)
	}

	g, err := m.prepare(p1, p2, rounds)
	if err != nil {
		return fmt.Errorf("prepare game: %w", err)
	}
	if m.observer != nil {
		g.Observe(m.observer)
	}
	// Players that want to follow the game get the same events.
	for _, p := range []game.Player{p1, p2} {
		if obs, ok := p.(game.Observer); ok {
			g.Observe(obs)
		}
	}
	return g.Play(ctx)
}

func (m *Master) prepare(p1, p2 game.Player, rounds int) (Game, error) {
	if m.hooks.Prepare != nil {
		return m.hooks.Prepare(p1, p2, rounds)
	}
	return game.NewMatch(p1, p2, m.engine, rounds, game.WithRoundDelay(m.delay))
}

func closePlayer(p game.Player) {
	if c, ok := p.(io.Closer); ok {
		_ = c.Close()
	}
}
