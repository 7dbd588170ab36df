package game

import (
	"context"

	"github.com/eldritch-elbow/rock-paper-etc/internal/rules"
)

// Player produces one token per call. NextMove may block, e.g. on
// console input or a network peer.
type Player interface {
	Name() string
	NextMove(ctx context.Context) (string, error)
}

// Observer receives match events in order: both moves of a round, the
// round outcome, and after the last round one game outcome.
type Observer interface {
	MovePlayed(p Player, token string)
	RoundOutcome(o rules.Outcome)
	GameOutcome(p1 Player, p1Score int, p2 Player, p2Score int)
}

// ObserverFuncs adapts plain functions to Observer. Nil fields are
// skipped.
type ObserverFuncs struct {
	OnMove  func(p Player, token string)
	OnRound func(o rules.Outcome)
	OnGame  func(p1 Player, p1Score int, p2 Player, p2Score int)
}

func (f ObserverFuncs) MovePlayed(p Player, token string) {
	if f.OnMove != nil {
		f.OnMove(p, token)
	}
}

func (f ObserverFuncs) RoundOutcome(o rules.Outcome) {
	if f.OnRound != nil {
		f.OnRound(o)
	}
}

func (f ObserverFuncs) GameOutcome(p1 Player, p1Score int, p2 Player, p2Score int) {
	if f.OnGame != nil {
		f.OnGame(p1, p1Score, p2, p2Score)
	}
}
