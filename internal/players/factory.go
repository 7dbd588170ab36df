// Package players provides the move producers for a match: a console
// human, a random computer and a Lua-scripted computer.
package players

import (
	"errors"
	"fmt"
	"io"

	"github.com/eldritch-elbow/rock-paper-etc/internal/game"
	"github.com/eldritch-elbow/rock-paper-etc/internal/rules"
)

// Kind selects a player implementation.
type Kind int

const (
	KindHuman Kind = iota
	KindRandomComputer
	KindScriptedComputer
)

// ScriptedName is the name given to scripted computer players.
const ScriptedName = "Marvin"

func (k Kind) String() string {
	switch k {
	case KindHuman:
		return "HUMAN"
	case KindRandomComputer:
		return "RANDOM_COMPUTER"
	case KindScriptedComputer:
		return "SCRIPTED_COMPUTER"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Kinds lists every kind in menu order.
func Kinds() []Kind {
	return []Kind{KindHuman, KindRandomComputer, KindScriptedComputer}
}

// Factory creates players for one rule set.
type Factory struct {
	Engine *rules.Engine
	In     *Lines
	Out    io.Writer
	// Script is the Lua source for scripted players. Empty selects
	// DefaultStrategy.
	Script string
}

// Create returns a new player of the given kind. Scripted players hold a
// Lua state; close them via io.Closer when the game is over.
func (f *Factory) Create(kind Kind) (game.Player, error) {
	if f.Engine == nil {
		return nil, errors.New("player factory has no rules")
	}
	tokens := f.Engine.Tokens()

	switch kind {
	case KindHuman:
		if f.In == nil || f.Out == nil {
			return nil, errors.New("human player needs console input and output")
		}
		return NewHuman(tokens, f.In, f.Out), nil
	case KindRandomComputer:
		return NewRandom(tokens)
	case KindScriptedComputer:
		src := f.Script
		if src == "" {
			var err error
			if src, err = Strategy(DefaultStrategy); err != nil {
				return nil, err
			}
		}
		return NewScriptPlayer(ScriptedName, src, f.Engine)
	default:
		return nil, fmt.Errorf("unexpected player kind %s", kind)
	}
}
