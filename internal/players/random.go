package players

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/eldritch-elbow/rock-paper-etc/internal/random"
)

const robotPrefix = "Robby"

// Random picks uniformly from its tokens.
type Random struct {
	name   string
	tokens []string
	rng    *rand.Rand
}

// NewRandom returns a computer player seeded from crypto/rand.
func NewRandom(tokens []string) (*Random, error) {
	rng, err := random.New()
	if err != nil {
		return nil, err
	}
	return newRandom(tokens, rng)
}

func newRandom(tokens []string, rng *rand.Rand) (*Random, error) {
	if len(tokens) == 0 {
		return nil, errors.New("random player needs at least one token")
	}
	return &Random{
		name:   fmt.Sprintf("%s %d", robotPrefix, rng.Intn(10000)),
		tokens: append([]string(nil), tokens...),
		rng:    rng,
	}, nil
}

func (p *Random) Name() string { return p.name }

func (p *Random) String() string { return p.name }

func (p *Random) NextMove(context.Context) (string, error) {
	return p.tokens[p.rng.Intn(len(p.tokens))], nil
}
