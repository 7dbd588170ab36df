// Package console drives games from a terminal: menus for picking
// players and rounds, and a running commentary of every game.
package console

import (
	"context"
	"embed"
	"fmt"
	"io"
	"math"
	"math/rand"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/eldritch-elbow/rock-paper-etc/internal/game"
	"github.com/eldritch-elbow/rock-paper-etc/internal/players"
	"github.com/eldritch-elbow/rock-paper-etc/internal/random"
	"github.com/eldritch-elbow/rock-paper-etc/internal/rules"
)

//go:embed art/*.txt
var art embed.FS

var dinosaurFiles = []string{"art/dinosaur1.txt", "art/dinosaur2.txt", "art/dinosaur3.txt"}

// Console is the terminal games master. It provides the Hooks for a
// Master and observes each game to print what happens.
type Console struct {
	engine  *rules.Engine
	factory *players.Factory
	in      *players.Lines
	p       *message.Printer
	out     io.Writer
	rng     *rand.Rand
	tokens  []string

	banner    string
	dinosaurs []string
}

// New builds a console over in and out. tag selects number formatting.
func New(engine *rules.Engine, factory *players.Factory, in *players.Lines, out io.Writer, tag language.Tag) (*Console, error) {
	rng, err := random.New()
	if err != nil {
		return nil, err
	}
	banner, err := art.ReadFile("art/banner.txt")
	if err != nil {
		return nil, fmt.Errorf("read banner: %w", err)
	}
	dinos := make([]string, 0, len(dinosaurFiles))
	for _, name := range dinosaurFiles {
		b, err := art.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		dinos = append(dinos, string(b))
	}
	return &Console{
		engine:    engine,
		factory:   factory,
		in:        in,
		p:         message.NewPrinter(tag),
		out:       out,
		rng:       rng,
		tokens:    engine.Tokens(),
		banner:    string(banner),
		dinosaurs: dinos,
	}, nil
}

// Hooks returns the console implementation of every master hook.
func (c *Console) Hooks(delay time.Duration) Hooks {
	return Hooks{
		ShowIntro: c.showBanner,
		PlayerOne: func(ctx context.Context) (game.Player, error) {
			return c.readyPlayer(ctx, "Select player 1 type: ")
		},
		PlayerTwo: func(ctx context.Context) (game.Player, error) {
			return c.readyPlayer(ctx, "Select player 2 type: ")
		},
		Rounds: c.rounds,
		Prepare: func(p1, p2 game.Player, rounds int) (Game, error) {
			c.p.Fprintf(c.out, "\nOK. LET'S PLAY A GAME\n")
			return game.NewMatch(p1, p2, c.engine, rounds, game.WithRoundDelay(delay))
		},
	}
}

func (c *Console) showBanner(context.Context) error {
	c.p.Fprintf(c.out, "%s\n\nSHALL WE PLAY A GAME?\n\n", c.banner)

	c.p.Fprintf(c.out, "Game tokens:\n")
	for i, t := range c.tokens {
		c.p.Fprintf(c.out, "  %d - %s\n", i+1, t)
	}

	c.p.Fprintf(c.out, "Available player types: \n")
	for i, k := range players.Kinds() {
		c.p.Fprintf(c.out, "  %d - %s\n", i+1, k)
	}
	_, err := c.p.Fprintf(c.out, "\n")
	return err
}

func (c *Console) readyPlayer(ctx context.Context, prompt string) (game.Player, error) {
	kinds := players.Kinds()
	n, err := players.ReadChoice(ctx, c.in, c.out, prompt, 1, len(kinds))
	if err != nil {
		return nil, err
	}
	return c.factory.Create(kinds[n-1])
}

func (c *Console) rounds(ctx context.Context) (int, error) {
	return players.ReadChoice(ctx, c.in, c.out, "Enter a number of rounds to play: ", 1, math.MaxInt32)
}

func (c *Console) MovePlayed(p game.Player, token string) {
	c.p.Fprintf(c.out, "Player [%s] plays '%s'\n", p.Name(), token)
}

func (c *Console) RoundOutcome(o rules.Outcome) {
	c.p.Fprintf(c.out, "%s\n\n", o)
}

func (c *Console) GameOutcome(p1 game.Player, p1Score int, p2 game.Player, p2Score int) {
	c.p.Fprintf(c.out, "Final score:\n")
	c.p.Fprintf(c.out, "%s: %d\n", p1.Name(), p1Score)
	c.p.Fprintf(c.out, "%s: %d\n", p2.Name(), p2Score)

	switch {
	case p1Score > p2Score:
		c.outputWinner(p1.Name())
	case p2Score > p1Score:
		c.outputWinner(p2.Name())
	default:
		c.p.Fprintf(c.out, "It's a draw! No dinosaurs this time.\n\n")
	}
}

func (c *Console) outputWinner(winner string) {
	c.p.Fprintf(c.out, "And the winner is: %s\n\n", winner)
	c.p.Fprintf(c.out, "Congratulations %s, here is your celebratory dinosaur:\n\n", winner)
	c.p.Fprintf(c.out, "%s\n", c.dinosaurs[c.rng.Intn(len(c.dinosaurs))])
}
