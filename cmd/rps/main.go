// Command rps plays token-matchup games on the console.
//
//	rps RULES_FILE
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/text/language"

	"github.com/eldritch-elbow/rock-paper-etc/internal/config"
	"github.com/eldritch-elbow/rock-paper-etc/internal/console"
	"github.com/eldritch-elbow/rock-paper-etc/internal/otel"
	"github.com/eldritch-elbow/rock-paper-etc/internal/players"
	"github.com/eldritch-elbow/rock-paper-etc/internal/rules"
)

type cliConfig struct {
	RoundDelay time.Duration `env:"RPS_ROUND_DELAY" envDefault:"2s"`
	Lang       string        `env:"RPS_LANG" envDefault:"en"`
	BotScript  string        `env:"RPS_BOT_SCRIPT"`
	Continuous bool          `env:"RPS_CONTINUOUS" envDefault:"true"`
	Tracing    otel.Config   `envPrefix:"RPS_OTEL_"`
}

func (c *cliConfig) Validate() error {
	if c.RoundDelay < 0 {
		return fmt.Errorf("RPS_ROUND_DELAY must not be negative, got %s", c.RoundDelay)
	}
	if _, err := language.Parse(c.Lang); err != nil {
		return fmt.Errorf("RPS_LANG: %w", err)
	}
	return nil
}

func main() {
	log.SetPrefix("[RPS] ")
	log.SetFlags(0)

	if len(os.Args) != 2 {
		config.Exitf("usage: rps RULES_FILE")
	}

	cfg, err := config.Load[cliConfig]()
	if err != nil {
		config.Exitf("%v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1], cfg); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
			return
		}
		config.Exitf("%v", err)
	}
}

func run(ctx context.Context, rulesPath string, cfg cliConfig) error {
	shutdown, err := otel.Setup(ctx, "rps", cfg.Tracing)
	if err != nil {
		log.Printf("otel setup: %v", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdown(sctx)
	}()

	engine, err := rules.LoadFile(rulesPath)
	if err != nil {
		return err
	}

	var script string
	if cfg.BotScript != "" {
		b, err := os.ReadFile(cfg.BotScript)
		if err != nil {
			return fmt.Errorf("read bot script: %w", err)
		}
		script = string(b)
	}

	in := players.NewLines(os.Stdin)
	factory := &players.Factory{Engine: engine, In: in, Out: os.Stdout, Script: script}

	c, err := console.New(engine, factory, in, os.Stdout, language.Make(cfg.Lang))
	if err != nil {
		return err
	}

	master, err := console.NewMaster(engine, c.Hooks(cfg.RoundDelay), c, cfg.RoundDelay)
	if err != nil {
		return err
	}
	return master.RunGames(ctx, cfg.Continuous)
}
