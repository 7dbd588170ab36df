package players

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"sync"

	lua "github.com/yuin/gopher-lua"

	"github.com/eldritch-elbow/rock-paper-etc/internal/game"
	"github.com/eldritch-elbow/rock-paper-etc/internal/rules"
)

//go:embed strategies/*.lua
var strategies embed.FS

// DefaultStrategy is the built-in strategy used when none is configured.
const DefaultStrategy = "counter"

// Strategy returns the source of a built-in Lua strategy.
func Strategy(name string) (string, error) {
	b, err := strategies.ReadFile("strategies/" + name + ".lua")
	if err != nil {
		return "", fmt.Errorf("strategy %q: %w", name, err)
	}
	return string(b), nil
}

// ScriptPlayer asks a Lua script for every move.
//
// The script must define a global function move(tokens, history) that
// returns one of tokens. history lists the opponent's earlier moves in
// the current game, oldest first. The global resolve(a, b) returns the
// winner, verb and loser for two tokens.
//
// Register the player as an observer of its match so history fills up.
type ScriptPlayer struct {
	mu      sync.Mutex
	name    string
	engine  *rules.Engine
	tokens  []string
	history []string
	state   *lua.LState
}

// NewScriptPlayer compiles source and checks that it defines move.
func NewScriptPlayer(name, source string, engine *rules.Engine) (*ScriptPlayer, error) {
	if engine == nil {
		return nil, errors.New("rules engine is required")
	}
	p := &ScriptPlayer{
		name:   name,
		engine: engine,
		tokens: engine.Tokens(),
		state:  lua.NewState(),
	}
	p.state.SetGlobal("resolve", p.state.NewFunction(p.luaResolve))

	if err := p.state.DoString(source); err != nil {
		p.state.Close()
		return nil, fmt.Errorf("load strategy: %w", err)
	}
	if p.state.GetGlobal("move").Type() != lua.LTFunction {
		p.state.Close()
		return nil, errors.New("load strategy: move(tokens, history) is not defined")
	}
	return p, nil
}

func (p *ScriptPlayer) Name() string { return p.name }

func (p *ScriptPlayer) String() string { return p.name }

func (p *ScriptPlayer) NextMove(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.state.SetContext(ctx)
	defer p.state.RemoveContext()

	err := p.state.CallByParam(lua.P{
		Fn:      p.state.GetGlobal("move"),
		NRet:    1,
		Protect: true,
	}, p.list(p.tokens), p.list(p.history))
	if err != nil {
		return "", fmt.Errorf("strategy: %w", err)
	}
	ret := p.state.Get(-1)
	p.state.Pop(1)

	s, ok := ret.(lua.LString)
	if !ok {
		return "", fmt.Errorf("strategy returned %s, want string", ret.Type())
	}
	tok := string(s)
	if !p.engine.Has(tok) {
		return "", fmt.Errorf("strategy: %w", &rules.UnknownTokenError{Tokens: []string{tok}})
	}
	return tok, nil
}

// MovePlayed records the opponent's moves.
func (p *ScriptPlayer) MovePlayed(pl game.Player, token string) {
	if pl == game.Player(p) {
		return
	}
	p.mu.Lock()
	p.history = append(p.history, token)
	p.mu.Unlock()
}

func (p *ScriptPlayer) RoundOutcome(rules.Outcome) {}

// GameOutcome clears history for the next game.
func (p *ScriptPlayer) GameOutcome(game.Player, int, game.Player, int) {
	p.mu.Lock()
	p.history = nil
	p.mu.Unlock()
}

// Close releases the Lua state.
func (p *ScriptPlayer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state.Close()
	return nil
}

func (p *ScriptPlayer) list(values []string) *lua.LTable {
	t := p.state.CreateTable(len(values), 0)
	for _, v := range values {
		t.Append(lua.LString(v))
	}
	return t
}

func (p *ScriptPlayer) luaResolve(L *lua.LState) int {
	o, err := p.engine.Resolve(L.CheckString(1), L.CheckString(2))
	if err != nil {
		L.RaiseError("%s", err.Error())
		return 0
	}
	L.Push(lua.LString(o.Winner))
	L.Push(lua.LString(o.Verb))
	L.Push(lua.LString(o.Loser))
	return 3
}
