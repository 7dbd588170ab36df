package players

import (
	"context"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eldritch-elbow/rock-paper-etc/internal/game"
	"github.com/eldritch-elbow/rock-paper-etc/internal/rules"
)

func rpsEngine(t *testing.T) *rules.Engine {
	t.Helper()
	e, err := rules.LoadLines([]string{
		"Rock:crushes:Scissors",
		"Scissors:cuts:Paper",
		"Paper:covers:Rock",
	})
	require.NoError(t, err)
	return e
}

type named string

func (n named) Name() string { return string(n) }

func (n named) NextMove(context.Context) (string, error) {
	return string(n), nil
}

func newScript(t *testing.T, src string) *ScriptPlayer {
	t.Helper()
	p, err := NewScriptPlayer("bot", src, rpsEngine(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func TestScriptPlayerFirstToken(t *testing.T) {
	p := newScript(t, `function move(tokens, history) return tokens[1] end`)

	got, err := p.NextMove(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Paper", got)
	assert.Equal(t, "bot", p.Name())
}

func TestScriptPlayerSeesOpponentHistory(t *testing.T) {
	src, err := Strategy("repeat")
	require.NoError(t, err)
	p := newScript(t, src)

	p.MovePlayed(p, "Paper")
	p.MovePlayed(named("opponent"), "Scissors")

	got, err := p.NextMove(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Scissors", got)

	p.GameOutcome(p, 0, named("opponent"), 1)
	got, err = p.NextMove(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Paper", got, "history resets between games")
}

func TestCounterStrategyBeatsLastMove(t *testing.T) {
	src, err := Strategy(DefaultStrategy)
	require.NoError(t, err)
	p := newScript(t, src)

	tests := []struct{ last, want string }{
		{"Rock", "Paper"},
		{"Paper", "Scissors"},
		{"Scissors", "Rock"},
	}
	for _, tt := range tests {
		p.MovePlayed(named("opponent"), tt.last)
		got, err := p.NextMove(context.Background())
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestCounterStrategyOpensWithValidToken(t *testing.T) {
	src, err := Strategy(DefaultStrategy)
	require.NoError(t, err)
	p := newScript(t, src)

	got, err := p.NextMove(context.Background())
	require.NoError(t, err)
	assert.Contains(t, []string{"Paper", "Rock", "Scissors"}, got)
}

func TestScriptResolveGlobal(t *testing.T) {
	p := newScript(t, `
function move(tokens, history)
  local w, verb, l = resolve("Scissors", "Rock")
  if w == "Rock" and verb == "crushes" and l == "Scissors" then
    return "Rock"
  end
  return "Paper"
end`)

	got, err := p.NextMove(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Rock", got)
}

func TestScriptPlayerErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"unknown token", `function move() return "Banana" end`},
		{"not a string", `function move() return 42 end`},
		{"runtime error", `function move() error("boom") end`},
		{"bad resolve", `function move() return resolve("Rock", "Banana") end`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newScript(t, tt.src)
			_, err := p.NextMove(context.Background())
			assert.Error(t, err)
		})
	}
}

func TestScriptPlayerUnknownTokenIsTyped(t *testing.T) {
	p := newScript(t, `function move() return "Banana" end`)
	_, err := p.NextMove(context.Background())
	assert.ErrorIs(t, err, rules.ErrUnknownToken)
}

func TestNewScriptPlayerRejectsBadSource(t *testing.T) {
	e := rpsEngine(t)

	_, err := NewScriptPlayer("bot", `function move(`, e)
	assert.Error(t, err)

	_, err = NewScriptPlayer("bot", `x = 1`, e)
	assert.ErrorContains(t, err, "move(tokens, history) is not defined")

	_, err = NewScriptPlayer("bot", `function move() return "Rock" end`, nil)
	assert.Error(t, err)
}

func TestScriptPlayerInMatch(t *testing.T) {
	src, err := Strategy(DefaultStrategy)
	require.NoError(t, err)
	e := rpsEngine(t)
	bot, err := NewScriptPlayer("bot", src, e)
	require.NoError(t, err)
	defer bot.Close()

	m, err := game.NewMatch(named("Rock"), bot, e, 4, game.WithRoundDelay(0))
	require.NoError(t, err)
	m.Observe(bot)
	require.NoError(t, m.Play(context.Background()))

	// From round two on the bot answers Rock with Paper.
	assert.GreaterOrEqual(t, m.Outcome().P2Score, 3)
}

func TestStrategyMissing(t *testing.T) {
	_, err := Strategy("nope")
	assert.Error(t, err)
}

func TestScriptPlayerKeepsLuaStatePrivate(t *testing.T) {
	typ := reflect.TypeOf((*ScriptPlayer)(nil)).Elem()
	for i := 0; i < typ.NumField(); i++ {
		assert.False(t, typ.Field(i).IsExported(), "field %s is exported", typ.Field(i).Name)
	}
}
