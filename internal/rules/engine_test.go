package rules

import (
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadFixture(t *testing.T, name string) *Engine {
	t.Helper()
	e, err := LoadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	require.NotNil(t, e)
	return e
}

func TestLoadTokens(t *testing.T) {
	e, err := LoadLines([]string{"Rock:crushes:Scissors"})
	require.NoError(t, err)

	assert.Equal(t, []string{"Rock", "Scissors"}, e.Tokens())
	assert.Equal(t, 2, e.Len())
	assert.True(t, e.Has("Rock"))
	assert.False(t, e.Has("rock"), "tokens are case sensitive")
}

func TestTokensReturnsCopy(t *testing.T) {
	e := loadFixture(t, "rps.txt")
	toks := e.Tokens()
	toks[0] = "Banana"
	assert.Equal(t, []string{"Paper", "Rock", "Scissors"}, e.Tokens())
}

func TestResolveClassic(t *testing.T) {
	e := loadFixture(t, "rps.txt")

	want := Outcome{Winner: "Rock", Verb: "crushes", Loser: "Scissors"}

	got, err := e.Resolve("Rock", "Scissors")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	got, err = e.Resolve("Scissors", "Rock")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	got, err = e.Resolve("Paper", "Paper")
	require.NoError(t, err)
	assert.Equal(t, Outcome{Winner: "Paper", Verb: "draws with", Loser: "Paper"}, got)
	assert.True(t, got.IsDraw())

	_, err = e.Resolve("Rock", "Unknown")
	var unknown *UnknownTokenError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, []string{"Unknown"}, unknown.Tokens)
	assert.ErrorIs(t, err, ErrUnknownToken)
	assert.Contains(t, err.Error(), `"Unknown"`)
}

func TestResolveOrderIndependent(t *testing.T) {
	e := loadFixture(t, "rpsls.txt")
	toks := e.Tokens()
	require.Len(t, toks, 5)

	for _, a := range toks {
		for _, b := range toks {
			ab, err := e.Resolve(a, b)
			require.NoError(t, err, "%s vs %s", a, b)
			ba, err := e.Resolve(b, a)
			require.NoError(t, err, "%s vs %s", b, a)
			assert.Equal(t, ab, ba, "%s vs %s", a, b)
			if a == b {
				assert.Equal(t, Draw(a), ab)
				continue
			}
			assert.False(t, ab.IsDraw())
			assert.ElementsMatch(t, []string{a, b}, []string{ab.Winner, ab.Loser})
		}
	}
}

func TestResolveLizardSpockVerbs(t *testing.T) {
	e := loadFixture(t, "rpsls.txt")

	tests := []struct {
		a, b string
		want string
	}{
		{"Rock", "Spock", "Spock vaporizes Rock"},
		{"Paper", "Lizard", "Lizard eats Paper"},
		{"Spock", "Paper", "Paper disproves Spock"},
		{"Lizard", "Scissors", "Scissors decapitates Lizard"},
		{"Spock", "Lizard", "Lizard poisons Spock"},
	}
	for _, tt := range tests {
		got, err := e.Resolve(tt.a, tt.b)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got.String())
	}
}

func TestDrawWithoutSelfRule(t *testing.T) {
	e, err := LoadLines([]string{"Tardis:outruns:Banana"})
	require.NoError(t, err)

	for _, tok := range e.Tokens() {
		got, err := e.Resolve(tok, tok)
		require.NoError(t, err)
		assert.Equal(t, Outcome{Winner: tok, Verb: DrawVerb, Loser: tok}, got)
	}
}

func TestResolveUnknownReportsAll(t *testing.T) {
	e := loadFixture(t, "rps.txt")

	tests := []struct {
		name string
		a, b string
		want []string
	}{
		{"first", "Banana", "Rock", []string{"Banana"}},
		{"second", "Rock", "Banana", []string{"Banana"}},
		{"both", "Banana", "Tardis", []string{"Banana", "Tardis"}},
		{"same twice", "Banana", "Banana", []string{"Banana"}},
		{"case", "rock", "Rock", []string{"rock"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Resolve(tt.a, tt.b)
			var unknown *UnknownTokenError
			require.ErrorAs(t, err, &unknown)
			assert.Equal(t, tt.want, unknown.Tokens)
		})
	}
}

func TestResolveUnresolvedPair(t *testing.T) {
	e, err := LoadLines([]string{
		"Rock:crushes:Scissors",
		"Paper:covers:Rock",
	})
	require.NoError(t, err)

	_, err = e.Resolve("Scissors", "Paper")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnresolvedPair))

	var pair *UnresolvedPairError
	require.ErrorAs(t, err, &pair)
	assert.Equal(t, "Scissors", pair.A)
	assert.Equal(t, "Paper", pair.B)
}

func TestLoadMalformed(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		line  int
	}{
		{"two fields", []string{"Rock:Scissors"}, 1},
		{"one field", []string{"Rock"}, 1},
		{"four fields", []string{"Rock:crushes:Scissors:again"}, 1},
		{"blank line", []string{"Rock:crushes:Scissors", ""}, 2},
		{"empty verb", []string{"Rock::Scissors"}, 1},
		{"empty loser", []string{"Paper:covers:Rock", "Rock:crushes:"}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := LoadLines(tt.lines)
			assert.Nil(t, e)
			require.ErrorIs(t, err, ErrMalformedRule)

			var mr *MalformedRuleError
			require.ErrorAs(t, err, &mr)
			assert.Equal(t, tt.line, mr.Line)
			assert.Equal(t, tt.lines[tt.line-1], mr.Text)
		})
	}
}

func TestLoadFileMalformed(t *testing.T) {
	e, err := LoadFile(filepath.Join("testdata", "malformed.txt"))
	assert.Nil(t, e)
	require.ErrorIs(t, err, ErrMalformedRule)
	assert.Contains(t, err.Error(), "malformed.txt")
	assert.Contains(t, err.Error(), "line 2")
}

func TestLoadFileMissing(t *testing.T) {
	e, err := LoadFile(filepath.Join("testdata", "nope.txt"))
	assert.Nil(t, e)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open rules:")
}

func TestLoadCRLF(t *testing.T) {
	e := loadFixture(t, "crlf.txt")
	assert.Equal(t, []string{"Paper", "Rock", "Scissors"}, e.Tokens())

	got, err := e.Resolve("Paper", "Scissors")
	require.NoError(t, err)
	assert.Equal(t, "Scissors cuts Paper", got.String())
}

func TestLoadDuplicateLastWins(t *testing.T) {
	e, err := Load(strings.NewReader("Rock:crushes:Scissors\nScissors:blunts:Rock\n"))
	require.NoError(t, err)

	got, err := e.Resolve("Rock", "Scissors")
	require.NoError(t, err)
	assert.Equal(t, Outcome{Winner: "Scissors", Verb: "blunts", Loser: "Rock"}, got)
}

func TestConcurrentResolve(t *testing.T) {
	e := loadFixture(t, "rpsls.txt")
	toks := e.Tokens()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				a, b := toks[(i+j)%len(toks)], toks[j%len(toks)]
				if _, err := e.Resolve(a, b); err != nil {
					t.Errorf("resolve %s %s: %v", a, b, err)
					return
				}
			}
		}(i)
	}
	wg.Wait()
}

func TestOutcomeString(t *testing.T) {
	o := Outcome{Winner: "Paper", Verb: "disproves", Loser: "Spock"}
	assert.Equal(t, "Paper disproves Spock", o.String())
	assert.Equal(t, "Rock draws with Rock", Draw("Rock").String())
}
