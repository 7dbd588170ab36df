package players

import (
	"context"
	"fmt"
	"io"
)

// HumanName is what the console calls its human player.
const HumanName = "Wiggles"

// Human reads moves from a console. Tokens are offered as a numbered
// menu starting at 1.
type Human struct {
	tokens []string
	in     *Lines
	out    io.Writer
}

// NewHuman returns a console player reading from in.
func NewHuman(tokens []string, in *Lines, out io.Writer) *Human {
	return &Human{
		tokens: append([]string(nil), tokens...),
		in:     in,
		out:    out,
	}
}

func (h *Human) Name() string { return HumanName }

func (h *Human) String() string { return HumanName }

func (h *Human) NextMove(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	prompt := fmt.Sprintf("Select your token %s [1-%d]: ", HumanName, len(h.tokens))
	n, err := ReadChoice(ctx, h.in, h.out, prompt, 1, len(h.tokens))
	if err != nil {
		return "", fmt.Errorf("read human move: %w", err)
	}
	return h.tokens[n-1], nil
}
