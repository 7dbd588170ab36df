package rules

// DrawVerb is the verb of every draw outcome.
const DrawVerb = "draws with"

// Outcome is the result of comparing two tokens. It is a plain value:
// two outcomes are equal when all three fields are equal.
type Outcome struct {
	Winner string `json:"winner"`
	Verb   string `json:"verb"`
	Loser  string `json:"loser"`
}

// Draw returns the draw outcome for token.
func Draw(token string) Outcome {
	return Outcome{Winner: token, Verb: DrawVerb, Loser: token}
}

// IsDraw reports whether both sides played the same token.
func (o Outcome) IsDraw() bool {
	return o.Winner == o.Loser
}

// String renders the outcome as a sentence, e.g. "Rock crushes Scissors".
func (o Outcome) String() string {
	return o.Winner + " " + o.Verb + " " + o.Loser
}
