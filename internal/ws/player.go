package ws

import (
	"context"
	"sync"
)

// remotePlayer is a seat at a table. Moves arrive from the hub's reader
// loop through moves.
type remotePlayer struct {
	hub      *Hub
	room     string
	seat     int
	clientID string
	name     string
	moves    chan string

	mu    sync.Mutex // guards round and sends on moves
	round int
}

func newRemotePlayer(h *Hub, room string, seat int, clientID, name string) *remotePlayer {
	return &remotePlayer{
		hub:      h,
		room:     room,
		seat:     seat,
		clientID: clientID,
		name:     name,
		moves:    make(chan string, 1),
	}
}

func (p *remotePlayer) Name() string { return p.name }

// NextMove asks the client for a token and waits for a valid one.
// Unknown tokens are answered with an error message and the wait goes on.
func (p *remotePlayer) NextMove(ctx context.Context) (string, error) {
	p.mu.Lock()
	p.round++
	round := p.round
	// a move queued before this round was asked for is stale
	select {
	case <-p.moves:
	default:
	}
	p.mu.Unlock()

	p.hub.sendToIDs([]string{p.clientID}, Msg{T: "your_move", M: map[string]interface{}{
		"room": p.room, "seat": p.seat, "round": round, "tokens": p.hub.engine.Tokens(),
	}})
	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case tok := <-p.moves:
			if p.hub.engine.Has(tok) {
				return tok, nil
			}
			p.hub.sendToIDs([]string{p.clientID}, Msg{T: "error", M: map[string]interface{}{
				"code": "UNKNOWN_TOKEN", "token": tok,
			}})
		}
	}
}

// offer hands a move to a waiting NextMove and returns an error code when
// it is refused. round is zero when the client did not say which round it
// answers; any other value must be the round being asked for.
func (p *remotePlayer) offer(tok string, round int) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if round != 0 && round != p.round {
		return "STALE_MOVE"
	}
	select {
	case p.moves <- tok:
		return ""
	default:
		return "MOVE_PENDING"
	}
}
