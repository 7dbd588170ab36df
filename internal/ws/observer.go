package ws

import (
	"github.com/eldritch-elbow/rock-paper-etc/internal/game"
	"github.com/eldritch-elbow/rock-paper-etc/internal/rules"
)

// tableObserver relays match events to everyone at a table.
type tableObserver struct {
	hub   *Hub
	room  string
	last  [2]string
	round int
}

func (o *tableObserver) MovePlayed(p game.Player, token string) {
	seat := -1
	if rp, ok := p.(*remotePlayer); ok {
		seat = rp.seat
		o.last[seat] = token
	}
	o.hub.sendMsgToRoom(o.room, Msg{T: "play", M: map[string]interface{}{
		"room": o.room, "seat": seat, "player": p.Name(), "token": token,
	}})
}

func (o *tableObserver) RoundOutcome(res rules.Outcome) {
	o.round++
	winner := -1
	if !res.IsDraw() {
		if res.Winner == o.last[0] {
			winner = 0
		} else {
			winner = 1
		}
	}

	var scores [2]int
	o.hub.roomsMu.Lock()
	if room, ok := o.hub.rooms[o.room]; ok {
		room.Round = o.round
		if winner >= 0 {
			room.Scores[winner]++
		}
		scores = room.Scores
	}
	o.hub.roomsMu.Unlock()

	o.hub.sendMsgToRoom(o.room, Msg{T: "round", M: map[string]interface{}{
		"room": o.room, "round": o.round,
		"winner": res.Winner, "verb": res.Verb, "loser": res.Loser,
		"draw": res.IsDraw(), "winnerSeat": winner,
		"text": res.String(), "scores": scores[:],
	}})
}

func (o *tableObserver) GameOutcome(p1 game.Player, p1Score int, p2 game.Player, p2Score int) {
	winner := ""
	switch {
	case p1Score > p2Score:
		winner = p1.Name()
	case p2Score > p1Score:
		winner = p2.Name()
	}
	o.hub.sendMsgToRoom(o.room, Msg{T: "game", M: map[string]interface{}{
		"room":    o.room,
		"players": []string{p1.Name(), p2.Name()},
		"scores":  []int{p1Score, p2Score},
		"winner":  winner,
	}})
}
