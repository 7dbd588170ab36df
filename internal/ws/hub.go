package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"nhooyr.io/websocket"

	"github.com/eldritch-elbow/rock-paper-etc/internal/game"
	"github.com/eldritch-elbow/rock-paper-etc/internal/rules"
)

// ---------- message envelope ----------

type Msg struct {
	T string                 `json:"t"`           // type
	M map[string]interface{} `json:"m,omitempty"` // payload
}

// ---------- room / hub ----------

const seats = 2

// Room is a table for one pair of players plus any number of watchers.
type Room struct {
	ID        string
	Rounds    int
	PlayerIDs [seats]string // seat -> client.id ("" if empty)
	Watchers  map[string]bool

	Started  bool // a match is running
	Finished bool // the last match ran to completion
	Round    int
	Scores   [seats]int

	players [seats]*remotePlayer
	cancel  context.CancelFunc
}

// Settings tune the matches a Hub runs.
type Settings struct {
	RoundDelay    time.Duration
	DefaultRounds int
	MaxRounds     int
}

type Hub struct {
	allowOrigins map[string]bool
	engine       *rules.Engine
	settings     Settings
	clients      map[*Client]struct{}
	mu           sync.RWMutex
	broadcast    chan []byte

	roomsMu sync.RWMutex
	rooms   map[string]*Room

	// player names: clientID -> display name
	namesMu sync.RWMutex
	names   map[string]string

	ctx    context.Context
	cancel context.CancelFunc
}

func NewHub(engine *rules.Engine, allow []string, s Settings) *Hub {
	m := map[string]bool{}
	for _, a := range allow {
		if a != "" {
			m[a] = true
		}
	}
	if s.DefaultRounds <= 0 {
		s.DefaultRounds = 3
	}
	if s.MaxRounds < s.DefaultRounds {
		s.MaxRounds = s.DefaultRounds
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		allowOrigins: m,
		engine:       engine,
		settings:     s,
		clients:      map[*Client]struct{}{},
		broadcast:    make(chan []byte, 256),
		rooms:        map[string]*Room{},
		names:        map[string]string{},
		ctx:          ctx,
		cancel:       cancel,
	}
}

// Run fans lobby broadcasts out to every client until Close.
func (h *Hub) Run() {
	for {
		select {
		case msg := <-h.broadcast:
			h.mu.RLock()
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
				}
			}
			h.mu.RUnlock()
		case <-h.ctx.Done():
			return
		}
	}
}

// Close aborts every running match and stops Run.
func (h *Hub) Close() {
	h.cancel()
}

// ---------- websockets ----------

func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	origin := r.Header.Get("Origin")
	if origin != "" && !h.allowOrigins[origin] {
		http.Error(w, "forbidden origin", http.StatusForbidden)
		return
	}

	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
	if err != nil {
		return
	}

	client := newClient(c)

	h.mu.Lock()
	h.clients[client] = struct{}{}
	h.mu.Unlock()
	log.Printf("client %s connected", client.id)

	go client.writePump(r.Context())

	h.sendTo(client, Msg{T: "joined", M: map[string]interface{}{"id": client.id, "tokens": h.engine.Tokens()}})

	// reader
	for {
		_, data, err := c.Read(r.Context())
		if err != nil {
			break
		}
		var m Msg
		if err := json.Unmarshal(data, &m); err != nil {
			continue
		}
		h.handle(client, m)
	}

	// disconnect
	h.mu.Lock()
	delete(h.clients, client)
	close(client.send)
	h.mu.Unlock()

	h.roomsMu.Lock()
	for _, room := range h.rooms {
		h.vacate(room, client.id)
	}
	h.roomsMu.Unlock()
	h.broadcastRooms()

	log.Printf("client %s disconnected", client.id)
}

func (h *Hub) handle(client *Client, m Msg) {
	roomID, _ := m.M["room"].(string)

	switch m.T {

	// ---- Identity ----
	case "set_name":
		name, _ := m.M["name"].(string)
		if name == "" {
			break
		}
		h.namesMu.Lock()
		h.names[client.id] = name
		h.namesMu.Unlock()
		for _, id := range h.roomsOf(client.id) {
			h.sendStateToRoom(id)
		}

	// ---- Lobby ----
	case "list_rooms":
		h.sendRoomsSnapshotTo(client)

	case "create_table":
		rounds := h.settings.DefaultRounds
		if v, ok := m.M["rounds"].(float64); ok {
			rounds = int(v)
		}
		if rounds < 1 || rounds > h.settings.MaxRounds {
			h.sendError(client, "BAD_ROUNDS")
			break
		}
		room := &Room{ID: newRoomID(), Rounds: rounds, Watchers: map[string]bool{}}
		h.roomsMu.Lock()
		h.rooms[room.ID] = room
		h.roomsMu.Unlock()
		log.Printf("table %s created rounds=%d", room.ID, rounds)
		h.sendTo(client, Msg{T: "created", M: map[string]interface{}{"room": room.ID, "rounds": rounds}})
		h.broadcastRooms()

	case "join_table":
		h.roomsMu.Lock()
		room := h.rooms[roomID]
		if room == nil {
			h.roomsMu.Unlock()
			h.sendError(client, "NO_ROOM")
			break
		}
		seat := -1
		for i := 0; i < seats; i++ {
			if room.PlayerIDs[i] == client.id {
				seat = i
				break
			}
			if seat == -1 && room.PlayerIDs[i] == "" {
				seat = i
			}
		}
		if seat == -1 || room.Started {
			h.roomsMu.Unlock()
			h.sendError(client, "ROOM_FULL")
			break
		}
		room.PlayerIDs[seat] = client.id
		delete(room.Watchers, client.id)
		if room.PlayerIDs[0] != "" && room.PlayerIDs[1] != "" {
			h.startMatch(room)
		}
		h.roomsMu.Unlock()
		log.Printf("table %s join seat=%d client=%s", roomID, seat, client.id)

		h.sendTo(client, Msg{T: "seated", M: map[string]interface{}{"room": roomID, "seat": seat}})
		h.sendStateToRoom(roomID)
		h.broadcastRooms()

	case "watch_table":
		h.roomsMu.Lock()
		room := h.rooms[roomID]
		if room != nil {
			room.Watchers[client.id] = true
		}
		h.roomsMu.Unlock()
		if room == nil {
			h.sendError(client, "NO_ROOM")
			break
		}
		h.sendStateToRoom(roomID)

	case "leave_table":
		h.roomsMu.Lock()
		if room, ok := h.rooms[roomID]; ok {
			h.vacate(room, client.id)
		}
		h.roomsMu.Unlock()
		h.sendStateToRoom(roomID)
		h.broadcastRooms()

	// ---- Match control ----
	case "rematch":
		h.roomsMu.Lock()
		if room, ok := h.rooms[roomID]; ok && !room.Started && room.isSeated(client.id) &&
			room.PlayerIDs[0] != "" && room.PlayerIDs[1] != "" {
			h.startMatch(room)
		}
		h.roomsMu.Unlock()
		h.sendStateToRoom(roomID)

	case "move":
		token, _ := m.M["token"].(string)
		round, _ := m.M["round"].(float64)
		var p *remotePlayer
		h.roomsMu.RLock()
		if room, ok := h.rooms[roomID]; ok && room.Started {
			for i := 0; i < seats; i++ {
				if room.PlayerIDs[i] == client.id {
					p = room.players[i]
				}
			}
		}
		h.roomsMu.RUnlock()
		if p == nil {
			h.sendError(client, "NOT_PLAYING")
			break
		}
		if code := p.offer(token, int(round)); code != "" {
			h.sendError(client, code)
		}

	case "chat":
		text, _ := m.M["text"].(string)
		if roomID == "" || text == "" {
			break
		}
		h.namesMu.RLock()
		name := h.names[client.id]
		h.namesMu.RUnlock()
		msg := Msg{T: "chat", M: map[string]interface{}{"room": roomID, "from": client.id, "from_name": name, "text": text}}
		h.sendMsgToRoom(roomID, msg)

	case "join":
		h.sendTo(client, Msg{T: "joined", M: map[string]interface{}{"id": client.id, "tokens": h.engine.Tokens()}})

	case "pong":
		// ignore
	}
}

// ---------- matches ----------

// startMatch seats remote players and plays in the background.
// Callers hold roomsMu.
func (h *Hub) startMatch(room *Room) {
	for i := 0; i < seats; i++ {
		id := room.PlayerIDs[i]
		room.players[i] = newRemotePlayer(h, room.ID, i, id, h.displayName(id))
	}
	ctx, cancel := context.WithCancel(h.ctx)
	room.cancel = cancel
	room.Started = true
	room.Finished = false
	room.Round = 0
	room.Scores = [seats]int{}

	go h.runMatch(ctx, room.ID, room.Rounds, room.players[0], room.players[1])
}

func (h *Hub) runMatch(ctx context.Context, roomID string, rounds int, p1, p2 game.Player) {
	m, err := game.NewMatch(p1, p2, h.engine, rounds, game.WithRoundDelay(h.settings.RoundDelay))
	if err == nil {
		m.Observe(&tableObserver{hub: h, room: roomID})
		log.Printf("table %s match started %s vs %s", roomID, p1.Name(), p2.Name())
		err = m.Play(ctx)
	}

	h.roomsMu.Lock()
	if room, ok := h.rooms[roomID]; ok {
		room.Started = false
		room.Finished = err == nil
		room.players = [seats]*remotePlayer{}
		if room.cancel != nil {
			room.cancel()
			room.cancel = nil
		}
	}
	h.roomsMu.Unlock()

	if err != nil {
		log.Printf("table %s match aborted: %v", roomID, err)
		h.sendMsgToRoom(roomID, Msg{T: "aborted", M: map[string]interface{}{"room": roomID, "reason": err.Error()}})
	} else {
		log.Printf("table %s match finished", roomID)
	}
	h.sendStateToRoom(roomID)
	h.broadcastRooms()
}

// vacate removes clientID from room and stops a match it was playing.
// Callers hold roomsMu.
func (h *Hub) vacate(room *Room, clientID string) {
	delete(room.Watchers, clientID)
	for i := 0; i < seats; i++ {
		if room.PlayerIDs[i] == clientID {
			room.PlayerIDs[i] = ""
			if room.cancel != nil {
				room.cancel()
			}
		}
	}
}

func (r *Room) isSeated(clientID string) bool {
	for i := 0; i < seats; i++ {
		if r.PlayerIDs[i] == clientID {
			return true
		}
	}
	return false
}

// ---------- helpers (send/broadcast/rooms/state) ----------

func (h *Hub) displayName(clientID string) string {
	h.namesMu.RLock()
	name := h.names[clientID]
	h.namesMu.RUnlock()
	if name != "" {
		return name
	}
	if len(clientID) > 8 {
		return "player-" + clientID[:8]
	}
	return "player-" + clientID
}

func (h *Hub) roomsOf(clientID string) []string {
	h.roomsMu.RLock()
	defer h.roomsMu.RUnlock()
	var ids []string
	for _, room := range h.rooms {
		if room.isSeated(clientID) || room.Watchers[clientID] {
			ids = append(ids, room.ID)
		}
	}
	return ids
}

func (h *Hub) sendTo(c *Client, msg Msg) {
	b, _ := json.Marshal(msg)
	select {
	case c.send <- b:
	default:
	}
}

func (h *Hub) sendError(c *Client, code string) {
	h.sendTo(c, Msg{T: "error", M: map[string]interface{}{"code": code}})
}

// sendToIDs queues msg for every connected client in ids.
func (h *Hub) sendToIDs(ids []string, msg Msg) {
	want := map[string]bool{}
	for _, id := range ids {
		if id != "" {
			want[id] = true
		}
	}
	b, _ := json.Marshal(msg)
	h.mu.RLock()
	for cli := range h.clients {
		if want[cli.id] {
			select {
			case cli.send <- b:
			default:
			}
		}
	}
	h.mu.RUnlock()
}

func (h *Hub) roomMeta(r *Room) map[string]interface{} {
	occ := 0
	for _, id := range r.PlayerIDs {
		if id != "" {
			occ++
		}
	}
	return map[string]interface{}{
		"id": r.ID, "rounds": r.Rounds, "seats": seats,
		"occupied": occ, "watchers": len(r.Watchers), "started": r.Started,
	}
}

func (h *Hub) roomsSnapshot() []map[string]interface{} {
	h.roomsMu.RLock()
	defer h.roomsMu.RUnlock()
	list := make([]map[string]interface{}, 0, len(h.rooms))
	for _, r := range h.rooms {
		list = append(list, h.roomMeta(r))
	}
	return list
}

func (h *Hub) sendRoomsSnapshotTo(c *Client) {
	msg := Msg{T: "rooms", M: map[string]interface{}{"list": h.roomsSnapshot()}}
	h.sendTo(c, msg)
}

func (h *Hub) broadcastRooms() {
	msg := Msg{T: "rooms", M: map[string]interface{}{"list": h.roomsSnapshot()}}
	b, _ := json.Marshal(msg)
	select {
	case h.broadcast <- b:
	default:
		log.Printf("lobby broadcast dropped")
	}
}

// audience lists the seated players and watchers of a room.
func (h *Hub) audience(roomID string) []string {
	h.roomsMu.RLock()
	defer h.roomsMu.RUnlock()
	room := h.rooms[roomID]
	if room == nil {
		return nil
	}
	ids := append([]string{}, room.PlayerIDs[:]...)
	for id := range room.Watchers {
		ids = append(ids, id)
	}
	return ids
}

func (h *Hub) sendMsgToRoom(roomID string, msg Msg) {
	h.sendToIDs(h.audience(roomID), msg)
}

func (h *Hub) sendStateToRoom(roomID string) {
	h.roomsMu.RLock()
	room := h.rooms[roomID]
	if room == nil {
		h.roomsMu.RUnlock()
		return
	}
	names := make([]string, seats)
	for i, id := range room.PlayerIDs {
		if id != "" {
			names[i] = h.displayName(id)
		}
	}
	scores := room.Scores
	state := map[string]interface{}{
		"room": room.ID, "rounds": room.Rounds,
		"started": room.Started, "finished": room.Finished,
		"round": room.Round, "scores": scores[:],
		"names": names,
	}
	h.roomsMu.RUnlock()

	h.sendMsgToRoom(roomID, Msg{T: "state", M: state})
}
