package router

import (
	"log/slog"
	"sync"

	"github.com/Pitskhela0/pong-game/internal/model"
)

// subscriberBuffer is the per-connection event queue depth. The protocol is
// state-sync, so a slow consumer loses intermediate frames rather than
// stalling the loop.
const subscriberBuffer = 256

// Broadcaster fans outbound events out to connected players. Each player
// has one buffered subscription channel; room membership decides who
// receives a room's broadcasts.
type Broadcaster struct {
	mu     sync.RWMutex
	subs   map[model.PlayerID]chan model.Event
	rooms  map[string]map[model.PlayerID]struct{}
	logger *slog.Logger
}

// NewBroadcaster creates an empty Broadcaster
func NewBroadcaster(logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		subs:   make(map[model.PlayerID]chan model.Event),
		rooms:  make(map[string]map[model.PlayerID]struct{}),
		logger: logger.With(slog.String("component", "broadcast")),
	}
}

// Subscribe registers a player connection and returns its event channel
func (b *Broadcaster) Subscribe(playerID model.PlayerID) <-chan model.Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch, ok := b.subs[playerID]; ok {
		return ch
	}
	ch := make(chan model.Event, subscriberBuffer)
	b.subs[playerID] = ch

	b.logger.Info("subscriber registered",
		slog.String("player_id", string(playerID)),
		slog.Int("total_subscribers", len(b.subs)),
	)
	return ch
}

// Unsubscribe removes a player connection and closes its channel
func (b *Broadcaster) Unsubscribe(playerID model.PlayerID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch, ok := b.subs[playerID]
	if !ok {
		return
	}
	delete(b.subs, playerID)
	close(ch)

	for _, members := range b.rooms {
		delete(members, playerID)
	}

	b.logger.Info("subscriber unregistered",
		slog.String("player_id", string(playerID)),
		slog.Int("total_subscribers", len(b.subs)),
	)
}

// JoinRoom adds a player to a room's broadcast group
func (b *Broadcaster) JoinRoom(roomName string, playerID model.PlayerID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	members, ok := b.rooms[roomName]
	if !ok {
		members = make(map[model.PlayerID]struct{})
		b.rooms[roomName] = members
	}
	members[playerID] = struct{}{}
}

// LeaveRoom removes a player from a room's broadcast group
func (b *Broadcaster) LeaveRoom(roomName string, playerID model.PlayerID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if members, ok := b.rooms[roomName]; ok {
		delete(members, playerID)
	}
}

// DropRoom removes a room's broadcast group entirely
func (b *Broadcaster) DropRoom(roomName string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.rooms, roomName)
}

// SendTo delivers an event to a single player. The read lock is held
// across the send so Unsubscribe cannot close the channel mid-send; send
// never blocks, so the lock is held only briefly.
func (b *Broadcaster) SendTo(playerID model.PlayerID, event model.Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	ch, ok := b.subs[playerID]
	if !ok {
		return
	}
	b.send(playerID, ch, event)
}

// Emit broadcasts an event to every player in the room. It implements the
// match controller's Emitter contract. As with SendTo, the read lock is
// held across the sends to serialize against channel close.
func (b *Broadcaster) Emit(roomName string, event model.Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for id := range b.rooms[roomName] {
		if ch, ok := b.subs[id]; ok {
			b.send(id, ch, event)
		}
	}
}

// send enqueues without blocking; a full buffer drops the event with a log
// entry, never stalls the caller
func (b *Broadcaster) send(playerID model.PlayerID, ch chan model.Event, event model.Event) {
	select {
	case ch <- event:
	default:
		b.logger.Warn("event dropped - subscriber buffer full",
			slog.String("player_id", string(playerID)),
			slog.String("event", string(event.EventType())),
		)
	}
}
