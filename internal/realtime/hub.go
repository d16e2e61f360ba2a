package realtime

import (
	"sync"

	"go.uber.org/zap"

	"github.com/sibarconnect/inbox-service/internal/observability"
)

// Conn is a live subscriber connection. The websocket handler adapts the
// underlying socket to this interface so tests can register fakes.
type Conn interface {
	WriteJSON(v any) error
	Close() error
}

// Frame is the wire shape of every delivered event.
type Frame struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

type chatKey struct {
	companyID int64
	chatID    int64
}

// Hub tracks live websocket subscriptions per (company, chat) and per
// company, and fans events out to them. Delivery is best-effort: a failed
// write removes the member after the broadcast pass, and a member never
// blocks delivery to the rest because no lock is held across sends.
type Hub struct {
	mu           sync.RWMutex
	chatConns    map[chatKey]map[Conn]struct{}
	companyConns map[int64]map[Conn]struct{}
	logger       *zap.Logger
	metrics      *observability.Metrics
}

// NewHub constructs an empty hub. One instance is created at process start
// and injected into handlers; tests instantiate isolated hubs.
func NewHub(logger *zap.Logger, metrics *observability.Metrics) *Hub {
	return &Hub{
		chatConns:    make(map[chatKey]map[Conn]struct{}),
		companyConns: make(map[int64]map[Conn]struct{}),
		logger:       logger,
		metrics:      metrics,
	}
}

// SubscribeChat registers conn for a single chat's events.
func (h *Hub) SubscribeChat(conn Conn, companyID, chatID int64) {
	key := chatKey{companyID: companyID, chatID: chatID}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.chatConns[key] == nil {
		h.chatConns[key] = make(map[Conn]struct{})
	}
	h.chatConns[key][conn] = struct{}{}
}

// UnsubscribeChat removes conn; an emptied group is dropped entirely so
// abandoned keys do not accumulate.
func (h *Hub) UnsubscribeChat(conn Conn, companyID, chatID int64) {
	key := chatKey{companyID: companyID, chatID: chatID}
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.chatConns[key]; ok {
		delete(set, conn)
		if len(set) == 0 {
			delete(h.chatConns, key)
		}
	}
}

// SubscribeCompany registers conn for company-wide events.
func (h *Hub) SubscribeCompany(conn Conn, companyID int64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.companyConns[companyID] == nil {
		h.companyConns[companyID] = make(map[Conn]struct{})
	}
	h.companyConns[companyID][conn] = struct{}{}
}

// UnsubscribeCompany removes conn from the company group.
func (h *Hub) UnsubscribeCompany(conn Conn, companyID int64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.companyConns[companyID]; ok {
		delete(set, conn)
		if len(set) == 0 {
			delete(h.companyConns, companyID)
		}
	}
}

// BroadcastToChat delivers an event to all subscribers of (company, chat).
// Broadcasting to an empty group is a no-op.
func (h *Hub) BroadcastToChat(companyID, chatID int64, event string, data any) {
	key := chatKey{companyID: companyID, chatID: chatID}

	h.mu.RLock()
	members := snapshot(h.chatConns[key])
	h.mu.RUnlock()

	dead := h.deliver(members, event, data)
	if len(dead) == 0 {
		return
	}
	h.mu.Lock()
	if set, ok := h.chatConns[key]; ok {
		for _, conn := range dead {
			delete(set, conn)
		}
		if len(set) == 0 {
			delete(h.chatConns, key)
		}
	}
	h.mu.Unlock()
}

// BroadcastToCompany delivers an event to all company-level subscribers.
func (h *Hub) BroadcastToCompany(companyID int64, event string, data any) {
	h.mu.RLock()
	members := snapshot(h.companyConns[companyID])
	h.mu.RUnlock()

	dead := h.deliver(members, event, data)
	if len(dead) == 0 {
		return
	}
	h.mu.Lock()
	if set, ok := h.companyConns[companyID]; ok {
		for _, conn := range dead {
			delete(set, conn)
		}
		if len(set) == 0 {
			delete(h.companyConns, companyID)
		}
	}
	h.mu.Unlock()
}

// deliver writes the frame to every member and returns the ones whose write
// failed so the caller can prune them.
func (h *Hub) deliver(members []Conn, event string, data any) []Conn {
	if len(members) == 0 {
		return nil
	}
	frame := Frame{Event: event, Data: data}
	var dead []Conn
	for _, conn := range members {
		if err := conn.WriteJSON(frame); err != nil {
			dead = append(dead, conn)
		}
	}
	if h.metrics != nil {
		h.metrics.RecordBroadcast(event, len(members)-len(dead), len(dead))
	}
	if len(dead) > 0 && h.logger != nil {
		h.logger.Debug("pruned dead subscribers",
			zap.String("event", event),
			zap.Int("count", len(dead)))
	}
	return dead
}

// ChatGroupSize reports current membership; zero means the key is absent.
func (h *Hub) ChatGroupSize(companyID, chatID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.chatConns[chatKey{companyID: companyID, chatID: chatID}])
}

// CompanyGroupSize reports current membership of a company group.
func (h *Hub) CompanyGroupSize(companyID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.companyConns[companyID])
}

func snapshot(set map[Conn]struct{}) []Conn {
	if len(set) == 0 {
		return nil
	}
	members := make([]Conn, 0, len(set))
	for conn := range set {
		members = append(members, conn)
	}
	return members
}
