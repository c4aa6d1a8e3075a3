package sochx

import (
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// sessionSendBuffer bounds per-connection fan-out. Events beyond a full
// buffer are dropped for that connection rather than blocking the emitter.
const sessionSendBuffer = 16

// UserGroup names the per-identity delivery group.
func UserGroup(id string) string {
	return "user:" + id
}

// Envelope is the wire frame pushed to realtime clients.
type Envelope struct {
	Event   string `json:"event"`
	Payload any    `json:"payload,omitempty"`
}

// Session is one registered realtime connection. Events for its groups
// arrive on Events until the session leaves the hub.
type Session struct {
	groups []string
	send   chan Envelope
	left   bool
}

// Events is the stream the connection writer drains.
func (s *Session) Events() <-chan Envelope {
	return s.send
}

// Hub tracks live realtime sessions by group and fans events out to them.
// All state lives on the Hub value; there is no package-level registry.
type Hub struct {
	mu     sync.RWMutex
	groups map[string]map[*Session]struct{}
	logger Logger
}

var _ Broadcaster = (*Hub)(nil)

func NewHub(logger Logger) *Hub {
	if logger == nil {
		logger = defLogger{}
	}
	return &Hub{
		groups: make(map[string]map[*Session]struct{}),
		logger: logger,
	}
}

// Join registers a session in the given groups.
func (h *Hub) Join(groups ...string) *Session {
	s := &Session{
		groups: groups,
		send:   make(chan Envelope, sessionSendBuffer),
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for _, g := range groups {
		members, ok := h.groups[g]
		if !ok {
			members = make(map[*Session]struct{})
			h.groups[g] = members
		}
		members[s] = struct{}{}
	}

	return s
}

// Leave unregisters the session and closes its event stream. It is safe to
// call more than once; empty groups are removed so the map does not
// accumulate dead keys.
func (h *Hub) Leave(s *Session) {
	if s == nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if s.left {
		return
	}
	s.left = true

	for _, g := range s.groups {
		members, ok := h.groups[g]
		if !ok {
			continue
		}
		if _, joined := members[s]; !joined {
			continue
		}
		delete(members, s)
		if len(members) == 0 {
			delete(h.groups, g)
		}
	}

	close(s.send)
}

// Emit delivers the event to every session in the group. Delivery is
// best-effort; a session with a full buffer misses the event. Sends happen
// under the read lock, which excludes Leave closing a channel mid-send.
func (h *Hub) Emit(group, event string, payload any) {
	env := Envelope{Event: event, Payload: payload}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for s := range h.groups[group] {
		select {
		case s.send <- env:
		default:
			h.logger.Warn("realtime emit dropped event %s for slow session in %s", event, group)
		}
	}
}

// GroupSize reports how many sessions are joined to a group.
func (h *Hub) GroupSize(group string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups[group])
}

// RealtimeGateway authenticates websocket handshakes and bridges connections
// into the Hub. The credential is read from the raw Cookie header because the
// handshake request never passes through the regular cookie middleware; a
// bearer authorization header works as fallback. The credential is checked
// once at handshake time, so a connection outlives role changes and expiry
// until it reconnects.
type RealtimeGateway struct {
	hub    *Hub
	tokens TokenService
	logger Logger
}

func NewRealtimeGateway(hub *Hub, tokens TokenService, logger Logger) *RealtimeGateway {
	if logger == nil {
		logger = defLogger{}
	}
	return &RealtimeGateway{
		hub:    hub,
		tokens: tokens,
		logger: logger,
	}
}

// Hub exposes the gateway's hub so dispatchers can emit through it.
func (g *RealtimeGateway) Hub() *Hub {
	return g.hub
}

// Upgrade gates the handshake: non-websocket requests are rejected, then the
// credential is resolved and verified before the protocol switch.
func (g *RealtimeGateway) Upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	token := g.tokenFromHandshake(c)
	if token == "" {
		return ErrAuthenticationRequired
	}

	claims, err := g.tokens.Verify(token)
	if err != nil {
		g.logger.Debug("realtime handshake rejected: %v", err)
		return ErrInvalidOrExpiredToken
	}

	WithClaims(c, claims)
	return c.Next()
}

func (g *RealtimeGateway) tokenFromHandshake(c *fiber.Ctx) string {
	cookies := ParseCookieHeader(c.Get(fiber.HeaderCookie))
	if token := cookies[SessionCookieName]; token != "" {
		return token
	}

	header := c.Get(fiber.HeaderAuthorization)
	if len(header) > len(bearerScheme) && header[:len(bearerScheme)] == bearerScheme {
		return header[len(bearerScheme):]
	}

	return ""
}

// Handler returns the connection handler. Each connection joins its
// identity's group and drains hub events until the peer goes away.
func (g *RealtimeGateway) Handler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		claims, ok := conn.Locals(claimsLocal).(*JWTClaims)
		if !ok {
			g.logger.Error("realtime connection arrived without claims")
			return
		}

		session := g.hub.Join(UserGroup(claims.Subject()))
		defer g.hub.Leave(session)

		done := make(chan struct{})

		go func() {
			defer close(done)
			for env := range session.Events() {
				if err := conn.WriteJSON(env); err != nil {
					g.logger.Debug("realtime write failed for %s: %v", claims.Subject(), err)
					return
				}
			}
		}()

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}

		conn.Close()
		g.hub.Leave(session)
		<-done
	})
}
