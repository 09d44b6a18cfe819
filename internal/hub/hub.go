package hub

import (
	"context"
	"encoding/json"
	"time"

	"liveshop/internal/domain"
	"liveshop/internal/services"
	"liveshop/pkg/logger"
)

// Hub is the single owner of all live state: connection registry, chat log,
// product catalog and auction engine. Every mutation runs on the hub
// goroutine, fed by the channels below, so components behind it need no
// locks. Only persistence I/O leaves this goroutine.
type Hub struct {
	registry *Registry
	chat     *services.ChatLog
	catalog  *services.Catalog
	engine   *services.AuctionEngine

	clients map[string]*Client

	lifecycle chan lifecycleEvent
	inbound   chan inboundFrame
	tasks     chan func()
	done      chan struct{}

	log logger.Logger
}

type inboundFrame struct {
	client *Client
	data   []byte
}

// lifecycleEvent carries connects and disconnects on one channel. A client
// registers before its read pump starts, so its connect is always queued,
// and therefore processed, before its disconnect.
type lifecycleEvent struct {
	client  *Client
	connect bool
}

func New(registry *Registry, chat *services.ChatLog, catalog *services.Catalog,
	engine *services.AuctionEngine, log logger.Logger) *Hub {
	return &Hub{
		registry:   registry,
		chat:       chat,
		catalog:    catalog,
		engine:     engine,
		clients:   make(map[string]*Client),
		lifecycle: make(chan lifecycleEvent, 128),
		inbound:   make(chan inboundFrame, 1024),
		tasks:     make(chan func(), 64),
		done:      make(chan struct{}),
		log:       log,
	}
}

// Run processes commands until the context is cancelled. It is the only
// goroutine allowed to touch hub-owned state.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case ev := <-h.lifecycle:
			if ev.connect {
				h.onConnect(ev.client)
			} else {
				h.onDisconnect(ev.client)
			}
		case frame := <-h.inbound:
			h.dispatch(frame.client, frame.data)
		case fn := <-h.tasks:
			fn()
		case <-ctx.Done():
			return
		}
	}
}

func (h *Hub) Register(c *Client) {
	select {
	case h.lifecycle <- lifecycleEvent{client: c, connect: true}:
	case <-h.done:
	}
}

func (h *Hub) Unregister(c *Client) {
	select {
	case h.lifecycle <- lifecycleEvent{client: c}:
	case <-h.done:
	}
}

// Inbound hands a raw frame from a read pump to the hub goroutine.
func (h *Hub) Inbound(c *Client, data []byte) {
	select {
	case h.inbound <- inboundFrame{client: c, data: data}:
	case <-h.done:
	}
}

// Sweep advances all auction countdowns to now. Safe from any goroutine.
func (h *Hub) Sweep() {
	h.post(func() { h.sweep(time.Now()) })
}

// Products returns a catalog snapshot. Safe from any goroutine.
func (h *Hub) Products() []domain.Product {
	var out []domain.Product
	h.call(func() { out = h.catalog.Snapshot() })
	return out
}

// Product looks up a single product by id. Safe from any goroutine.
func (h *Hub) Product(productID string) (domain.Product, bool) {
	var (
		out domain.Product
		ok  bool
	)
	h.call(func() {
		if p := h.catalog.Get(productID); p != nil {
			out, ok = *p, true
		}
	})
	return out, ok
}

// MarkSold flips a product to Sold after payment completes and broadcasts
// the catalog. Safe from any goroutine.
func (h *Hub) MarkSold(productID string) bool {
	var ok bool
	h.call(func() {
		status := domain.StatusSold
		if _, ok = h.catalog.Update(productID, &domain.ProductPatch{Status: &status}); ok {
			h.broadcastProducts()
		}
	})
	return ok
}

func (h *Hub) post(fn func()) {
	select {
	case h.tasks <- fn:
	case <-h.done:
	}
}

// call posts fn and waits for it to finish. Returns early if the hub has
// stopped, leaving fn's outputs at their zero values.
func (h *Hub) call(fn func()) {
	ran := make(chan struct{})
	select {
	case h.tasks <- func() { fn(); close(ran) }:
	case <-h.done:
		return
	}
	select {
	case <-ran:
	case <-h.done:
	}
}

// --- connection lifecycle ---

func (h *Hub) onConnect(c *Client) {
	h.registry.Add(c.ID)
	h.clients[c.ID] = c

	// Replay state to the newcomer before it can see any later events.
	h.sendTo(c, EventChatHistory, h.chat.Snapshot())
	h.sendTo(c, EventProductUpdate, h.catalog.Products())

	h.log.Debug("Client connected", "client_id", c.ID)
}

func (h *Hub) onDisconnect(c *Client) {
	if _, ok := h.clients[c.ID]; !ok {
		return
	}
	delete(h.clients, c.ID)
	close(c.Send)

	roomID, wasBroadcaster := h.registry.Remove(c.ID)
	if roomID == "" {
		h.log.Debug("Client disconnected", "client_id", c.ID)
		return
	}

	h.broadcastRoom(roomID, EventViewerCount, h.registry.ViewerCount(roomID))
	if wasBroadcaster {
		h.broadcastRoom(roomID, EventBroadcasterLeft, nil)
	} else if broadcasterID, ok := h.registry.BroadcasterOf(roomID); ok {
		h.sendToID(broadcasterID, EventViewerLeft, PeerPayload{SocketID: c.ID})
	}

	h.log.Debug("Client disconnected", "client_id", c.ID, "room_id", roomID)
}

// --- event dispatch ---

func (h *Hub) dispatch(c *Client, data []byte) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		h.sendTo(c, EventError, ErrorPayload{Message: "malformed event"})
		return
	}

	switch env.Type {
	case EventJoinRoom:
		var p RoomPayload
		if !h.decode(c, env.Payload, &p) || p.RoomID == "" {
			return
		}
		h.handleJoinRoom(c, p.RoomID)

	case EventLeaveRoom:
		var p RoomPayload
		if !h.decode(c, env.Payload, &p) {
			return
		}
		h.handleLeaveRoom(c, p.RoomID)

	case EventBroadcaster:
		h.registry.MarkBroadcaster(c.ID)

	case EventOffer, EventAnswer, EventICECandidate:
		var p SignalPayload
		if !h.decode(c, env.Payload, &p) {
			return
		}
		h.relay(c, env.Type, &p)

	case EventChatMessage:
		var msg domain.ChatMessage
		if !h.decode(c, env.Payload, &msg) {
			return
		}
		h.chat.Append(&msg)
		h.broadcastAll(EventChatMessage, msg)

	case EventAddProduct:
		var spec domain.ProductSpec
		if !h.decode(c, env.Payload, &spec) {
			return
		}
		h.catalog.Add(&spec, time.Now())
		h.broadcastProducts()

	case EventDeleteProduct:
		var p DeleteProductPayload
		if !h.decode(c, env.Payload, &p) {
			return
		}
		if h.catalog.Remove(p.ProductID) {
			h.broadcastProducts()
		}

	case EventStartAuction:
		var p StartAuctionPayload
		if !h.decode(c, env.Payload, &p) {
			return
		}
		now := time.Now()
		if _, started := h.engine.Start(p.ProductID, p.Duration, now); started {
			h.broadcastProducts()
			h.broadcastAll(EventAuctionTimer, h.engine.Timers(now))
		}

	case EventPlaceBid:
		var p PlaceBidPayload
		if !h.decode(c, env.Payload, &p) {
			return
		}
		res := h.engine.PlaceBid(p.ProductID, p.Amount, p.User)
		if !res.OK {
			h.sendTo(c, EventBidFail, BidFailPayload{Reason: res.Reason})
			return
		}
		h.broadcastAll(EventBidSuccess, BidSuccessPayload(p))
		h.broadcastProducts()

	case EventBuyNow:
		var p BuyNowPayload
		if !h.decode(c, env.Payload, &p) {
			return
		}
		// Nothing changes server side; the client is told to begin the
		// external payment flow.
		h.sendTo(c, EventStartPayment, p)

	default:
		h.sendTo(c, EventError, ErrorPayload{Message: "unknown event type"})
	}
}

func (h *Hub) handleJoinRoom(c *Client, roomID string) {
	prevRoom := h.registry.Join(c.ID, roomID)
	if prevRoom != "" {
		h.recountRoom(prevRoom, c.ID)
	}

	if broadcasterID, ok := h.registry.BroadcasterOf(roomID); ok && broadcasterID != c.ID {
		h.sendToID(broadcasterID, EventViewerJoined, PeerPayload{SocketID: c.ID})
	}
	h.broadcastRoom(roomID, EventViewerCount, h.registry.ViewerCount(roomID))
}

func (h *Hub) handleLeaveRoom(c *Client, roomID string) {
	if !h.registry.Leave(c.ID, roomID) {
		return
	}
	h.recountRoom(roomID, c.ID)
}

// recountRoom re-broadcasts the viewer count after leftID departed and tells
// a remaining broadcaster which viewer left.
func (h *Hub) recountRoom(roomID, leftID string) {
	h.broadcastRoom(roomID, EventViewerCount, h.registry.ViewerCount(roomID))
	if broadcasterID, ok := h.registry.BroadcasterOf(roomID); ok {
		h.sendToID(broadcasterID, EventViewerLeft, PeerPayload{SocketID: leftID})
	}
}

// relay forwards a signaling frame to its addressee, tagged with the sender.
// Unknown recipients are dropped: at-most-once, no retry.
func (h *Hub) relay(sender *Client, eventType string, p *SignalPayload) {
	target, ok := h.clients[p.To]
	if !ok {
		return
	}
	h.sendTo(target, eventType, SignalDelivery{Payload: p.Payload, From: sender.ID})
}

func (h *Hub) sweep(now time.Time) {
	timers, ended := h.engine.Sweep(now)
	if len(timers) > 0 {
		h.broadcastAll(EventAuctionTimer, timers)
	}
	if len(ended) > 0 {
		h.broadcastProducts()
	}
}

// --- delivery ---

func (h *Hub) broadcastProducts() {
	h.broadcastAll(EventProductUpdate, h.catalog.Products())
}

func (h *Hub) broadcastAll(eventType string, payload interface{}) {
	data, err := encodeEvent(eventType, payload)
	if err != nil {
		h.log.Error("Failed to encode event", "event", eventType, "error", err)
		return
	}
	for _, c := range h.clients {
		h.push(c, data, eventType)
	}
}

func (h *Hub) broadcastRoom(roomID, eventType string, payload interface{}) {
	data, err := encodeEvent(eventType, payload)
	if err != nil {
		h.log.Error("Failed to encode event", "event", eventType, "error", err)
		return
	}
	for _, id := range h.registry.MembersOf(roomID) {
		if c, ok := h.clients[id]; ok {
			h.push(c, data, eventType)
		}
	}
}

func (h *Hub) sendTo(c *Client, eventType string, payload interface{}) {
	data, err := encodeEvent(eventType, payload)
	if err != nil {
		h.log.Error("Failed to encode event", "event", eventType, "error", err)
		return
	}
	h.push(c, data, eventType)
}

func (h *Hub) sendToID(connID, eventType string, payload interface{}) {
	if c, ok := h.clients[connID]; ok {
		h.sendTo(c, eventType, payload)
	}
}

// push never blocks the hub goroutine. A client that cannot keep up loses
// frames; its read pump will notice the dead connection and unregister it.
func (h *Hub) push(c *Client, data []byte, eventType string) {
	select {
	case c.Send <- data:
	default:
		h.log.Warn("Dropping frame for slow client", "client_id", c.ID, "event", eventType)
	}
}

func (h *Hub) decode(c *Client, raw json.RawMessage, v interface{}) bool {
	if err := json.Unmarshal(raw, v); err != nil {
		h.sendTo(c, EventError, ErrorPayload{Message: "invalid payload"})
		return false
	}
	return true
}
