package hub

import (
	"encoding/json"
)

// Event names on the wire, client to server.
const (
	EventJoinRoom      = "join-room"
	EventLeaveRoom     = "leave-room"
	EventBroadcaster   = "broadcaster"
	EventOffer         = "offer"
	EventAnswer        = "answer"
	EventICECandidate  = "ice-candidate"
	EventChatMessage   = "chat-message"
	EventAddProduct    = "add-product"
	EventDeleteProduct = "delete-product"
	EventStartAuction  = "start-auction"
	EventPlaceBid      = "place-bid"
	EventBuyNow        = "buy-now"
)

// Event names on the wire, server to client.
const (
	EventViewerCount     = "viewer-count"
	EventViewerJoined    = "viewer-joined"
	EventViewerLeft      = "viewer-left"
	EventBroadcasterLeft = "broadcaster-left"
	EventChatHistory     = "chat-history"
	EventProductUpdate   = "product-update"
	EventAuctionTimer    = "auction-timer"
	EventBidSuccess      = "bid-success"
	EventBidFail         = "bid-fail"
	EventStartPayment    = "start-payment"
	EventError           = "error"
)

// Envelope is the single wire frame. Payload shape depends on Type and is
// decoded by the dispatch switch, so unknown kinds fail in one place.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type RoomPayload struct {
	RoomID string `json:"roomId"`
}

// SignalPayload carries opaque session-negotiation data addressed to one
// connection. The payload is relayed verbatim.
type SignalPayload struct {
	Payload json.RawMessage `json:"payload"`
	To      string          `json:"to"`
}

type SignalDelivery struct {
	Payload json.RawMessage `json:"payload"`
	From    string          `json:"from"`
}

type PeerPayload struct {
	SocketID string `json:"socketId"`
}

type DeleteProductPayload struct {
	ProductID string `json:"productId"`
}

type StartAuctionPayload struct {
	ProductID string `json:"productId"`
	Duration  int    `json:"duration"`
}

type PlaceBidPayload struct {
	ProductID string  `json:"productId"`
	Amount    float64 `json:"amount"`
	User      string  `json:"user"`
}

type BidSuccessPayload struct {
	ProductID string  `json:"productId"`
	Amount    float64 `json:"amount"`
	User      string  `json:"user"`
}

type BidFailPayload struct {
	Reason string `json:"reason"`
}

type BuyNowPayload struct {
	ProductID string `json:"productId"`
	User      string `json:"user"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

func encodeEvent(eventType string, payload interface{}) ([]byte, error) {
	var raw json.RawMessage
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		raw = data
	}
	return json.Marshal(Envelope{Type: eventType, Payload: raw})
}
