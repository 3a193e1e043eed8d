package cart

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/dukerupert/nahl/internal/domain"
)

// SubjectPrefix prefixes the NATS subject of every cart change.
const SubjectPrefix = "cart.changed."

// natsConn is the subset of *nats.Conn used by NATSBridge.
type natsConn interface {
	Publish(subj string, data []byte) error
	Subscribe(subj string, cb nats.MsgHandler) (*nats.Subscription, error)
}

// envelope is the wire form of a change.
type envelope struct {
	Origin  string `json:"origin"`
	Session string `json:"session"`
	ID      string `json:"id"`
	Qty     int    `json:"qty"`
}

// NATSBridge relays cart changes between server instances so every
// subscriber sees changes made through any instance.
type NATSBridge struct {
	conn   natsConn
	hub    *Hub
	origin string
	logger *slog.Logger
	sub    *nats.Subscription
}

// NewNATSBridge creates a bridge between hub and conn.
func NewNATSBridge(conn natsConn, hub *Hub, logger *slog.Logger) *NATSBridge {
	return &NATSBridge{
		conn:   conn,
		hub:    hub,
		origin: uuid.NewString(),
		logger: logger,
	}
}

// Subject returns the subject changes for session are published on.
func Subject(session string) string {
	return SubjectPrefix + session
}

// Start subscribes to remote changes and forwards local ones.
func (b *NATSBridge) Start() error {
	sub, err := b.conn.Subscribe(SubjectPrefix+"*", b.receive)
	if err != nil {
		return fmt.Errorf("failed to subscribe to cart changes: %w", err)
	}
	b.sub = sub
	b.hub.OnPublish(b.forward)
	return nil
}

// Close stops receiving remote changes.
func (b *NATSBridge) Close() error {
	if b.sub == nil {
		return nil
	}
	return b.sub.Unsubscribe()
}

func (b *NATSBridge) forward(change domain.QuantityChanged) {
	data, err := json.Marshal(envelope{
		Origin:  b.origin,
		Session: change.Session,
		ID:      change.ID,
		Qty:     change.Qty,
	})
	if err != nil {
		b.logger.Error("failed to encode cart change", "error", err)
		return
	}
	if err := b.conn.Publish(Subject(change.Session), data); err != nil {
		b.logger.Error("failed to publish cart change",
			"error", err,
			"session", change.Session,
			"product_id", change.ID,
		)
	}
}

func (b *NATSBridge) receive(msg *nats.Msg) {
	var env envelope
	if err := json.Unmarshal(msg.Data, &env); err != nil {
		b.logger.Warn("dropping malformed cart change", "subject", msg.Subject, "error", err)
		return
	}
	if env.Origin == b.origin {
		return
	}
	b.hub.Deliver(domain.QuantityChanged{Session: env.Session, ID: env.ID, Qty: env.Qty})
}
