package cart

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/nahl/internal/domain"
)

type fakeConn struct {
	published map[string][][]byte
	handler   nats.MsgHandler
	subject   string
	err       error
}

func (f *fakeConn) Publish(subj string, data []byte) error {
	if f.err != nil {
		return f.err
	}
	if f.published == nil {
		f.published = make(map[string][][]byte)
	}
	f.published[subj] = append(f.published[subj], data)
	return nil
}

func (f *fakeConn) Subscribe(subj string, cb nats.MsgHandler) (*nats.Subscription, error) {
	f.subject = subj
	f.handler = cb
	return nil, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNATSBridge_ForwardsLocalChanges(t *testing.T) {
	conn := &fakeConn{}
	hub := NewHub()
	bridge := NewNATSBridge(conn, hub, discardLogger())
	require.NoError(t, bridge.Start())
	defer bridge.Close()

	assert.Equal(t, "cart.changed.*", conn.subject)

	hub.Publish(domain.QuantityChanged{Session: "s1", ID: "honey", Qty: 2})

	msgs := conn.published[Subject("s1")]
	require.Len(t, msgs, 1)

	var env envelope
	require.NoError(t, json.Unmarshal(msgs[0], &env))
	assert.Equal(t, envelope{Origin: bridge.origin, Session: "s1", ID: "honey", Qty: 2}, env)
}

func TestNATSBridge_DeliversRemoteChanges(t *testing.T) {
	conn := &fakeConn{}
	hub := NewHub()
	bridge := NewNATSBridge(conn, hub, discardLogger())
	require.NoError(t, bridge.Start())

	ch, cancel := hub.Subscribe("s1")
	defer cancel()

	remote, _ := json.Marshal(envelope{Origin: "other-instance", Session: "s1", ID: "sage", Qty: 4})
	conn.handler(&nats.Msg{Subject: Subject("s1"), Data: remote})

	select {
	case c := <-ch:
		assert.Equal(t, domain.QuantityChanged{Session: "s1", ID: "sage", Qty: 4}, c)
	default:
		t.Fatal("expected remote change to be delivered")
	}

	assert.Empty(t, conn.published, "remote changes are not republished")
}

func TestNATSBridge_IgnoresOwnEchoAndGarbage(t *testing.T) {
	conn := &fakeConn{}
	hub := NewHub()
	bridge := NewNATSBridge(conn, hub, discardLogger())
	require.NoError(t, bridge.Start())

	ch, cancel := hub.Subscribe("s1")
	defer cancel()

	echo, _ := json.Marshal(envelope{Origin: bridge.origin, Session: "s1", ID: "sage", Qty: 4})
	conn.handler(&nats.Msg{Subject: Subject("s1"), Data: echo})
	conn.handler(&nats.Msg{Subject: Subject("s1"), Data: []byte("{not json")})

	select {
	case c := <-ch:
		t.Fatalf("unexpected change %+v", c)
	default:
	}
}

func TestNATSBridge_PublishErrorIsLogged(t *testing.T) {
	conn := &fakeConn{err: errors.New("nats: connection closed")}
	hub := NewHub()
	bridge := NewNATSBridge(conn, hub, discardLogger())
	require.NoError(t, bridge.Start())

	assert.NotPanics(t, func() {
		hub.Publish(domain.QuantityChanged{Session: "s1", ID: "honey", Qty: 1})
	})
}
