package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"fundocs-be/internal/dto"
	"fundocs-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	h := NewHub(nil, logger.NewNopLogger())
	go h.Run(ctx)
	return h
}

func connect(h *Hub, userID uuid.UUID, buffer int) *Client {
	c := &Client{Hub: h, UserID: userID, Send: make(chan []byte, buffer)}
	h.register <- c
	return c
}

func receive(t *testing.T, c *Client) map[string]interface{} {
	t.Helper()
	select {
	case raw := <-c.Send:
		var msg map[string]interface{}
		require.NoError(t, json.Unmarshal(raw, &msg))
		return msg
	case <-time.After(time.Second):
		t.Fatal("no message delivered")
		return nil
	}
}

func TestHubSendTargetsAllConnectionsOfOneUser(t *testing.T) {
	h := startHub(t)
	ada, bob := uuid.New(), uuid.New()
	tab1 := connect(h, ada, 4)
	tab2 := connect(h, ada, 4)
	other := connect(h, bob, 4)
	require.Eventually(t, func() bool { return h.Connections(ada) == 2 }, time.Second, 5*time.Millisecond)

	h.Send(ada, dto.Notification{Type: "DOC_CREATED", Title: "ready"})

	for _, c := range []*Client{tab1, tab2} {
		msg := receive(t, c)
		assert.Equal(t, "notification", msg["type"])
		assert.Equal(t, "ready", msg["data"].(map[string]interface{})["title"])
	}
	assert.Len(t, other.Send, 0)
}

func TestHubBroadcast(t *testing.T) {
	h := startHub(t)
	a := connect(h, uuid.New(), 4)
	b := connect(h, uuid.New(), 4)
	require.Eventually(t, func() bool { return h.Connections(a.UserID)+h.Connections(b.UserID) == 2 }, time.Second, 5*time.Millisecond)

	h.Broadcast(dto.Notification{Type: "TIP_CREATED"})
	assert.Equal(t, "notification", receive(t, a)["type"])
	assert.Equal(t, "notification", receive(t, b)["type"])
}

func TestHubDropsSlowClients(t *testing.T) {
	h := startHub(t)
	user := uuid.New()
	slow := connect(h, user, 1)
	require.Eventually(t, func() bool { return h.Connections(user) == 1 }, time.Second, 5*time.Millisecond)

	h.Send(user, dto.Notification{Title: "one"})
	h.Send(user, dto.Notification{Title: "two"})

	require.Eventually(t, func() bool { return h.Connections(user) == 0 }, time.Second, 5*time.Millisecond)
	<-slow.Send
	_, open := <-slow.Send
	assert.False(t, open)
}

func TestHubClusterMessages(t *testing.T) {
	h := startHub(t)
	user := uuid.New()
	c := connect(h, user, 4)
	require.Eventually(t, func() bool { return h.Connections(user) == 1 }, time.Second, 5*time.Millisecond)

	own, _ := json.Marshal(clusterMessage{Origin: h.instanceID, TargetUserID: user.String(), Message: json.RawMessage(`{"type":"notification"}`)})
	h.handleClusterMessage(own)
	assert.Len(t, c.Send, 0)

	remote, _ := json.Marshal(clusterMessage{Origin: "other", TargetUserID: user.String(), Message: json.RawMessage(`{"type":"notification"}`)})
	h.handleClusterMessage(remote)
	assert.Equal(t, "notification", receive(t, c)["type"])

	h.handleClusterMessage([]byte("garbage"))
	bad, _ := json.Marshal(clusterMessage{Origin: "other", TargetUserID: "nope", Message: json.RawMessage(`{}`)})
	h.handleClusterMessage(bad)
	assert.Len(t, c.Send, 0)
}

func TestHubStoppedDoesNotBlockClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	h := NewHub(nil, logger.NewNopLogger())
	stopped := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(stopped)
	}()

	user := uuid.New()
	c := &Client{Hub: h, UserID: user, Send: make(chan []byte, 1)}
	require.True(t, h.registerClient(c))
	require.Eventually(t, func() bool { return h.Connections(user) == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	<-stopped

	done := make(chan struct{})
	go func() {
		h.unregisterClient(c)
		assert.False(t, h.registerClient(&Client{Hub: h, UserID: uuid.New(), Send: make(chan []byte, 1)}))
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("client blocked on a stopped hub")
	}

	// a full buffer after shutdown must not leave a goroutine stuck on unregister
	c.Send <- []byte("fill")
	h.Send(user, dto.Notification{Title: "late"})
}
