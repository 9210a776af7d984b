package websocket

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/lorrc/fleet-dashboard-backend/internal/core/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startHub runs a hub until the test ends.
func startHub(t *testing.T) *Hub {
	t.Helper()

	hub := NewHub(discardLogger())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		hub.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return hub
}

func receive(t *testing.T, c *Client) domain.Event {
	t.Helper()
	select {
	case event, ok := <-c.Send:
		require.True(t, ok, "send channel closed")
		return event
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return domain.Event{}
	}
}

func subscribed(t *testing.T, hub *Hub, c *Client, topic string) {
	t.Helper()
	hub.Subscribe(c, topic)
	require.Eventually(t, func() bool {
		return hub.GetClientsInRoom(topic) > 0 && len(c.Topics()) > 0
	}, time.Second, 5*time.Millisecond)
}

func TestHub_BroadcastReachesSubscribers(t *testing.T) {
	hub := startHub(t)

	subscriber := NewClient(hub, nil, "", discardLogger())
	bystander := NewClient(hub, nil, "", discardLogger())
	require.True(t, hub.Register(subscriber))
	require.True(t, hub.Register(bystander))
	subscribed(t, hub, subscriber, domain.TopicVehicles)

	require.NoError(t, hub.Broadcast(domain.Event{
		Type:    domain.EventVehiclesUpdated,
		Topic:   domain.TopicVehicles,
		Payload: domain.NewVehicleSnapshotPayload(domain.VehicleSnapshot{}),
	}))

	event := receive(t, subscriber)
	assert.Equal(t, domain.EventVehiclesUpdated, event.Type)
	assert.Empty(t, bystander.Send)
	assert.Equal(t, 2, hub.GetClientCount())
}

func TestHub_ReplaysLatestEventOnSubscribe(t *testing.T) {
	hub := startHub(t)

	first := NewClient(hub, nil, "", discardLogger())
	require.True(t, hub.Register(first))
	subscribed(t, hub, first, domain.TopicVehicles)

	require.NoError(t, hub.Broadcast(domain.Event{Type: domain.EventFeedFailed, Topic: domain.TopicVehicles}))
	receive(t, first)

	late := NewClient(hub, nil, "", discardLogger())
	require.True(t, hub.Register(late))
	hub.Subscribe(late, domain.TopicVehicles)

	event := receive(t, late)
	assert.Equal(t, domain.EventFeedFailed, event.Type)
}

func TestHub_UnsubscribeAndPing(t *testing.T) {
	hub := startHub(t)

	client := NewClient(hub, nil, "", discardLogger())
	require.True(t, hub.Register(client))
	subscribed(t, hub, client, domain.TopicVehicles)

	hub.Unsubscribe(client, domain.TopicVehicles)
	require.Eventually(t, func() bool {
		return hub.GetClientsInRoom(domain.TopicVehicles) == 0
	}, time.Second, 5*time.Millisecond)
	assert.Empty(t, client.Topics())

	hub.Ping(client)
	assert.Equal(t, domain.EventPong, receive(t, client).Type)
}

func TestHub_UnregisterClosesSend(t *testing.T) {
	hub := startHub(t)

	client := NewClient(hub, nil, "", discardLogger())
	require.True(t, hub.Register(client))
	subscribed(t, hub, client, domain.TopicVehicles)

	hub.Unregister(client)

	select {
	case _, ok := <-client.Send:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("send channel was not closed")
	}
	assert.Equal(t, 0, hub.GetClientCount())
	assert.Equal(t, 0, hub.GetClientsInRoom(domain.TopicVehicles))
}

func TestHub_StopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	hub := NewHub(discardLogger())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		hub.Run(ctx)
	}()

	client := NewClient(hub, nil, "", discardLogger())
	require.True(t, hub.Register(client))

	cancel()
	<-done

	_, ok := <-client.Send
	assert.False(t, ok)
	assert.False(t, hub.Register(NewClient(hub, nil, "", discardLogger())))
}

func TestClient_EndToEnd(t *testing.T) {
	hub := startHub(t)

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		client := NewClient(hub, conn, "tester", discardLogger())
		if !hub.Register(client) {
			_ = conn.Close()
			return
		}
		go client.WritePump()
		go client.ReadPump()
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, conn.WriteJSON(map[string]any{
		"type":    "SUBSCRIBE",
		"payload": map[string]string{"topic": domain.TopicVehicles},
	}))
	require.Eventually(t, func() bool {
		return hub.GetClientsInRoom(domain.TopicVehicles) == 1
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, hub.Broadcast(domain.Event{
		Type:  domain.EventVehiclesUpdated,
		Topic: domain.TopicVehicles,
		Payload: domain.NewVehicleSnapshotPayload(domain.VehicleSnapshot{
			Vehicles: []domain.Record{{"id": "V1"}},
		}),
	}))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var got struct {
		Type    string `json:"type"`
		Topic   string `json:"topic"`
		Payload struct {
			Count int `json:"count"`
		} `json:"payload"`
	}
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, "VEHICLES_UPDATED", got.Type)
	assert.Equal(t, domain.TopicVehicles, got.Topic)
	assert.Equal(t, 1, got.Payload.Count)

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "PING"}))
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, "PONG", got.Type)
}
