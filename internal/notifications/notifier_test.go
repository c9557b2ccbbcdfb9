package notifications

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"taskhive/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func waitForMessage(t *testing.T, ch chan []byte) []byte {
	t.Helper()
	select {
	case data := <-ch:
		return data
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for websocket delivery")
		return nil
	}
}

func TestNotifier_RoomRoundTrip(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rdb := newTestRedis(t)
	notifier := NewNotifier(rdb)

	got := make(chan string, 1)
	require.NoError(t, notifier.StartRoomSubscriber(ctx, func(channel, payload string) {
		got <- channel + "|" + payload
	}))

	// PSubscribe needs a moment to attach before the publish.
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, notifier.PublishRoom(ctx, 7, `{"type":"message"}`))

	select {
	case v := <-got:
		assert.Equal(t, `chat:room:7|{"type":"message"}`, v)
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber never received the published event")
	}
}

func TestNotifier_NilRedisIsNoop(t *testing.T) {
	notifier := NewNotifier(nil)
	ctx := context.Background()

	assert.NoError(t, notifier.PublishRoom(ctx, 1, "x"))
	assert.NoError(t, notifier.PublishUser(ctx, 1, "x"))
	assert.NoError(t, notifier.StartRoomSubscriber(ctx, func(string, string) {
		t.Error("subscriber callback fired without redis")
	}))
}

func TestChatNotifier_LocalDeliveryWithoutRedis(t *testing.T) {
	hub := NewHub()
	client := &Client{UserID: 2, Send: make(chan []byte, 10)}
	hub.RegisterClient(client)
	hub.JoinRoom(client, 31)

	cn := NewChatNotifier(hub, NewNotifier(nil), nil)
	room := &models.ChatRoom{ID: 31, ClientID: 1, ProviderID: 2}
	msg := &models.Message{ID: 5, RoomID: 31, SenderID: 1, Content: "hello"}

	cn.NotifyMessage(context.Background(), room, msg)

	data := waitForMessage(t, client.Send)
	var event Event
	require.NoError(t, json.Unmarshal(data, &event))
	assert.Equal(t, "message", event.Type)
	assert.Equal(t, uint(31), event.RoomID)
	assert.Equal(t, uint(1), event.UserID)

	_ = hub.Shutdown(context.Background())
}

func TestChatNotifier_RedisFanOutReachesWiredHub(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rdb := newTestRedis(t)
	notifier := NewNotifier(rdb)

	hub := NewHub()
	require.NoError(t, hub.StartWiring(ctx, notifier))
	time.Sleep(50 * time.Millisecond)

	client := &Client{UserID: 9, Send: make(chan []byte, 10)}
	hub.RegisterClient(client)
	hub.JoinRoom(client, 44)

	cn := NewChatNotifier(hub, notifier, nil)
	room := &models.ChatRoom{ID: 44, ClientID: 9, ProviderID: 10}
	msg := &models.Message{ID: 8, RoomID: 44, SenderID: 10, Content: "via redis"}

	cn.NotifyMessage(ctx, room, msg)

	data := waitForMessage(t, client.Send)
	var event Event
	require.NoError(t, json.Unmarshal(data, &event))
	assert.Equal(t, "message", event.Type)
	assert.Equal(t, uint(44), event.RoomID)

	_ = hub.Shutdown(context.Background())
}

func TestChannelNames(t *testing.T) {
	assert.Equal(t, "chat:room:12", RoomChannel(12))
	assert.Equal(t, "notifications:user:3", UserChannel(3))
}
