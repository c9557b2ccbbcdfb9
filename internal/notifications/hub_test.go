package notifications

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_RegisterUnregister(t *testing.T) {
	hub := NewHub()
	client := &Client{UserID: 1, Send: make(chan []byte, 10)}

	hub.RegisterClient(client)
	assert.True(t, hub.IsOnline(1))

	hub.UnregisterClient(client)
	assert.False(t, hub.IsOnline(1))

	_ = hub.Shutdown(context.Background())
}

func TestHub_BroadcastToRoom(t *testing.T) {
	hub := NewHub()
	client := &Client{UserID: 1, Send: make(chan []byte, 10)}
	hub.RegisterClient(client)
	hub.JoinRoom(client, 101)

	hub.BroadcastToRoom(101, Event{Type: "message", RoomID: 101, Payload: "Hello"})

	sent := <-client.Send
	var received Event
	require.NoError(t, json.Unmarshal(sent, &received))
	assert.Equal(t, "message", received.Type)
	assert.Equal(t, uint(101), received.RoomID)

	_ = hub.Shutdown(context.Background())
}

func TestHub_BroadcastSkipsOtherRooms(t *testing.T) {
	hub := NewHub()
	inRoom := &Client{UserID: 1, Send: make(chan []byte, 10)}
	outside := &Client{UserID: 2, Send: make(chan []byte, 10)}
	hub.RegisterClient(inRoom)
	hub.RegisterClient(outside)
	hub.JoinRoom(inRoom, 7)
	hub.JoinRoom(outside, 8)

	hub.BroadcastToRoom(7, Event{Type: "message", RoomID: 7, Payload: "private"})

	select {
	case <-inRoom.Send:
	default:
		t.Error("room member did not receive message")
	}

	select {
	case <-outside.Send:
		t.Error("non-member received room message")
	default:
	}

	_ = hub.Shutdown(context.Background())
}

func TestHub_MultiDeviceDelivery(t *testing.T) {
	hub := NewHub()
	userID := uint(42)
	phone := &Client{UserID: userID, Send: make(chan []byte, 10)}
	laptop := &Client{UserID: userID, Send: make(chan []byte, 10)}
	hub.RegisterClient(phone)
	hub.RegisterClient(laptop)
	hub.JoinRoom(phone, 202)
	hub.JoinRoom(laptop, 202)

	hub.BroadcastToRoom(202, Event{Type: "message", RoomID: 202, Payload: "both devices"})

	select {
	case <-phone.Send:
	default:
		t.Error("phone client did not receive message")
	}
	select {
	case <-laptop.Send:
	default:
		t.Error("laptop client did not receive message")
	}

	assert.Equal(t, []uint{userID}, hub.RoomSubscribers(202))

	_ = hub.Shutdown(context.Background())
}

func TestHub_UnregisterLeavesRooms(t *testing.T) {
	hub := NewHub()
	client := &Client{UserID: 5, Send: make(chan []byte, 10)}
	hub.RegisterClient(client)
	hub.JoinRoom(client, 9)

	hub.UnregisterClient(client)

	assert.Empty(t, hub.RoomSubscribers(9))
	hub.BroadcastToRoom(9, Event{Type: "message", RoomID: 9})
	select {
	case <-client.Send:
		t.Error("unregistered client received message")
	default:
	}

	_ = hub.Shutdown(context.Background())
}

func TestHub_LeaveRoomStopsDelivery(t *testing.T) {
	hub := NewHub()
	client := &Client{UserID: 3, Send: make(chan []byte, 10)}
	hub.RegisterClient(client)
	hub.JoinRoom(client, 12)
	hub.LeaveRoom(client, 12)

	hub.BroadcastToRoom(12, Event{Type: "message", RoomID: 12})
	select {
	case <-client.Send:
		t.Error("client received message after leaving room")
	default:
	}

	assert.True(t, hub.IsOnline(3))

	_ = hub.Shutdown(context.Background())
}
