package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"runtime/debug"
	"strconv"

	"taskhive/internal/models"
	"taskhive/internal/repository"

	"github.com/redis/go-redis/v9"
)

// Notifier publishes chat events into Redis channels. A nil Redis client
// disables cross-instance fan-out; publishes become no-ops.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// PublishRoom sends an event payload to a room's channel.
func (n *Notifier) PublishRoom(ctx context.Context, roomID uint, payload string) error {
	if n.rdb == nil {
		return nil
	}
	return n.rdb.Publish(ctx, RoomChannel(roomID), payload).Err()
}

// PublishUser sends a payload to a user's personal channel.
func (n *Notifier) PublishUser(ctx context.Context, userID uint, payload string) error {
	if n.rdb == nil {
		return nil
	}
	return n.rdb.Publish(ctx, UserChannel(userID), payload).Err()
}

// StartRoomSubscriber subscribes to the `chat:room:*` pattern and calls
// onMessage for each incoming message.
func (n *Notifier) StartRoomSubscriber(
	ctx context.Context, onMessage func(channel string, payload string),
) error {
	if n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, "chat:room:*")
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							log.Printf("PANIC in RoomSubscriber: %v\n%s", r, debug.Stack())
						}
					}()
					onMessage(msg.Channel, msg.Payload)
				}()
			}
		}
	}()

	return nil
}

// RoomChannel derives the Redis channel name for a chat room.
func RoomChannel(roomID uint) string {
	return "chat:room:" + strconv.FormatUint(uint64(roomID), 10)
}

// UserChannel derives the Redis channel name for a user.
func UserChannel(userID uint) string {
	return "notifications:user:" + strconv.FormatUint(uint64(userID), 10)
}

// ChatNotifier fans a stored chat message out to its room: local websocket
// subscribers, Redis for other instances, and push registrations for the
// participant who is not connected.
type ChatNotifier struct {
	hub      *Hub
	notifier *Notifier
	users    repository.UserRepository
}

// NewChatNotifier wires the hub, Redis publisher and user repository together.
func NewChatNotifier(hub *Hub, notifier *Notifier, users repository.UserRepository) *ChatNotifier {
	return &ChatNotifier{hub: hub, notifier: notifier, users: users}
}

// NotifyMessage delivers a persisted message to the room's participants.
func (cn *ChatNotifier) NotifyMessage(ctx context.Context, room *models.ChatRoom, msg *models.Message) {
	event := Event{
		Type:    "message",
		RoomID:  room.ID,
		UserID:  msg.SenderID,
		Payload: msg,
	}

	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("ChatNotifier: failed to marshal message %d: %v", msg.ID, err)
		return
	}

	// With Redis the hub receives the event through its room subscriber, so
	// publishing once covers local and remote instances. Without Redis,
	// deliver straight to local subscribers.
	if cn.notifier != nil && cn.notifier.rdb != nil {
		if err := cn.notifier.PublishRoom(ctx, room.ID, string(data)); err != nil {
			log.Printf("ChatNotifier: publish to room %d failed: %v", room.ID, err)
			cn.hub.BroadcastToRoom(room.ID, event)
		}
	} else if cn.hub != nil {
		cn.hub.BroadcastToRoom(room.ID, event)
	}

	cn.pushToOffline(ctx, room, msg)
}

// pushToOffline queues a push notification for the participant who has no
// live websocket connection.
func (cn *ChatNotifier) pushToOffline(ctx context.Context, room *models.ChatRoom, msg *models.Message) {
	if cn.users == nil {
		return
	}

	recipient := room.ClientID
	if msg.SenderID == room.ClientID {
		recipient = room.ProviderID
	}
	if cn.hub != nil && cn.hub.IsOnline(recipient) {
		return
	}

	tokens, err := cn.users.ListDeviceTokens(ctx, recipient)
	if err != nil {
		log.Printf("ChatNotifier: list device tokens for user %d: %v", recipient, err)
		return
	}
	for _, tok := range tokens {
		// Provider dispatch happens out of process; record the intent.
		log.Printf("ChatNotifier: push queued for user %d device %s (%s), room %d",
			recipient, truncateToken(tok.Token), tok.Platform, room.ID)
	}
}

func truncateToken(token string) string {
	if len(token) <= 8 {
		return token
	}
	return fmt.Sprintf("%s...", token[:8])
}
