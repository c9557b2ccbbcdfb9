package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"taskhive/internal/middleware"
	"taskhive/internal/notifications"
	"taskhive/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// WebSocketChatHandler handles WebSocket connections for real-time chat.
// Clients join the rooms they are viewing and receive every event published
// to those rooms.
func (s *Server) WebSocketChatHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		ctx := context.Background()

		// userID is placed in locals by WebSocketAuthRequired
		userIDVal := conn.Locals("userID")
		if userIDVal == nil {
			log.Printf("WebSocket Chat: Unauthenticated connection attempt")
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"unauthorized"}`))
			_ = conn.Close()
			return
		}
		userID := userIDVal.(uint)

		user, err := s.userRepo.GetByID(ctx, userID)
		if err != nil {
			log.Printf("WebSocket Chat: Failed to get user %d: %v", userID, err)
			_ = conn.Close()
			return
		}
		username := user.Username

		client, err := s.hub.Register(userID, conn)
		if err != nil {
			log.Printf("WebSocket Chat: Failed to register user %d: %v", userID, err)
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"`+err.Error()+`"}`))
			_ = conn.Close()
			return
		}

		client.IncomingHandler = func(c *notifications.Client, message []byte) {
			var incoming struct {
				Type    string `json:"type"`
				RoomID  uint   `json:"room_id"`
				Content string `json:"content"`
			}
			if err := json.Unmarshal(message, &incoming); err != nil {
				log.Printf("WebSocket: Invalid message format from user %d", userID)
				return
			}

			switch incoming.Type {
			case "join":
				// Only participants may subscribe to a room.
				if _, err := s.chatService.GetRoom(ctx, userID, incoming.RoomID); err != nil {
					return
				}
				s.hub.JoinRoom(c, incoming.RoomID)

				response := notifications.Event{
					Type:    "joined",
					RoomID:  incoming.RoomID,
					Payload: map[string]interface{}{"room_id": incoming.RoomID},
				}
				if respJSON, err := json.Marshal(response); err == nil {
					c.TrySend(respJSON)
				}

			case "leave":
				s.hub.LeaveRoom(c, incoming.RoomID)

			case "typing":
				if _, err := s.chatService.GetRoom(ctx, userID, incoming.RoomID); err != nil {
					return
				}
				// Limit typing indicators to 10 per 10 seconds to prevent spam.
				id := fmt.Sprintf("user:%d", userID)
				allowed, _ := middleware.CheckRateLimit(ctx, s.redis, "typing", id, 10, 10*time.Second)
				if !allowed {
					return
				}

				event := notifications.Event{
					Type:     "typing",
					RoomID:   incoming.RoomID,
					UserID:   userID,
					Username: username,
				}
				if data, err := json.Marshal(event); err == nil {
					if perr := s.notifier.PublishRoom(ctx, incoming.RoomID, string(data)); perr != nil {
						log.Printf("publish typing indicator error: %v", perr)
					}
					if s.redis == nil {
						s.hub.BroadcastToRoom(incoming.RoomID, event)
					}
				}

			case "message":
				// Send a message (alternative to the HTTP endpoint). Same
				// rate budget as HTTP sends.
				id := fmt.Sprintf("user:%d", userID)
				allowed, _ := middleware.CheckRateLimit(ctx, s.redis, "send_chat", id, 30, time.Minute)
				if !allowed {
					response := notifications.Event{
						Type:    "error",
						Payload: map[string]string{"message": "Rate limit exceeded. Please wait a moment."},
					}
					if respJSON, err := json.Marshal(response); err == nil {
						c.TrySend(respJSON)
					}
					return
				}

				if _, err := s.chatService.SendMessage(ctx, service.SendMessageInput{
					UserID:  userID,
					RoomID:  incoming.RoomID,
					Content: incoming.Content,
				}); err != nil {
					log.Printf("WebSocket: Failed to send message: %v", err)
				}

			case "read":
				if _, err := s.chatService.MarkRead(ctx, userID, incoming.RoomID); err != nil {
					return
				}

				event := notifications.Event{
					Type:     "read",
					RoomID:   incoming.RoomID,
					UserID:   userID,
					Username: username,
					Payload:  map[string]interface{}{"room_id": incoming.RoomID, "user_id": userID},
				}
				if data, err := json.Marshal(event); err == nil {
					if perr := s.notifier.PublishRoom(ctx, incoming.RoomID, string(data)); perr != nil {
						log.Printf("publish read receipt error: %v", perr)
					}
					if s.redis == nil {
						s.hub.BroadcastToRoom(incoming.RoomID, event)
					}
				}
			}
		}

		welcome := notifications.Event{
			Type:    "connected",
			Payload: map[string]interface{}{"user_id": userID, "username": username},
		}
		if welcomeJSON, err := json.Marshal(welcome); err == nil {
			client.TrySend(welcomeJSON)
		}

		// Write pump in a goroutine; read pump blocks this handler goroutine
		// and unregisters the client when the connection drops.
		go client.WritePump()
		client.ReadPump()
	})
}
