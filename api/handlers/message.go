package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/zenova/school-connect-api/api"
	"github.com/zenova/school-connect-api/api/socket"
	"github.com/zenova/school-connect-api/chat"
	"github.com/zenova/school-connect-api/config"
	"github.com/zenova/school-connect-api/databases"
	"github.com/zenova/school-connect-api/models"
)

// Chat handles stream history, appends and live subscriptions
type Chat struct {
	MDB databases.MessageDatabase
	RDB databases.RoomDatabase
	UDB databases.UserDatabase
	Hub *socket.Hub
}

// currentUser resolves the authenticated principal to its profile, falling
// back to a default student profile when the document is missing
func (c Chat) currentUser(r *http.Request) (*models.User, error) {
	info := api.Principal(r.Context())
	if info == nil {
		return nil, fmt.Errorf("no authenticated principal")
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	user, err := c.UDB.FindOne(ctx, bson.M{"_id": info.ID()})
	if err != nil {
		return defaultProfile(info.ID(), info.UserName()), nil
	}
	return user, nil
}

// resolveStream routes the channel path to exactly one stream for the caller
func resolveStream(r *http.Request, principalID string) chat.Stream {
	channel := mux.Vars(r)["channel"]
	return chat.Resolve(chat.ParsePath(channel), principalID)
}

// MessagesHandler returns the full ordered history of the resolved stream
func (c Chat) MessagesHandler(w http.ResponseWriter, r *http.Request) {
	user, err := c.currentUser(r)
	if err != nil {
		config.ErrorStatus("failed to resolve principal", http.StatusUnauthorized, w, err)
		return
	}

	stream := resolveStream(r, user.ID)
	if !chat.CanAccess(stream, *user) {
		config.ErrorStatus("not permitted to read this stream", http.StatusForbidden, w, fmt.Errorf("stream access denied"))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	messages, err := c.streamMessages(ctx, stream.ID)
	if err != nil {
		config.ErrorStatus("failed to get messages", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(messages)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// CreateMessageHandler appends a message to the resolved stream. For class
// and direct-message streams the backing room is created first (idempotent
// lookup-or-create) and only then is the message written; the two calls are
// sequenced so a later reader can always enumerate the room.
func (c Chat) CreateMessageHandler(w http.ResponseWriter, r *http.Request) {
	var req models.CreateMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}

	// reject blank text before touching the backend at all
	text := strings.TrimSpace(req.Text)
	if text == "" {
		config.ErrorStatus("message text is required", http.StatusBadRequest, w, fmt.Errorf("empty message"))
		return
	}

	user, err := c.currentUser(r)
	if err != nil {
		config.ErrorStatus("failed to resolve principal", http.StatusUnauthorized, w, err)
		return
	}

	stream := resolveStream(r, user.ID)
	if !chat.CanAccess(stream, *user) {
		config.ErrorStatus("not permitted to post to this stream", http.StatusForbidden, w, fmt.Errorf("stream access denied"))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if stream.Kind == chat.KindDirect || stream.Kind == chat.KindClass {
		room := models.Room{
			ID:       stream.ID,
			Kind:     stream.Kind,
			Members:  stream.Members,
			ClassTag: stream.ClassTag,
		}
		if err := c.RDB.EnsureRoom(ctx, room); err != nil {
			config.ErrorStatus("failed to create room", http.StatusInternalServerError, w, err)
			return
		}
	}

	message := models.Message{
		ID:              uuid.New().String(),
		Stream:          stream.ID,
		Text:            text,
		SenderID:        user.ID,
		SenderName:      user.DisplayName,
		SenderAvatarURL: user.AvatarURL,
		// send time is assigned here at write time, never from the client
		// clock
		SentAt: primitive.NewDateTimeFromTime(time.Now().UTC()),
	}

	if _, err := c.MDB.InsertOne(ctx, message); err != nil {
		config.ErrorStatus("failed to insert message", http.StatusInternalServerError, w, err)
		return
	}

	if stream.Kind == chat.KindDirect || stream.Kind == chat.KindClass {
		if err := c.RDB.TouchLastMessage(ctx, stream.ID); err != nil {
			zap.S().Warnw("failed to touch room",
				"room", stream.ID,
				"error", err)
		}
	}

	c.broadcastSnapshot(ctx, stream.ID)

	b, err := json.Marshal(message)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// RoomsHandler lists the caller's direct-message rooms, most recent first
func (c Chat) RoomsHandler(w http.ResponseWriter, r *http.Request) {
	user, err := c.currentUser(r)
	if err != nil {
		config.ErrorStatus("failed to resolve principal", http.StatusUnauthorized, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "lastMessageAt", Value: -1}})
	rooms, err := c.RDB.Find(ctx, bson.M{"members": user.ID}, opts)
	if err != nil {
		config.ErrorStatus("failed to get rooms", http.StatusInternalServerError, w, err)
		return
	}
	if len(rooms) == 0 {
		rooms = []models.Room{}
	}

	b, err := json.Marshal(rooms)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// SubscribeHandler opens the live subscription for the resolved stream. The
// connection carries exactly one subscription; switching streams means a new
// connection, and the old subscription is released when its reader exits.
func (c Chat) SubscribeHandler(w http.ResponseWriter, r *http.Request) {
	user, err := c.currentUser(r)
	if err != nil {
		config.ErrorStatus("failed to resolve principal", http.StatusUnauthorized, w, err)
		return
	}

	stream := resolveStream(r, user.ID)
	if !chat.CanAccess(stream, *user) {
		// surfaced before the upgrade so the client can show the denial
		config.ErrorStatus("not permitted to subscribe to this stream", http.StatusForbidden, w, fmt.Errorf("stream access denied"))
		return
	}

	conn, err := socket.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		zap.S().Errorw("failed to upgrade subscription",
			"stream", stream.ID,
			"error", err)
		return
	}

	client := socket.NewClient(c.Hub, conn, stream.ID, user.ID)
	c.Hub.Register(client)
	c.setPresence(user.ID, true)

	// deliver the current snapshot before the pumps start so the consumer
	// never renders an unexplained empty view
	ctx, cancel := api.WithQueryTimeout(context.Background())
	messages, err := c.streamMessages(ctx, stream.ID)
	cancel()
	if err == nil {
		if payload, err := json.Marshal(messages); err == nil {
			conn.WriteMessage(websocket.TextMessage, payload)
		}
	}

	go client.WritePump()
	go func() {
		client.ReadPump()
		c.setPresence(user.ID, false)
	}()
}

// streamMessages loads a stream's full sequence in ascending send order
func (c Chat) streamMessages(ctx context.Context, streamID string) ([]models.Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "sentAt", Value: 1}})
	messages, err := c.MDB.Find(ctx, bson.M{"stream": streamID}, opts)
	if err != nil {
		return nil, err
	}
	if len(messages) == 0 {
		messages = []models.Message{}
	}
	return messages, nil
}

// broadcastSnapshot pushes the stream's full ordered sequence to every live
// subscriber
func (c Chat) broadcastSnapshot(ctx context.Context, streamID string) {
	if c.Hub == nil || c.Hub.Subscribers(streamID) == 0 {
		return
	}
	messages, err := c.streamMessages(ctx, streamID)
	if err != nil {
		zap.S().Errorw("failed to load snapshot for broadcast",
			"stream", streamID,
			"error", err)
		return
	}
	payload, err := json.Marshal(messages)
	if err != nil {
		zap.S().Errorw("failed to marshal snapshot",
			"stream", streamID,
			"error", err)
		return
	}
	c.Hub.Broadcast(streamID, payload)
}

func (c Chat) setPresence(userID string, online bool) {
	ctx, cancel := api.WithQueryTimeout(context.Background())
	defer cancel()

	update := bson.M{"$set": bson.M{
		"online":   online,
		"lastSeen": primitive.NewDateTimeFromTime(time.Now().UTC()),
	}}
	if _, err := c.UDB.UpdateOne(ctx, bson.M{"_id": userID}, update); err != nil {
		zap.S().Warnw("failed to update presence",
			"user", userID,
			"error", err)
	}
}
