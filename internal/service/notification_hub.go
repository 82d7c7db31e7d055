package service

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"net/http"
	"qa_forum_backend/pkg/logger"
	"qa_forum_backend/pkg/monitoring"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	shardCount     = 32
	onlineTTL      = 2 * time.Minute

	streamChannel = "forum:stream"

	StreamNotification = "NOTIFICATION"
	StreamUserStatus   = "USER_STATUS"
	StreamMarkRead     = "MARK_READ"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type StreamMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// inbound is what clients may send; only MARK_READ is acted on.
type inbound struct {
	Type string `json:"type"`
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

type streamClient struct {
	hub     *NotificationHub
	conn    *websocket.Conn
	send    chan []byte
	userID  string
	limiter *rate.Limiter
}

func (c *streamClient) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Log.Warn("Notification stream closed unexpectedly", zap.Error(err), zap.String("userId", c.userID))
			}
			break
		}

		if !c.limiter.Allow() {
			continue
		}

		var msg inbound
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}
		monitoring.StreamMessages.WithLabelValues(msg.Type, "in").Inc()

		if msg.Type == StreamMarkRead && msg.Data.ID != "" && c.hub.Reader != nil {
			if err := c.hub.Reader.MarkRead(c.userID, msg.Data.ID); err != nil {
				logger.Log.Debug("Mark read over stream failed", zap.Error(err))
			}
		}
	}
}

func (c *streamClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

type shard struct {
	clients map[string]*streamClient
	mu      sync.RWMutex
}

// NotificationReader is the subset of NotificationService the stream needs.
type NotificationReader interface {
	MarkRead(userID, id string) error
}

// FriendLister supplies who should see a user's presence changes.
type FriendLister interface {
	FriendIDsCached(userID string) ([]string, error)
}

// NotificationHub pushes notifications and friend presence to connected
// clients. With Redis, pushes fan out to every instance over pub/sub;
// without it delivery is local only.
type NotificationHub struct {
	shards     [shardCount]*shard
	register   chan *streamClient
	unregister chan *streamClient
	done       chan struct{}
	stopOnce   sync.Once

	Redis   *redis.Client
	Friends FriendLister
	Reader  NotificationReader
	ctx     context.Context
}

func NewNotificationHub(rdb *redis.Client, friends FriendLister) *NotificationHub {
	h := &NotificationHub{
		register:   make(chan *streamClient),
		unregister: make(chan *streamClient),
		done:       make(chan struct{}),
		Redis:      rdb,
		Friends:    friends,
		ctx:        context.Background(),
	}
	for i := 0; i < shardCount; i++ {
		h.shards[i] = &shard{clients: make(map[string]*streamClient)}
	}
	return h
}

func (h *NotificationHub) getShard(userID string) *shard {
	f := fnv.New32a()
	f.Write([]byte(userID))
	return h.shards[f.Sum32()%shardCount]
}

func onlineKey(userID string) string {
	return fmt.Sprintf("forum:online:%s", userID)
}

type pubSubMessage struct {
	TargetUsers []string        `json:"targetUsers"`
	Payload     json.RawMessage `json:"payload"`
}

// Run owns client registration until Stop is called.
func (h *NotificationHub) Run() {
	if h.Redis != nil {
		pubsub := h.Redis.Subscribe(h.ctx, streamChannel)
		defer pubsub.Close()
		go func() {
			for msg := range pubsub.Channel() {
				var ps pubSubMessage
				if err := json.Unmarshal([]byte(msg.Payload), &ps); err != nil {
					logger.Log.Error("Stream pubsub unmarshal error", zap.Error(err))
					continue
				}
				h.deliverLocal(ps.TargetUsers, ps.Payload)
			}
		}()
	}

	heartbeat := time.NewTicker(time.Minute)
	defer heartbeat.Stop()

	for {
		select {
		case client := <-h.register:
			s := h.getShard(client.userID)
			s.mu.Lock()
			// One stream per user; a new tab replaces the old one.
			if old, ok := s.clients[client.userID]; ok {
				close(old.send)
			} else {
				monitoring.StreamConnections.Inc()
			}
			s.clients[client.userID] = client
			s.mu.Unlock()
			h.setPresence(client.userID, true)

		case client := <-h.unregister:
			s := h.getShard(client.userID)
			s.mu.Lock()
			current, ok := s.clients[client.userID]
			removed := ok && current == client
			if removed {
				delete(s.clients, client.userID)
				close(client.send)
				monitoring.StreamConnections.Dec()
			}
			s.mu.Unlock()
			if removed {
				h.setPresence(client.userID, false)
			}

		case <-heartbeat.C:
			h.refreshOnline()

		case <-h.done:
			return
		}
	}
}

func (h *NotificationHub) setPresence(userID string, online bool) {
	if h.Redis != nil {
		if online {
			h.Redis.Set(h.ctx, onlineKey(userID), "true", onlineTTL)
		} else {
			h.Redis.Del(h.ctx, onlineKey(userID))
		}
	}

	if h.Friends == nil {
		return
	}
	ids, err := h.Friends.FriendIDsCached(userID)
	if err != nil || len(ids) == 0 {
		return
	}
	status := "offline"
	if online {
		status = "online"
	}
	h.PushToUsers(ids, StreamMessage{
		Type: StreamUserStatus,
		Data: map[string]interface{}{"userId": userID, "status": status},
	})
}

func (h *NotificationHub) refreshOnline() {
	if h.Redis == nil {
		return
	}
	pipe := h.Redis.Pipeline()
	count := 0
	for _, s := range h.shards {
		s.mu.RLock()
		for userID := range s.clients {
			pipe.Expire(h.ctx, onlineKey(userID), onlineTTL)
			count++
		}
		s.mu.RUnlock()
	}
	if count > 0 {
		if _, err := pipe.Exec(h.ctx); err != nil {
			logger.Log.Warn("Refreshing online status failed", zap.Error(err))
		}
	}
}

// Stop closes every local connection and clears their presence keys.
func (h *NotificationHub) Stop() {
	h.stopOnce.Do(func() {
		close(h.done)

		var userIDs []string
		for _, s := range h.shards {
			s.mu.Lock()
			for userID, client := range s.clients {
				userIDs = append(userIDs, userID)
				close(client.send)
				delete(s.clients, userID)
			}
			s.mu.Unlock()
		}

		if h.Redis != nil && len(userIDs) > 0 {
			pipe := h.Redis.Pipeline()
			for _, userID := range userIDs {
				pipe.Del(h.ctx, onlineKey(userID))
			}
			pipe.Exec(h.ctx)
		}

		monitoring.StreamConnections.Set(0)
		logger.Log.Info("Notification hub stopped", zap.Int("closedConnections", len(userIDs)))
	})
}

func (h *NotificationHub) PushToUsers(userIDs []string, msg StreamMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		logger.Log.Error("Stream message marshal error", zap.Error(err))
		return
	}
	monitoring.StreamMessages.WithLabelValues(msg.Type, "out").Inc()

	if h.Redis != nil {
		envelope, _ := json.Marshal(pubSubMessage{TargetUsers: userIDs, Payload: payload})
		if err := h.Redis.Publish(h.ctx, streamChannel, envelope).Err(); err == nil {
			return
		}
	}
	h.deliverLocal(userIDs, payload)
}

func (h *NotificationHub) deliverLocal(userIDs []string, payload []byte) {
	for _, id := range userIDs {
		s := h.getShard(id)
		s.mu.RLock()
		if client, ok := s.clients[id]; ok {
			select {
			case client.send <- payload:
			default:
			}
		}
		s.mu.RUnlock()
	}
}

// IsOnline checks the local shard first, then Redis for other instances.
func (h *NotificationHub) IsOnline(userID string) bool {
	s := h.getShard(userID)
	s.mu.RLock()
	_, ok := s.clients[userID]
	s.mu.RUnlock()
	if ok || h.Redis == nil {
		return ok
	}

	val, err := h.Redis.Get(h.ctx, onlineKey(userID)).Result()
	return err == nil && val == "true"
}

func (h *NotificationHub) Serve(w http.ResponseWriter, r *http.Request, userID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Warn("Websocket upgrade failed", zap.Error(err), zap.String("userId", userID))
		return
	}
	client := &streamClient{
		hub:     h,
		conn:    conn,
		send:    make(chan []byte, 64),
		userID:  userID,
		limiter: rate.NewLimiter(rate.Limit(5), 10),
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}
