package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 64 << 10
	sendBuffer     = 256
)

// 消息类型
const (
	TypePresence = "presence" // 进入房间后下发当前在线成员
	TypeJoin     = "join"
	TypeLeave    = "leave"
	TypeChat     = "chat"
	TypeSignal   = "signal" // WebRTC 信令，可通过 to 定向发送
	TypeClosed   = "closed" // 会议结束，房间关闭
)

// ErrHubClosed Hub 已停止
var ErrHubClosed = errors.New("realtime hub 已关闭")

// Participant 房间成员
type Participant struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// Message 房间内传递的消息
type Message struct {
	Type         string          `json:"type"`
	From         *Participant    `json:"from,omitempty"`
	To           string          `json:"to,omitempty"`
	Payload      json.RawMessage `json:"payload,omitempty"`
	Participants []Participant   `json:"participants,omitempty"`
	SentAt       string          `json:"sent_at"`
}

// Client 单个 WebSocket 连接
type Client struct {
	hub    *Hub
	roomID string
	p      Participant
	conn   *websocket.Conn
	send   chan []byte
}

type envelope struct {
	sender *Client
	msg    Message
}

// Hub 会议房间中继：按 room_id 分组转发消息并广播进出事件
type Hub struct {
	rooms      map[string]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan envelope
	closeRoom  chan string
	done       chan struct{}
	mu         sync.RWMutex
	upgrader   websocket.Upgrader
	logger     *zap.Logger
}

// NewHub 创建 Hub；allowedOrigins 为空或包含 * 时不校验 Origin
func NewHub(allowedOrigins []string, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Hub{
		rooms:      make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan envelope, 64),
		closeRoom:  make(chan string),
		done:       make(chan struct{}),
		logger:     logger,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	return h
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(allowed) == 0 {
			return true
		}
		for _, o := range allowed {
			if o == "*" || o == origin {
				return true
			}
		}
		return false
	}
}

// Run 事件循环，ctx 结束时断开全部连接
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return
		case c := <-h.register:
			h.addClient(c)
		case c := <-h.unregister:
			h.removeClient(c)
		case env := <-h.broadcast:
			h.relay(env)
		case roomID := <-h.closeRoom:
			h.dropRoom(roomID)
		}
	}
}

// Serve 升级连接并加入房间，连接由 Hub 接管
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, roomID string, p Participant) error {
	select {
	case <-h.done:
		return ErrHubClosed
	default:
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	c := &Client{
		hub:    h,
		roomID: roomID,
		p:      p,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
	}

	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return ErrHubClosed
	}

	go c.writePump()
	go c.readPump()
	return nil
}

// Participants 房间当前在线成员
func (h *Hub) Participants(roomID string) []Participant {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.participantsLocked(roomID)
}

// CloseRoom 通知房间内全部成员并断开连接
func (h *Hub) CloseRoom(roomID string) {
	select {
	case h.closeRoom <- roomID:
	case <-h.done:
	}
}

// ── 事件处理（仅在 Run 协程中调用）──

func (h *Hub) addClient(c *Client) {
	h.mu.Lock()
	room, ok := h.rooms[c.roomID]
	if !ok {
		room = make(map[*Client]struct{})
		h.rooms[c.roomID] = room
	}
	room[c] = struct{}{}
	members := h.participantsLocked(c.roomID)
	h.mu.Unlock()

	h.logger.Info("加入会议房间", zap.String("room_id", c.roomID), zap.String("user_id", c.p.UserID))

	h.deliver(c, Message{Type: TypePresence, Participants: members})
	h.fanout(c.roomID, c, Message{Type: TypeJoin, From: &c.p, Participants: members})
}

func (h *Hub) removeClient(c *Client) {
	h.mu.Lock()
	room, ok := h.rooms[c.roomID]
	if !ok {
		h.mu.Unlock()
		return
	}
	if _, ok := room[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(room, c)
	close(c.send)
	if len(room) == 0 {
		delete(h.rooms, c.roomID)
	}
	members := h.participantsLocked(c.roomID)
	h.mu.Unlock()

	h.logger.Info("离开会议房间", zap.String("room_id", c.roomID), zap.String("user_id", c.p.UserID))
	h.fanout(c.roomID, nil, Message{Type: TypeLeave, From: &c.p, Participants: members})
}

func (h *Hub) relay(env envelope) {
	msg := env.msg
	msg.From = &env.sender.p
	msg.Participants = nil

	if msg.To == "" {
		h.fanout(env.sender.roomID, env.sender, msg)
		return
	}

	h.mu.RLock()
	var targets []*Client
	for c := range h.rooms[env.sender.roomID] {
		if c.p.UserID == msg.To && c != env.sender {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()
	for _, c := range targets {
		h.deliver(c, msg)
	}
}

func (h *Hub) dropRoom(roomID string) {
	h.mu.Lock()
	room := h.rooms[roomID]
	delete(h.rooms, roomID)
	h.mu.Unlock()

	data := encode(Message{Type: TypeClosed})
	for c := range room {
		select {
		case c.send <- data:
		default:
		}
		close(c.send)
	}
	if len(room) > 0 {
		h.logger.Info("会议房间已关闭", zap.String("room_id", roomID), zap.Int("clients", len(room)))
	}
}

func (h *Hub) shutdown() {
	close(h.done)
	h.mu.Lock()
	defer h.mu.Unlock()
	for roomID, room := range h.rooms {
		for c := range room {
			close(c.send)
		}
		delete(h.rooms, roomID)
	}
}

// fanout 广播给房间内除 except 外的成员
func (h *Hub) fanout(roomID string, except *Client, msg Message) {
	h.mu.RLock()
	targets := make([]*Client, 0, len(h.rooms[roomID]))
	for c := range h.rooms[roomID] {
		if c != except {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()

	data := encode(msg)
	for _, c := range targets {
		h.push(c, data)
	}
}

func (h *Hub) deliver(c *Client, msg Message) {
	h.push(c, encode(msg))
}

// push 发送缓冲已满的连接视为失效并移出房间
func (h *Hub) push(c *Client, data []byte) {
	select {
	case c.send <- data:
	default:
		h.logger.Warn("发送缓冲已满，断开连接", zap.String("room_id", c.roomID), zap.String("user_id", c.p.UserID))
		h.mu.Lock()
		if room, ok := h.rooms[c.roomID]; ok {
			if _, ok := room[c]; ok {
				delete(room, c)
				close(c.send)
			}
		}
		h.mu.Unlock()
	}
}

func (h *Hub) participantsLocked(roomID string) []Participant {
	members := make([]Participant, 0, len(h.rooms[roomID]))
	for c := range h.rooms[roomID] {
		members = append(members, c.p)
	}
	return members
}

func encode(msg Message) []byte {
	if msg.SentAt == "" {
		msg.SentAt = time.Now().UTC().Format(time.RFC3339)
	}
	data, _ := json.Marshal(msg)
	return data
}

// ── 连接读写 ──

func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("WebSocket 异常断开", zap.String("user_id", c.p.UserID), zap.Error(err))
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		// 客户端只能发送 chat / signal
		if msg.Type != TypeChat && msg.Type != TypeSignal {
			continue
		}
		msg.SentAt = ""

		select {
		case c.hub.broadcast <- envelope{sender: c, msg: msg}:
		case <-c.hub.done:
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
