package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/black-roland/homeassistant-yandex-speechkit/domain/entities"
	"github.com/black-roland/homeassistant-yandex-speechkit/internal/metrics"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512 * 1024 // 512KB for audio chunks

	// Audio chunks buffered between the socket and the recognizer.
	audioBuffer = 64

	// DefaultSessionTimeout bounds one listening session.
	DefaultSessionTimeout = 5 * time.Minute
)

// ErrHubStopped is returned when a connection arrives after the hub stopped
var ErrHubStopped = errors.New("websocket hub stopped")

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Transcriber runs one recognition over the chunks delivered on audio
type Transcriber interface {
	Transcribe(ctx context.Context, entryID string, metadata entities.SpeechMetadata, audio <-chan []byte) (entities.SpeechResult, error)
}

// Hub maintains the set of active streaming recognition clients.
type Hub struct {
	// Registered clients.
	clients map[string]*Client

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Closed when Run returns.
	stopped chan struct{}

	// Mutex for thread-safe access to clients map
	mu sync.RWMutex

	transcriber    Transcriber
	validator      *MessageValidator
	sessionTimeout time.Duration

	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewHub creates a new WebSocket hub
func NewHub(transcriber Transcriber, m *metrics.Metrics, logger *zap.Logger) *Hub {
	return &Hub{
		clients:        make(map[string]*Client),
		register:       make(chan *Client),
		unregister:     make(chan *Client),
		stopped:        make(chan struct{}),
		transcriber:    transcriber,
		validator:      NewMessageValidator(entities.DefaultSTTCapabilities()),
		sessionTimeout: DefaultSessionTimeout,
		metrics:        m,
		logger:         logger,
	}
}

// SetSessionTimeout changes how long one listening session may run
func (h *Hub) SetSessionTimeout(timeout time.Duration) {
	h.sessionTimeout = timeout
}

// Run starts the hub's main loop. Connected clients are closed when ctx is done.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.stopped)

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.id] = client
			h.mu.Unlock()
			h.metrics.WebsocketConnected(1)
			h.logger.Info("Client registered",
				zap.String("clientID", client.id),
				zap.String("entryID", client.entryID))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.id]; ok {
				delete(h.clients, client.id)
				h.metrics.WebsocketConnected(-1)
			}
			h.mu.Unlock()
			h.logger.Info("Client unregistered", zap.String("clientID", client.id))

		case <-ctx.Done():
			h.mu.Lock()
			for id, client := range h.clients {
				client.conn.Close()
				delete(h.clients, id)
				h.metrics.WebsocketConnected(-1)
			}
			h.mu.Unlock()
			h.logger.Info("WebSocket hub stopped")
			return
		}
	}
}

// ClientCount returns the number of registered clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

type WriteData struct {
	// MessageType is the type of the websocket message.
	// Expect websocket.TextMessage or websocket.BinaryMessage
	Type    int
	Payload []byte
}

// listeningSession is one recognition between listening_start and its transcript
type listeningSession struct {
	id      string
	audio   chan []byte
	ctx     context.Context
	cancel  context.CancelFunc
	started time.Time
	chunks  int
	ended   bool
}

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	hub *Hub

	// The websocket connection.
	conn *websocket.Conn

	// Buffered channel of outbound messages.
	send chan WriteData

	// Closed when the read pump exits.
	done chan struct{}

	id      string
	entryID string

	logger *zap.Logger

	mutex   sync.Mutex
	session *listeningSession
}

// HandleWebSocket upgrades the request and streams recognition for entryID
func HandleWebSocket(hub *Hub, c echo.Context, entryID string, logger *zap.Logger) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		logger.Error("WebSocket upgrade failed", zap.Error(err))
		return err
	}

	client := &Client{
		hub:     hub,
		conn:    conn,
		send:    make(chan WriteData, 256),
		done:    make(chan struct{}),
		id:      uuid.New().String(),
		entryID: entryID,
	}
	client.logger = logger.With(zap.String("clientID", client.id), zap.String("entryID", entryID))

	select {
	case hub.register <- client:
	case <-hub.stopped:
		conn.Close()
		return ErrHubStopped
	}

	// Allow collection of memory referenced by the caller by doing all work in
	// new goroutines.
	go client.writePump()
	go client.readPump()

	return nil
}

// readPump pumps messages from the websocket connection to the recognizer.
func (c *Client) readPump() {
	defer func() {
		c.abortSession()
		close(c.done)
		select {
		case c.hub.unregister <- c:
		case <-c.hub.stopped:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.logger.Error("WebSocket error", zap.Error(err))
			}
			break
		}

		switch messageType {
		case websocket.TextMessage:
			c.processMessage(message)
		case websocket.BinaryMessage:
			c.processBinaryAudioChunk(message)
		default:
			c.logger.Warn("Received unknown message type", zap.Int("type", messageType))
		}
	}
}

// writePump pumps queued messages to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(message.Type, message.Payload); err != nil {
				c.logger.Error("Failed to write message", zap.Error(err))
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}

// enqueue queues a JSON message for the write pump
func (c *Client) enqueue(v interface{}) {
	payload, err := json.Marshal(v)
	if err != nil {
		c.logger.Error("Failed to marshal message", zap.Error(err))
		return
	}

	select {
	case <-c.done:
	case c.send <- WriteData{Type: websocket.TextMessage, Payload: payload}:
	default:
		c.logger.Warn("Send buffer full, dropping message")
	}
}

// processMessage processes incoming control messages
func (c *Client) processMessage(message []byte) {
	msg, err := c.hub.validator.ValidateMessage(message)
	if err != nil {
		c.logger.Warn("Invalid message", zap.Error(err))
		c.enqueue(CreateErrorMessage(c.currentSessionID(), ErrorCodeInvalidMessage, "invalid message", err.Error()))
		return
	}

	switch m := msg.(type) {
	case *ListeningStartMessage:
		c.handleListeningStart(m)
	case *ListeningEndMessage:
		c.handleListeningEnd()
	case *PingMessage:
		c.enqueue(CreatePongMessage(m.Data))
	}
}

// processBinaryAudioChunk forwards binary audio data to the active session
func (c *Client) processBinaryAudioChunk(data []byte) {
	c.mutex.Lock()
	session := c.session
	if session != nil && !session.ended {
		session.chunks++
	}
	c.mutex.Unlock()

	if session == nil || session.ended {
		c.logger.Warn("Received binary audio chunk but no active session found")
		c.enqueue(CreateErrorMessage("", ErrorCodeNoSession, "no active listening session", ""))
		return
	}

	select {
	case session.audio <- data:
	case <-session.ctx.Done():
		c.logger.Warn("Dropping audio chunk for finished session", zap.String("sessionID", session.id))
	}
}

// handleListeningStart starts a recognition session
func (c *Client) handleListeningStart(msg *ListeningStartMessage) {
	c.mutex.Lock()
	if c.session != nil {
		sessionID := c.session.id
		c.mutex.Unlock()
		c.enqueue(CreateErrorMessage(sessionID, ErrorCodeSessionActive, "a listening session is already active", ""))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.hub.sessionTimeout)
	session := &listeningSession{
		id:      uuid.New().String(),
		audio:   make(chan []byte, audioBuffer),
		ctx:     ctx,
		cancel:  cancel,
		started: time.Now(),
	}
	c.session = session
	c.mutex.Unlock()

	metadata := msg.Metadata()
	c.logger.Info("Audio session started",
		zap.String("sessionID", session.id),
		zap.String("language", metadata.Language),
		zap.String("codec", string(metadata.Codec)),
		zap.Int("sampleRate", metadata.SampleRate))

	base := newBase(MessageTypeListeningStart, session.id)
	c.enqueue(&base)

	go c.transcribe(session, metadata)
}

// handleListeningEnd closes the audio of the active session. The transcript
// follows once recognition finishes.
func (c *Client) handleListeningEnd() {
	c.mutex.Lock()
	session := c.session
	if session == nil || session.ended {
		c.mutex.Unlock()
		c.enqueue(CreateErrorMessage("", ErrorCodeNoSession, "no active listening session", ""))
		return
	}
	session.ended = true
	close(session.audio)
	chunks := session.chunks
	c.mutex.Unlock()

	c.logger.Info("Audio session ended",
		zap.String("sessionID", session.id),
		zap.Int("totalChunks", chunks))
}

func (c *Client) transcribe(session *listeningSession, metadata entities.SpeechMetadata) {
	defer session.cancel()

	result, err := c.hub.transcriber.Transcribe(session.ctx, c.entryID, metadata, session.audio)

	c.mutex.Lock()
	chunks := session.chunks
	if c.session == session {
		c.session = nil
	}
	c.mutex.Unlock()

	if err != nil {
		c.logger.Error("Transcription failed",
			zap.String("sessionID", session.id),
			zap.Error(err))
		c.enqueue(CreateErrorMessage(session.id, ErrorCodeTranscribeFailed, "transcription failed", err.Error()))
		return
	}

	elapsed := time.Since(session.started)
	c.logger.Info("Transcription completed",
		zap.String("sessionID", session.id),
		zap.String("state", string(result.State)),
		zap.Duration("elapsed", elapsed))

	c.enqueue(CreateTranscriptMessage(session.id, result, chunks, elapsed))
}

// abortSession cancels the active session, if any
func (c *Client) abortSession() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.session != nil {
		c.session.cancel()
	}
}

func (c *Client) currentSessionID() string {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.session == nil {
		return ""
	}
	return c.session.id
}
