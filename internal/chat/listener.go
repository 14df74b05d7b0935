// Package chat watches a live-chat websocket feed for model-switch keywords.
package chat

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Keyword maps a chat keyword to a model name.
type Keyword struct {
	Keyword string
	Model   string
}

// Message is one chat line as sent by the feed.
type Message struct {
	Author  string `json:"author"`
	Message string `json:"message"`
}

// SwitchFunc receives the first keyword match of a chat message.
type SwitchFunc func(author, keyword, model string)

// Listener keeps a websocket connection to the chat feed alive.
type Listener struct {
	url            string
	reconnectDelay time.Duration
	keywords       []Keyword
	onSwitch       SwitchFunc
	dialer         *websocket.Dialer
	log            zerolog.Logger

	mu   sync.Mutex
	conn *websocket.Conn
}

// NewListener creates a Listener for url.
func NewListener(url string, reconnectDelay time.Duration, keywords []Keyword, onSwitch SwitchFunc, log zerolog.Logger) *Listener {
	clean := make([]Keyword, 0, len(keywords))
	for _, k := range keywords {
		k.Keyword = strings.ToLower(strings.TrimSpace(k.Keyword))
		if k.Keyword != "" && k.Model != "" {
			clean = append(clean, k)
		}
	}
	if reconnectDelay <= 0 {
		reconnectDelay = 5 * time.Second
	}
	return &Listener{
		url:            url,
		reconnectDelay: reconnectDelay,
		keywords:       clean,
		onSwitch:       onSwitch,
		dialer:         websocket.DefaultDialer,
		log:            log,
	}
}

// Run connects and reads until ctx is cancelled, reconnecting on failure.
func (l *Listener) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, l.closeConn)
	defer stop()

	for {
		if ctx.Err() != nil {
			return nil
		}

		l.log.Info().Str("url", l.url).Msg("connecting to chat feed")
		c, _, err := l.dialer.DialContext(ctx, l.url, nil)
		if err != nil {
			l.log.Warn().Err(err).Dur("retry_in", l.reconnectDelay).Msg("chat connection failed")
		} else {
			l.log.Info().Msg("connected to chat feed")
			l.setConn(c)
			if ctx.Err() != nil {
				l.closeConn()
				return nil
			}
			l.readLoop(c)
			l.closeConn()
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(l.reconnectDelay):
		}
	}
}

func (l *Listener) readLoop(c *websocket.Conn) {
	for {
		_, message, err := c.ReadMessage()
		if err != nil {
			l.log.Debug().Err(err).Msg("chat read ended")
			return
		}
		l.handleMessage(message)
	}
}

func (l *Listener) handleMessage(raw []byte) {
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		l.log.Warn().Err(err).Msg("unparseable chat message")
		return
	}

	text := strings.ToLower(msg.Message)
	for _, k := range l.keywords {
		if strings.Contains(text, k.Keyword) {
			l.log.Info().Str("author", msg.Author).Str("keyword", k.Keyword).Str("model", k.Model).Msg("chat keyword detected")
			l.onSwitch(msg.Author, k.Keyword, k.Model)
			return
		}
	}
}

func (l *Listener) setConn(c *websocket.Conn) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.conn = c
}

func (l *Listener) closeConn() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.conn != nil {
		l.conn.Close()
		l.conn = nil
	}
}
