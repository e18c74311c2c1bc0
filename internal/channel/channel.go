// Package channel exposes the conversation over a WebSocket endpoint.
// Each connection gets its own session memory; the agent and its
// collaborators are shared.
package channel

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"eva/internal/agent"
	"eva/internal/logger"
	"eva/internal/voice"
)

const (
	pingInterval = 30 * time.Second
	turnTimeout  = 2 * time.Minute
)

// inboundMessage is one client frame.
type inboundMessage struct {
	Text      string `json:"text"`
	FileData  string `json:"fileData,omitempty"`
	FileName  string `json:"fileName,omitempty"`
	FileType  string `json:"fileType,omitempty"`
	ImageData string `json:"imageData,omitempty"`
}

// outboundMessage is one server frame. Type is one of final_text,
// panel_data, audio_data, no_audio_data, or system_ping.
type outboundMessage struct {
	Type    string `json:"type"`
	Content string `json:"content,omitempty"`
	Target  string `json:"target,omitempty"`
	Audio   string `json:"audio,omitempty"`
}

// Server upgrades chat connections and runs their turn loops.
type Server struct {
	agent    *agent.Agent
	synth    voice.Synthesizer
	memPairs int
	upgrader websocket.Upgrader
}

// NewServer builds the chat endpoint. synth may be nil to disable
// voice output entirely.
func NewServer(a *agent.Agent, synth voice.Synthesizer, memPairs int) *Server {
	return &Server{
		agent:    a,
		synth:    synth,
		memPairs: memPairs,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1 << 20,
			WriteBufferSize: 1 << 20,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("channel: upgrade failed: %v", err)
		return
	}

	sess := &session{
		server:     s,
		conn:       conn,
		memory:     agent.NewMemory(s.memPairs),
		done:       make(chan struct{}),
		lastActive: time.Now(),
	}
	logger.Info("channel: client connected from %s", r.RemoteAddr)
	go sess.pingLoop()
	sess.readLoop(r.Context())
}

// session is the per-connection state.
type session struct {
	server *Server
	conn   *websocket.Conn
	memory *agent.Memory

	writeMu sync.Mutex
	done    chan struct{}

	activityMu sync.Mutex
	lastActive time.Time
}

func (s *session) touch() {
	s.activityMu.Lock()
	s.lastActive = time.Now()
	s.activityMu.Unlock()
}

func (s *session) idleFor() time.Duration {
	s.activityMu.Lock()
	defer s.activityMu.Unlock()
	return time.Since(s.lastActive)
}

func (s *session) readLoop(ctx context.Context) {
	defer func() {
		close(s.done)
		s.conn.Close()
		logger.Info("channel: client disconnected")
	}()

	for {
		_, raw, err := s.conn.ReadMessage()
		s.touch()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("channel: read: %v", err)
			}
			return
		}

		var in inboundMessage
		if err := json.Unmarshal(raw, &in); err != nil {
			logger.Warn("channel: bad frame: %v", err)
			s.send(outboundMessage{Type: "final_text", Content: "Désolé, je n'ai pas compris ce message."})
			continue
		}
		s.handleTurn(ctx, in)
	}
}

func (s *session) handleTurn(ctx context.Context, in inboundMessage) {
	turnCtx, cancel := context.WithTimeout(ctx, turnTimeout)
	defer cancel()

	input := agent.Input{
		Text:     in.Text,
		FileName: in.FileName,
		FileType: in.FileType,
	}
	if data, err := agent.DecodeAttachment(in.FileData); err == nil {
		input.FileData = data
	} else {
		logger.Warn("channel: decode file attachment: %v", err)
	}
	if data, err := agent.DecodeAttachment(in.ImageData); err == nil {
		input.ImageData = data
		input.ImageType = agent.AttachmentMIME(in.ImageData)
	} else {
		logger.Warn("channel: decode image attachment: %v", err)
	}

	resp, err := s.server.agent.HandleTurn(turnCtx, s.memory, input)
	if err != nil {
		logger.Error("channel: turn failed: %v", err)
		s.send(outboundMessage{Type: "final_text", Content: "Désolé, une erreur s'est produite. Pouvez-vous réessayer ?"})
		s.send(outboundMessage{Type: "no_audio_data"})
		return
	}

	s.send(outboundMessage{Type: "final_text", Content: resp.Chat})
	if resp.Panel != nil {
		s.send(outboundMessage{Type: "panel_data", Target: resp.Panel.Target, Content: resp.Panel.Content})
	}
	s.sendAudio(turnCtx, resp)
}

func (s *session) sendAudio(ctx context.Context, resp agent.Response) {
	if !resp.Speak || s.server.synth == nil {
		s.send(outboundMessage{Type: "no_audio_data"})
		return
	}
	audio, err := s.server.synth.Synthesize(ctx, resp.Spoken)
	if err != nil {
		logger.Warn("channel: synthesize: %v", err)
		s.send(outboundMessage{Type: "no_audio_data"})
		return
	}
	s.send(outboundMessage{Type: "audio_data", Audio: base64.StdEncoding.EncodeToString(audio)})
}

// pingLoop keeps idle connections alive. A ping goes out only after
// the inactivity threshold and never touches the memory or the
// dispatcher.
func (s *session) pingLoop() {
	ticker := time.NewTicker(pingInterval / 2)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			if s.idleFor() >= pingInterval {
				s.send(outboundMessage{Type: "system_ping"})
			}
		}
	}
}

func (s *session) send(msg outboundMessage) {
	s.touch()
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.conn.WriteJSON(msg); err != nil {
		logger.Warn("channel: write: %v", err)
	}
}
