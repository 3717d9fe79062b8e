package usecase

import (
	"context"
	"demo/domain"
	"demo/pkg/log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

// Sender 向浏览器发送消息
type Sender interface {
	Send(m *domain.Msg) error
}

// Peer 一个 websocket 连接，写操作加锁串行
type Peer struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func NewPeer(conn *websocket.Conn) *Peer {
	return &Peer{conn: conn}
}

func (p *Peer) Send(m *domain.Msg) error {
	data, err := m.Encode()
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	_ = p.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return p.conn.WriteMessage(websocket.TextMessage, data)
}

// RemoteSurface 浏览器里的一个 <video>，事件通过 websocket 回来
type RemoteSurface struct {
	index   int
	peer    Sender
	resolve func(ref string) string
	l       *log.Logger
}

func NewRemoteSurface(l *log.Logger, index int, peer Sender, resolve func(ref string) string) *RemoteSurface {
	return &RemoteSurface{
		index:   index,
		peer:    peer,
		resolve: resolve,
		l:       l.WithModule("RemoteSurface"),
	}
}

func (s *RemoteSurface) send(m *domain.Msg) {
	m.Surface = s.index
	if err := s.peer.Send(m); err != nil {
		s.l.Warn("send surface command failed", log.String("type", m.Type.String()), log.Int("surface", s.index), log.Error(err))
	}
}

func (s *RemoteSurface) Load(clip string, loop bool, seq uint64) {
	s.send(&domain.Msg{Type: domain.MsgTypeLoad, Clip: clip, Seq: seq, URL: s.resolve(clip), Loop: loop})
}

func (s *RemoteSurface) Play() {
	s.send(&domain.Msg{Type: domain.MsgTypePlay})
}

func (s *RemoteSurface) Pause() {
	s.send(&domain.Msg{Type: domain.MsgTypePause})
}

func (s *RemoteSurface) SetLoop(loop bool) {
	s.send(&domain.Msg{Type: domain.MsgTypeLoop, Loop: loop})
}

func (s *RemoteSurface) SetVisible(visible bool) {
	s.send(&domain.Msg{Type: domain.MsgTypeVisible, Visible: visible})
}

// RemoteSpeaker 浏览器的 speechSynthesis 和回答区域
type RemoteSpeaker struct {
	peer Sender
}

func NewRemoteSpeaker(peer Sender) *RemoteSpeaker {
	return &RemoteSpeaker{peer: peer}
}

func (s *RemoteSpeaker) Speak(_ context.Context, text string) error {
	return s.peer.Send(&domain.Msg{Type: domain.MsgTypeSpeak, Text: text})
}

func (s *RemoteSpeaker) Display(_ context.Context, text string) error {
	return s.peer.Send(&domain.Msg{Type: domain.MsgTypeAnswer, Text: text})
}
