package usecase

import (
	"context"
	"demo/config"
	"demo/domain"
	"demo/pkg/log"
	"demo/pkg/metrics"
	"demo/pkg/stage"
	"errors"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"
)

// WsUseCase 一个浏览器连接对应一个角色控制器和一个会话
type WsUseCase struct {
	logger  *log.Logger
	config  *config.Config
	chat    *ChatUsecase
	assets  *AssetUsecase
	matcher *CommandMatcher
}

func NewWsUseCase(l *log.Logger, c *config.Config, chat *ChatUsecase, assets *AssetUsecase, matcher *CommandMatcher) *WsUseCase {
	return &WsUseCase{
		logger:  l.WithModule("WsUseCase"),
		config:  c,
		chat:    chat,
		assets:  assets,
		matcher: matcher,
	}
}

// HandleWs 连接关闭或 ctx 结束时返回
func (w *WsUseCase) HandleWs(ctx context.Context, conn *websocket.Conn) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	urls, err := w.assets.URLs(ctx)
	if err != nil {
		return err
	}
	peer := NewPeer(conn)
	session := w.newSession(peer, func(ref string) string { return urls[ref] })

	// Text 是断线时前端自己播报的通信错误提示
	if err := peer.Send(&domain.Msg{Type: domain.MsgTypeClips, Clips: urls, Text: w.config.Phrases.Network}); err != nil {
		return err
	}
	w.logger.Info("new ws connection", log.String("remote", conn.RemoteAddr().String()))
	metrics.ActiveSessions.Inc()
	defer metrics.ActiveSessions.Dec()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := session.character.Run(gctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-gctx.Done()
		_ = conn.Close()
		return nil
	})
	g.Go(func() error {
		defer cancel()
		return session.readLoop(gctx, conn, g)
	})

	session.character.PlayIdle()

	err = g.Wait()
	w.logger.Info("ws connection closed", log.Any("cause", err))
	return err
}

type wsSession struct {
	l            *log.Logger
	peer         Sender
	character    *Character
	conversation *Conversation
}

func (w *WsUseCase) newSession(peer Sender, resolve func(string) string) *wsSession {
	first := NewRemoteSurface(w.logger, 0, peer, resolve)
	second := NewRemoteSurface(w.logger, 1, peer, resolve)
	character := NewCharacter(w.logger, w.config, w.assets.Clips(), first, second, nil)
	character.OnChange(func(s CharacterSnapshot) {
		mode, state := s.Mode, s.State
		_ = peer.Send(&domain.Msg{Type: domain.MsgTypeState, Mode: &mode, State: &state, Clip: s.Clip})
	})
	return &wsSession{
		l:            w.logger,
		peer:         peer,
		character:    character,
		conversation: NewConversation(w.logger, w.config, w.matcher, w.chat, character, NewRemoteSpeaker(peer)),
	}
}

func (s *wsSession) readLoop(ctx context.Context, conn *websocket.Conn, g *errgroup.Group) error {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return err
		}
		msg, err := domain.Decode(data)
		if err != nil {
			s.l.Warn("bad ws message", log.Error(err))
			continue
		}
		s.dispatch(ctx, msg, g)
	}
}

func (s *wsSession) dispatch(ctx context.Context, msg *domain.Msg, g *errgroup.Group) {
	switch msg.Type {
	case domain.MsgTypeReady, domain.MsgTypePlaying, domain.MsgTypeEnded, domain.MsgTypeMediaError:
		if ev, ok := surfaceEvent(msg); ok {
			s.character.Deliver(ev)
		}
	case domain.MsgTypeSpeechStart:
		s.character.StartSpeaking()
	case domain.MsgTypeSpeechEnd:
		s.character.StopSpeaking()
	case domain.MsgTypeUnlock:
		s.character.PlayIdle()
	case domain.MsgTypeTranscript:
		// 对话和过渡都可能很久，不能挡住 surface 事件
		text := msg.Text
		g.Go(func() error {
			err := s.conversation.HandleInput(ctx, text)
			switch {
			case errors.Is(err, ErrBusy):
				_ = s.peer.Send(&domain.Msg{Type: domain.MsgTypeError, Text: err.Error()})
			case err != nil && ctx.Err() == nil:
				s.l.Warn("handle input failed", log.Error(err))
			}
			return nil
		})
	default:
		s.l.Warn("unexpected ws message", log.String("type", msg.Type.String()))
	}
}

func surfaceEvent(msg *domain.Msg) (stage.Event, bool) {
	if msg.Surface != 0 && msg.Surface != 1 {
		return stage.Event{}, false
	}
	ev := stage.Event{Surface: msg.Surface, Clip: msg.Clip, Seq: msg.Seq}
	switch msg.Type {
	case domain.MsgTypeReady:
		ev.Kind = stage.EventReady
	case domain.MsgTypePlaying:
		ev.Kind = stage.EventPlaying
	case domain.MsgTypeEnded:
		ev.Kind = stage.EventEnded
	case domain.MsgTypeMediaError:
		ev.Kind = stage.EventError
		ev.Err = errors.New(msg.Error)
	default:
		return stage.Event{}, false
	}
	return ev, true
}
