package usecase

import (
	"context"
	"demo/config"
	"demo/domain"
	"demo/pkg/log"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
)

var ErrBusy = errors.New("previous input is still being processed")

// Speaker 朗读和显示文本。Speak 不等朗读结束，开始/结束由 speech 事件驱动控制器
type Speaker interface {
	Speak(ctx context.Context, text string) error
	Display(ctx context.Context, text string) error
}

type Chatter interface {
	Chat(ctx context.Context, req *domain.ChatReq) (*domain.ChatResp, error)
}

type Transitioner interface {
	PlayTransition() *Op
}

// Conversation 一个会话的输入处理：切换命令或者对话
type Conversation struct {
	l         *log.Logger
	matcher   *CommandMatcher
	chat      Chatter
	character Transitioner
	speaker   Speaker
	phrases   config.PhrasesConfig

	busy           atomic.Bool
	mu             sync.Mutex
	conversationID string
}

func NewConversation(l *log.Logger, c *config.Config, matcher *CommandMatcher, chat Chatter, character Transitioner, speaker Speaker) *Conversation {
	return &Conversation{
		l:         l.WithModule("Conversation"),
		matcher:   matcher,
		chat:      chat,
		character: character,
		speaker:   speaker,
		phrases:   c.Phrases,
	}
}

// ConversationID 上游最近返回的会话 id
func (c *Conversation) ConversationID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conversationID
}

// HandleInput 处理一条识别结果或键入文本；上一条还没处理完时返回 ErrBusy
func (c *Conversation) HandleInput(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if !c.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer c.busy.Store(false)

	if c.matcher.IsToggle(text) {
		return c.toggle(ctx)
	}
	return c.ask(ctx, text)
}

func (c *Conversation) toggle(ctx context.Context) error {
	c.l.Info("toggle command")
	op := c.character.PlayTransition()
	if err := op.Wait(ctx); err != nil {
		c.l.Warn("transition did not complete", log.Error(err))
		return err
	}
	phrase := c.phrases.Normal
	if op.Mode() == domain.ModeArmor {
		phrase = c.phrases.Armor
	}
	return c.speaker.Speak(ctx, phrase)
}

func (c *Conversation) ask(ctx context.Context, text string) error {
	resp, err := c.chat.Chat(ctx, &domain.ChatReq{Query: text, ConversationID: c.ConversationID()})
	if err != nil {
		c.l.Error("chat request failed", log.Error(err))
		// 上游的网络错误也走 Error，通信错误只在浏览器连不上服务端时由前端播报
		return c.speaker.Speak(ctx, c.phrases.Error)
	}

	if resp.ConversationID != "" {
		c.mu.Lock()
		c.conversationID = resp.ConversationID
		c.mu.Unlock()
	}
	answer := resp.Answer
	if answer == "" {
		answer = c.phrases.Unknown
	}
	if err := c.speaker.Display(ctx, answer); err != nil {
		return err
	}
	return c.speaker.Speak(ctx, answer)
}
