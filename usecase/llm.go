package usecase

import (
	"context"
	"demo/config"
	"demo/domain"
	"demo/pkg/log"
	"fmt"
	"sync"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"
)

// LlmUsecase 直接调用 OpenAI 兼容接口，会话历史只保存在内存里
type LlmUsecase struct {
	l      *log.Logger
	config *config.Config

	mu      sync.Mutex
	history map[string][]*schema.Message
}

func NewLlmUsecase(l *log.Logger, c *config.Config) *LlmUsecase {
	return &LlmUsecase{
		l:       l.WithModule("LlmUsecase"),
		config:  c,
		history: make(map[string][]*schema.Message),
	}
}

func (u *LlmUsecase) Configured() bool {
	return u.config.Chat.OpenAI.ApiKey != ""
}

func (u *LlmUsecase) CredentialName() string {
	return "OPENAI_API_KEY"
}

func (u *LlmUsecase) Chat(ctx context.Context, in *domain.ChatReq) (*domain.ChatResp, error) {
	oc := u.config.Chat.OpenAI
	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:  oc.ApiKey,
		BaseURL: oc.BaseUrl,
		Model:   oc.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("new chat model: %w", err)
	}

	id := in.ConversationID
	if id == "" {
		id = uuid.NewString()
	}
	question := schema.UserMessage(in.Query)
	messages := u.prompt(id, question)

	msg, err := chatModel.Generate(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}

	u.remember(id, question, schema.AssistantMessage(msg.Content, nil))
	return &domain.ChatResp{Answer: msg.Content, ConversationID: id}, nil
}

func (u *LlmUsecase) prompt(id string, question *schema.Message) []*schema.Message {
	u.mu.Lock()
	defer u.mu.Unlock()
	var messages []*schema.Message
	if p := u.config.Chat.OpenAI.SystemPrompt; p != "" {
		messages = append(messages, schema.SystemMessage(p))
	}
	messages = append(messages, u.history[id]...)
	return append(messages, question)
}

func (u *LlmUsecase) remember(id string, msgs ...*schema.Message) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.history[id] = trimHistory(append(u.history[id], msgs...), u.config.Chat.OpenAI.MaxHistory)
}

// trimHistory 只保留最近 limit 条，limit<=0 不限制
func trimHistory(h []*schema.Message, limit int) []*schema.Message {
	if limit <= 0 || len(h) <= limit {
		return h
	}
	return append([]*schema.Message(nil), h[len(h)-limit:]...)
}
