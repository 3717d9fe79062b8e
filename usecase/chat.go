package usecase

import (
	"context"
	"demo/config"
	"demo/domain"
	"demo/pkg/log"
	"demo/pkg/metrics"
	"fmt"
	"time"
)

// ChatProvider 上游对话服务
type ChatProvider interface {
	Chat(ctx context.Context, req *domain.ChatReq) (*domain.ChatResp, error)
	Configured() bool
	// CredentialName 缺少密钥时提示的环境变量名
	CredentialName() string
}

// ChatUsecase /api/chat 和语音对话共用的入口
type ChatUsecase struct {
	l        *log.Logger
	config   *config.Config
	provider ChatProvider
}

func NewChatUsecase(l *log.Logger, c *config.Config) (*ChatUsecase, error) {
	var p ChatProvider
	switch c.Chat.Provider {
	case "", "dify":
		p = NewDifyUsecase(l, c)
	case "openai":
		p = NewLlmUsecase(l, c)
	default:
		return nil, fmt.Errorf("unknown chat provider: %q", c.Chat.Provider)
	}
	return NewChatUsecaseWith(l, c, p), nil
}

func NewChatUsecaseWith(l *log.Logger, c *config.Config, p ChatProvider) *ChatUsecase {
	return &ChatUsecase{
		l:        l.WithModule("ChatUsecase"),
		config:   c,
		provider: p,
	}
}

func (u *ChatUsecase) Configured() bool {
	return u.provider.Configured()
}

func (u *ChatUsecase) CredentialName() string {
	return u.provider.CredentialName()
}

// Chat 转发一轮对话。错误:
//   - domain.ErrMissingCredential: 未配置密钥
//   - domain.ErrEmptyQuery: query 为空
//   - *domain.UpstreamError: 上游返回非 2xx
//   - 其他: 网络或解析失败
func (u *ChatUsecase) Chat(ctx context.Context, req *domain.ChatReq) (*domain.ChatResp, error) {
	if !u.provider.Configured() {
		return nil, domain.ErrMissingCredential
	}
	if req.Query == "" {
		return nil, domain.ErrEmptyQuery
	}
	if u.config.Chat.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, u.config.Chat.Timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := u.provider.Chat(ctx, req)
	if err != nil {
		metrics.ChatLatency.WithLabelValues(u.config.Chat.Provider, "error").Observe(time.Since(start).Seconds())
		u.l.Error("chat failed", log.Error(err))
		return nil, err
	}
	metrics.ChatLatency.WithLabelValues(u.config.Chat.Provider, "ok").Observe(time.Since(start).Seconds())
	u.l.Info("chat answered", log.String("conversation_id", resp.ConversationID), log.Int("answer_len", len(resp.Answer)))
	return resp, nil
}
