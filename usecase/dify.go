package usecase

import (
	"bytes"
	"context"
	"demo/config"
	"demo/domain"
	"demo/pkg/log"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// DifyUsecase 调用 Dify chat-messages 接口（blocking 模式）
type DifyUsecase struct {
	l      *log.Logger
	config *config.Config
	client *http.Client
}

func NewDifyUsecase(l *log.Logger, c *config.Config) *DifyUsecase {
	return &DifyUsecase{
		l:      l.WithModule("DifyUsecase"),
		config: c,
		client: &http.Client{},
	}
}

func (d *DifyUsecase) Configured() bool {
	return d.config.Chat.Dify.ApiKey != ""
}

func (d *DifyUsecase) CredentialName() string {
	return "DIFY_API_KEY"
}

// Chat 发送一轮对话，conversation_id 为空时由 Dify 新建会话
func (d *DifyUsecase) Chat(ctx context.Context, in *domain.ChatReq) (*domain.ChatResp, error) {
	body, err := json.Marshal(&domain.DifyChatReq{
		Inputs:         map[string]any{},
		Query:          in.Query,
		ResponseMode:   "blocking",
		User:           d.config.Chat.Dify.User,
		ConversationID: in.ConversationID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	endpoint := strings.TrimRight(d.config.Chat.Dify.BaseUrl, "/") + "/chat-messages"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+d.config.Chat.Dify.ApiKey)

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		d.l.Error("dify api error", log.Int("status", resp.StatusCode), log.String("body", string(raw)))
		return nil, &domain.UpstreamError{Status: resp.StatusCode, Body: string(raw)}
	}

	var result domain.DifyChatResp
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &domain.ChatResp{Answer: result.Answer, ConversationID: result.ConversationID}, nil
}
