package domain

import (
	"errors"
	"fmt"
)

// ChatReq /api/chat 请求体
type ChatReq struct {
	Query          string `json:"query"`
	ConversationID string `json:"conversation_id,omitempty"`
}

// ChatResp /api/chat 成功响应
type ChatResp struct {
	Answer         string `json:"answer"`
	ConversationID string `json:"conversation_id"`
}

// ChatErrorResp /api/chat 失败响应
type ChatErrorResp struct {
	Error  string `json:"error"`
	Status int    `json:"status,omitempty"`
}

// DifyChatReq Dify chat-messages 请求
type DifyChatReq struct {
	Inputs         map[string]any `json:"inputs"`
	Query          string         `json:"query"`
	ResponseMode   string         `json:"response_mode"`
	User           string         `json:"user"`
	ConversationID string         `json:"conversation_id,omitempty"`
}

// DifyChatResp Dify blocking 模式响应（只取用到的字段）
type DifyChatResp struct {
	Answer         string `json:"answer"`
	ConversationID string `json:"conversation_id"`
	MessageID      string `json:"message_id"`
}

// ErrMissingCredential 服务端未配置上游密钥
var ErrMissingCredential = errors.New("upstream credential not configured")

// UpstreamError 上游返回非 2xx
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream returned status %d", e.Status)
}

// ErrEmptyQuery 请求缺少 query
var ErrEmptyQuery = errors.New("query is required")
