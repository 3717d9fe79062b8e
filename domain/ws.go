package domain

import (
	"encoding/json"
	"fmt"
)

// MsgType 枚举
type MsgType int

const (
	// 零值保留，缺少 type 的消息解出来是它
	MsgTypeUnknown MsgType = iota

	// 服务端 → 浏览器
	MsgTypeClips   // 片段引用 → URL
	MsgTypeLoad    // 在某个 surface 上加载片段
	MsgTypePlay    // 开始播放
	MsgTypePause   // 暂停
	MsgTypeLoop    // 更新循环标记
	MsgTypeVisible // 显示/隐藏
	MsgTypeSpeak   // 朗读文本
	MsgTypeAnswer  // 显示回答
	MsgTypeState   // 模式/状态变化
	MsgTypeError   // 提示错误

	// 浏览器 → 服务端
	MsgTypeReady       // canplay
	MsgTypePlaying     // play() resolved
	MsgTypeEnded       // ended
	MsgTypeMediaError  // 加载或播放失败
	MsgTypeSpeechStart // utterance onstart
	MsgTypeSpeechEnd   // utterance onend
	MsgTypeTranscript  // 语音识别结果或键入的文本
	MsgTypeUnlock      // 首次点击解锁
)

// 为了可读性，序列化时转成字符串
var msgTypeName = map[MsgType]string{
	MsgTypeClips:       "clips",
	MsgTypeLoad:        "load",
	MsgTypePlay:        "play",
	MsgTypePause:       "pause",
	MsgTypeLoop:        "loop",
	MsgTypeVisible:     "visible",
	MsgTypeSpeak:       "speak",
	MsgTypeAnswer:      "answer",
	MsgTypeState:       "state",
	MsgTypeError:       "error",
	MsgTypeReady:       "ready",
	MsgTypePlaying:     "playing",
	MsgTypeEnded:       "ended",
	MsgTypeMediaError:  "media_error",
	MsgTypeSpeechStart: "speech_start",
	MsgTypeSpeechEnd:   "speech_end",
	MsgTypeTranscript:  "transcript",
	MsgTypeUnlock:      "unlock",
}

var msgTypeValue = func() map[string]MsgType {
	m := make(map[string]MsgType, len(msgTypeName))
	for k, v := range msgTypeName {
		m[v] = k
	}
	return m
}()

func (t MsgType) String() string {
	if name, ok := msgTypeName[t]; ok {
		return name
	}
	return "unknown"
}

// MarshalJSON 把枚举变成字符串
func (t MsgType) MarshalJSON() ([]byte, error) {
	if name, ok := msgTypeName[t]; ok {
		return json.Marshal(name)
	}
	return nil, fmt.Errorf("unknown MsgType: %d", t)
}

// UnmarshalJSON 把字符串还原成枚举
func (t *MsgType) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if v, ok := msgTypeValue[s]; ok {
		*t = v
		return nil
	}
	return fmt.Errorf("unknown MsgType string: %s", s)
}

// Msg 浏览器与服务端之间的消息，按 Type 使用不同字段
type Msg struct {
	Type    MsgType           `json:"type"`
	Surface int               `json:"surface"`
	Clip    string            `json:"clip,omitempty"`
	Seq     uint64            `json:"seq,omitempty"` // load 时下发，surface 事件原样带回
	URL     string            `json:"url,omitempty"`
	Loop    bool              `json:"loop,omitempty"`
	Visible bool              `json:"visible,omitempty"`
	Text    string            `json:"text,omitempty"`
	Error   string            `json:"error,omitempty"`
	Mode    *Mode             `json:"mode,omitempty"`
	State   *State            `json:"state,omitempty"`
	Clips   map[string]string `json:"clips,omitempty"`
}

// 序列化
func (m *Msg) Encode() ([]byte, error) {
	return json.Marshal(m)
}

// 反序列化
func Decode(b []byte) (*Msg, error) {
	var m Msg
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
