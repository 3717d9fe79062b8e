package domain

import (
	"errors"
	"fmt"
	"sort"

	"github.com/samber/lo"
)

// Mode 角色的服装/人格
type Mode int

const (
	ModeArmor Mode = iota
	ModeNormal
)

var modeName = map[Mode]string{
	ModeArmor:  "armor",
	ModeNormal: "normal",
}

var modeValue = map[string]Mode{
	"armor":  ModeArmor,
	"normal": ModeNormal,
}

func (m Mode) String() string {
	if name, ok := modeName[m]; ok {
		return name
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Opposite 返回切换后的模式
func (m Mode) Opposite() Mode {
	if m == ModeArmor {
		return ModeNormal
	}
	return ModeArmor
}

func ParseMode(s string) (Mode, error) {
	if v, ok := modeValue[s]; ok {
		return v, nil
	}
	return 0, fmt.Errorf("unknown mode: %q", s)
}

func (m Mode) MarshalText() ([]byte, error) {
	if name, ok := modeName[m]; ok {
		return []byte(name), nil
	}
	return nil, fmt.Errorf("unknown Mode: %d", m)
}

func (m *Mode) UnmarshalText(b []byte) error {
	v, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// State 当前动画活动
type State int

const (
	StateIdle State = iota
	StateSpeaking
	StateAction
	StateTransition
)

var stateName = map[State]string{
	StateIdle:       "idle",
	StateSpeaking:   "speaking",
	StateAction:     "action",
	StateTransition: "transition",
}

func (s State) String() string {
	if name, ok := stateName[s]; ok {
		return name
	}
	return fmt.Sprintf("State(%d)", int(s))
}

func (s State) MarshalText() ([]byte, error) {
	if name, ok := stateName[s]; ok {
		return []byte(name), nil
	}
	return nil, fmt.Errorf("unknown State: %d", s)
}

func (s *State) UnmarshalText(b []byte) error {
	for k, v := range stateName {
		if v == string(b) {
			*s = k
			return nil
		}
	}
	return fmt.Errorf("unknown state: %q", string(b))
}

// Purpose 片段用途
type Purpose int

const (
	PurposeIdle Purpose = iota
	PurposeSpeaking
	PurposeGesture1
	PurposeGesture2
	PurposeTransition
)

var purposeName = map[Purpose]string{
	PurposeIdle:       "idle",
	PurposeSpeaking:   "speaking",
	PurposeGesture1:   "gesture1",
	PurposeGesture2:   "gesture2",
	PurposeTransition: "transition",
}

var purposeValue = map[string]Purpose{
	"idle":       PurposeIdle,
	"speaking":   PurposeSpeaking,
	"gesture1":   PurposeGesture1,
	"gesture2":   PurposeGesture2,
	"transition": PurposeTransition,
}

// Purposes 所有用途，按声明顺序
var Purposes = []Purpose{PurposeIdle, PurposeSpeaking, PurposeGesture1, PurposeGesture2, PurposeTransition}

// Modes 所有模式
var Modes = []Mode{ModeArmor, ModeNormal}

func (p Purpose) String() string {
	if name, ok := purposeName[p]; ok {
		return name
	}
	return fmt.Sprintf("Purpose(%d)", int(p))
}

func ParsePurpose(s string) (Purpose, error) {
	if v, ok := purposeValue[s]; ok {
		return v, nil
	}
	return 0, fmt.Errorf("unknown purpose: %q", s)
}

func (p Purpose) MarshalText() ([]byte, error) {
	if name, ok := purposeName[p]; ok {
		return []byte(name), nil
	}
	return nil, fmt.Errorf("unknown Purpose: %d", p)
}

func (p *Purpose) UnmarshalText(b []byte) error {
	v, err := ParsePurpose(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// ClipTable (mode, purpose) → 片段引用，启动后不再修改
type ClipTable map[Mode]map[Purpose]string

// DefaultClipTable 原始素材集
func DefaultClipTable() ClipTable {
	return ClipTable{
		ModeArmor: {
			PurposeIdle:       "armor/装甲通常.mp4",
			PurposeSpeaking:   "armor/装甲通常.mp4",
			PurposeGesture1:   "armor/装甲腕組み.mp4",
			PurposeGesture2:   "armor/装甲キョロ.mp4",
			PurposeTransition: "armor/キャストオフ.mp4",
		},
		ModeNormal: {
			PurposeIdle:       "normal/通常.mp4",
			PurposeSpeaking:   "normal/喋り.mp4",
			PurposeGesture1:   "normal/腕組み.mp4",
			PurposeGesture2:   "normal/キョロ.mp4",
			PurposeTransition: "normal/チェンジ.mp4",
		},
	}
}

// ClipTableFrom 用配置覆盖默认表，raw 的键为 mode/purpose 名称
func ClipTableFrom(raw map[string]map[string]string) (ClipTable, error) {
	t := DefaultClipTable()
	for modeKey, purposes := range raw {
		m, err := ParseMode(modeKey)
		if err != nil {
			return nil, err
		}
		for purposeKey, ref := range purposes {
			p, err := ParsePurpose(purposeKey)
			if err != nil {
				return nil, err
			}
			t[m][p] = ref
		}
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t ClipTable) Clip(m Mode, p Purpose) string {
	return t[m][p]
}

// Validate 每个 (mode, purpose) 都必须有片段
func (t ClipTable) Validate() error {
	var errs []error
	for _, m := range Modes {
		for _, p := range Purposes {
			if t.Clip(m, p) == "" {
				errs = append(errs, fmt.Errorf("clip %s.%s is missing", m, p))
			}
		}
	}
	return errors.Join(errs...)
}

// Refs 去重后的全部片段引用
func (t ClipTable) Refs() []string {
	var refs []string
	for _, m := range Modes {
		for _, p := range Purposes {
			refs = append(refs, t.Clip(m, p))
		}
	}
	refs = lo.Uniq(lo.Compact(refs))
	sort.Strings(refs)
	return refs
}

// Raw 以名称为键的表，便于序列化
func (t ClipTable) Raw() map[string]map[string]string {
	raw := make(map[string]map[string]string, len(t))
	for m, purposes := range t {
		row := make(map[string]string, len(purposes))
		for p, ref := range purposes {
			row[p.String()] = ref
		}
		raw[m.String()] = row
	}
	return raw
}

// ClipCatalog /v1/clips 的返回
type ClipCatalog struct {
	Table   map[string]map[string]string `json:"table"`
	URLs    map[string]string            `json:"urls"`
	Missing []string                     `json:"missing"`
}
