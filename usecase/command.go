package usecase

import (
	"demo/config"
	"strings"

	"github.com/samber/lo"
)

// CommandMatcher 判断输入是不是模式切换命令
type CommandMatcher struct {
	keywords []string
	exact    []string
}

func NewCommandMatcher(c *config.Config) *CommandMatcher {
	return &CommandMatcher{
		keywords: lo.Compact(c.Command.Keywords),
		exact: lo.Map(lo.Compact(c.Command.Exact), func(s string, _ int) string {
			return strings.ToLower(s)
		}),
	}
}

// IsToggle 包含任一关键字，或忽略大小写后与精确命令一致
func (m *CommandMatcher) IsToggle(text string) bool {
	t := strings.TrimSpace(text)
	if t == "" {
		return false
	}
	if lo.SomeBy(m.keywords, func(k string) bool { return strings.Contains(t, k) }) {
		return true
	}
	return lo.Contains(m.exact, strings.ToLower(t))
}
