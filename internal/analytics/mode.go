// Package analytics записывает переходы по коротким ссылкам с учётом режима приватности.
package analytics

import (
	"fmt"
	"strings"
)

// Mode режим сбора аналитики
type Mode string

// Поддерживаемые режимы
const (
	ModeNone      Mode = "none"
	ModeCountOnly Mode = "count_only"
	ModeFull      Mode = "full"
)

// ParseMode разбирает режим из конфигурации
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeNone, ModeCountOnly, ModeFull:
		return m, nil
	default:
		return "", fmt.Errorf("unknown analytics mode %q", s)
	}
}

func (m Mode) String() string { return string(m) }
