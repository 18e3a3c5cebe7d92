package common

import (
	"errors"
	"strings"
)

var ErrModulePaused = errors.New("module paused")

type PauseView interface {
	IsPaused(module string) bool
}

// PausedModules is a static PauseView built from configuration.
type PausedModules map[string]struct{}

// NewPausedModules normalises the configured module names.
func NewPausedModules(names []string) PausedModules {
	out := make(PausedModules, len(names))
	for _, name := range names {
		trimmed := strings.ToLower(strings.TrimSpace(name))
		if trimmed == "" {
			continue
		}
		out[trimmed] = struct{}{}
	}
	return out
}

// IsPaused implements PauseView.
func (p PausedModules) IsPaused(module string) bool {
	_, ok := p[strings.ToLower(module)]
	return ok
}

func Guard(p PauseView, module string) error {
	if p == nil || module == "" {
		return nil
	}
	if p.IsPaused(module) {
		return ErrModulePaused
	}
	return nil
}
