package logging

import (
	"fmt"
	"log/slog"
)

// Narrator hands out one Section per install target. Sections of different
// targets may be written to concurrently.
type Narrator interface {
	Group(title string) Section
}

// Section collects the progress lines of a single target
type Section interface {
	Infof(format string, args ...any)
	End()
}

// LogNarrator narrates through the global logger, tagging every line with its group
type LogNarrator struct{}

// NewLogNarrator creates a narrator backed by the global logger
func NewLogNarrator() *LogNarrator {
	return &LogNarrator{}
}

// Group opens a section and logs its title
func (n *LogNarrator) Group(title string) Section {
	l := With("group", title)
	l.Info("📦 " + title)
	return &logSection{logger: l}
}

type logSection struct {
	logger *slog.Logger
}

func (s *logSection) Infof(format string, args ...any) {
	s.logger.Info(fmt.Sprintf(format, args...))
}

func (s *logSection) End() {}

// DiscardNarrator drops every line
type DiscardNarrator struct{}

// Group returns a section that ignores its input
func (DiscardNarrator) Group(string) Section { return discardSection{} }

type discardSection struct{}

func (discardSection) Infof(string, ...any) {}
func (discardSection) End()                 {}
