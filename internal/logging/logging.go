// Package logging guarda o *slog.Logger do processo. Os componentes recebem um
// logger explícito quando podem e caem para Logger() quando não recebem.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

var current atomic.Pointer[slog.Logger]

func init() {
	current.Store(newJSON(os.Stdout, slog.LevelInfo))
}

func newJSON(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// Logger devolve o logger global (nunca nil).
func Logger() *slog.Logger { return current.Load() }

// SetLogger troca o logger global; nil é ignorado.
func SetLogger(l *slog.Logger) {
	if l != nil {
		current.Store(l)
	}
}

// Setup instala um logger JSON em w com o nível dado e o devolve.
func Setup(w io.Writer, level slog.Level) *slog.Logger {
	l := newJSON(w, level)
	SetLogger(l)
	return l
}

// DiscardLogging silencia os logs (usado nos testes).
func DiscardLogging() {
	SetLogger(slog.New(slog.DiscardHandler))
}

// ParseLevel traduz LOG_LEVEL. "trace" vira debug; valor desconhecido vira info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace", "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
