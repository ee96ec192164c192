package logger

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Formatos de salida admitidos en LOG_FORMAT.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Config opciones para el logger.
type Config struct {
	Env    string    // sin Format explícito, development usa consola y el resto JSON
	Level  string    // trace, debug, info, warn, error
	Format string    // console | json; vacío = según Env
	App    string    // si no está vacío, se añade como campo "app" a cada línea
	Output io.Writer // nil = stdout
}

// ResolveFormat decide el formato efectivo a partir de Format y Env.
func (c Config) ResolveFormat() string {
	switch strings.ToLower(strings.TrimSpace(c.Format)) {
	case FormatJSON:
		return FormatJSON
	case FormatConsole:
		return FormatConsole
	}
	if c.Env == "development" {
		return FormatConsole
	}
	return FormatJSON
}

// Logger envuelve un zerolog.Logger para inyectarlo en capas y comandos.
type Logger struct {
	zl zerolog.Logger
}

// New construye el logger del proceso y lo instala como logger global de zerolog.
func New(cfg Config) *Logger {
	l := build(cfg)
	log.Logger = l.zl
	return l
}

// NewWriter logger JSON sobre w sin tocar el global (tests, CLIs).
func NewWriter(w io.Writer, level string) *Logger {
	return build(Config{Level: level, Format: FormatJSON, Output: w})
}

// Nop descarta todo.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

func build(cfg Config) *Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	if cfg.ResolveFormat() == FormatConsole {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	}
	zctx := zerolog.New(out).Level(parseLevel(cfg.Level)).With().Timestamp()
	if cfg.App != "" {
		zctx = zctx.Str("app", cfg.App)
	}
	return &Logger{zl: zctx.Logger()}
}

// parseLevel nivel desconocido o vacío = info.
func parseLevel(s string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

func (l *Logger) Trace() *zerolog.Event { return l.zl.Trace() }
func (l *Logger) Debug() *zerolog.Event { return l.zl.Debug() }
func (l *Logger) Info() *zerolog.Event  { return l.zl.Info() }
func (l *Logger) Warn() *zerolog.Event  { return l.zl.Warn() }
func (l *Logger) Error() *zerolog.Event { return l.zl.Error() }
func (l *Logger) Fatal() *zerolog.Event { return l.zl.Fatal() }

// Named sublogger con el campo "component".
func (l *Logger) Named(component string) *Logger {
	return &Logger{zl: l.zl.With().Str("component", component).Logger()}
}
