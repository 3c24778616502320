package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/lmittmann/tint"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorPurple = "\033[35m"
	colorCyan   = "\033[36m"
	colorWhite  = "\033[37m"
)

type LogType string

const (
	TypeCommand LogType = "CMD"
	TypeDB      LogType = "DB"
	TypeSystem  LogType = "SYS"
	TypeWorker  LogType = "WRK"
	TypeEvent   LogType = "EVT"
	TypeError   LogType = "ERR"
)

type Config struct {
	Level     slog.Level `toml:"level" env:"LEVEL"`
	Format    string     `toml:"format" env:"FORMAT"`
	AddSource bool       `toml:"add_source" env:"ADD_SOURCE"`
	NoColor   bool       `toml:"no_color" env:"NO_COLOR"`
}

// New builds the handler named by cfg.Format: "console" (default), "tint",
// "json" or "text".
func New(cfg Config, w io.Writer) (*slog.Logger, error) {
	if w == nil {
		w = os.Stdout
	}

	opts := &slog.HandlerOptions{Level: cfg.Level, AddSource: cfg.AddSource}
	switch strings.ToLower(cfg.Format) {
	case "", "console":
		return slog.New(NewHandler(w, cfg.Level, !cfg.NoColor)), nil
	case "tint":
		return slog.New(tint.NewHandler(w, &tint.Options{
			Level:      cfg.Level,
			AddSource:  cfg.AddSource,
			TimeFormat: time.TimeOnly,
			NoColor:    cfg.NoColor,
		})), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}
}

// CustomHandler prints one line per record:
//
//	[QuestBot] [15:04:05] [INFO] [CMD] Command completed [addxp by alice] [Status: success] (took 12ms) guild_id=1
type CustomHandler struct {
	mu     *sync.Mutex
	w      io.Writer
	level  slog.Leveler
	color  bool
	attrs  []slog.Attr
	groups []string
}

func NewHandler(w io.Writer, level slog.Leveler, color bool) *CustomHandler {
	return &CustomHandler{
		mu:    &sync.Mutex{},
		w:     w,
		level: level,
		color: color,
	}
}

func (h *CustomHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *CustomHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &clone
}

func (h *CustomHandler) WithGroup(name string) slog.Handler {
	clone := *h
	clone.groups = append(append([]string(nil), h.groups...), name)
	return &clone
}

func (h *CustomHandler) Handle(_ context.Context, r slog.Record) error {
	if shouldSkipLog(r.Message) {
		return nil
	}

	var levelColor, levelText string
	switch {
	case r.Level >= slog.LevelError:
		levelColor, levelText = colorRed, "ERROR"
	case r.Level >= slog.LevelWarn:
		levelColor, levelText = colorYellow, "WARN"
	case r.Level >= slog.LevelInfo:
		levelColor, levelText = colorGreen, "INFO"
	default:
		levelColor, levelText = colorPurple, "DEBUG"
	}

	fields := collect(h.attrs, r)

	message := r.Message
	if r.Level >= slog.LevelError && fields.err != "" {
		message = fmt.Sprintf("%s: %s", message, fields.err)
	}
	if fields.name != "" && fields.userName != "" {
		message = fmt.Sprintf("%s [%s by %s]", message, fields.name, fields.userName)
	}
	if fields.status != "" {
		message = fmt.Sprintf("%s [Status: %s]", message, fields.status)
	}
	if fields.took > 0 {
		message = fmt.Sprintf("%s (took %dms)", message, fields.took.Milliseconds())
	}

	var rest strings.Builder
	prefix := strings.Join(h.groups, ".")
	for _, a := range fields.rest {
		key := a.Key
		if prefix != "" {
			key = prefix + "." + key
		}
		fmt.Fprintf(&rest, " %s=%v", key, a.Value)
	}

	line := fmt.Sprintf("[QuestBot] [%s] [%s] [%s] %s%s",
		r.Time.Format(time.TimeOnly), levelText, fields.logType, message, rest.String())
	if h.color {
		line = fmt.Sprintf("%s[QuestBot] [%s] [%s%s%s] [%s%s%s] %s%s%s",
			colorWhite, r.Time.Format(time.TimeOnly),
			levelColor, levelText, colorWhite,
			colorCyan, fields.logType, colorWhite,
			message, rest.String(), colorReset)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := fmt.Fprintln(h.w, line)
	return err
}

type recordFields struct {
	logType  LogType
	name     string
	userName string
	status   string
	err      string
	took     time.Duration
	rest     []slog.Attr
}

func collect(base []slog.Attr, r slog.Record) recordFields {
	f := recordFields{logType: TypeSystem}
	visit := func(a slog.Attr) bool {
		switch a.Key {
		case "type":
			f.logType = logTypeOf(a.Value.String())
		case "name":
			f.name = a.Value.String()
		case "user_name":
			f.userName = a.Value.String()
		case "status":
			f.status = a.Value.String()
		case "error":
			f.err = a.Value.String()
		case "took":
			if a.Value.Kind() == slog.KindDuration {
				f.took = a.Value.Duration()
			}
		default:
			f.rest = append(f.rest, a)
		}
		return true
	}
	for _, a := range base {
		visit(a)
	}
	r.Attrs(visit)
	return f
}

func logTypeOf(v string) LogType {
	switch v {
	case "cmd":
		return TypeCommand
	case "db":
		return TypeDB
	case "worker":
		return TypeWorker
	case "event":
		return TypeEvent
	case "error":
		return TypeError
	default:
		return TypeSystem
	}
}

// shouldSkipLog drops disgo's gateway and rate-limit chatter.
func shouldSkipLog(message string) bool {
	skipped := []string{
		"locking buckets",
		"unlocking buckets",
		"gateway event",
		"cleaning up bucket",
		"cleaned up rate limit buckets",
		"binary message received",
		"received gateway message",
		"locking gateway rate limiter",
		"unlocking gateway rate limiter",
		"sending gateway command",
		"new request",
		"new response",
		"locking rest bucket",
		"unlocking rest bucket",
		"rate limit response headers",
		"sending heartbeat",
	}

	lower := strings.ToLower(message)
	for _, skip := range skipped {
		if strings.Contains(lower, skip) {
			return true
		}
	}
	return false
}
