package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/disgoorg/disgo/handler"

	"github.com/ellavondegurechaff/questbot/questbot/config"
)

// ErrCommandTimeout is returned when a handler outlives its timeout. The
// handler keeps running in the background.
var ErrCommandTimeout = errors.New("command timed out")

// WrapWithLogging wraps a command handler with logging functionality
func WrapWithLogging(name string, h handler.CommandHandler) handler.CommandHandler {
	return WrapWithTimeout(name, config.CommandTimeout, h)
}

// WrapWithTimeout is WrapWithLogging with a custom timeout for commands whose
// work outlives the default.
func WrapWithTimeout(name string, timeout time.Duration, h handler.CommandHandler) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		start := time.Now()

		slog.Info("Command started",
			slog.String("type", "cmd"),
			slog.String("name", name),
			slog.String("user_id", e.User().ID.String()),
			slog.String("user_name", e.User().Username),
			slog.String("guild_id", guildString(e)),
			slog.String("channel_id", e.ChannelID().String()),
		)

		err := runGuarded(name, timeout, func() error { return h(e) })
		duration := time.Since(start)

		attrs := []any{
			slog.String("type", "cmd"),
			slog.String("name", name),
			slog.String("user_id", e.User().ID.String()),
			slog.String("user_name", e.User().Username),
			slog.Duration("took", duration),
		}

		switch {
		case errors.Is(err, ErrCommandTimeout):
			slog.Error("Command timed out", append(attrs,
				slog.String("status", "timeout"),
				slog.Duration("timeout", timeout),
			)...)
		case err != nil:
			slog.Error("Command failed", append(attrs,
				slog.Any("error", err),
				slog.String("status", "failed"),
			)...)
		case duration > config.SlowCommand:
			slog.Warn("Command executed slowly", append(attrs,
				slog.String("status", "slow"),
			)...)
		default:
			slog.Info("Command completed", append(attrs,
				slog.String("status", "success"),
			)...)
		}
		return err
	}
}

// runGuarded runs fn on its own goroutine and turns a panic into an error.
// It gives up waiting after timeout.
func runGuarded(name string, timeout time.Duration, fn func() error) error {
	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				slog.Error("Panic in command handler",
					slog.String("type", "cmd"),
					slog.String("name", name),
					slog.Any("panic", r),
					slog.String("stack_trace", string(debug.Stack())),
				)
				done <- fmt.Errorf("command %s panicked: %v", name, r)
			}
		}()
		done <- fn()
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case err := <-done:
		return err
	case <-timer.C:
		return fmt.Errorf("%w after %s", ErrCommandTimeout, timeout)
	}
}

// WrapAutocomplete recovers panics in autocomplete handlers.
func WrapAutocomplete(name string, h handler.AutocompleteHandler) handler.AutocompleteHandler {
	return func(e *handler.AutocompleteEvent) (err error) {
		defer func() {
			if r := recover(); r != nil {
				slog.Error("Panic in autocomplete handler",
					slog.String("type", "cmd"),
					slog.String("name", name),
					slog.Any("panic", r),
					slog.String("stack_trace", string(debug.Stack())),
				)
				err = fmt.Errorf("autocomplete %s panicked: %v", name, r)
			}
		}()
		return h(e)
	}
}

func guildString(e *handler.CommandEvent) string {
	if id := e.GuildID(); id != nil {
		return id.String()
	}
	return ""
}
