package utils

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/ellavondegurechaff/questbot/internal/domain/errs"
	"github.com/ellavondegurechaff/questbot/questbot/config"
)

// ResponseHandler provides standardized replies for commands.
type ResponseHandler struct{}

var EH = &ResponseHandler{}

// ErrorType represents the categories of errors shown to users
type ErrorType int

const (
	// UserError - malformed arguments, validation failures
	UserError ErrorType = iota
	// SystemError - storage or platform failures
	SystemError
	// NotFoundError - unknown quest, role or record
	NotFoundError
	// PermissionError - issuer or bot lacks a privilege
	PermissionError
)

func getErrorPrefix(errorType ErrorType) string {
	switch errorType {
	case UserError:
		return "⚠️"
	case SystemError:
		return "🔧"
	case NotFoundError:
		return "🔍"
	case PermissionError:
		return "🚫"
	default:
		return "❌"
	}
}

func getErrorColor(errorType ErrorType) int {
	switch errorType {
	case UserError:
		return config.WarningColor
	case NotFoundError:
		return config.InfoColor
	default:
		return config.ErrorColor
	}
}

// Classify maps a domain error onto the category shown to the user.
func Classify(err error) ErrorType {
	switch {
	case errs.IsValidation(err):
		return UserError
	case errs.IsNotFound(err):
		return NotFoundError
	case errs.IsPermission(err):
		return PermissionError
	default:
		return SystemError
	}
}

// ErrorMessage is the user-facing text for err. Storage and unknown failures
// are not echoed verbatim.
func ErrorMessage(err error) string {
	var validation *errs.ValidationError
	var notFound *errs.NotFoundError
	var permission *errs.PermissionError
	switch {
	case errors.As(err, &validation):
		return validation.Error()
	case errors.As(err, &notFound):
		return fmt.Sprintf("%s not found", notFound.Entity)
	case errors.As(err, &permission):
		if permission.Bot {
			return fmt.Sprintf("I need the %s permission to do that", permission.Permission)
		}
		if strings.HasPrefix(permission.Permission, "@") {
			return fmt.Sprintf("You need the %s to use this command!", permission.Permission)
		}
		return fmt.Sprintf("You need %s permission to use this command!", permission.Permission)
	default:
		return "An error occurred while processing the command!"
	}
}

func classifiedEmbed(errorType ErrorType, message string) discord.Embed {
	return discord.Embed{
		Description: getErrorPrefix(errorType) + " " + message,
		Color:       getErrorColor(errorType),
	}
}

// CreateErrorEmbed creates a standard error embed for command events
func (h *ResponseHandler) CreateErrorEmbed(event *handler.CommandEvent, message string) error {
	return event.CreateMessage(discord.MessageCreate{
		Embeds: []discord.Embed{{
			Description: "❌ " + message,
			Color:       config.ErrorColor,
		}},
		Flags: discord.MessageFlagEphemeral,
	})
}

// CreateSuccessEmbed creates a standard success embed for command events
func (h *ResponseHandler) CreateSuccessEmbed(event *handler.CommandEvent, message string) error {
	return event.CreateMessage(discord.MessageCreate{
		Embeds: []discord.Embed{{
			Description: "✅ " + message,
			Color:       config.SuccessColor,
		}},
	})
}

// CreateEphemeralSuccess is CreateSuccessEmbed visible to the issuer only.
func (h *ResponseHandler) CreateEphemeralSuccess(event *handler.CommandEvent, message string) error {
	return event.CreateMessage(discord.MessageCreate{
		Content: "✅ " + message,
		Flags:   discord.MessageFlagEphemeral,
	})
}

// CreateClassifiedError creates an ephemeral error response with a category prefix
func (h *ResponseHandler) CreateClassifiedError(event *handler.CommandEvent, errorType ErrorType, message string) error {
	return event.CreateMessage(discord.MessageCreate{
		Embeds: []discord.Embed{classifiedEmbed(errorType, message)},
		Flags:  discord.MessageFlagEphemeral,
	})
}

func (h *ResponseHandler) CreateUserError(event *handler.CommandEvent, message string) error {
	return h.CreateClassifiedError(event, UserError, message)
}

func (h *ResponseHandler) CreatePermissionError(event *handler.CommandEvent, permission string) error {
	return h.CreateClassifiedError(event, PermissionError, ErrorMessage(&errs.PermissionError{Permission: permission}))
}

// HandleError replies to a failed command. System errors are logged and
// returned so the logging wrapper records the failure.
func (h *ResponseHandler) HandleError(event *handler.CommandEvent, err error) error {
	errorType := Classify(err)
	if replyErr := h.CreateClassifiedError(event, errorType, ErrorMessage(err)); replyErr != nil {
		slog.Error("Failed to send error reply",
			slog.String("type", "cmd"),
			slog.Any("error", replyErr),
		)
	}
	if errorType == SystemError {
		return err
	}
	return nil
}

// UpdateError rewrites a deferred response with an error embed.
func (h *ResponseHandler) UpdateError(event *handler.CommandEvent, err error) error {
	errorType := Classify(err)
	_, updateErr := event.UpdateInteractionResponse(discord.MessageUpdate{
		Embeds: &[]discord.Embed{classifiedEmbed(errorType, ErrorMessage(err))},
	})
	if errorType == SystemError {
		return err
	}
	return updateErr
}
