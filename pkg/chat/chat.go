// Package chat defines the boundary to the chat transport.
package chat

import "context"

// Sender delivers a text message to an owner's chat. Implementations must be
// safe for concurrent use.
type Sender interface {
	Send(ctx context.Context, ownerID int64, text string) error
}

// SenderFunc adapts a function to the Sender interface.
type SenderFunc func(ctx context.Context, ownerID int64, text string) error

func (f SenderFunc) Send(ctx context.Context, ownerID int64, text string) error {
	return f(ctx, ownerID, text)
}

// Command is a structured chat command recognized by the bot.
type Command string

const (
	CmdStart       Command = "start"
	CmdNewAlert    Command = "new_alert"
	CmdListAlerts  Command = "list_alerts"
	CmdRemoveAlert Command = "remove_alert"
	CmdPauseAlert  Command = "pause_alert"
	CmdResumeAlert Command = "resume_alert"
	CmdCancel      Command = "cancel"
)
