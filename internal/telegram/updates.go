package telegram

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/PauloCosta30/flight-alert-bot/pkg/chat"
	"github.com/PauloCosta30/flight-alert-bot/pkg/conversation"
)

// commands maps the bot's slash commands to the core command surface.
var commands = map[string]chat.Command{
	"/start":          chat.CmdStart,
	"/novo_alerta":    chat.CmdNewAlert,
	"/meus_alertas":   chat.CmdListAlerts,
	"/remover_alerta": chat.CmdRemoveAlert,
	"/pausar":         chat.CmdPauseAlert,
	"/retomar":        chat.CmdResumeAlert,
	"/cancelar":       chat.CmdCancel,
}

// Listener pulls updates from Telegram and routes them into the
// conversation engine. Updates are processed strictly in arrival order.
type Listener struct {
	client      *Client
	engine      *conversation.Engine
	pollTimeout time.Duration
	logger      *slog.Logger
}

// NewListener creates an update listener.
func NewListener(client *Client, engine *conversation.Engine, pollTimeout time.Duration, logger *slog.Logger) *Listener {
	return &Listener{
		client:      client,
		engine:      engine,
		pollTimeout: pollTimeout,
		logger:      logger,
	}
}

// Run long-polls until ctx is cancelled.
func (l *Listener) Run(ctx context.Context) error {
	var offset int64
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		updates, err := l.client.GetUpdates(ctx, offset, l.pollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			l.logger.Warn("get updates", "error", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(3 * time.Second):
			}
			continue
		}

		for _, u := range updates {
			offset = u.UpdateID + 1
			l.dispatch(ctx, u)
		}
	}
}

// dispatch routes one update. Handler errors are logged, never fatal.
func (l *Listener) dispatch(ctx context.Context, u Update) {
	if u.Message == nil || u.Message.Text == "" {
		return
	}
	ownerID := u.Message.Chat.ID
	text := strings.TrimSpace(u.Message.Text)

	if !strings.HasPrefix(text, "/") {
		if err := l.engine.HandleReply(ctx, ownerID, text); err != nil {
			l.logger.Error("handle reply", "owner_id", ownerID, "error", err)
		}
		return
	}

	name, payload := splitCommand(text)
	cmd, ok := commands[name]
	if !ok {
		// Unknown slash command, let the engine answer with the help text.
		cmd = chat.Command(strings.TrimPrefix(name, "/"))
	}
	if err := l.engine.HandleCommand(ctx, ownerID, cmd, payload); err != nil {
		l.logger.Error("handle command", "owner_id", ownerID, "command", name, "error", err)
	}
}

// splitCommand separates "/remover_alerta 2" into the command name and its
// payload, dropping any @botname suffix.
func splitCommand(text string) (name, payload string) {
	name, payload, _ = strings.Cut(text, " ")
	if at := strings.Index(name, "@"); at > 0 {
		name = name[:at]
	}
	return strings.ToLower(name), strings.TrimSpace(payload)
}
