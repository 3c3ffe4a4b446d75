// Package email renders templated messages and hands them to a Sender.
package email

import (
	"context"
	"log/slog"
	"sort"
	"strings"
)

// Message is a rendered email ready for delivery.
type Message struct {
	From    string
	To      string
	Subject string
	HTML    string
}

// Sender delivers a message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Parse replaces every {{key}} of tpl by vars[key]. Unknown placeholders are
// left untouched and substituted values are never re-scanned.
func Parse(tpl string, vars map[string]string) string {
	if len(vars) == 0 {
		return tpl
	}
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		pairs = append(pairs, "{{"+k+"}}", vars[k])
	}
	return strings.NewReplacer(pairs...).Replace(tpl)
}

// LogSender writes messages to the log instead of a mail transport.
type LogSender struct {
	Log *slog.Logger
}

func (s LogSender) Send(ctx context.Context, msg Message) error {
	s.Log.InfoContext(ctx, "email delivered to log", "from", msg.From, "to", msg.To, "subject", msg.Subject, "bytes", len(msg.HTML))
	return nil
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, msg Message) error

func (f SenderFunc) Send(ctx context.Context, msg Message) error { return f(ctx, msg) }
