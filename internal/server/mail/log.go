package mail

import (
	"context"

	"github.com/mori-tea/mori/internal/logging"
)

// LogSender records messages in the log instead of delivering them. The
// body carries codes and links and is only logged at debug level. It is a
// development sender; nothing reaches the recipient.
type LogSender struct {
	log logging.Logger
}

func NewLogSender(l logging.Logger) *LogSender {
	return &LogSender{log: l.With("module", "mail")}
}

func (s *LogSender) Send(ctx context.Context, m Message) error {
	s.log.Info(ctx, "mail queued", "to", m.To, "subject", m.Subject, "bytes", len(m.HTML))
	s.log.Debug(ctx, "mail body", "to", m.To, "body", m.HTML)
	return nil
}
