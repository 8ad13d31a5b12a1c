// Package queue carries outbound email and LINE jobs through RabbitMQ so
// request handlers never wait on the dispatch functions.
package queue

import (
	"context"
	"fmt"
	"time"

	"anoa.com/eventhub/pkg/dispatch"
)

const DispatchQueueName = "eventhub.dispatch"

const (
	KindEmail = "email"
	KindLine  = "line"
)

// Job is the message body published to the dispatch queue.
type Job struct {
	Kind      string                `json:"kind"`
	Email     *dispatch.Email       `json:"email,omitempty"`
	Line      *dispatch.LineMessage `json:"line,omitempty"`
	CreatedAt time.Time             `json:"created_at"`
}

func EmailJob(email dispatch.Email) Job {
	return Job{Kind: KindEmail, Email: &email, CreatedAt: time.Now().UTC()}
}

func LineJob(msg dispatch.LineMessage) Job {
	return Job{Kind: KindLine, Line: &msg, CreatedAt: time.Now().UTC()}
}

// Dispatcher hands outbound messages to whatever delivers them.
type Dispatcher interface {
	Dispatch(ctx context.Context, job Job) error
}

// Deliver sends one job through the dispatch functions.
func Deliver(ctx context.Context, mail dispatch.MailSender, line dispatch.LinePusher, job Job) error {
	switch job.Kind {
	case KindEmail:
		if job.Email == nil {
			return fmt.Errorf("email job without payload")
		}
		return mail.SendEmail(ctx, *job.Email)
	case KindLine:
		if job.Line == nil {
			return fmt.Errorf("line job without payload")
		}
		return line.PushLine(ctx, *job.Line)
	default:
		return fmt.Errorf("unknown job kind %q", job.Kind)
	}
}

// InlineDispatcher delivers jobs synchronously when no broker is configured.
type InlineDispatcher struct {
	mail dispatch.MailSender
	line dispatch.LinePusher
}

func NewInlineDispatcher(mail dispatch.MailSender, line dispatch.LinePusher) *InlineDispatcher {
	return &InlineDispatcher{mail: mail, line: line}
}

func (d *InlineDispatcher) Dispatch(ctx context.Context, job Job) error {
	return Deliver(ctx, d.mail, d.line, job)
}
