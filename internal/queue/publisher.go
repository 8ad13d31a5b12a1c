package queue

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher writes jobs to the durable dispatch queue. When the broker is
// unreachable the job is handed to the fallback dispatcher instead.
type Publisher struct {
	url      string
	fallback Dispatcher
}

func NewPublisher(url string, fallback Dispatcher) *Publisher {
	return &Publisher{url: url, fallback: fallback}
}

func (p *Publisher) Dispatch(ctx context.Context, job Job) error {
	if err := p.publish(ctx, job); err != nil {
		log.Printf("rabbitmq: publish failed, delivering inline: %v", err)
		if p.fallback == nil {
			return err
		}
		return p.fallback.Dispatch(ctx, job)
	}
	return nil
}

func (p *Publisher) publish(ctx context.Context, job Job) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(DispatchQueueName, true, false, false, false, nil); err != nil {
		return err
	}

	body, err := json.Marshal(job)
	if err != nil {
		return err
	}

	return ch.PublishWithContext(ctx, "", DispatchQueueName, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
}
