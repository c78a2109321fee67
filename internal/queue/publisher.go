package queue

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher sends domain events to the broker. Implementations log and
// return failures; callers treat publishing as best-effort.
type Publisher interface {
	PublishContactSubmitted(ctx context.Context, ev ContactSubmittedEvent) error
	PublishShowtimeChanged(ctx context.Context, ev ShowtimeChangedEvent) error
}

// NopPublisher drops every event. It is used when the broker is disabled.
type NopPublisher struct{}

func (NopPublisher) PublishContactSubmitted(context.Context, ContactSubmittedEvent) error {
	return nil
}

func (NopPublisher) PublishShowtimeChanged(context.Context, ShowtimeChangedEvent) error {
	return nil
}

// AMQPPublisher publishes persistent JSON messages to RabbitMQ. It dials a
// fresh connection per event, which is plenty for admin and contact-form
// traffic and keeps the publisher free of reconnect state.
type AMQPPublisher struct {
	URL string
}

// NewAMQPPublisher returns a publisher for the broker at url.
func NewAMQPPublisher(url string) *AMQPPublisher {
	return &AMQPPublisher{URL: url}
}

// PublishContactSubmitted publishes ev to the contact.submitted queue.
func (p *AMQPPublisher) PublishContactSubmitted(ctx context.Context, ev ContactSubmittedEvent) error {
	return p.publish(ctx, ContactQueue, ev)
}

// PublishShowtimeChanged publishes ev to the showtime.changed queue.
func (p *AMQPPublisher) PublishShowtimeChanged(ctx context.Context, ev ShowtimeChangedEvent) error {
	return p.publish(ctx, ShowtimeQueue, ev)
}

func (p *AMQPPublisher) publish(ctx context.Context, queueName string, event any) error {
	conn, err := amqp.Dial(p.URL)
	if err != nil {
		log.Printf("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	// Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // autoDelete
		false,     // exclusive
		false,     // noWait
		nil,       // args
	); err != nil {
		log.Printf("rabbitmq: queue declare %s failed: %v", queueName, err)
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("rabbitmq: marshal event failed: %v", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // store on disk
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx,
		"",        // default exchange
		queueName, // routing key = queue name
		false,     // mandatory
		false,     // immediate
		pub,
	); err != nil {
		log.Printf("rabbitmq: publish to %s failed: %v", queueName, err)
		return err
	}
	return nil
}
