package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/streadway/amqp"
)

// publisher is the subset of *amqp.Channel used to publish
type publisher interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// AMQP publishes completion events as JSON to a durable queue
type AMQP struct {
	conn     *amqp.Connection
	ch       publisher
	queue    string
	confirms chan amqp.Confirmation

	mu sync.Mutex
	// delivery tag of the last successful publish
	published uint64
}

// DialAMQP connects to the broker, declares the queue and enables publisher confirms
func DialAMQP(url, queueName string) (*AMQP, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("error connecting to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("error opening channel: %w", err)
	}

	if err := ch.Confirm(false); err != nil {
		conn.Close()
		return nil, fmt.Errorf("error enabling confirms: %w", err)
	}

	q, err := ch.QueueDeclare(
		queueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("error declaring queue: %w", err)
	}

	return &AMQP{
		conn:     conn,
		ch:       ch,
		queue:    q.Name,
		confirms: ch.NotifyPublish(make(chan amqp.Confirmation, 1)),
	}, nil
}

func (a *AMQP) NotifyCompletion(ctx context.Context, c Completion) error {
	body, err := json.Marshal(c)
	if err != nil {
		return err
	}

	ts := c.CompletedAt
	if ts.IsZero() {
		ts = time.Now()
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	err = a.ch.Publish("", a.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    ts,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("error publishing completion: %w", err)
	}
	a.published++
	tag := a.published

	if a.confirms == nil {
		return nil
	}
	for {
		select {
		case confirm, ok := <-a.confirms:
			if !ok {
				return errors.New("amqp channel closed before confirmation")
			}
			// late confirmation of a publish whose caller gave up
			if confirm.DeliveryTag < tag {
				continue
			}
			if !confirm.Ack {
				return fmt.Errorf("broker rejected completion for habit %s", c.HabitID)
			}
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (a *AMQP) Close() error {
	if a.conn != nil {
		return a.conn.Close()
	}
	return nil
}
