package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"quizhub-service/internal/models"

	"github.com/rabbitmq/amqp091-go"
)

// StatsHandler receives the events the consumer cares about. It is
// satisfied by service.StatsService.
type StatsHandler interface {
	RecomputeForUser(ctx context.Context, userID string) error
	EnsureProfile(ctx context.Context, userID, username string) error
}

type binding struct {
	exchange   string
	routingKey string
}

type EventConsumer struct {
	conn      *amqp091.Connection
	channel   *amqp091.Channel
	queueName string
	stats     StatsHandler
	enabled   bool
	shutdown  chan struct{}
	wg        sync.WaitGroup
}

func NewEventConsumer(rabbitURI, queueName string, stats StatsHandler) (*EventConsumer, error) {
	if rabbitURI == "" {
		log.Println("Warning: RabbitMQ URI is empty, event consuming is disabled")
		return &EventConsumer{
			queueName: queueName,
			stats:     stats,
			enabled:   false,
			shutdown:  make(chan struct{}),
		}, nil
	}

	conn, err := amqp091.Dial(rabbitURI)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	if err := channel.Qos(10, 0, false); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to set QoS: %w", err)
	}

	queue, err := channel.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	bindings := []binding{
		{exchange: "quiz.events", routingKey: "attempt.#"},
		{exchange: "user-events", routingKey: "user.registered"},
	}

	for _, b := range bindings {
		err = channel.ExchangeDeclare(
			b.exchange, // name
			"topic",    // type
			true,       // durable
			false,      // auto-deleted
			false,      // internal
			false,      // no-wait
			nil,        // arguments
		)
		if err != nil {
			channel.Close()
			conn.Close()
			return nil, fmt.Errorf("failed to declare exchange %s: %w", b.exchange, err)
		}

		err = channel.QueueBind(
			queue.Name,   // queue name
			b.routingKey, // routing key
			b.exchange,   // exchange
			false,        // no-wait
			nil,          // arguments
		)
		if err != nil {
			channel.Close()
			conn.Close()
			return nil, fmt.Errorf("failed to bind queue to %s: %w", b.exchange, err)
		}
	}

	log.Printf("Event consumer initialized with queue: %s", queue.Name)

	return &EventConsumer{
		conn:      conn,
		channel:   channel,
		queueName: queue.Name,
		stats:     stats,
		enabled:   true,
		shutdown:  make(chan struct{}),
	}, nil
}

func (c *EventConsumer) Start() error {
	if !c.enabled {
		log.Println("Event consumer disabled, not starting")
		return nil
	}

	messages, err := c.channel.Consume(
		c.queueName, // queue
		"",          // consumer
		false,       // auto-ack
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		for {
			select {
			case <-c.shutdown:
				log.Println("Event consumer shutting down")
				return
			case msg, ok := <-messages:
				if !ok {
					log.Println("Event consumer channel closed")
					return
				}
				if err := c.processMessage(msg.RoutingKey, msg.Body); err != nil {
					log.Printf("Error processing message with key %s: %v", msg.RoutingKey, err)
					msg.Nack(false, false)
					continue
				}
				msg.Ack(false)
			}
		}
	}()

	log.Println("Event consumer started")
	return nil
}

func (c *EventConsumer) processMessage(routingKey string, body []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch routingKey {
	case string(models.EventTypeAttemptCompleted):
		var event models.AttemptEvent
		if err := json.Unmarshal(body, &event); err != nil {
			return fmt.Errorf("failed to unmarshal attempt event: %w", err)
		}
		if event.UserID == "" {
			return fmt.Errorf("attempt event missing user id")
		}
		return c.stats.RecomputeForUser(ctx, event.UserID)

	case "user.registered":
		var event models.UserRegisterEvent
		if err := json.Unmarshal(body, &event); err != nil {
			return fmt.Errorf("failed to unmarshal user register event: %w", err)
		}
		if event.UserID == "" {
			return fmt.Errorf("user register event missing user id")
		}
		return c.stats.EnsureProfile(ctx, event.UserID, event.Username)

	case string(models.EventTypeAttemptStarted):
		// Starts carry no stats impact yet, acknowledge and move on.
		return nil

	default:
		log.Printf("Ignoring message with unknown routing key: %s", routingKey)
		return nil
	}
}

func (c *EventConsumer) Stop() error {
	close(c.shutdown)
	c.wg.Wait()

	if !c.enabled {
		return nil
	}

	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			log.Printf("Error closing RabbitMQ channel: %v", err)
		}
	}

	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			return fmt.Errorf("error closing RabbitMQ connection: %w", err)
		}
	}

	return nil
}
