package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Handler обрабатывает одно сообщение. Ошибка — nack сообщения.
type Handler func(ctx context.Context, msg Message) error

// ConsumerConfig — конфигурация Consumer.
type ConsumerConfig struct {
	// Queue — имя очереди.
	Queue Queue

	// Types — принимаемые типы сообщений. Пусто — любые.
	// Сообщение другого типа уходит в DLQ без вызова Handler.
	Types []MessageType

	// Handler — обработчик сообщений.
	Handler Handler

	// Prefetch — количество неподтверждённых сообщений (default: 1).
	Prefetch int

	// RequeueOnError — вернуть сообщение в очередь при ошибке Handler.
	// false — сообщение уходит в DLQ очереди.
	RequeueOnError bool
}

// Consumer потребляет сообщения из очереди RabbitMQ и
// переподписывается после переподключения Connection.
type Consumer struct {
	conn   *Connection
	logger *slog.Logger
	cfg    ConsumerConfig

	stop     chan struct{}
	stopOnce sync.Once
}

// NewConsumer создаёт Consumer.
func NewConsumer(conn *Connection, logger *slog.Logger, cfg ConsumerConfig) *Consumer {
	if cfg.Prefetch <= 0 {
		cfg.Prefetch = 1
	}

	return &Consumer{
		conn:   conn,
		logger: logger.With("queue", cfg.Queue),
		cfg:    cfg,
		stop:   make(chan struct{}),
	}
}

// Start блокируется, пока не отменён ctx или не вызван Stop.
// Stop, вызванный до Start, тоже останавливает consumer.
func (c *Consumer) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		select {
		case <-c.stop:
			cancel()
		case <-ctx.Done():
		}
	}()

	for {
		select {
		case <-c.stop:
			return context.Canceled
		default:
		}

		deliveries, err := c.subscribe()
		if err != nil {
			c.logger.Error("failed to subscribe", "error", err)
		} else {
			c.logger.Info("consumer started")
			c.drain(ctx, deliveries)
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}

		// Канал закрыт: ждём переподключения
		c.logger.Warn("waiting for reconnect")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.conn.ReconnectNotify():
		}
	}
}

// Stop останавливает consumer. Безопасен для вызова из любой горутины
// и повторно.
func (c *Consumer) Stop() {
	c.stopOnce.Do(func() { close(c.stop) })
}

func (c *Consumer) subscribe() (<-chan amqp.Delivery, error) {
	ch := c.conn.Channel()
	if ch == nil {
		return nil, ErrNoChannel
	}

	if err := ch.Qos(c.cfg.Prefetch, 0, false); err != nil {
		return nil, fmt.Errorf("set qos: %w", err)
	}

	// auto-ack выключен: ack после обработки
	deliveries, err := ch.Consume(string(c.cfg.Queue), "", false, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("consume %s: %w", c.cfg.Queue, err)
	}
	return deliveries, nil
}

// drain обрабатывает сообщения до закрытия канала доставки или отмены ctx.
func (c *Consumer) drain(ctx context.Context, deliveries <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case raw, ok := <-deliveries:
			if !ok {
				return
			}
			ack, requeue := c.handle(ctx, raw.Body)
			if ack {
				raw.Ack(false)
			} else {
				raw.Nack(false, requeue)
			}
		}
	}
}

// handle разбирает и обрабатывает тело сообщения.
// Возвращает решение: ack или nack с requeue.
func (c *Consumer) handle(ctx context.Context, body []byte) (ack, requeue bool) {
	msg, err := DecodeMessage(body)
	if err != nil {
		c.logger.Error("malformed message", "error", err, "body", string(body))
		return false, false
	}

	if len(c.cfg.Types) > 0 && !slices.Contains(c.cfg.Types, msg.Type) {
		c.logger.Error("message rejected", "message_id", msg.ID, "error", fmt.Errorf("%w: %s", ErrUnexpectedType, msg.Type))
		return false, false
	}

	c.logger.Debug("received message", "message_id", msg.ID, "type", msg.Type)

	if err := c.cfg.Handler(ctx, msg); err != nil {
		c.logger.Error("handler failed", "message_id", msg.ID, "type", msg.Type, "error", err)
		return false, c.cfg.RequeueOnError
	}
	return true, false
}

// DecodeMessage разбирает тело AMQP сообщения.
func DecodeMessage(body []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(body, &msg); err != nil {
		return msg, fmt.Errorf("unmarshal message: %w", err)
	}
	if msg.Type == "" {
		return msg, fmt.Errorf("message %q has no type", msg.ID)
	}
	return msg, nil
}

// ParsePayload декодирует payload сообщения в T.
// После json.Unmarshal в Message payload — map[string]any,
// поэтому он перекодируется через JSON.
func ParsePayload[T any](msg Message) (T, error) {
	var result T

	raw, err := json.Marshal(msg.Payload)
	if err != nil {
		return result, fmt.Errorf("marshal payload: %w", err)
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return result, fmt.Errorf("decode %s payload: %w", msg.Type, err)
	}
	return result, nil
}
