package mq

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Exchange — тип для имени обменника.
type Exchange string

// Queue — тип для имени очереди.
type Queue string

// RoutingKey — тип для ключа маршрутизации.
type RoutingKey string

// Exchanges — имена обменников.
const (
	ExchangeRuns   Exchange = "supercon.runs"
	ExchangeStages Exchange = "supercon.stages"
	ExchangeDLQ    Exchange = "supercon.dlq"
)

// Queues — имена очередей.
const (
	QueueRunsPending   Queue = "runs.pending"
	QueueRunsCompleted Queue = "runs.completed"
	QueueStageEvents   Queue = "stages.events"
	QueueDLQRuns       Queue = "dlq.runs"
)

// Routing keys.
const (
	RoutingKeyPending   RoutingKey = "pending"
	RoutingKeyCompleted RoutingKey = "completed"
	RoutingKeyStage     RoutingKey = "stage"
	RoutingKeyDLQRuns   RoutingKey = "runs"
)

// queueSpec — очередь с аргументами и привязкой.
type queueSpec struct {
	name       Queue
	exchange   Exchange
	routingKey RoutingKey
	args       amqp.Table
}

// topology возвращает очереди в порядке объявления.
//
// runs.pending уходит в DLQ при ошибке обработки: запуск движка
// дорогой, повторять его автоматически нельзя.
func topology() []queueSpec {
	dlqArgs := amqp.Table{
		"x-dead-letter-exchange":    string(ExchangeDLQ),
		"x-dead-letter-routing-key": string(RoutingKeyDLQRuns),
	}

	return []queueSpec{
		{QueueRunsPending, ExchangeRuns, RoutingKeyPending, dlqArgs},
		{QueueRunsCompleted, ExchangeRuns, RoutingKeyCompleted, nil},
		{QueueStageEvents, ExchangeStages, RoutingKeyStage, nil},
		{QueueDLQRuns, ExchangeDLQ, RoutingKeyDLQRuns, nil},
	}
}

// SetupTopology объявляет exchanges, queues и bindings.
// Операция идемпотентна, её вызывают и API, и orchestrator.
func SetupTopology(ctx context.Context, conn *Connection) error {
	return conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		for _, ex := range []Exchange{ExchangeRuns, ExchangeStages, ExchangeDLQ} {
			err := ch.ExchangeDeclare(
				string(ex), // name
				"direct",   // type
				true,       // durable
				false,      // auto-deleted
				false,      // internal
				false,      // no-wait
				nil,        // arguments
			)
			if err != nil {
				return fmt.Errorf("declare exchange %s: %w", ex, err)
			}
		}

		for _, q := range topology() {
			if _, err := ch.QueueDeclare(string(q.name), true, false, false, false, q.args); err != nil {
				return fmt.Errorf("declare queue %s: %w", q.name, err)
			}
			if err := ch.QueueBind(string(q.name), string(q.routingKey), string(q.exchange), false, nil); err != nil {
				return fmt.Errorf("bind queue %s to %s: %w", q.name, q.exchange, err)
			}
		}

		return nil
	})
}

// TopologyInfo возвращает описание топологии для логирования.
func TopologyInfo() string {
	return `
  Supercon RabbitMQ Topology:

    supercon.runs (direct)
    ├── runs.pending [routing: pending]
    │       Consumer: Orchestrator
    │       DLQ: dlq.runs
    └── runs.completed [routing: completed]
            Consumer: external

    supercon.stages (direct)
    └── stages.events [routing: stage]
            Consumer: external

    supercon.dlq (direct)
    └── dlq.runs [routing: runs]
            Manual processing
  `
}
