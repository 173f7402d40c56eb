// Package mq предоставляет инфраструктуру для работы с RabbitMQ.
//
// Структура:
//   - connection.go — управление соединением с RabbitMQ (reconnect, graceful shutdown)
//   - topology.go   — объявление exchanges, queues, bindings
//   - publisher.go  — публикация сообщений в очереди
//   - consumer.go   — потребление сообщений из очередей
//
// Типы сообщений:
//   - run.pending      — новый run ожидает выполнения
//   - stage.completed  — стадия run завершилась
//   - run.completed    — run завершился (SUCCEEDED или FAILED)
//
// Exchanges:
//   - supercon.runs    — события runs
//   - supercon.stages  — события стадий
//   - supercon.dlq     — dead letter queue
package mq
