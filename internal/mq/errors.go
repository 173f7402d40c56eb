package mq

import "errors"

// Ошибки RabbitMQ слоя.
var (
	// ErrNoChannel — канал закрыт, идёт переподключение.
	ErrNoChannel = errors.New("amqp channel not available")

	// ErrClosed — соединение закрыто через Close.
	ErrClosed = errors.New("amqp connection closed")

	// ErrNotConfirmed — брокер не подтвердил публикацию (nack).
	ErrNotConfirmed = errors.New("publish not confirmed by broker")

	// ErrUnexpectedType — в очередь пришло сообщение чужого типа.
	ErrUnexpectedType = errors.New("unexpected message type")
)
