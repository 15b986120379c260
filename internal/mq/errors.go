package mq

import "errors"

// Ошибки mq.
var (
	// ErrNoChannel — соединение ещё не установлено или переподключается.
	ErrNoChannel = errors.New("no amqp channel available")

	// ErrInvalidEvent — сообщение не похоже на событие.
	ErrInvalidEvent = errors.New("invalid event")
)
