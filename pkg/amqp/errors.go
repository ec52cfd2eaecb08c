package amqp

import "errors"

var (
	ErrNotConfigured  = errors.New("amqp: not configured")
	ErrInvalidConfig  = errors.New("amqp: invalid config")
	ErrConnect        = errors.New("amqp: connect failed")
	ErrClosed         = errors.New("amqp: connection closed")
	ErrPublish        = errors.New("amqp: publish failed")
	ErrConsume        = errors.New("amqp: consume failed")
	ErrInvalidMessage = errors.New("amqp: invalid message")
)
