package courier

import "errors"

var (
	ErrInvalidConfig   = errors.New("courier: invalid configuration")
	ErrPoolRequired    = errors.New("courier: postgres pool required")
	ErrAMQPRequired    = errors.New("courier: amqp client required")
	ErrAlreadyStarted  = errors.New("courier: already started")
	ErrEnqueue         = errors.New("courier: enqueue failed")
	ErrMailboxDisabled = errors.New("courier: dev mailbox needs dev mode")
)
