// Package amqp is the RabbitMQ queue driver: it publishes notify jobs to a
// durable queue and consumes them with manual acknowledgements.
//
//	client, err := amqp.Open(ctx, cfg, log)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	// publisher side
//	err = client.Publish(ctx, job)
//
//	// worker side, blocks until ctx is canceled
//	err = client.Consume(ctx, proc.Process, amqp.WithPermanentErrors(processor.IsPermanent))
//
// A successful job is acked. Undecodable messages and permanent errors are
// rejected without requeue, so a queue with a dead-letter exchange keeps them.
// Transient errors follow the RequeuePolicy: "once" requeues the first
// failure and rejects a failed redelivery, "always" requeues every time,
// "never" rejects at once.
package amqp
