// Package courier turns domain events into emails.
//
// Services publish plain Go values. Every handler registered for the value's
// type builds a serializable job, the job goes through a queue, and a
// processor renders its template and sends it over the configured transport.
//
//	var cfg courier.Config
//	config.MustLoad(&cfg)
//
//	c, err := courier.New(cfg, courier.WithLogger(log))
//	if err != nil {
//		return err
//	}
//	if err := c.Start(ctx); err != nil {
//		return err
//	}
//	defer c.Stop(context.Background())
//
//	err = c.Publish(ctx, commerce.AccountRegistration{User: user})
//
// # Queues
//
// Config.Queue selects the driver:
//
//   - inline: Publish renders and sends before returning
//   - river: jobs are stored in Postgres; workers run River (needs WithPool)
//   - amqp: jobs are published to RabbitMQ and consumed by workers (needs WithAMQP)
//
// Publishers only enqueue. Worker processes call Start as well.
//
// # Templates
//
// Config.Templates selects where bodies come from: the embedded storefront
// templates, a directory in the templatestore.LoadFS layout, or the Postgres
// tables managed with templatestore.Postgres. Postgres reads are cached in
// memory, or in Redis when WithRedis is given.
//
// # Dev mode
//
// With Config.DevMode every email is written to Config.OutputPath instead of
// being delivered. Mailbox serves those files and old files are pruned on
// Config.OutboxPruneSchedule.
package courier
