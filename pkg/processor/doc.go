// Package processor renders and delivers queued email jobs.
//
// Process runs the stages of one job in order and stops at the first failure:
//
//  1. decode: the request context embedded in the job
//  2. template: the body of TemplateName() for the job's channel and language
//  3. generate: sender, subject, HTML and text through the mailer.Generator
//  4. transport: the transport resolved for this job, validated
//  5. attachments: inline content decoded, paths fetched
//  6. send: delivery over the resolved transport
//
// If Initialize was not called, Process runs it first; a failure there is
// reported at the init stage. A missing template sends nothing. Failures are returned as *Error, which
// matches the stage sentinel (ErrTemplateNotFound, ErrGeneration, ErrTransport,
// ...) and the underlying cause with errors.Is. IsPermanent tells a queue
// whether a retry could succeed.
//
// Usage:
//
//	p := processor.New(store,
//		processor.WithResolver(transport.NewResolver(transport.Static(cfg))),
//		processor.WithLogger(log),
//		processor.WithMetrics(processor.NewMetrics(prometheus.DefaultRegisterer)),
//	)
//	if err := p.Initialize(ctx); err != nil {
//		return err
//	}
//	err := p.Process(ctx, job)
package processor
