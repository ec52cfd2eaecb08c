// Package health serves the liveness and readiness probes of the ops server.
//
//	r.Get("/healthz", health.LivenessHandler())
//	r.Get("/readyz", health.ReadinessHandler(health.Checks{
//		"postgres": db.Healthcheck(pool),
//		"redis":    redis.Healthcheck(client),
//		"jobs":     job.Healthcheck(manager),
//		"amqp":     amqp.Healthcheck(broker),
//	}, health.WithLogger(log)))
//
// Probes answer plain text ("OK" or "Service Unavailable") unless the client
// asks for JSON with ?format=json or an Accept: application/json header:
//
//	{
//	  "status": "unhealthy",
//	  "checks": {
//	    "postgres": {"status": "healthy", "duration": "1.2ms"},
//	    "redis": {"status": "unhealthy", "error": "connection refused", "duration": "40µs"}
//	  }
//	}
//
// All checks run concurrently under one timeout (WithTimeout, 5s by default).
package health
