// Package health serves liveness and readiness probes.
//
//	r.Get("/health/live", health.LivenessHandler())
//	r.Get("/health/ready", health.ReadinessHandler(health.Checks{
//		"postgres": db.Healthcheck(pool),
//		"redis":    redis.Healthcheck(client),
//		"jobs":     manager.Healthcheck(),
//	}))
//
// Responses are plain text by default; send Accept: application/json or
// ?format=json for per-check details.
package health
