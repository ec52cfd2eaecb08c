// Package redis opens the go-redis client backing the shared template cache
// (templatestore.RedisCache), so that every worker sees the same invalidation.
//
// # Configuration
//
//	REDIS_URL              - redis:// or rediss:// URL (empty disables Redis)
//	REDIS_POOL_SIZE        - Maximum connections (default: 10)
//	REDIS_MIN_IDLE_CONNS   - Minimum idle connections (default: 2)
//	REDIS_MAX_IDLE_TIME    - Maximum connection idle time (default: 10m)
//	REDIS_MAX_ACTIVE_TIME  - Maximum connection lifetime (default: 30m)
//	REDIS_RETRY_ATTEMPTS   - Connection attempts at startup (default: 3)
//	REDIS_RETRY_INTERVAL   - Base retry interval (default: 2s)
//	REDIS_READ_TIMEOUT     - Read timeout (default: 3s)
//	REDIS_WRITE_TIMEOUT    - Write timeout (default: 3s)
//	REDIS_DIAL_TIMEOUT     - Dial timeout (default: 5s)
//
// Healthcheck returns a probe for /readyz; Shutdown a hook closing the client.
package redis
