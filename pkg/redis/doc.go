// Package redis connects the realtime transport to a Redis server: a
// go-redis client with startup retry and a readiness probe. The pub/sub
// channels themselves live in pkg/realtime.
package redis
