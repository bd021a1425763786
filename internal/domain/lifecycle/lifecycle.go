// Package lifecycle holds shared start/stop settings for fx hooks.
package lifecycle

import "time"

// DefaultTimeout bounds pings on start and graceful shutdown of servers and clients.
const DefaultTimeout = 10 * time.Second
