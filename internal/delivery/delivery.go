// Package delivery holds the long-running entry points of the binaries.
package delivery

import "context"

// Delivery is a server, consumer or poller started by the fx application.
type Delivery interface {
	// Serve blocks until the delivery stops. A clean shutdown returns nil.
	Serve(ctx context.Context) error
}
