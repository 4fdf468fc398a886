// Package delivery defines the contract every transport front end satisfies.
package delivery

import "context"

// Delivery is a serving transport (HTTP today). Implementations block in
// Serve until shut down through their lifecycle hook.
type Delivery interface {
	Serve(ctx context.Context) error
}
