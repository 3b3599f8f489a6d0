// internal/browser/context_utils.go
package browser

import "context"

// CombineContext creates a new context that is canceled when either parentCtx
// or secondaryCtx is canceled. Operations on a surface must respect both the
// session lifecycle and the specific call's deadline.
func CombineContext(parentCtx, secondaryCtx context.Context) (context.Context, context.CancelFunc) {
	combinedCtx, cancel := context.WithCancel(parentCtx)

	go func() {
		select {
		case <-secondaryCtx.Done():
			cancel()
		case <-combinedCtx.Done():
		}
	}()

	return combinedCtx, cancel
}
