package middleware

// Middleware wraps a handler with cross-cutting behavior.
type Middleware[H any] func(H) H

// Chain composes middlewares so the first one listed is the outermost
// wrapper and observes the event first; the base handler runs last.
func Chain[H any](middlewares ...Middleware[H]) Middleware[H] {
	return func(handler H) H {
		for i := len(middlewares) - 1; i >= 0; i-- {
			handler = middlewares[i](handler)
		}
		return handler
	}
}
