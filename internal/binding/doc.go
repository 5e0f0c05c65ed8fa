// Package binding attaches a metrics.Utility to each HTTP request served by a gorilla/mux router.
//
// The Middleware creates a Scope per request and threads it through the request context.
// Handlers obtain the request's utility with Metrics(ctx); it is constructed on first use, bound
// to the name of the route that matched the request, and its sink is released when the request
// finishes, however it finishes.
package binding
