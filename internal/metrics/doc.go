// Package metrics contains the request-scoped metrics emission helper and the sinks it emits to.
//
// A Utility is created once per unit of work (typically a single HTTP request) and bound to the
// name of the route that served it. Application code emits counters, gauges, and timers through
// the Utility, which composes dotted metric keys from Key values and forwards the numeric values
// to a Sink. Every emission can optionally be mirrored under a route-qualified key, of the form
// route.<route name>.<key>, so that the same metric is available both globally and per route.
//
// Timers are measured with start/stop markers: MarkStart records a named point in time and
// MarkStop consumes it and emits the elapsed duration. A Scope wraps this protocol for a block
// of code and annotates the emitted key with an "exc" suffix when the block fails.
//
// A Utility may be shared by the goroutines serving one request. The marker table is locked, but
// concurrent MarkStart/MarkStop calls on the same key still race logically: the last start wins,
// and a stop consumes whichever marker is current.
package metrics
