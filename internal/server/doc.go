// Package server provides HTTP routing, middleware, and server lifecycle for the web interface.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation registers "METHOD /path" patterns on an [http.ServeMux], so path
// wildcards such as {id} are available through [http.Request.PathValue] and a known path requested with
// the wrong method receives 405.
//
// # Middleware
//
//   - [Logging] : one charmbracelet/log line per request with status and duration
//   - [Recover] : converts handler panics to a JSON 500
//   - [RateLimiter] : per-client token buckets from golang.org/x/time/rate, answering 429 when exhausted
//
// The status recorder used by [Logging] forwards Flush, so Server-Sent Event streams are not buffered.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
//
// # Lifecycle
//
// [Server.Run] listens and serves until its context is cancelled, then shuts down gracefully.
package server
