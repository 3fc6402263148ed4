/*
Package observability exposes reactor lifecycle and solver events as
Prometheus metrics.

Metrics.Hooks returns a domain.LifecycleHooks value that can be merged with
the logging hooks through domain.MergeHooks.
*/
package observability
