/*
Package observability exports engine dispatch as Prometheus metrics.

A Collector turns into engine.Hooks, so any engine built with
engine.WithHooks(collector.Hooks()) reports fired events, action
invocations, action failures and action latency.
*/
package observability
