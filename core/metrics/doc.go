// Package metrics defines the sinks that observe planner activity:
// optimizer submissions, the options derived from each schedule and the
// user's interactions with them. Implementations live in infra/metrics and
// register themselves with the factory so sinks can be chosen from
// configuration. Several configured sinks are combined into a MultiSink.
package metrics
