// Package infra holds the adapters around the planner core: the optimizer
// HTTP client and stub, metrics sinks, the MQTT event bridge and logging.
// These packages depend only on the types defined in core.
package infra
