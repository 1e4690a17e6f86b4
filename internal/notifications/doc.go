// Package notifications delivers generation events via ntfy.
//
// The default implementation publishes to the topic configured in config.toml
// and gracefully degrades to a no-op when no topic is set. Pass and error
// events can be toggled independently so operators can subscribe to failures
// without the routine completion chatter.
package notifications
