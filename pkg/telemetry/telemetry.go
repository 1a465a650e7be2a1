// Package telemetry provides the sidebar's privacy-gated usage reporting.
//
// Events are buffered in memory and sent in batches every 30 seconds. A batch
// that cannot be delivered is retried with a linearly growing delay and is
// dropped after 100 failed retries. Nothing is persisted: events that have not
// been delivered when the process exits are lost.
//
// Once per calendar day a snapshot is taken (version, environment, share
// state, bookmark count, configuration). Configuration and activity events
// are only recorded when the user allowed sharing them.
//
// The system does NOT collect:
// - Bookmark titles or URLs
// - Shortcut targets, custom CSS or background images (only whether they are set)
// - Custom search engine details
// - License keys
//
// Files in this package:
// - client.go: Client construction and options
// - gate.go: share-permission checks
// - stack.go: the in-memory event buffer
// - scheduler.go: periodic flush
// - http.go, retry.go: batch transmission and retries
// - daily.go, configuration.go: the daily snapshot
// - model.go: typed access to persisted state
// - types.go: events and wire types
package telemetry
