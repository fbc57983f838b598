// Package progress defines the events a crawl run emits and the sink
// interfaces that consume them. Emission is synchronous; a failing sink is
// logged and never stops the crawl.
package progress
