// Package crawler defines the fetch contract shared by the frontier, the
// response cache and the HTTP fetchers.
package crawler
