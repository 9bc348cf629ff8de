// Package api defines the HTTP contract between the clipd CLI and daemon.
//
// It holds the request and response payload types plus JobService, which
// validates submissions, fills in configured defaults, and routes job
// mutations through the controller so the HTTP layer stays a thin shell.
package api
