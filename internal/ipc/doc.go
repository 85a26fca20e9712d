// Package ipc exposes daemon control over JSON-RPC on a Unix domain
// socket: enqueueing work, listing and cancelling jobs, polling events, and
// shutting the daemon down.
package ipc
