// Package daemon wraps the workflow manager in a long-running process with
// flock-based locking so only one worker touches the queue database at a
// time.
package daemon
