// Package daemon keeps an output directory in sync with a Trac environment.
//
// A Daemon converts everything once at startup and then re-runs the
// conversion on a fixed interval and, optionally, whenever the Trac database
// file changes. Each run only selects pages modified since the previous
// successful run; the bound is persisted in a small YAML state file so a
// restarted daemon continues where it stopped. Runs never overlap.
package daemon
