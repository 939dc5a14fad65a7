// Package file provides TOML-file-backed configuration and preference
// storage, plus a watcher that reloads settings when the file changes
// on disk.
package file
