// Package cli is the interactive Mori operator console.
//
// It logs a user in with password plus emailed one-time code, then lets them
// drive machines and expeditions, read the notification log, follow the live
// notification feed and file harbour receipts with their scanned documents.
// A background watcher pings the server and flips the prompt between online
// and offline.
package cli
