// Package app is the composition root of shopdesk.
//
// Bootstrap loads the configuration and builds the shared services: the
// rotating logger, the on-device store, the session, the API client, the
// wishlist, the admin console and the order book. CLI commands use the
// services directly; Run adds the home-feed poller and starts the TUI.
//
// # Data Flow
//
//	┌──────────────┐
//	│   Run()      │
//	└──────┬───────┘
//	       ├─────> Bootstrap()     config, logging, store, client
//	       ├─────> StartPoller()   FeedLoader.Refresh on a timer
//	       └─────> ui.Run()        blocks until quit
//
//	Poller loop:
//	┌─────────────────────────────────────────┐
//	│  ├─> newest, hot sale, categories,      │
//	│  │   settings (concurrently)            │
//	│  └─> store.Update()                     │
//	│      └─> UI reads store.Snapshot()      │
//	└─────────────────────────────────────────┘
//
// # Polling Behavior
//
// A healthy feed refreshes every poll interval (30 seconds by default).
// After a failed refresh the poller retries after 2 seconds and doubles the
// wait on each further failure, never waiting longer than the interval. A
// section that fails keeps what it showed before; the header reports the
// feed offline only after two refreshes in a row failed completely.
package app
