// Package state provides thread-safe state management for the shopdesk home feed.
//
// # Overview
//
// The background poller aggregates the storefront home data (newest and
// hot-sale products, merged categories, the active logo, banners and
// sliders) into a Feed and hands it to a Store. The UI reads Snapshot
// values from the same Store on its own tick.
//
//	Producer (Poller):              Consumer (UI):
//	┌──────────────────┐           ┌──────────────────┐
//	│ NewestProducts() │           │                  │
//	│ HotSaleProducts()│           │                  │
//	│ Categories()     │           │                  │
//	│ Settings()       │           │                  │
//	│      ↓           │           │                  │
//	│ store.Update()   │──────────→│ store.Snapshot() │
//	└──────────────────┘  (mutex)  └──────────────────┘
//
// # Update Semantics
//
//	store.Update(&feed, nil)   // full refresh: feed replaced, failures reset
//	store.Update(&feed, err)   // partial refresh: feed replaced, err kept
//	store.Update(nil, err)     // nothing loaded: feed kept, failures counted
//
// The UI therefore always renders the most recent data that loaded, and
// Snapshot.IsOffline reports when two or more refreshes in a row loaded
// nothing at all.
//
// # Copying
//
// Update and Snapshot clone every slice and the logo pointer, so neither
// side can mutate what the other holds. The zero Store is ready to use.
package state
