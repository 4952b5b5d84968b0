// Package ui is the shopdesk terminal interface, built on Bubble Tea.
//
// # Views
//
//   - Home: the storefront feed (logo, banners, sliders, categories, newest
//     and hot sale products) read from state.Store.
//   - Search: debounced keyword search over the catalogue with paging and
//     a persisted sort order.
//   - Wishlist: liked products, reconciled against the backend on demand.
//   - Admin: users, settings, comments, products and orders for signed-in
//     administrators. Toggles are optimistic and roll back on failure.
//   - Logs: the tail of the shopdesk log file with level and text filters.
//
// # Event Flow
//
//  1. Run creates the Model and starts the program with the context.
//  2. A tick re-reads the feed snapshot; the app poller keeps it fresh.
//  3. Key presses stage local changes in Update and return a tea.Cmd that
//     performs the request. Results come back as messages.
//  4. Debounced searches finish outside a tea.Cmd and report through the
//     events channel.
//
// A panic in Update or View is recovered into an error screen that offers
// retry, home and quit.
package ui
