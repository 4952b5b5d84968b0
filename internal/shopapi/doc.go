// Package shopapi is the HTTP client for the storefront REST backend.
//
// # Overview
//
// The backend exposes Vietnamese-named resources: SanPham (products),
// DanhMuc (categories), BinhLuan (reviews), NguoiDung (users) and GiaoDien
// (site settings such as logos, banners and sliders). This package hides the
// wire names behind normalized types and a single request path.
//
// # Architecture
//
//   - client.go: transport, retries, auth header and request logging
//   - errors.go: the error taxonomy returned by every call
//   - envelope.go: list and single-entity decoding
//   - flex.go: lenient decoders for fields the backend types inconsistently
//   - types.go: normalized entities and their wire shapes
//   - products.go, categories.go, comments.go, users.go, settings.go:
//     endpoint wrappers
//
// # Requests
//
// Every call goes through Client.Do. JSON bodies get a Content-Type header;
// multipart bodies built with media.Form never set one so the transport can
// add the boundary. Each logical request carries an X-Request-ID that is
// reused across retries.
//
// Retries apply only to GET and HEAD requests that fail transiently
// (network errors, timeouts, 5xx) and wait a fixed delay between attempts.
// Client errors are returned immediately, as is anything after the caller's
// context is done.
//
// # Lists
//
// List endpoints answer with either a bare JSON array or an envelope:
//
//	{"data": [...], "pagination": {"currentPage": 1, "totalPages": 4}}
//
// Both are accepted. A body that is neither decodes to an empty first page
// rather than an error. Single-entity endpoints are stricter: an empty or
// undecodable body is an error, and 404 is reported as KindNotFound.
//
// # Errors
//
// Failures are *Error values carrying a Kind, the HTTP status and the
// server's message when one can be parsed from message, detail or title:
//
//	if shopapi.IsNotFound(err) {
//		// product was removed
//	}
package shopapi
