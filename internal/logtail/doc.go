// Package logtail reads the end of the shopdesk log file for the in-app log
// view.
//
// # Reading
//
// Read keeps a ring buffer of the last maxLines lines, so memory stays
// O(maxLines) however large the file grows. A missing file reads as empty
// because the log is created lazily on the first write.
//
//	lines, err := logtail.Read(cfg.LogPath(), 400)
//
// # Parsing
//
// The logger writes one logrus JSON object per line:
//
//	{"attempt":2,"level":"warning","msg":"request retried","path":"/api/SanPham","time":"2026-10-14T09:12:44.031+07:00"}
//
// Parse decodes a line into its timestamp, level, message and remaining
// fields, rendering non-string values as text. A line that is not JSON,
// such as a panic stack written by the error screen, becomes an info entry
// carrying the raw text.
//
// Filter narrows entries by minimum level and a case-insensitive substring
// over the message and fields. Tail combines Read and Parse.
package logtail
