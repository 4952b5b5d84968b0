// Package listing holds paginated, searchable collections for the views.
//
// A List owns one collection plus its loading flags and pagination. Load
// replaces the collection, LoadMore appends the next page, and Search
// debounces keystrokes before loading the first page of the new keyword.
// Overlapping loads are resolved in favour of the most recent call: an
// older load that finishes late is discarded rather than overwriting newer
// results.
//
// Merge and FetchAll combine several endpoints into one list keyed by id,
// accepting partial results when some endpoints fail. The category picker
// uses them to show product types and brands together.
package listing
