// Package applier walks paginated vacancy listings and applies to each
// vacancy, producing one run-log line and one structured outcome per
// vacancy.
//
// The walk is strictly sequential. Page zero also reveals the page count, so
// it is fetched first and the remaining pages follow in order. A negotiation
// limit response stops the walk gracefully; everything already processed
// stays recorded.
package applier
