// Package notion mirrors hh.ru application state into a Notion database.
//
// Each application becomes a database page whose STATUS property tracks the
// negotiation lifecycle (Applied, Unsuccessful, Wrong). When Notion is not
// configured a noop recorder stands in, so callers never branch on whether
// the integration is enabled.
package notion
