// Package hh implements the hh.ru API client used for vacancy search,
// negotiations, and applications.
//
// Applying is a POST to /negotiations that answers with its result in the
// status code and Location header: 201 carries the new negotiation URL,
// 303 points at an external application form. The client never follows
// redirects so those signals reach the caller intact.
package hh
