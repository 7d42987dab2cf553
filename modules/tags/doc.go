// Package tags manages per-user labels: CRUD over HTTP with name uniqueness
// per user, hex colors, and a live count of tasks carrying each tag.
package tags
