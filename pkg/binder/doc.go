// Package binder decodes HTTP request bodies into typed request structs.
// All binding failures wrap one of the package sentinels, letting handlers
// treat any binding error as a client error without inspecting the cause.
package binder
