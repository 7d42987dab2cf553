// Package account exposes authentication over HTTP: password registration
// and login, bearer-token session management, and the OAuth2 sign-in, link
// and unlink flows. It also provides the postgres user storage and the redis
// store for one-time OAuth state tokens.
package account
