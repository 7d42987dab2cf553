// Package auth implements the authentication and session-identity subsystem:
// password credential hashing and verification, OAuth2 authorization-code
// flows against a closed set of providers (Google, GitHub, Microsoft), and
// reconciliation of external identities with local user records.
//
// # Components
//
//   - HashPassword / VerifyPassword: salted bcrypt credentials with
//     deterministic truncation at bcrypt's 72-byte limit.
//   - Registry: read-only per-provider endpoint and credential lookup.
//   - FlowEngine: authorization URL generation with CSRF state, code
//     exchange via golang.org/x/oauth2, and user-info normalization through
//     a per-provider lookup table.
//   - Reconciler: find-by-provider-id, fall back to find-by-email with
//     auto-link, or create; plus explicit Link/Unlink management.
//   - Service: the facade the web layer calls - Login, Register,
//     CurrentUser, Refresh, OAuthLogin, Link/UnlinkOAuth, ChangePassword.
//
// Persistence is abstracted behind the UserStore interface; session tokens
// come from pkg/jwt. All failures carry distinct sentinel errors (see
// errors.go) except password login, which deliberately collapses every
// mismatch into ErrInvalidCredentials to resist account enumeration.
package auth
