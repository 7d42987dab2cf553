package account

import "time"

// Config holds the account module settings.
type Config struct {
	// StateTTL bounds how long an issued OAuth state stays redeemable.
	StateTTL time.Duration `env:"OAUTH_STATE_TTL" envDefault:"10m"`
}
