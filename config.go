package auth

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
)

const (
	// DefaultActivationTTL bounds the registration bootstrap window
	DefaultActivationTTL = 5 * time.Minute
	// DefaultSessionTTL matches the session cookie validity window
	DefaultSessionTTL = 90 * 24 * time.Hour
)

// Config carries the process-wide auth configuration. It is constructed once
// at startup, validated, and passed by reference into each component; nothing
// reads the environment ad hoc.
type Config struct {
	// ActivationSecret signs short-lived activation tokens
	ActivationSecret string
	// CustomerSessionSecret signs customer session tokens
	CustomerSessionSecret string
	// SellerSessionSecret signs seller session tokens. It must differ from
	// CustomerSessionSecret so each namespace is independently rotatable.
	SellerSessionSecret string
	// ActivationBaseURL is the public prefix of activation links embedded in
	// notification emails, e.g. https://souk.example.com/activation
	ActivationBaseURL string
	// Issuer is stamped into every token's iss claim
	Issuer string

	ActivationTTL time.Duration
	SessionTTL    time.Duration
}

// Validate enforces the configuration invariants
func (c Config) Validate() error {
	if err := validation.ValidateStruct(&c,
		validation.Field(&c.ActivationSecret, validation.Required, validation.Length(16, 0)),
		validation.Field(&c.CustomerSessionSecret, validation.Required, validation.Length(16, 0)),
		validation.Field(&c.SellerSessionSecret, validation.Required, validation.Length(16, 0)),
		validation.Field(&c.ActivationBaseURL, validation.Required),
	); err != nil {
		return err
	}

	if c.CustomerSessionSecret == c.SellerSessionSecret {
		return validation.Errors{
			"seller_session_secret": errors.New("customer and seller session secrets must be independently rotatable"),
		}
	}

	return nil
}

func (c *Config) setDefaults() {
	if c.ActivationTTL == 0 {
		c.ActivationTTL = DefaultActivationTTL
	}
	if c.SessionTTL == 0 {
		c.SessionTTL = DefaultSessionTTL
	}
	if c.Issuer == "" {
		c.Issuer = "souk-auth"
	}
}
