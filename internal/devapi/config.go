package devapi

import (
	"crypto/rand"
	"time"

	"github.com/golang/glog"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

const envconfigPrefix = "MENTORA_DEVAPI"

// We use an exported interface to govern access to our config because the
// underlying struct has fields we don't want to expose.
type Config interface {
	Port() int
	TokenSigningKey() []byte
	TokenTTL() time.Duration
	AllowedOrigins() []string
}

type config struct {
	PortAttr            int           `envconfig:"PORT"`
	TokenSigningKeyAttr string        `envconfig:"TOKEN_SIGNING_KEY"`
	TokenTTLAttr        time.Duration `envconfig:"TOKEN_TTL"`
	AllowedOriginsAttr  []string      `envconfig:"ALLOWED_ORIGINS"`
	signingKey          []byte
}

// NewConfigWithDefaults returns a Config object with default values already
// applied. Callers are then free to set custom values for the remaining fields
// and/or override default values.
func NewConfigWithDefaults() Config {
	return &config{
		PortAttr:           8080,
		TokenTTLAttr:       24 * time.Hour,
		AllowedOriginsAttr: []string{"*"},
	}
}

// GetConfigFromEnvironment returns configuration derived from environment
// variables
func GetConfigFromEnvironment() (Config, error) {
	c := NewConfigWithDefaults().(*config)
	if err := envconfig.Process(envconfigPrefix, c); err != nil {
		return c, errors.Wrap(
			err,
			"error getting development API server configuration from environment",
		)
	}
	if c.TokenTTLAttr <= 0 {
		return c, errors.Errorf(
			"invalid value %s for the %s_TOKEN_TTL environment variable; it must "+
				"be positive",
			c.TokenTTLAttr,
			envconfigPrefix,
		)
	}
	if c.TokenSigningKeyAttr == "" {
		glog.Warningf(
			"%s_TOKEN_SIGNING_KEY is unset; using a random signing key, so tokens "+
				"will not survive a restart",
			envconfigPrefix,
		)
		c.signingKey = make([]byte, 32)
		if _, err := rand.Read(c.signingKey); err != nil {
			return c, errors.Wrap(err, "error generating token signing key")
		}
	} else {
		c.signingKey = []byte(c.TokenSigningKeyAttr)
		// Don't let the key float around in memory twice
		c.TokenSigningKeyAttr = ""
	}
	return c, nil
}

func (c *config) Port() int {
	return c.PortAttr
}

func (c *config) TokenSigningKey() []byte {
	return c.signingKey
}

func (c *config) TokenTTL() time.Duration {
	return c.TokenTTLAttr
}

func (c *config) AllowedOrigins() []string {
	return c.AllowedOriginsAttr
}
