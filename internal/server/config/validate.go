package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/mori-tea/mori/internal/cryptox"
)

// Validate fails fast on settings the server cannot run without.
func (c *Config) Validate() error {
	var errs []error

	if c.JWTSecret == "" {
		errs = append(errs, errors.New("jwt secret is not set"))
	}
	switch c.JWTAlgorithm {
	case "HS256", "HS384", "HS512":
	case "":
		errs = append(errs, errors.New("jwt algorithm is not set"))
	default:
		errs = append(errs, fmt.Errorf("unsupported jwt algorithm %q", c.JWTAlgorithm))
	}
	if _, err := cryptox.ParseKey(c.EncryptionKey); err != nil {
		errs = append(errs, err)
	}
	if c.AccessTokenValidityDuration <= 0 || c.RefreshTokenValidityDuration <= 0 {
		errs = append(errs, errors.New("token lifetimes must be positive"))
	}
	if c.AccessTokenValidityDuration >= c.RefreshTokenValidityDuration {
		errs = append(errs, errors.New("access token must expire before refresh token"))
	}
	if c.OTPPeriod < time.Second {
		errs = append(errs, errors.New("otp period must be at least 1s"))
	}
	if c.OTPDigits < 4 || c.OTPDigits > 10 {
		errs = append(errs, fmt.Errorf("otp digits must be between 4 and 10, got %d", c.OTPDigits))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
