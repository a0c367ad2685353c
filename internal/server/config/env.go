package config

import (
	"fmt"
	"strconv"
	"time"
)

const envPrefix = "MORI_"

// parseEnv overlays MORI_* environment variables onto config. Durations use
// time.ParseDuration syntax.
func parseEnv(config *Config, getenv func(string) string) error {
	strs := map[string]*string{
		"GRPC_ADDRESS":     &config.EndpointAddrGRPC,
		"HTTP_ADDRESS":     &config.EndpointAddrHTTP,
		"DATABASE_DSN":     &config.DatabaseDSN,
		"JWT_SECRET":       &config.JWTSecret,
		"JWT_ALGORITHM":    &config.JWTAlgorithm,
		"ENCRYPTION_KEY":   &config.EncryptionKey,
		"SET_PASSWORD_URL": &config.SetPasswordURL,
		"MAIL_FROM":        &config.MailFrom,
		"LOG_LEVEL":        &config.LogLevel,
		"LOG_FORMAT":       &config.LogFormat,
		"S3_ACCESS_KEY":    &config.S3RootUser,
		"S3_SECRET_KEY":    &config.S3RootPassword,
		"S3_BUCKET":        &config.S3Bucket,
		"S3_REGION":        &config.S3Region,
		"S3_ENDPOINT":      &config.S3BaseEndpoint,
	}
	for name, dst := range strs {
		setString(dst, getenv(envPrefix+name))
	}

	durations := map[string]*time.Duration{
		"ACCESS_TOKEN_TTL":  &config.AccessTokenValidityDuration,
		"REFRESH_TOKEN_TTL": &config.RefreshTokenValidityDuration,
		"URL_TOKEN_TTL":     &config.URLTokenValidityDuration,
		"OTP_PERIOD":        &config.OTPPeriod,
	}
	for name, dst := range durations {
		v := getenv(envPrefix + name)
		if v == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", envPrefix, name, err)
		}
		*dst = d
	}

	if v := getenv(envPrefix + "OTP_DIGITS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sOTP_DIGITS: %w", envPrefix, err)
		}
		config.OTPDigits = n
	}
	if v := getenv(envPrefix + "OTP_SKEW"); v != "" {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return fmt.Errorf("%sOTP_SKEW: %w", envPrefix, err)
		}
		config.OTPSkew = uint(n)
	}

	return nil
}
