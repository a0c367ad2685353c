package config

import (
	"encoding/json"
	"os"

	"github.com/mori-tea/mori/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Durations accept both
// "5m" style strings and integer nanoseconds. Fields left out of the file
// keep their previous value.
type JsonConfig struct {
	EndpointAddrGRPC string `json:"endpoint_addr_grpc"`
	EndpointAddrHTTP string `json:"endpoint_addr_http"`
	DatabaseDSN      string `json:"database_dsn"`

	JWTSecret     string `json:"jwt_secret"`
	JWTAlgorithm  string `json:"jwt_algorithm"`
	EncryptionKey string `json:"encryption_key"`

	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration timex.Duration `json:"refresh_token_validity_duration"`
	URLTokenValidityDuration     timex.Duration `json:"url_token_validity_duration"`

	OTPPeriod timex.Duration `json:"otp_period"`
	OTPDigits int            `json:"otp_digits"`
	OTPSkew   *uint          `json:"otp_skew"`

	SetPasswordURL string `json:"set_password_url"`
	MailFrom       string `json:"mail_from"`

	LogLevel  string `json:"log_level"`
	LogFormat string `json:"log_format"`

	S3RootUser     string `json:"s3_root_user"`
	S3RootPassword string `json:"s3_root_password"`
	S3Bucket       string `json:"s3_bucket"`
	S3Region       string `json:"s3_region"`
	S3BaseEndpoint string `json:"s3_base_endpoint"`
}

// parseJson overlays values from the JSON file at path onto config. An empty
// path means there is no file to load.
func parseJson(config *Config, path string) error {
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return err
	}

	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.JWTSecret, c.JWTSecret)
	setString(&config.JWTAlgorithm, c.JWTAlgorithm)
	setString(&config.EncryptionKey, c.EncryptionKey)
	setString(&config.SetPasswordURL, c.SetPasswordURL)
	setString(&config.MailFrom, c.MailFrom)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.LogFormat, c.LogFormat)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)

	if c.AccessTokenValidityDuration.Duration != 0 {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.RefreshTokenValidityDuration.Duration != 0 {
		config.RefreshTokenValidityDuration = c.RefreshTokenValidityDuration.Duration
	}
	if c.URLTokenValidityDuration.Duration != 0 {
		config.URLTokenValidityDuration = c.URLTokenValidityDuration.Duration
	}
	if c.OTPPeriod.Duration != 0 {
		config.OTPPeriod = c.OTPPeriod.Duration
	}
	if c.OTPDigits != 0 {
		config.OTPDigits = c.OTPDigits
	}
	if c.OTPSkew != nil {
		config.OTPSkew = *c.OTPSkew
	}

	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
