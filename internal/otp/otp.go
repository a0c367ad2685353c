// Package otp issues and checks the short numeric codes emailed during login
// and password reset.
//
// Codes are TOTP values derived from a per-user secret. The secret is kept
// encrypted at rest and only decrypted for the duration of a single call.
package otp

import (
	"fmt"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	DefaultPeriod = 120 * time.Second
	DefaultDigits = 4
	DefaultIssuer = "Mori"
)

// Cipher seals and opens stored secrets.
type Cipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(token string) (string, error)
}

// Options tune the engine. Zero values fall back to the defaults.
//
// Skew is the number of adjacent windows accepted on either side of the
// current one. The default of zero accepts the current window only.
type Options struct {
	Period time.Duration
	Digits int
	Skew   uint
	Issuer string
	Now    func() time.Time
}

// Engine generates and verifies codes. It holds no mutable state and is safe
// for concurrent use.
type Engine struct {
	cipher Cipher
	period uint
	digits otp.Digits
	skew   uint
	issuer string
	now    func() time.Time
}

func NewEngine(c Cipher, o Options) (*Engine, error) {
	if c == nil {
		return nil, fmt.Errorf("otp: cipher is required")
	}
	if o.Period == 0 {
		o.Period = DefaultPeriod
	}
	if o.Period < time.Second {
		return nil, fmt.Errorf("otp: period must be at least 1s, got %s", o.Period)
	}
	if o.Digits == 0 {
		o.Digits = DefaultDigits
	}
	if o.Digits < 4 || o.Digits > 10 {
		return nil, fmt.Errorf("otp: digits must be between 4 and 10, got %d", o.Digits)
	}
	if o.Issuer == "" {
		o.Issuer = DefaultIssuer
	}
	if o.Now == nil {
		o.Now = time.Now
	}

	return &Engine{
		cipher: c,
		period: uint(o.Period / time.Second),
		digits: otp.Digits(o.Digits),
		skew:   o.Skew,
		issuer: o.Issuer,
		now:    o.Now,
	}, nil
}

func (e *Engine) validateOpts() totp.ValidateOpts {
	return totp.ValidateOpts{
		Period:    e.period,
		Skew:      e.skew,
		Digits:    e.digits,
		Algorithm: otp.AlgorithmSHA1,
	}
}

// NewSecret creates a fresh base32 secret for account and returns it
// encrypted, ready to be stored.
func (e *Engine) NewSecret(account string) (string, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      e.issuer,
		AccountName: account,
		Period:      e.period,
		Digits:      e.digits,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return "", fmt.Errorf("otp: generate secret: %w", err)
	}

	sealed, err := e.cipher.Encrypt(key.Secret())
	if err != nil {
		return "", fmt.Errorf("otp: seal secret: %w", err)
	}
	return sealed, nil
}

// Generate returns the code for the current window.
func (e *Engine) Generate(encSecret string) (string, error) {
	return e.GenerateAt(encSecret, e.now())
}

// GenerateAt returns the code for the window containing t.
func (e *Engine) GenerateAt(encSecret string, t time.Time) (string, error) {
	secret, err := e.cipher.Decrypt(encSecret)
	if err != nil {
		return "", fmt.Errorf("otp: open secret: %w", err)
	}

	code, err := totp.GenerateCodeCustom(secret, t, e.validateOpts())
	if err != nil {
		return "", fmt.Errorf("otp: generate code: %w", err)
	}
	return code, nil
}

// Verify reports whether candidate matches the current window. It never
// returns an error: an unreadable secret simply fails verification.
func (e *Engine) Verify(encSecret, candidate string) bool {
	return e.VerifyAt(encSecret, candidate, e.now())
}

func (e *Engine) VerifyAt(encSecret, candidate string, t time.Time) bool {
	candidate = strings.TrimSpace(candidate)
	if len(candidate) != e.digits.Length() {
		return false
	}

	secret, err := e.cipher.Decrypt(encSecret)
	if err != nil {
		return false
	}

	ok, err := totp.ValidateCustom(candidate, secret, t, e.validateOpts())
	if err != nil {
		return false
	}
	return ok
}

// Period reports the window length, used to phrase "expires in" messages.
func (e *Engine) Period() time.Duration {
	return time.Duration(e.period) * time.Second
}
