package services

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/mori-tea/mori/internal/common"
)

type challengePurpose string

const (
	purposeLogin challengePurpose = "login"
	purposeReset challengePurpose = "reset"

	// MaxCodeAttempts bounds code checks per user and OTP window.
	MaxCodeAttempts = 5
)

// Challenge binds a code check to an earlier step: Login for the login
// code, RequestPasswordReset for the reset code.
type Challenge struct {
	Value     string
	ExpiresAt time.Time
}

type challengeClaims struct {
	UserID    int64            `json:"uid"`
	Purpose   challengePurpose `json:"pur"`
	ExpiresAt time.Time        `json:"exp"`
	Nonce     string           `json:"n"`
}

func (s *UserService) issueChallenge(userID int64, purpose challengePurpose) (*Challenge, error) {
	nonce, err := common.MakeRandHexString(8)
	if err != nil {
		return nil, err
	}
	c := challengeClaims{
		UserID:    userID,
		Purpose:   purpose,
		ExpiresAt: s.now().Add(s.challengeTTL),
		Nonce:     nonce,
	}
	b, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	sealed, err := s.cipher.Encrypt(string(b))
	if err != nil {
		return nil, fmt.Errorf("error sealing challenge: %w", err)
	}
	return &Challenge{Value: sealed, ExpiresAt: c.ExpiresAt}, nil
}

// openChallenge returns the user id sealed in a challenge of the given
// purpose. Expiry is reported as an invalid token so clients do not try a
// session refresh.
func (s *UserService) openChallenge(sealed string, purpose challengePurpose) (int64, error) {
	plain, err := s.cipher.Decrypt(sealed)
	if err != nil {
		return 0, common.ErrInvalidToken
	}
	var c challengeClaims
	if err := json.Unmarshal([]byte(plain), &c); err != nil || c.Purpose != purpose || c.UserID < 0 {
		return 0, common.ErrInvalidToken
	}
	if !s.now().Before(c.ExpiresAt) {
		return 0, fmt.Errorf("%w: challenge expired", common.ErrInvalidToken)
	}
	return c.UserID, nil
}

type attemptKey struct {
	userID int64
	window int64
}

// attemptLimiter counts code checks per user and OTP window. Counts live in
// process memory.
type attemptLimiter struct {
	mu    sync.Mutex
	max   int
	count map[attemptKey]int
}

func newAttemptLimiter(max int) *attemptLimiter {
	return &attemptLimiter{max: max, count: map[attemptKey]int{}}
}

// take records one attempt and reports whether it is within the limit.
func (l *attemptLimiter) take(k attemptKey) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	for old := range l.count {
		if old.window < k.window-1 {
			delete(l.count, old)
		}
	}
	if l.count[k] >= l.max {
		return false
	}
	l.count[k]++
	return true
}
