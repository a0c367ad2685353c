// Package services contains server-side business logic. This file implements
// UserService, which covers onboarding by set-password link, the
// password + emailed OTP login, session refresh and password reset.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/mori-tea/mori/internal/common"
	"github.com/mori-tea/mori/internal/dbx"
	"github.com/mori-tea/mori/internal/logging"
	"github.com/mori-tea/mori/internal/otp"
	"github.com/mori-tea/mori/internal/server/auth"
	"github.com/mori-tea/mori/internal/server/config"
	"github.com/mori-tea/mori/internal/server/mail"
	"github.com/mori-tea/mori/internal/server/models"
	"github.com/mori-tea/mori/internal/server/repositories/repomanager"
	"golang.org/x/crypto/bcrypt"
)

const (
	MinPasswordLength = 8

	challengeValidity = 5 * time.Minute
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

// Cipher seals values that leave the server, such as set-password tokens.
type Cipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(token string) (string, error)
}

// NewUser is what an admin supplies to register someone. CentraID and
// WarehouseID create the scope assignment for Centra and XYZ users.
type NewUser struct {
	Email       string
	FullName    string
	Role        models.Role
	IDORole     string
	Phone       string
	CentraID    *int64
	WarehouseID *int64
}

type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	cipher      Cipher
	codes       *otp.Engine
	issuer      *auth.Issuer
	renderer    *mail.Renderer
	sender      mail.Sender
	log         logging.Logger

	setPasswordURL string
	urlTokenTTL    time.Duration
	challengeTTL   time.Duration
	attempts       *attemptLimiter
	bcryptCost     int
	now            func() time.Time
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config,
	cipher Cipher, codes *otp.Engine, issuer *auth.Issuer, sender mail.Sender, l logging.Logger) (*UserService, error) {

	renderer, err := mail.NewRenderer(cfg.MailFrom)
	if err != nil {
		return nil, err
	}
	return &UserService{
		db:             db,
		repomanager:    m,
		cipher:         cipher,
		codes:          codes,
		issuer:         issuer,
		renderer:       renderer,
		sender:         sender,
		log:            l.With("module", "users"),
		setPasswordURL: cfg.SetPasswordURL,
		urlTokenTTL:    cfg.URLTokenValidityDuration,
		challengeTTL:   challengeValidity,
		attempts:       newAttemptLimiter(MaxCodeAttempts),
		bcryptCost:     bcrypt.DefaultCost,
		now:            time.Now,
	}, nil
}

// Register creates the account, its OTP secret, its scope assignment and a
// single-use set-password token, then emails the link. The whole
// registration is rolled back if the email cannot be sent.
func (s *UserService) Register(ctx context.Context, actor auth.Identity, in NewUser) (*models.User, error) {
	if actor.Role != models.RoleAdmin {
		return nil, common.ErrorForbidden
	}
	email := normalizeEmail(in.Email)
	if !strings.Contains(email, "@") || strings.TrimSpace(in.FullName) == "" || !in.Role.Valid() {
		return nil, fmt.Errorf("%w: email, full name and a known role are required", common.ErrorValidation)
	}

	secret, err := s.codes.NewSecret(email)
	if err != nil {
		return nil, fmt.Errorf("error creating otp secret: %w", err)
	}

	var user *models.User
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		u, err := s.repomanager.Users(tx).Create(ctx, &models.User{
			Email:     email,
			FullName:  strings.TrimSpace(in.FullName),
			Role:      in.Role,
			IDORole:   in.IDORole,
			Phone:     in.Phone,
			SecretKey: secret,
		})
		if err != nil {
			return err
		}

		scopes := s.repomanager.Scopes(tx)
		if in.Role == models.RoleCentra && in.CentraID != nil {
			if err := scopes.AssignCentra(ctx, u.ID, *in.CentraID); err != nil {
				return err
			}
		}
		if in.Role == models.RoleXYZ && in.WarehouseID != nil {
			if err := scopes.AssignWarehouse(ctx, u.ID, *in.WarehouseID); err != nil {
				return err
			}
		}

		value, err := common.MakeRandHexString(32)
		if err != nil {
			return err
		}
		if err := s.repomanager.URLTokens(tx).Create(ctx, &models.URLToken{
			Value:     value,
			UserID:    u.ID,
			ExpiresAt: s.now().Add(s.urlTokenTTL),
		}); err != nil {
			return err
		}

		sealed, err := s.cipher.Encrypt(value)
		if err != nil {
			return err
		}
		msg, err := s.renderer.SetPassword(u.Email, u.FullName, s.setPasswordLink(sealed), s.urlTokenTTL)
		if err != nil {
			return err
		}
		if err := s.sender.Send(ctx, msg); err != nil {
			return fmt.Errorf("%w: %v", common.ErrEmailDeliveryFailed, err)
		}

		user = u
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "user registered", "user_id", user.ID, "role", user.Role)
	return user, nil
}

func (s *UserService) setPasswordLink(sealed string) string {
	sep := "?"
	if strings.Contains(s.setPasswordURL, "?") {
		sep = "&"
	}
	return s.setPasswordURL + sep + "token=" + url.QueryEscape(sealed)
}

// ValidateSetupLink reports whether a set-password token is still usable.
func (s *UserService) ValidateSetupLink(ctx context.Context, token string) error {
	_, err := s.findURLToken(ctx, s.repomanager.URLTokens(s.db), token)
	return err
}

// SetPassword consumes a set-password token. The token is deleted before the
// hash is stored in the same transaction; a concurrent request that loses the
// delete gets common.ErrInvalidToken and rolls back.
func (s *UserService) SetPassword(ctx context.Context, token, password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", common.ErrorValidation, MinPasswordLength)
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		tokens := s.repomanager.URLTokens(tx)
		t, err := s.findURLToken(ctx, tokens, token)
		if err != nil {
			return err
		}

		if err := tokens.Delete(ctx, t.Value); err != nil {
			return err
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
		if err != nil {
			return fmt.Errorf("error hashing password: %w", err)
		}
		return s.repomanager.Users(tx).SetPassword(ctx, t.UserID, string(hash))
	})
}

type urlTokenFinder interface {
	Find(ctx context.Context, value string) (*models.URLToken, error)
}

func (s *UserService) findURLToken(ctx context.Context, repo urlTokenFinder, sealed string) (*models.URLToken, error) {
	value, err := s.cipher.Decrypt(sealed)
	if err != nil {
		return nil, common.ErrInvalidToken
	}
	t, err := repo.Find(ctx, value)
	if err != nil {
		return nil, err
	}
	if t.Expired(s.now()) {
		return nil, common.ErrInvalidToken
	}
	return t, nil
}

// Login checks the password, emails the current OTP and returns the login
// challenge VerifyOTP requires. Unknown emails, accounts without a password
// and wrong passwords are indistinguishable.
func (s *UserService) Login(ctx context.Context, email, password string) (*Challenge, error) {
	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.IsPasswordSet || bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)) != nil {
		return nil, common.ErrInvalidCredentials
	}
	if err := s.sendCode(ctx, user, s.renderer.LoginOTP); err != nil {
		return nil, err
	}
	return s.issueChallenge(user.ID, purposeLogin)
}

// ResendOTP emails the login code again. Within one window it is the same code.
func (s *UserService) ResendOTP(ctx context.Context, challenge string) error {
	user, err := s.challengeUser(ctx, challenge, purposeLogin)
	if err != nil {
		return err
	}
	return s.sendCode(ctx, user, s.renderer.LoginOTP)
}

// VerifyOTP completes a login started by Login and issues the session.
func (s *UserService) VerifyOTP(ctx context.Context, challenge, code string) (*TokenPair, error) {
	user, err := s.challengeUser(ctx, challenge, purposeLogin)
	if err != nil {
		return nil, err
	}
	if err := s.checkCode(ctx, user, code); err != nil {
		return nil, err
	}

	var pair *TokenPair
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		id, err := s.identity(ctx, tx, user)
		if err != nil {
			return err
		}
		pair, err = s.issuePair(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "session issued", "user_id", user.ID, "role", user.Role)
	s.purgeExpiredSessions(ctx)
	return pair, nil
}

// Refresh issues a new access token for a live refresh token. The refresh
// token itself is kept. Scope is resolved again, so reassignments take
// effect on the next refresh.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.issuer.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, err
	}

	stored, err := s.repomanager.RefreshTokens(s.db).Find(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidToken
		}
		return nil, err
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, stored.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidToken
		}
		return nil, err
	}

	id, err := s.identity(ctx, s.db, user)
	if err != nil {
		return nil, err
	}
	access, err := s.issuer.IssueAccess(id)
	if err != nil {
		return nil, common.ErrorInternal
	}

	return &TokenPair{
		AccessToken:      access.Value,
		AccessExpiresAt:  access.ExpiresAt,
		RefreshToken:     refreshToken,
		RefreshExpiresAt: stored.Expires,
	}, nil
}

// Logout revokes a refresh token. Revoking an unknown token is not an error.
func (s *UserService) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.issuer.VerifyRefresh(refreshToken)
	if err != nil {
		return err
	}
	if err := s.repomanager.RefreshTokens(s.db).Delete(ctx, claims.ID); err != nil {
		return err
	}
	s.purgeExpiredSessions(ctx)
	return nil
}

// PurgeExpiredSessions drops refresh tokens past their expiry. It runs
// after each login and logout.
func (s *UserService) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	return s.repomanager.RefreshTokens(s.db).DeleteExpired(ctx)
}

func (s *UserService) purgeExpiredSessions(ctx context.Context) {
	n, err := s.PurgeExpiredSessions(ctx)
	if err != nil {
		s.log.Warn(ctx, "purge expired sessions", "error", err)
		return
	}
	if n > 0 {
		s.log.Debug(ctx, "purged expired sessions", "count", n)
	}
}

// RequestPasswordReset emails a reset code and returns the reset challenge.
// Unknown emails and accounts still in onboarding get a challenge that never
// verifies and no email, so callers cannot tell them apart.
func (s *UserService) RequestPasswordReset(ctx context.Context, email string) (*Challenge, error) {
	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, normalizeEmail(email))
	switch {
	case errors.Is(err, common.ErrorNotFound):
		s.log.Debug(ctx, "password reset for unknown email")
		return s.issueChallenge(0, purposeReset)
	case err != nil:
		return nil, err
	case !user.IsPasswordSet:
		s.log.Debug(ctx, "password reset before onboarding", "user_id", user.ID)
		return s.issueChallenge(0, purposeReset)
	}

	if err := s.sendCode(ctx, user, s.renderer.ResetOTP); err != nil {
		return nil, err
	}
	return s.issueChallenge(user.ID, purposeReset)
}

func (s *UserService) VerifyPasswordReset(ctx context.Context, challenge, code string) error {
	user, err := s.challengeUser(ctx, challenge, purposeReset)
	if err != nil {
		return err
	}
	return s.checkCode(ctx, user, code)
}

// ResetPassword sets a new password after checking the reset code again.
func (s *UserService) ResetPassword(ctx context.Context, challenge, code, newPassword string) error {
	if len(newPassword) < MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", common.ErrorValidation, MinPasswordLength)
	}
	user, err := s.challengeUser(ctx, challenge, purposeReset)
	if err != nil {
		return err
	}
	if err := s.checkCode(ctx, user, code); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		users := s.repomanager.Users(tx)
		current, err := users.GetByID(ctx, user.ID)
		if err != nil {
			return err
		}
		if !current.IsPasswordSet {
			return common.ErrInvalidCredentials
		}
		return users.SetPassword(ctx, user.ID, string(hash))
	})
	if err != nil {
		return err
	}

	s.log.Info(ctx, "password reset", "user_id", user.ID)
	return nil
}

// --- helpers below ---

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// challengeUser opens a challenge and loads its user. A challenge for an
// unknown user or one without a password fails like a wrong code.
func (s *UserService) challengeUser(ctx context.Context, challenge string, purpose challengePurpose) (*models.User, error) {
	userID, err := s.openChallenge(challenge, purpose)
	if err != nil {
		return nil, err
	}
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("%w: otp verification failed", common.ErrInvalidCredentials)
		}
		return nil, err
	}
	if !user.IsPasswordSet {
		return nil, fmt.Errorf("%w: otp verification failed", common.ErrInvalidCredentials)
	}
	return user, nil
}

// checkCode verifies an OTP within the per-window attempt budget.
func (s *UserService) checkCode(ctx context.Context, user *models.User, code string) error {
	window := s.now().Unix() / int64(s.codes.Period()/time.Second)
	if !s.attempts.take(attemptKey{userID: user.ID, window: window}) {
		s.log.Warn(ctx, "otp attempts exhausted", "user_id", user.ID)
		return common.ErrTooManyAttempts
	}
	if !s.codes.Verify(user.SecretKey, code) {
		s.log.Info(ctx, "otp verification failed", "user_id", user.ID)
		return fmt.Errorf("%w: otp verification failed", common.ErrInvalidCredentials)
	}
	return nil
}

type codeTemplate func(to, name, code string, validity time.Duration) (mail.Message, error)

func (s *UserService) sendCode(ctx context.Context, user *models.User, tmpl codeTemplate) error {
	code, err := s.codes.Generate(user.SecretKey)
	if err != nil {
		return fmt.Errorf("error generating otp: %w", err)
	}
	msg, err := tmpl(user.Email, user.FullName, code, s.codes.Period())
	if err != nil {
		return err
	}
	if err := s.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("%w: %v", common.ErrEmailDeliveryFailed, err)
	}
	return nil
}

// identity resolves the tenant scope carried in the tokens. A Centra or XYZ
// user without an active assignment gets a token without scope.
func (s *UserService) identity(ctx context.Context, db dbx.DBTX, user *models.User) (auth.Identity, error) {
	id := auth.Identity{UserID: user.ID, Role: user.Role, Name: user.FullName}
	scopes := s.repomanager.Scopes(db)

	var (
		target *int64
		lookup func(context.Context, int64) (int64, error)
	)
	switch user.Role {
	case models.RoleCentra:
		target, lookup = new(int64), scopes.CentraForUser
		id.CentraID = target
	case models.RoleXYZ:
		target, lookup = new(int64), scopes.WarehouseForUser
		id.WarehouseID = target
	default:
		return id, nil
	}

	v, err := lookup(ctx, user.ID)
	switch {
	case err == nil:
		*target = v
	case errors.Is(err, common.ErrorNotFound):
		id.CentraID, id.WarehouseID = nil, nil
	default:
		return auth.Identity{}, err
	}
	return id, nil
}

func (s *UserService) issuePair(ctx context.Context, tx dbx.DBTX, id auth.Identity) (*TokenPair, error) {
	access, err := s.issuer.IssueAccess(id)
	if err != nil {
		return nil, common.ErrorInternal
	}
	refresh, err := s.issuer.IssueRefresh(id)
	if err != nil {
		return nil, common.ErrorInternal
	}
	if err := s.repomanager.RefreshTokens(tx).Create(ctx, &models.RefreshToken{
		ID:      refresh.ID,
		UserID:  id.UserID,
		Expires: refresh.ExpiresAt,
	}); err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:      access.Value,
		AccessExpiresAt:  access.ExpiresAt,
		RefreshToken:     refresh.Value,
		RefreshExpiresAt: refresh.ExpiresAt,
	}, nil
}
