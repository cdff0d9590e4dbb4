package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fayiz2005/Kaze/internal/models"
	"github.com/fayiz2005/Kaze/internal/util"

	"github.com/google/uuid"
	"github.com/nanorand/nanorand"
	"go.uber.org/zap"
)

const (
	passwordMinLen = 8
	passwordMaxLen = 32

	resetCooldown = time.Minute
)

type AuthOptions struct {
	AccessTTL time.Duration
	InviteTTL time.Duration
	ResetTTL  time.Duration
}

type AuthService struct {
	users         UserRepo
	invites       InviteRepo
	passwordReset PasswordResetRepo
	hasher        PasswordHasher
	tokens        TokenProvider
	cache         CacheClient // может быть nil: тогда без rate limit
	notifier      Notifier
	tx            AuthTx // nil: без транзакции, только для тестов и утилит

	// dummyHash сравнивается с паролем для неизвестного email, чтобы время
	// ответа Login не выдавало наличие пользователя.
	dummyOnce sync.Once
	dummyHash string

	opts AuthOptions
	now  func() time.Time
	log  *zap.Logger
}

func NewAuthService(
	users UserRepo,
	invites InviteRepo,
	passwordReset PasswordResetRepo,
	hasher PasswordHasher,
	tokens TokenProvider,
	cache CacheClient,
	notifier Notifier,
	opts AuthOptions,
	log *zap.Logger,
) *AuthService {
	return &AuthService{
		users:         users,
		invites:       invites,
		passwordReset: passwordReset,
		hasher:        hasher,
		tokens:        tokens,
		cache:         cache,
		notifier:      notifier,
		opts:          opts,
		now:           time.Now,
		log:           log,
	}
}

func validatePassword(p string) error {
	if n := len(p); n < passwordMinLen || n > passwordMaxLen {
		return fmt.Errorf("%w: password must be %d-%d characters", ErrInvalidInput, passwordMinLen, passwordMaxLen)
	}
	return nil
}

type LoginResult struct {
	User      *models.User
	Token     string
	ExpiresAt time.Time
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, util.NormalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		s.fakeCompare(password)
		return nil, ErrInvalidCredentials
	}
	if !s.hasher.Compare(user.Password, password) {
		return nil, ErrInvalidCredentials
	}
	if !IsAdminRole(user.Role) {
		return nil, ErrForbidden
	}

	tok, exp, err := s.tokens.SignAccess(ctx, user.ID, string(user.Role), s.opts.AccessTTL)
	if err != nil {
		return nil, err
	}
	return &LoginResult{User: user, Token: tok, ExpiresAt: exp}, nil
}

// Authenticate разбирает access-токен для middleware.
func (s *AuthService) Authenticate(ctx context.Context, access string) (*Claims, error) {
	claims, err := s.tokens.ParseAndValidateAccess(ctx, access)
	if err != nil {
		return nil, ErrUnauthorized
	}
	return claims, nil
}

// InviteAdmin: только SUPERADMIN. Прежние неиспользованные приглашения на
// этот адрес отзываются, код уходит письмом.
func (s *AuthService) InviteAdmin(ctx context.Context, email string, role models.Role) (*models.AdminInvite, error) {
	inviterID, inviterRole, err := requireAdmin(ctx)
	if err != nil {
		return nil, err
	}
	if inviterRole != models.RoleSuperAdmin {
		return nil, ErrForbidden
	}

	email = util.NormalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: valid email is required", ErrInvalidInput)
	}
	if role == "" {
		role = models.RoleAdmin
	}
	if !IsAdminRole(role) {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, role)
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAlreadyExists
	}

	if _, err := s.invites.DeletePendingForEmail(ctx, email); err != nil {
		return nil, err
	}

	code, err := nanorand.Gen(10)
	if err != nil {
		return nil, err
	}

	inv := &models.AdminInvite{
		Email:     email,
		Role:      role,
		CodeHash:  util.Sha256Base64URL(code),
		InvitedBy: inviterID,
		ExpiresAt: s.now().UTC().Add(s.opts.InviteTTL),
	}
	if err := s.invites.Create(ctx, inv); err != nil {
		return nil, err
	}

	if err := s.notify(ctx, Notification{
		To:      email,
		Subject: "Admin invitation",
		Body: fmt.Sprintf("You have been invited as %s.\n\nInvitation code: %s\nThe code expires at %s.\n",
			role, code, inv.ExpiresAt.Format(time.RFC1123)),
	}); err != nil {
		return nil, err
	}

	s.log.Info("приглашение администратора создано", zap.String("email", email), zap.String("role", string(role)))
	return inv, nil
}

func (s *AuthService) AcceptInvite(ctx context.Context, email, code, password string) (*models.User, error) {
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	email = util.NormalizeEmail(email)

	inv, err := s.invites.GetValidByHash(ctx, email, util.Sha256Base64URL(code), s.now().UTC())
	if err != nil {
		if isNotFound(err) {
			return nil, ErrInvalidOrExpiredCode
		}
		return nil, err
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAlreadyExists
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	u := &models.User{
		Email:    email,
		Password: hash,
		Role:     inv.Role,
	}
	err = s.inTx(ctx, func(r AuthRepos) error {
		// код одноразовый: гонку двух accept выигрывает тот, кто первым погасил
		consumed, err := r.Invites.Consume(ctx, inv.ID)
		if err != nil {
			return err
		}
		if !consumed {
			return ErrInvalidOrExpiredCode
		}
		return r.Users.Create(ctx, u)
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

// SetTx подключает транзакции: без них погашенный код не вернётся, если
// запись пользователя упала.
func (s *AuthService) SetTx(tx AuthTx) {
	s.tx = tx
}

func (s *AuthService) inTx(ctx context.Context, fn func(r AuthRepos) error) error {
	if s.tx == nil {
		return fn(AuthRepos{Users: s.users, Invites: s.invites, Resets: s.passwordReset})
	}
	return s.tx.InTx(ctx, fn)
}

// fakeCompare тратит на неизвестный email столько же, сколько на проверку
// настоящего пароля.
func (s *AuthService) fakeCompare(password string) {
	s.dummyOnce.Do(func() {
		h, err := s.hasher.Hash("kaze-dummy-password")
		if err != nil {
			s.log.Warn("не удалось подготовить фиктивный хэш", zap.Error(err))
			return
		}
		s.dummyHash = h
	})
	if s.dummyHash != "" {
		s.hasher.Compare(s.dummyHash, password)
	}
}

// RequestPasswordReset не раскрывает, есть ли такой адрес: для неизвестного
// email просто ничего не отправляется.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	email = util.NormalizeEmail(email)
	limitKey := "reset:" + email

	if s.cache != nil {
		limited, err := s.cache.CheckRateLimit(ctx, limitKey)
		if err != nil {
			s.log.Warn("rate limit недоступен", zap.Error(err))
		} else if limited {
			return ErrTooManyRequests
		}
		if err := s.cache.SetRateLimit(ctx, limitKey, resetCooldown); err != nil {
			s.log.Warn("не удалось выставить rate limit", zap.Error(err))
		}
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if u == nil {
		return nil
	}

	code, err := nanorand.Gen(6)
	if err != nil {
		return err
	}

	t := &models.PasswordResetToken{
		UserID:    u.ID,
		Email:     u.Email,
		CodeHash:  util.Sha256Base64URL(code),
		ExpiresAt: s.now().UTC().Add(s.opts.ResetTTL),
	}
	if err := s.passwordReset.Create(ctx, t); err != nil {
		return err
	}

	return s.notify(ctx, Notification{
		To:      u.Email,
		Subject: "Password reset",
		Body:    fmt.Sprintf("Your password reset code: %s\nIf you did not request a reset, ignore this message.\n", code),
	})
}

func (s *AuthService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	u, err := s.users.GetByEmail(ctx, util.NormalizeEmail(email))
	if err != nil {
		return err
	}
	if u == nil {
		return ErrInvalidOrExpiredCode
	}

	t, err := s.passwordReset.GetValidByHash(ctx, u.ID, util.Sha256Base64URL(code), s.now().UTC())
	if err != nil {
		if isNotFound(err) {
			return ErrInvalidOrExpiredCode
		}
		return err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}

	err = s.inTx(ctx, func(r AuthRepos) error {
		consumed, err := r.Resets.Consume(ctx, t.ID)
		if err != nil {
			return err
		}
		if !consumed {
			return ErrInvalidOrExpiredCode
		}
		return r.Users.UpdatePassword(ctx, u.ID, hash)
	})
	if err != nil {
		return err
	}

	if _, err := s.passwordReset.DeleteAllForUser(ctx, u.ID); err != nil {
		s.log.Info("не удалось удалить коды сброса", zap.Error(err))
	}
	return nil
}

// EnsureSuperAdmin создаёт первого SUPERADMIN, если такого адреса ещё нет.
func (s *AuthService) EnsureSuperAdmin(ctx context.Context, email, password string) (bool, error) {
	email = util.NormalizeEmail(email)
	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, nil
	}
	if err := validatePassword(password); err != nil {
		return false, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return false, err
	}
	u := &models.User{ID: uuid.New(), Email: email, Password: hash, Role: models.RoleSuperAdmin}
	if err := s.users.Create(ctx, u); err != nil {
		return false, err
	}
	return true, nil
}

func (s *AuthService) notify(ctx context.Context, n Notification) error {
	if s.notifier == nil {
		s.log.Warn("уведомления отключены, письмо не отправлено", zap.String("to", n.To), zap.String("subject", n.Subject))
		return nil
	}
	return s.notifier.Notify(ctx, n)
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, errRepoNotFound)
}
