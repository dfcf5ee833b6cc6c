package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/gtservice/gtledger/internal/domain"
	"github.com/gtservice/gtledger/internal/infrastructure/logger"
	"github.com/gtservice/gtledger/internal/infrastructure/metrics"
)

// TokenIssuer signs session tokens.
type TokenIssuer interface {
	Generate(user *domain.User) (string, time.Time, error)
}

// OTPProvider creates and checks time-based one-time codes.
type OTPProvider interface {
	Generate(account string) (secret, uri string, err error)
	Validate(code, secret string, at time.Time) bool
}

// AuthSettings carries the lockout policy.
type AuthSettings struct {
	MaxFailedAttempts int
	LockoutDuration   time.Duration
	BcryptCost        int
}

// AuthUseCase handles staff accounts and sign in.
type AuthUseCase struct {
	txManager TransactionManager
	userRepo  UserRepository
	auditRepo AuditRepository
	tokens    TokenIssuer
	otp       OTPProvider
	idGen     IDGenerator
	settings  AuthSettings
	now       func() time.Time
	metrics   *metrics.Metrics
	logger    zerolog.Logger

	dummyOnce sync.Once
	dummy     []byte
}

// NewAuthUseCase creates a new AuthUseCase.
func NewAuthUseCase(
	txManager TransactionManager,
	userRepo UserRepository,
	auditRepo AuditRepository,
	tokens TokenIssuer,
	otp OTPProvider,
	idGen IDGenerator,
	settings AuthSettings,
	metrics *metrics.Metrics,
	log zerolog.Logger,
) *AuthUseCase {
	if settings.MaxFailedAttempts <= 0 {
		settings.MaxFailedAttempts = 5
	}
	if settings.LockoutDuration <= 0 {
		settings.LockoutDuration = 15 * time.Minute
	}
	if settings.BcryptCost == 0 {
		settings.BcryptCost = bcrypt.DefaultCost
	}

	return &AuthUseCase{
		txManager: txManager,
		userRepo:  userRepo,
		auditRepo: auditRepo,
		tokens:    tokens,
		otp:       otp,
		idGen:     idGen,
		settings:  settings,
		now:       func() time.Time { return time.Now().UTC() },
		metrics:   metrics,
		logger:    log,
	}
}

// WithClock replaces the time source. Used by tests.
func (uc *AuthUseCase) WithClock(now func() time.Time) *AuthUseCase {
	uc.now = now
	return uc
}

// CreateUserInput represents input for creating a user
type CreateUserInput struct {
	Email    string
	Name     string
	Password string
	Role     domain.Role
}

// CreateUser creates a new user with hashed password
func (uc *AuthUseCase) CreateUser(ctx context.Context, input CreateUserInput) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if err := domain.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := domain.ValidatePassword(input.Password); err != nil {
		return nil, err
	}
	if err := domain.ValidateName(input.Name); err != nil {
		return nil, err
	}
	if !input.Role.IsValid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInsufficientRole, input.Role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), uc.settings.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := uc.now()
	user := &domain.User{
		ID:           uc.idGen.Generate(),
		Email:        email,
		Name:         strings.TrimSpace(input.Name),
		Role:         input.Role,
		PasswordHash: string(hash),
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, domain.NewPersistenceError("create user", err)
	}

	uc.audit(ctx, domain.NewAuditLog(ctx, uc.idGen.Generate(), domain.AuditActionUserCreate, "user", user.ID, redact(user)))

	return redact(user), nil
}

// LoginInput represents sign in credentials.
type LoginInput struct {
	Email    string
	Password string
	TOTPCode string
}

// LoginResult is a successful sign in.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

// Login verifies credentials and issues a token. Failed attempts are counted
// and persisted even though the call fails; enough of them lock the account.
func (uc *AuthUseCase) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	now := uc.now()

	type outcome struct {
		user   *domain.User
		err    error
		locked bool
	}

	out, err := inTransaction(ctx, uc.txManager, "login", func(txCtx context.Context, tx Transaction) (outcome, error) {
		user, err := uc.userRepo.GetByEmailForUpdate(txCtx, tx, email)
		if errors.Is(err, domain.ErrUserNotFound) {
			// Same bcrypt work as a real account so timing does not reveal
			// which emails exist.
			_ = bcrypt.CompareHashAndPassword(uc.dummyHash(), []byte(input.Password))
			result := outcome{err: domain.ErrInvalidCredentials}
			return result, uc.auditLogin(ctx, txCtx, tx, "", email, result.err)
		}
		if err != nil {
			return outcome{}, domain.NewPersistenceError("load user", err)
		}

		if !user.Active {
			result := outcome{user: user, err: domain.ErrAccountInactive}
			return result, uc.auditLogin(ctx, txCtx, tx, user.ID, user.ID, result.err)
		}
		if user.IsLocked(now) {
			result := outcome{user: user, err: domain.ErrAccountLocked}
			return result, uc.auditLogin(ctx, txCtx, tx, user.ID, user.ID, result.err)
		}

		var failure error
		if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)) != nil {
			failure = domain.ErrInvalidCredentials
		} else if user.TOTPEnabled && !uc.otp.Validate(input.TOTPCode, user.TOTPSecret, now) {
			failure = domain.ErrInvalidTOTP
		}

		result := outcome{user: user, err: failure}
		if failure != nil {
			result.locked = user.RegisterFailure(now, uc.settings.MaxFailedAttempts, uc.settings.LockoutDuration)
		} else {
			user.RegisterSuccess(now)
		}

		if err := uc.userRepo.UpdateSecurity(txCtx, tx, user); err != nil {
			return outcome{}, domain.NewPersistenceError("update user security", err)
		}

		if err := uc.auditLogin(ctx, txCtx, tx, user.ID, user.ID, failure); err != nil {
			return outcome{}, err
		}

		if result.locked {
			locked := domain.NewAuditLog(ctx, uc.idGen.Generate(), domain.AuditActionUserLocked, "user", user.ID,
				map[string]any{"locked_until": user.LockedUntil})
			locked.UserID = user.ID
			if err := writeAudit(txCtx, tx, uc.auditRepo, locked); err != nil {
				return outcome{}, err
			}
		}

		return result, nil
	})
	if err != nil {
		uc.countAttempt("error")
		return nil, err
	}

	log := logger.FromContext(ctx, uc.logger)

	if out.err != nil {
		uc.countAttempt(attemptOutcome(out.err))
		if out.locked {
			if uc.metrics != nil {
				uc.metrics.AuthLockouts.Inc()
			}
			log.Warn().Str("email", email).Msg("account locked after repeated failures")
		}
		return nil, out.err
	}

	token, expiresAt, err := uc.tokens.Generate(out.user)
	if err != nil {
		uc.countAttempt("error")
		return nil, err
	}

	uc.countAttempt("success")
	log.Info().Str("user_id", out.user.ID).Msg("user signed in")

	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: redact(out.user)}, nil
}

// TOTPEnrollment carries a freshly generated secret until it is confirmed.
type TOTPEnrollment struct {
	Secret string
	URI    string
}

// EnrollTOTP generates a secret for the user. Two-factor stays disabled until
// ConfirmTOTP proves the authenticator app has it.
func (uc *AuthUseCase) EnrollTOTP(ctx context.Context, userID string) (*TOTPEnrollment, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, domain.NewPersistenceError("get user", err)
	}

	secret, uri, err := uc.otp.Generate(user.Email)
	if err != nil {
		return nil, err
	}

	user.TOTPSecret = secret
	user.TOTPEnabled = false
	user.UpdatedAt = uc.now()

	if err := uc.userRepo.UpdateTOTP(ctx, user); err != nil {
		return nil, domain.NewPersistenceError("store totp secret", err)
	}

	uc.audit(ctx, domain.NewAuditLog(ctx, uc.idGen.Generate(), domain.AuditActionTOTPEnroll, "user", user.ID, nil))

	return &TOTPEnrollment{Secret: secret, URI: uri}, nil
}

// ConfirmTOTP enables two-factor sign in once the user proves a valid code.
func (uc *AuthUseCase) ConfirmTOTP(ctx context.Context, userID, code string) error {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return domain.NewPersistenceError("get user", err)
	}
	if user.TOTPSecret == "" {
		return domain.ErrTOTPNotEnrolled
	}

	now := uc.now()
	if !uc.otp.Validate(code, user.TOTPSecret, now) {
		return domain.ErrInvalidTOTP
	}

	user.TOTPEnabled = true
	user.UpdatedAt = now

	if err := uc.userRepo.UpdateTOTP(ctx, user); err != nil {
		return domain.NewPersistenceError("enable totp", err)
	}

	uc.audit(ctx, domain.NewAuditLog(ctx, uc.idGen.Generate(), domain.AuditActionTOTPConfirm, "user", user.ID, nil))

	return nil
}

// GetUser retrieves a user by ID
func (uc *AuthUseCase) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := uc.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, domain.NewPersistenceError("get user", err)
	}
	return redact(user), nil
}

// SetUserActive enables or disables sign in for a user.
func (uc *AuthUseCase) SetUserActive(ctx context.Context, id string, active bool) error {
	if err := uc.userRepo.SetActive(ctx, id, active); err != nil {
		return domain.NewPersistenceError("set user active", err)
	}

	uc.audit(ctx, domain.NewAuditLog(ctx, uc.idGen.Generate(), domain.AuditActionUserActive, "user", id,
		map[string]any{"active": active}))

	return nil
}

func (uc *AuthUseCase) audit(ctx context.Context, log *domain.AuditLog) {
	if uc.auditRepo == nil {
		return
	}
	if err := uc.auditRepo.Create(ctx, log); err != nil {
		logger.FromContext(ctx, uc.logger).Error().Err(err).Str("action", log.Action).Msg("failed to write audit log")
	}
}

// auditLogin records one sign in attempt. Unknown emails have no user, so
// the attempted address is kept as the resource.
func (uc *AuthUseCase) auditLogin(ctx, txCtx context.Context, tx Transaction, userID, resourceID string, failure error) error {
	entry := domain.NewAuditLog(ctx, uc.idGen.Generate(), domain.AuditActionUserLogin, "user", resourceID, nil)
	entry.UserID = userID
	if failure != nil {
		entry.Status = string(domain.AuditStatusFailure)
		entry.ErrorMessage = failure.Error()
	}
	return writeAudit(txCtx, tx, uc.auditRepo, entry)
}

func (uc *AuthUseCase) dummyHash() []byte {
	uc.dummyOnce.Do(func() {
		uc.dummy, _ = bcrypt.GenerateFromPassword([]byte("gtledger-unknown-user"), uc.settings.BcryptCost)
	})
	return uc.dummy
}

func (uc *AuthUseCase) countAttempt(outcome string) {
	if uc.metrics != nil {
		uc.metrics.AuthAttempts.WithLabelValues(outcome).Inc()
	}
}

func attemptOutcome(err error) string {
	switch {
	case errors.Is(err, domain.ErrAccountLocked):
		return "locked"
	case errors.Is(err, domain.ErrAccountInactive):
		return "inactive"
	case errors.Is(err, domain.ErrInvalidTOTP):
		return "invalid_totp"
	default:
		return "invalid_credentials"
	}
}

// redact returns a copy of user without credentials.
func redact(user *domain.User) *domain.User {
	clean := *user
	clean.PasswordHash = ""
	clean.TOTPSecret = ""
	return &clean
}
