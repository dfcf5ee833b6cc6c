package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"

	"github.com/gtservice/gtledger/internal/adapter/repository/memory"
	"github.com/gtservice/gtledger/internal/domain"
	"github.com/gtservice/gtledger/internal/infrastructure/auth"
	"github.com/gtservice/gtledger/internal/infrastructure/metrics"
	"github.com/gtservice/gtledger/internal/usecase"
	"github.com/gtservice/gtledger/internal/usecase/mocks"
)

const testPassword = "Workshop2025"

type clock struct {
	now time.Time
}

func (c *clock) Now() time.Time { return c.now }

type authFixture struct {
	uc      *usecase.AuthUseCase
	users   *memory.UserRepository
	audit   *memory.AuditRepository
	jwt     *auth.JWTManager
	clock   *clock
	metrics *metrics.Metrics
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	store := memory.NewStore()
	f := &authFixture{
		users:   memory.NewUserRepository(store),
		audit:   memory.NewAuditRepository(store),
		jwt:     auth.NewJWTManager("test-secret", time.Hour),
		clock:   &clock{now: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)},
		metrics: metrics.NewWithRegistry(prometheus.NewRegistry()),
	}

	f.uc = usecase.NewAuthUseCase(memory.NewTxManager(store), f.users, f.audit, f.jwt, auth.NewTOTP("GT Service"),
		&sequentialIDs{}, usecase.AuthSettings{
			MaxFailedAttempts: 3,
			LockoutDuration:   15 * time.Minute,
			BcryptCost:        bcrypt.MinCost,
		}, f.metrics, zerolog.Nop()).WithClock(f.clock.Now)

	return f
}

func (f *authFixture) createUser(t *testing.T) *domain.User {
	t.Helper()

	user, err := f.uc.CreateUser(context.Background(), usecase.CreateUserInput{
		Email:    "Ana@GTService.example",
		Name:     "Ana López",
		Password: testPassword,
		Role:     domain.RoleMechanic,
	})
	require.NoError(t, err)
	return user
}

func TestCreateUser(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)
	ctx := context.Background()

	user := f.createUser(t)
	assert.Equal(t, "ana@gtservice.example", user.Email)
	assert.Empty(t, user.PasswordHash)
	assert.True(t, user.Active)

	stored, err := f.users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte(testPassword)))

	_, err = f.uc.CreateUser(ctx, usecase.CreateUserInput{Email: "ana@gtservice.example", Name: "Ana", Password: testPassword, Role: domain.RoleViewer})
	assert.ErrorIs(t, err, domain.ErrDuplicateEmail)

	_, err = f.uc.CreateUser(ctx, usecase.CreateUserInput{Email: "b@gtservice.example", Name: "B", Password: "short", Role: domain.RoleViewer})
	assert.ErrorIs(t, err, domain.ErrPasswordTooWeak)

	_, err = f.uc.CreateUser(ctx, usecase.CreateUserInput{Email: "c@gtservice.example", Name: "C", Password: testPassword, Role: "owner"})
	assert.ErrorIs(t, err, domain.ErrInsufficientRole)
}

func TestLogin_IssuesVerifiableToken(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)
	user := f.createUser(t)

	result, err := f.uc.Login(context.Background(), usecase.LoginInput{Email: " ANA@gtservice.example", Password: testPassword})
	require.NoError(t, err)
	assert.Empty(t, result.User.PasswordHash)

	claims, err := f.jwt.Verify(result.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, domain.RoleMechanic, claims.Role)

	stored, err := f.users.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.LastLoginAt)
	assert.Equal(t, f.clock.now, *stored.LastLoginAt)

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.AuthAttempts.WithLabelValues("success")))
}

func TestLogin_UnknownEmail(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)

	ctx := context.Background()

	_, err := f.uc.Login(ctx, usecase.LoginInput{Email: "nobody@gtservice.example", Password: testPassword})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	logs, err := f.audit.List(ctx, domain.AuditFilter{ResourceID: "nobody@gtservice.example", Action: string(domain.AuditActionUserLogin)})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Empty(t, logs[0].UserID)
	assert.Equal(t, string(domain.AuditStatusFailure), logs[0].Status)
}

func TestLogin_EveryRejectedAttemptIsAudited(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)
	ctx := context.Background()
	user := f.createUser(t)

	for i := 0; i < 3; i++ {
		_, err := f.uc.Login(ctx, usecase.LoginInput{Email: user.Email, Password: "Wrong1234"})
		require.ErrorIs(t, err, domain.ErrInvalidCredentials)
	}

	_, err := f.uc.Login(ctx, usecase.LoginInput{Email: user.Email, Password: testPassword})
	require.ErrorIs(t, err, domain.ErrAccountLocked)

	logs, err := f.audit.List(ctx, domain.AuditFilter{ResourceID: user.ID, Action: string(domain.AuditActionUserLogin)})
	require.NoError(t, err)
	require.Len(t, logs, 4)

	var lockedRows int
	for _, l := range logs {
		assert.Equal(t, user.ID, l.UserID)
		assert.Equal(t, string(domain.AuditStatusFailure), l.Status)
		if l.ErrorMessage == domain.ErrAccountLocked.Error() {
			lockedRows++
		}
	}
	assert.Equal(t, 1, lockedRows)
}

func TestLogin_LocksAfterRepeatedFailures(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)
	ctx := context.Background()
	user := f.createUser(t)

	for i := 0; i < 2; i++ {
		_, err := f.uc.Login(ctx, usecase.LoginInput{Email: user.Email, Password: "Wrong1234"})
		require.ErrorIs(t, err, domain.ErrInvalidCredentials)
	}

	stored, err := f.users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.FailedAttempts)

	_, err = f.uc.Login(ctx, usecase.LoginInput{Email: user.Email, Password: "Wrong1234"})
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)

	// The right password is refused while the lock holds.
	_, err = f.uc.Login(ctx, usecase.LoginInput{Email: user.Email, Password: testPassword})
	require.ErrorIs(t, err, domain.ErrAccountLocked)

	f.clock.now = f.clock.now.Add(14 * time.Minute)
	_, err = f.uc.Login(ctx, usecase.LoginInput{Email: user.Email, Password: testPassword})
	require.ErrorIs(t, err, domain.ErrAccountLocked)

	f.clock.now = f.clock.now.Add(2 * time.Minute)
	_, err = f.uc.Login(ctx, usecase.LoginInput{Email: user.Email, Password: testPassword})
	require.NoError(t, err)

	stored, err = f.users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Zero(t, stored.FailedAttempts)
	assert.Nil(t, stored.LockedUntil)

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.AuthLockouts))
	assert.Equal(t, 2.0, testutil.ToFloat64(f.metrics.AuthAttempts.WithLabelValues("locked")))

	logs, err := f.audit.List(ctx, domain.AuditFilter{ResourceID: user.ID, Action: string(domain.AuditActionUserLocked)})
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}

func TestLogin_InactiveAccount(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)
	ctx := context.Background()
	user := f.createUser(t)

	require.NoError(t, f.uc.SetUserActive(ctx, user.ID, false))

	_, err := f.uc.Login(ctx, usecase.LoginInput{Email: user.Email, Password: testPassword})
	assert.ErrorIs(t, err, domain.ErrAccountInactive)

	logs, err := f.audit.List(ctx, domain.AuditFilter{ResourceID: user.ID, Action: string(domain.AuditActionUserLogin)})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, domain.ErrAccountInactive.Error(), logs[0].ErrorMessage)
}

func TestTOTP_EnrollConfirmLogin(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)
	ctx := context.Background()
	user := f.createUser(t)

	err := f.uc.ConfirmTOTP(ctx, user.ID, "000000")
	require.ErrorIs(t, err, domain.ErrTOTPNotEnrolled)

	enrollment, err := f.uc.EnrollTOTP(ctx, user.ID)
	require.NoError(t, err)
	assert.Contains(t, enrollment.URI, "otpauth://totp/")

	// Not enabled until confirmed, so a password alone still works.
	_, err = f.uc.Login(ctx, usecase.LoginInput{Email: user.Email, Password: testPassword})
	require.NoError(t, err)

	require.ErrorIs(t, f.uc.ConfirmTOTP(ctx, user.ID, "not-a-code"), domain.ErrInvalidTOTP)

	code, err := totp.GenerateCode(enrollment.Secret, f.clock.now)
	require.NoError(t, err)
	require.NoError(t, f.uc.ConfirmTOTP(ctx, user.ID, code))

	_, err = f.uc.Login(ctx, usecase.LoginInput{Email: user.Email, Password: testPassword})
	require.ErrorIs(t, err, domain.ErrInvalidTOTP)

	result, err := f.uc.Login(ctx, usecase.LoginInput{Email: user.Email, Password: testPassword, TOTPCode: code})
	require.NoError(t, err)
	assert.Empty(t, result.User.TOTPSecret)

	got, err := f.uc.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, got.TOTPEnabled)
	assert.Empty(t, got.TOTPSecret)
}

func TestLogin_StoreFailure(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	txManager := mocks.NewMockTransactionManager(ctrl)
	tx := mocks.NewMockTransaction(ctrl)
	users := mocks.NewMockUserRepository(ctrl)

	txManager.EXPECT().Begin(gomock.Any()).Return(tx, nil)
	users.EXPECT().GetByEmailForUpdate(gomock.Any(), tx, "ana@gtservice.example").Return(nil, errors.New("connection reset"))
	tx.EXPECT().Rollback(gomock.Any()).Return(nil)

	uc := usecase.NewAuthUseCase(txManager, users, nil, auth.NewJWTManager("s", time.Hour), auth.NewTOTP("GT Service"),
		&sequentialIDs{}, usecase.AuthSettings{}, nil, zerolog.Nop())

	_, err := uc.Login(context.Background(), usecase.LoginInput{Email: "ana@gtservice.example", Password: testPassword})
	assert.ErrorIs(t, err, domain.ErrPersistence)
}
