package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"fundocs-be/internal/dto"
	"fundocs-be/internal/pkg/serverutils"
	"fundocs-be/internal/repository/cache"
	"fundocs-be/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type authFixture struct {
	svc    IAuthService
	mailer *recordingMailer
	bus    *recordingBus
}

func newAuthFixture(t *testing.T) authFixture {
	t.Helper()
	f := newFactory(t)
	avatars, _ := newAvatars(t)
	mailer := newRecordingMailer()
	bus := &recordingBus{}
	svc := NewAuthService(f, newSessions(f), avatars, mailer, bus, 24*time.Hour, nopLog)
	return authFixture{svc: svc, mailer: mailer, bus: bus}
}

func assertAppError(t *testing.T, err error, code int) {
	t.Helper()
	appErr, ok := serverutils.AsAppError(err)
	require.True(t, ok, "expected AppError, got %v", err)
	assert.Equal(t, code, appErr.Code)
}

func TestSignupVerifyLoginFlow(t *testing.T) {
	ctx := context.Background()
	fx := newAuthFixture(t)

	res, err := fx.svc.Signup(ctx, &dto.SignupRequest{Name: " Ada ", Email: "Ada@Example.com", Password: "secret1!"}, nil, "127.0.0.1", "test")
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.Equal(t, "/verify?mode=pending", res.Redirect)
	assert.Equal(t, "ada@example.com", res.User.Email)
	assert.Equal(t, "Ada", res.User.Name)
	assert.False(t, res.User.Verified)
	assert.True(t, strings.HasPrefix(res.User.AvatarURL, "http://localhost/uploads/avatars/"))

	user, session, err := fx.svc.ResolveSession(ctx, res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, res.User.Id, user.Id)
	assert.Equal(t, user.Id, session.UserId)
	assert.False(t, user.EmailVerified)

	userID := res.User.Id.String()
	require.Eventually(t, func() bool { return fx.mailer.secretFor(userID) != "" }, time.Second, 10*time.Millisecond)

	err = fx.svc.VerifyEmail(ctx, &dto.VerifyEmailRequest{UserId: userID, Secret: "wrong"})
	assertAppError(t, err, 400)

	require.NoError(t, fx.svc.VerifyEmail(ctx, &dto.VerifyEmailRequest{UserId: userID, Secret: fx.mailer.secretFor(userID)}))
	assert.Equal(t, []string{events.TypeUserVerified}, fx.bus.types())

	user, _, err = fx.svc.ResolveSession(ctx, res.AccessToken)
	require.NoError(t, err)
	assert.True(t, user.EmailVerified)
	assert.True(t, fx.svc.Me(user).Verified)

	login, err := fx.svc.Login(ctx, &dto.LoginRequest{Email: "ada@example.com", Password: "secret1!"}, "", "")
	require.NoError(t, err)
	assert.Equal(t, "/profile", login.Redirect)

	_, err = fx.svc.Login(ctx, &dto.LoginRequest{Email: "ada@example.com", Password: "nope1!"}, "", "")
	assertAppError(t, err, 401)
}

func TestSignupValidation(t *testing.T) {
	ctx := context.Background()
	fx := newAuthFixture(t)

	tests := []struct {
		name   string
		req    dto.SignupRequest
		upload *dto.AvatarUpload
		code   int
	}{
		{"short name", dto.SignupRequest{Name: "A", Email: "a@example.com", Password: "secret1!"}, nil, 400},
		{"bad email", dto.SignupRequest{Name: "Ada", Email: "nope", Password: "secret1!"}, nil, 400},
		{"no symbol", dto.SignupRequest{Name: "Ada", Email: "a@example.com", Password: "secret12"}, nil, 400},
		{"no digit", dto.SignupRequest{Name: "Ada", Email: "a@example.com", Password: "secret!!"}, nil, 400},
		{"not an image", dto.SignupRequest{Name: "Ada", Email: "a@example.com", Password: "secret1!"}, &dto.AvatarUpload{Data: []byte("x"), ContentType: "text/plain"}, 400},
		{"image too large", dto.SignupRequest{Name: "Ada", Email: "a@example.com", Password: "secret1!"}, &dto.AvatarUpload{Data: make([]byte, 3<<20), ContentType: "image/png"}, 400},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			_, err := fx.svc.Signup(ctx, &req, tt.upload, "", "")
			assertAppError(t, err, tt.code)
		})
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	fx := newAuthFixture(t)

	_, err := fx.svc.Signup(ctx, &dto.SignupRequest{Name: "Ada", Email: "ada@example.com", Password: "secret1!"}, nil, "", "")
	require.NoError(t, err)
	_, err = fx.svc.Signup(ctx, &dto.SignupRequest{Name: "Ada", Email: "ADA@example.com", Password: "secret1!"}, nil, "", "")
	assertAppError(t, err, 409)
}

func TestConcurrentSignupsSameEmail(t *testing.T) {
	ctx := context.Background()
	fx := newAuthFixture(t)

	const n = 5
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = fx.svc.Signup(ctx, &dto.SignupRequest{Name: "Ada", Email: "ada@example.com", Password: "secret1!"}, nil, "", "")
		}(i)
	}
	wg.Wait()

	created := 0
	for _, err := range errs {
		if err == nil {
			created++
			continue
		}
		assertAppError(t, err, 409)
	}
	assert.Equal(t, 1, created)
}

func TestSignupWithUploadedAvatar(t *testing.T) {
	fx := newAuthFixture(t)
	res, err := fx.svc.Signup(context.Background(),
		&dto.SignupRequest{Name: "Ada", Email: "ada@example.com", Password: "secret1!"},
		&dto.AvatarUpload{Data: pngBytes(t, 40, 20), ContentType: "image/png"}, "", "")
	require.NoError(t, err)
	assert.Contains(t, res.User.AvatarURL, "/avatars/")
}

func TestLogoutRevokesToken(t *testing.T) {
	ctx := context.Background()
	fx := newAuthFixture(t)

	res, err := fx.svc.Signup(ctx, &dto.SignupRequest{Name: "Ada", Email: "ada@example.com", Password: "secret1!"}, nil, "", "")
	require.NoError(t, err)
	_, session, err := fx.svc.ResolveSession(ctx, res.AccessToken)
	require.NoError(t, err)

	require.NoError(t, fx.svc.Logout(ctx, session.Id))
	_, _, err = fx.svc.ResolveSession(ctx, res.AccessToken)
	assert.Error(t, err)
}

func TestResolveSessionRejectsForeignTokens(t *testing.T) {
	ctx := context.Background()
	f := newFactory(t)
	user := createUser(t, f, "ada", true)

	ours := NewSessionManager(f, cache.NewSessionCache(time.Minute), "ours", time.Hour)
	theirs := NewSessionManager(f, cache.NewSessionCache(time.Minute), "theirs", time.Hour)

	token, _, err := theirs.Issue(ctx, user, "", "")
	require.NoError(t, err)
	_, _, err = ours.Resolve(ctx, token)
	assert.Error(t, err)

	_, _, err = ours.Resolve(ctx, "not-a-jwt")
	assert.Error(t, err)

	expired := NewSessionManager(f, cache.NewSessionCache(time.Minute), "ours", -time.Minute)
	token, _, err = expired.Issue(ctx, user, "", "")
	require.NoError(t, err)
	_, _, err = ours.Resolve(ctx, token)
	assert.Error(t, err)
}

func TestResendVerification(t *testing.T) {
	ctx := context.Background()
	fx := newAuthFixture(t)

	res, err := fx.svc.Signup(ctx, &dto.SignupRequest{Name: "Ada", Email: "ada@example.com", Password: "secret1!"}, nil, "", "")
	require.NoError(t, err)
	user, _, err := fx.svc.ResolveSession(ctx, res.AccessToken)
	require.NoError(t, err)

	userID := user.Id.String()
	require.Eventually(t, func() bool { return fx.mailer.secretFor(userID) != "" }, time.Second, 10*time.Millisecond)
	first := fx.mailer.secretFor(userID)

	require.NoError(t, fx.svc.ResendVerification(ctx, user))
	second := fx.mailer.secretFor(userID)
	assert.NotEqual(t, first, second)

	// the first link no longer works
	err = fx.svc.VerifyEmail(ctx, &dto.VerifyEmailRequest{UserId: userID, Secret: first})
	assertAppError(t, err, 400)
	require.NoError(t, fx.svc.VerifyEmail(ctx, &dto.VerifyEmailRequest{UserId: userID, Secret: second}))

	user.EmailVerified = true
	assertAppError(t, fx.svc.ResendVerification(ctx, user), 400)
}
