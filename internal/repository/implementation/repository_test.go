package implementation

import (
	"context"
	"regexp"
	"testing"
	"time"

	"fundocs-be/internal/entity"
	"fundocs-be/internal/model"
	"fundocs-be/internal/repository/specification"
	"fundocs-be/pkg/database"
	"fundocs-be/pkg/vote"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.NewSQLiteDB(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.All()...))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newTestDB(t))

	hash := "hash"
	u := &entity.User{Name: "Ada", Email: "ada@example.com", PasswordHash: &hash}
	require.NoError(t, repo.Create(ctx, u))
	assert.NotEqual(t, uuid.Nil, u.Id)

	found, err := repo.FindOne(ctx, specification.ByEmail{Email: " ADA@example.com "})
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.False(t, found.EmailVerified)

	missing, err := repo.FindOne(ctx, specification.ByEmail{Email: "nobody@example.com"})
	require.NoError(t, err)
	assert.Nil(t, missing)

	now := time.Now().UTC()
	require.NoError(t, repo.MarkVerified(ctx, u.Id, now))
	url, key := "http://x/a.png", "avatars/a.png"
	require.NoError(t, repo.UpdateAvatar(ctx, u.Id, &url, &key))

	found, err = repo.FindOne(ctx, specification.ByID{ID: u.Id})
	require.NoError(t, err)
	assert.True(t, found.EmailVerified)
	assert.Equal(t, url, found.Avatar())

	matches, err := repo.FindAll(ctx, specification.NameLike{Query: "ad"})
	require.NoError(t, err)
	assert.Len(t, matches, 1)

	require.NoError(t, repo.Delete(ctx, u.Id))
	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestVerificationTokensAndProviders(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newTestDB(t))
	userID := uuid.New()
	now := time.Now().UTC()

	require.NoError(t, repo.CreateEmailVerificationToken(ctx, &entity.EmailVerificationToken{UserId: userID, TokenHash: "live", ExpiresAt: now.Add(time.Hour)}))
	require.NoError(t, repo.CreateEmailVerificationToken(ctx, &entity.EmailVerificationToken{UserId: userID, TokenHash: "old", ExpiresAt: now.Add(-time.Hour)}))

	tok, err := repo.FindEmailVerificationToken(ctx, specification.ByTokenHash{Hash: "old"}, specification.NotExpired{Now: now})
	require.NoError(t, err)
	assert.Nil(t, tok)

	n, err := repo.DeleteExpiredVerificationTokens(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	tok, err = repo.FindEmailVerificationToken(ctx, specification.ByTokenHash{Hash: "live"}, specification.NotExpired{Now: now})
	require.NoError(t, err)
	require.NotNil(t, tok)

	require.NoError(t, repo.SaveUserProvider(ctx, &entity.UserProvider{UserId: userID, ProviderName: "google", ProviderUserId: "g-1"}))
	p, err := repo.FindUserProvider(ctx, specification.ByProvider{Name: "google", ProviderUserID: "g-1"})
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, userID, p.UserId)

	require.NoError(t, repo.DeleteUserProviders(ctx, userID))
	p, err = repo.FindUserProvider(ctx, specification.ByProvider{Name: "google", ProviderUserID: "g-1"})
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestSessionRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository(newTestDB(t))
	userID := uuid.New()
	now := time.Now().UTC()

	live := &entity.UserSession{UserId: userID, ExpiresAt: now.Add(time.Hour)}
	require.NoError(t, repo.Create(ctx, live))
	require.NoError(t, repo.Create(ctx, &entity.UserSession{UserId: userID, ExpiresAt: now.Add(-time.Minute)}))

	got, err := repo.FindOne(ctx, specification.ByID{ID: live.Id}, specification.NotExpired{Now: now})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.False(t, got.Expired(now))

	n, err := repo.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, repo.DeleteByUser(ctx, userID))
	got, err = repo.FindOne(ctx, specification.ByID{ID: live.Id})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestTipRepositorySaveVotes(t *testing.T) {
	ctx := context.Background()
	repo := NewTipRepository(newTestDB(t))

	tip := &entity.Tip{UserId: uuid.New(), AuthorName: "Ada", Text: "Read the docs twice", Voters: vote.Voters{}}
	require.NoError(t, repo.Create(ctx, tip))
	assert.Equal(t, 1, tip.Version)

	voter := uuid.New().String()
	stale := *tip
	stale.Voters = vote.Voters{}

	tip.Votes = tip.Voters.Cast(tip.Votes, voter, vote.Up)
	ok, err := repo.SaveVotes(ctx, tip)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2, tip.Version)

	// a writer holding the old version loses
	stale.Votes = stale.Voters.Cast(stale.Votes, voter, vote.Down)
	ok, err = repo.SaveVotes(ctx, &stale)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := repo.FindOne(ctx, specification.ByID{ID: tip.Id})
	require.NoError(t, err)
	assert.Equal(t, 1, got.Votes)
	assert.Equal(t, vote.Up, got.Voters[voter])
	assert.Equal(t, 2, got.Version)

	list, err := repo.FindAll(ctx, specification.OrderBy{Field: "created_at", Desc: true})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestTipRepositorySaveVotesConflictSQL(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	require.NoError(t, err)

	tip := &entity.Tip{Id: uuid.New(), Votes: 1, Voters: vote.Voters{"u1": vote.Up}, Version: 4}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "tips" SET`)).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	ok, err := NewTipRepository(db).SaveVotes(context.Background(), tip)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 4, tip.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}
