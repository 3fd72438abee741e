package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"
	"time"

	"fundocs-be/internal/entity"
	"fundocs-be/internal/model"
	"fundocs-be/internal/pkg/logger"
	"fundocs-be/internal/repository/cache"
	"fundocs-be/internal/repository/unitofwork"
	"fundocs-be/pkg/avatar"
	"fundocs-be/pkg/contentapi"
	"fundocs-be/pkg/database"
	"fundocs-be/pkg/events"
	"fundocs-be/pkg/storage"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var nopLog = logger.NewNopLogger()

func newFactory(t *testing.T) unitofwork.RepositoryFactory {
	t.Helper()
	db, err := database.NewSQLiteDB(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.All()...))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return unitofwork.NewRepositoryFactory(db)
}

func newSessions(f unitofwork.RepositoryFactory) *SessionManager {
	return NewSessionManager(f, cache.NewSessionCache(time.Minute), "test-secret", time.Hour)
}

func newAvatars(t *testing.T) (*AvatarService, storage.Storage) {
	t.Helper()
	store, err := storage.NewLocal(t.TempDir(), "http://localhost/uploads")
	require.NoError(t, err)
	gen, err := avatar.NewGenerator()
	require.NoError(t, err)
	return NewAvatarService(store, gen, nopLog), store
}

func createUser(t *testing.T, f unitofwork.RepositoryFactory, name string, verified bool) *entity.User {
	t.Helper()
	u := &entity.User{Name: name, Email: name + "@example.com", EmailVerified: verified}
	require.NoError(t, f.NewUnitOfWork(context.Background()).UserRepository().Create(context.Background(), u))
	return u
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.NRGBA{R: 200, G: 40, B: 90, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// mockAPI fakes the content API.
type mockAPI struct {
	mock.Mock
}

func (m *mockAPI) FetchCleanDoc(ctx context.Context, source, userID string) (*contentapi.Doc, error) {
	args := m.Called(ctx, source, userID)
	doc, _ := args.Get(0).(*contentapi.Doc)
	return doc, args.Error(1)
}

func (m *mockAPI) GenerateAll(ctx context.Context, text, userID, docID string) (*contentapi.Generated, error) {
	args := m.Called(ctx, text, userID, docID)
	g, _ := args.Get(0).(*contentapi.Generated)
	return g, args.Error(1)
}

func (m *mockAPI) FetchUserDocs(ctx context.Context, userID string) ([]contentapi.Doc, error) {
	args := m.Called(ctx, userID)
	docs, _ := args.Get(0).([]contentapi.Doc)
	return docs, args.Error(1)
}

func (m *mockAPI) GetProgress(ctx context.Context, userID string) (*contentapi.Progress, error) {
	args := m.Called(ctx, userID)
	p, _ := args.Get(0).(*contentapi.Progress)
	return p, args.Error(1)
}

func (m *mockAPI) UpdateProgress(ctx context.Context, userID string, xpEarned int, challengeTitle string) (*contentapi.Progress, error) {
	args := m.Called(ctx, userID, xpEarned, challengeTitle)
	p, _ := args.Get(0).(*contentapi.Progress)
	return p, args.Error(1)
}

func (m *mockAPI) Leaderboard(ctx context.Context) ([]contentapi.LeaderboardEntry, error) {
	args := m.Called(ctx)
	entries, _ := args.Get(0).([]contentapi.LeaderboardEntry)
	return entries, args.Error(1)
}

func (m *mockAPI) SubmitChallenge(ctx context.Context, userID, docID, solution string) (*contentapi.Submission, error) {
	args := m.Called(ctx, userID, docID, solution)
	s, _ := args.Get(0).(*contentapi.Submission)
	return s, args.Error(1)
}

func (m *mockAPI) GenerateReport(ctx context.Context, userID string) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

func (m *mockAPI) DeleteDoc(ctx context.Context, userID, docID string) error {
	return m.Called(ctx, userID, docID).Error(0)
}

func (m *mockAPI) DeleteAccount(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

// recordingBus captures published events.
type recordingBus struct {
	mu     sync.Mutex
	events []events.Event
}

func (b *recordingBus) Publish(_ context.Context, e events.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, e)
	return nil
}

func (b *recordingBus) types() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := []string{}
	for _, e := range b.events {
		out = append(out, e.EventType())
	}
	return out
}

func (b *recordingBus) last() events.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.events) == 0 {
		return nil
	}
	return b.events[len(b.events)-1]
}

// recordingQueue captures progress refresh requests.
type recordingQueue struct {
	mu       sync.Mutex
	payloads [][]byte
}

func (q *recordingQueue) Publish(_ context.Context, payload []byte) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.payloads = append(q.payloads, payload)
	return nil
}

func (q *recordingQueue) count() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.payloads)
}

// recordingMailer keeps the last secret sent per user.
type recordingMailer struct {
	mu      sync.Mutex
	secrets map[string]string
}

func newRecordingMailer() *recordingMailer {
	return &recordingMailer{secrets: map[string]string{}}
}

func (m *recordingMailer) SendVerification(_, _, userID, secret string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.secrets[userID] = secret
	return nil
}

func (m *recordingMailer) secretFor(userID string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.secrets[userID]
}
