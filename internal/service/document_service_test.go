package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"fundocs-be/internal/dto"
	"fundocs-be/internal/repository/cache"
	"fundocs-be/pkg/contentapi"
	"fundocs-be/pkg/docparse"
	"fundocs-be/pkg/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type docFixture struct {
	api   *mockAPI
	bus   *recordingBus
	queue *recordingQueue
	cache *cache.MemoryProgressCache
	svc   IDocumentService
}

func newDocFixture(t *testing.T) docFixture {
	api := &mockAPI{}
	t.Cleanup(func() { api.AssertExpectations(t) })
	progressCache := cache.NewMemoryProgressCache(time.Minute)
	progress := NewProgressService(newFactory(t), api, progressCache, nopLog)
	bus := &recordingBus{}
	queue := &recordingQueue{}
	return docFixture{
		api:   api,
		bus:   bus,
		queue: queue,
		cache: progressCache,
		svc:   NewDocumentService(api, progress, queue, bus, nopLog),
	}
}

func TestCreateDocumentNormalizesGeneratedContent(t *testing.T) {
	ctx := context.Background()
	fx := newDocFixture(t)
	userID := uuid.New()

	fx.api.On("FetchCleanDoc", mock.Anything, "https://go.dev/doc", userID.String()).
		Return(&contentapi.Doc{ID: "doc-1", Title: "Go docs", Text: "cleaned text"}, nil)
	fx.api.On("GenerateAll", mock.Anything, "cleaned text", userID.String(), "doc-1").
		Return(&contentapi.Generated{
			Story:      "Once upon a goroutine",
			Steps:      json.RawMessage(`"Install Go\n\n  Write main.go  \n"`),
			Challenges: json.RawMessage(`"Print hello Challenge Ended Sum a slice challenge ended "`),
			Flashcards: json.RawMessage(`"[{\"question\":\"What is go?\",\"answer\":\"A language\"}]"`),
		}, nil)

	doc, err := fx.svc.Create(ctx, userID, &dto.CreateDocumentRequest{Source: " https://go.dev/doc "})
	require.NoError(t, err)

	assert.Equal(t, "doc-1", doc.Id)
	assert.Equal(t, "Go docs", doc.Title)
	assert.Equal(t, "Once upon a goroutine", doc.Story)
	assert.Equal(t, []string{"Install Go", "Write main.go"}, doc.Steps)
	assert.Equal(t, []string{"Print hello", "Sum a slice"}, doc.Challenges)
	assert.Equal(t, []docparse.Flashcard{{Question: "What is go?", Answer: "A language"}}, doc.Flashcards)
	assert.NotEmpty(t, doc.CreatedAt)

	assert.Equal(t, []string{events.TypeDocCreated}, fx.bus.types())
	assert.Equal(t, 1, fx.queue.count())
}

func TestCreateDocumentFallsBackToSource(t *testing.T) {
	ctx := context.Background()
	fx := newDocFixture(t)
	userID := uuid.New()

	fx.api.On("FetchCleanDoc", mock.Anything, "raw notes about channels", userID.String()).
		Return(&contentapi.Doc{}, nil)
	fx.api.On("GenerateAll", mock.Anything, "raw notes about channels", userID.String(), mock.AnythingOfType("string")).
		Return(&contentapi.Generated{Steps: json.RawMessage(`42`)}, nil)

	doc, err := fx.svc.Create(ctx, userID, &dto.CreateDocumentRequest{Source: "raw notes about channels"})
	require.NoError(t, err)
	_, err = uuid.Parse(doc.Id)
	assert.NoError(t, err)
	assert.Equal(t, "raw notes about channels", doc.Title)
	assert.Equal(t, []string{}, doc.Steps)
	assert.Equal(t, []docparse.Flashcard{}, doc.Flashcards)
}

func TestCreateDocumentRequiresSource(t *testing.T) {
	fx := newDocFixture(t)
	_, err := fx.svc.Create(context.Background(), uuid.New(), &dto.CreateDocumentRequest{Source: "  "})
	assertAppError(t, err, 400)
}

func TestCreateDocumentPropagatesUpstreamErrors(t *testing.T) {
	fx := newDocFixture(t)
	userID := uuid.New()
	fx.api.On("FetchCleanDoc", mock.Anything, "x", userID.String()).
		Return(nil, &contentapi.APIError{Status: 500, Message: "scrape failed"})

	_, err := fx.svc.Create(context.Background(), userID, &dto.CreateDocumentRequest{Source: "x"})
	apiErr, ok := contentapi.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, "scrape failed", apiErr.Message)
	assert.Empty(t, fx.bus.types())
}

func userDocs() []contentapi.Doc {
	return []contentapi.Doc{
		{ID: "a", Title: "Go Concurrency", CreatedAt: "2024-01-02T10:00:00Z", Steps: json.RawMessage(`["one"]`)},
		{ID: "b", Title: "Rust ownership", CreatedAt: "2024-03-01T10:00:00Z"},
		{ID: "c", Title: "go modules", CreatedAt: "2024-02-01T10:00:00Z"},
	}
}

func TestListDocuments(t *testing.T) {
	ctx := context.Background()
	fx := newDocFixture(t)
	userID := uuid.New()
	fx.api.On("FetchUserDocs", mock.Anything, userID.String()).Return(userDocs(), nil)

	page, err := fx.svc.List(ctx, userID, dto.ListDocumentsQuery{})
	require.NoError(t, err)
	ids := []string{}
	for _, d := range page.Items {
		ids = append(ids, d.Id)
	}
	assert.Equal(t, []string{"b", "c", "a"}, ids)

	page, err = fx.svc.List(ctx, userID, dto.ListDocumentsQuery{Search: "GO", Sort: "oldest"})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "a", page.Items[0].Id)
	assert.Equal(t, []string{"one"}, page.Items[0].Steps)

	page, err = fx.svc.List(ctx, userID, dto.ListDocumentsQuery{PerPage: 2, Page: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, page.TotalPages)
	assert.Len(t, page.Items, 1)

	_, err = fx.svc.List(ctx, userID, dto.ListDocumentsQuery{Sort: "random"})
	assertAppError(t, err, 400)
}

func TestGetAndDeleteDocument(t *testing.T) {
	ctx := context.Background()
	fx := newDocFixture(t)
	userID := uuid.New()
	fx.api.On("FetchUserDocs", mock.Anything, userID.String()).Return(userDocs(), nil)
	fx.api.On("DeleteDoc", mock.Anything, userID.String(), "b").Return(nil)
	fx.api.On("DeleteDoc", mock.Anything, userID.String(), "zzz").Return(&contentapi.APIError{Status: 404, Message: "Document not found"})

	doc, err := fx.svc.Get(ctx, userID, "c")
	require.NoError(t, err)
	assert.Equal(t, "go modules", doc.Title)

	_, err = fx.svc.Get(ctx, userID, "missing")
	assertAppError(t, err, 404)

	assert.NoError(t, fx.svc.Delete(ctx, userID, "b"))
	assertAppError(t, fx.svc.Delete(ctx, userID, "zzz"), 404)
}

func TestSubmitChallenge(t *testing.T) {
	ctx := context.Background()
	fx := newDocFixture(t)
	userID := uuid.New()
	fx.cache.Set(ctx, userID.String(), &contentapi.Progress{XP: 10})

	fx.api.On("SubmitChallenge", mock.Anything, userID.String(), "doc-1", "fmt.Println(1)").
		Return(&contentapi.Submission{Feedback: `{"feedback": "Nice use of fmt", "xp": 20}`, XPAwarded: 20, Success: true}, nil)

	res, err := fx.svc.SubmitChallenge(ctx, userID, "doc-1", &dto.SubmitChallengeRequest{Solution: "fmt.Println(1)"})
	require.NoError(t, err)
	assert.Equal(t, "Nice use of fmt", res.Feedback)
	assert.Equal(t, 20, res.XPAwarded)
	assert.True(t, res.Success)

	_, cached := fx.cache.Get(ctx, userID.String())
	assert.False(t, cached)
	assert.Equal(t, []string{events.TypeChallengeSubmitted}, fx.bus.types())
	assert.Equal(t, 1, fx.queue.count())

	_, err = fx.svc.SubmitChallenge(ctx, userID, "doc-1", &dto.SubmitChallengeRequest{Solution: " "})
	assertAppError(t, err, 400)
}
