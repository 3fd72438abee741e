package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"fundocs-be/internal/dto"
	"fundocs-be/internal/pkg/logger"
	"fundocs-be/internal/pkg/serverutils"
	"fundocs-be/pkg/contentapi"
	"fundocs-be/pkg/docparse"
	"fundocs-be/pkg/events"
	"fundocs-be/pkg/pagination"

	"github.com/google/uuid"
)

const (
	docsPerPage     = 9
	maxDerivedTitle = 80
)

type IDocumentService interface {
	Create(ctx context.Context, userID uuid.UUID, req *dto.CreateDocumentRequest) (*dto.DocumentDTO, error)
	List(ctx context.Context, userID uuid.UUID, q dto.ListDocumentsQuery) (*pagination.Page[dto.DocumentDTO], error)
	Get(ctx context.Context, userID uuid.UUID, docID string) (*dto.DocumentDTO, error)
	Delete(ctx context.Context, userID uuid.UUID, docID string) error
	SubmitChallenge(ctx context.Context, userID uuid.UUID, docID string, req *dto.SubmitChallengeRequest) (*dto.SubmitChallengeResponse, error)
}

type documentService struct {
	api              contentapi.API
	progress         IProgressService
	publisherService IPublisherService
	eventPublisher   EventPublisher
	logger           logger.ILogger
}

func NewDocumentService(
	api contentapi.API,
	progress IProgressService,
	publisherService IPublisherService,
	eventPublisher EventPublisher,
	log logger.ILogger,
) IDocumentService {
	return &documentService{
		api:              api,
		progress:         progress,
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
		logger:           log,
	}
}

func toDocumentDTO(d contentapi.Doc) dto.DocumentDTO {
	return dto.DocumentDTO{
		Id:         d.ID,
		Title:      d.Title,
		Text:       d.Text,
		Story:      d.Story,
		Steps:      docparse.Steps(d.Steps),
		Challenges: docparse.Challenges(d.Challenges),
		Flashcards: docparse.Flashcards(d.Flashcards),
		CreatedAt:  d.CreatedAt,
	}
}

func deriveTitle(source string) string {
	line := strings.TrimSpace(strings.SplitN(strings.TrimSpace(source), "\n", 2)[0])
	if r := []rune(line); len(r) > maxDerivedTitle {
		line = string(r[:maxDerivedTitle]) + "..."
	}
	if line == "" {
		return "Untitled doc"
	}
	return line
}

func (s *documentService) Create(ctx context.Context, userID uuid.UUID, req *dto.CreateDocumentRequest) (*dto.DocumentDTO, error) {
	if err := serverutils.ValidateRequest(req); err != nil {
		return nil, err
	}
	source := strings.TrimSpace(req.Source)

	doc, err := s.api.FetchCleanDoc(ctx, source, userID.String())
	if err != nil {
		return nil, err
	}
	docID := doc.ID
	if docID == "" {
		docID = uuid.NewString()
	}
	text := doc.Text
	if strings.TrimSpace(text) == "" {
		text = source
	}

	generated, err := s.api.GenerateAll(ctx, text, userID.String(), docID)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(doc.Title)
	if title == "" {
		title = deriveTitle(source)
	}
	createdAt := doc.CreatedAt
	if createdAt == "" {
		createdAt = time.Now().UTC().Format(time.RFC3339)
	}

	result := toDocumentDTO(contentapi.Doc{
		ID:         docID,
		Title:      title,
		Text:       text,
		Story:      generated.Story,
		Steps:      generated.Steps,
		Challenges: generated.Challenges,
		Flashcards: generated.Flashcards,
		CreatedAt:  createdAt,
	})

	publishEvent(ctx, s.eventPublisher, s.logger, events.TypeDocCreated, map[string]interface{}{
		"user_id": userID.String(),
		"doc_id":  docID,
		"title":   title,
	})
	requestProgressRefresh(ctx, s.publisherService, s.logger, userID.String(), "doc_created")

	s.logger.Info("DocumentService", "Document generated", map[string]interface{}{
		"user_id":    userID,
		"doc_id":     docID,
		"steps":      len(result.Steps),
		"challenges": len(result.Challenges),
		"flashcards": len(result.Flashcards),
	})
	return &result, nil
}

func createdAtLess(a, b string) bool {
	ta, errA := time.Parse(time.RFC3339, a)
	tb, errB := time.Parse(time.RFC3339, b)
	if errA == nil && errB == nil {
		return ta.Before(tb)
	}
	return a < b
}

func (s *documentService) List(ctx context.Context, userID uuid.UUID, q dto.ListDocumentsQuery) (*pagination.Page[dto.DocumentDTO], error) {
	if err := serverutils.ValidateRequest(q); err != nil {
		return nil, err
	}
	docs, err := s.api.FetchUserDocs(ctx, userID.String())
	if err != nil {
		return nil, err
	}

	search := strings.ToLower(strings.TrimSpace(q.Search))
	items := make([]dto.DocumentDTO, 0, len(docs))
	for _, d := range docs {
		if search != "" && !strings.Contains(strings.ToLower(d.Title), search) {
			continue
		}
		items = append(items, toDocumentDTO(d))
	}

	oldestFirst := q.Sort == "oldest"
	sort.SliceStable(items, func(i, j int) bool {
		if oldestFirst {
			return createdAtLess(items[i].CreatedAt, items[j].CreatedAt)
		}
		return createdAtLess(items[j].CreatedAt, items[i].CreatedAt)
	})

	perPage := q.PerPage
	if perPage <= 0 {
		perPage = docsPerPage
	}
	page := pagination.Paginate(items, q.Page, perPage)
	return &page, nil
}

func (s *documentService) Get(ctx context.Context, userID uuid.UUID, docID string) (*dto.DocumentDTO, error) {
	docs, err := s.api.FetchUserDocs(ctx, userID.String())
	if err != nil {
		return nil, err
	}
	for _, d := range docs {
		if d.ID == docID {
			out := toDocumentDTO(d)
			return &out, nil
		}
	}
	return nil, serverutils.NewNotFound("document not found")
}

func (s *documentService) Delete(ctx context.Context, userID uuid.UUID, docID string) error {
	if strings.TrimSpace(docID) == "" {
		return serverutils.NewBadRequest("doc id is required")
	}
	if err := s.api.DeleteDoc(ctx, userID.String(), docID); err != nil {
		if apiErr, ok := contentapi.AsAPIError(err); ok && apiErr.Status == 404 {
			return serverutils.NewNotFound("document not found")
		}
		return err
	}
	return nil
}

func (s *documentService) SubmitChallenge(ctx context.Context, userID uuid.UUID, docID string, req *dto.SubmitChallengeRequest) (*dto.SubmitChallengeResponse, error) {
	if err := serverutils.ValidateRequest(req); err != nil {
		return nil, err
	}

	res, err := s.api.SubmitChallenge(ctx, userID.String(), docID, req.Solution)
	if err != nil {
		return nil, err
	}
	out := &dto.SubmitChallengeResponse{
		Feedback:  docparse.Feedback(res.Feedback),
		XPAwarded: res.XPAwarded,
		Success:   res.Success,
	}

	s.progress.Invalidate(ctx, userID.String())
	publishEvent(ctx, s.eventPublisher, s.logger, events.TypeChallengeSubmitted, map[string]interface{}{
		"user_id":         userID.String(),
		"doc_id":          docID,
		"challenge_title": req.ChallengeTitle,
		"xp_awarded":      res.XPAwarded,
		"success":         res.Success,
	})
	requestProgressRefresh(ctx, s.publisherService, s.logger, userID.String(), "challenge_submitted")
	return out, nil
}
