package service

import (
	"context"
	"strings"

	"fundocs-be/internal/dto"
	"fundocs-be/internal/pkg/logger"
	"fundocs-be/internal/pkg/serverutils"
	"fundocs-be/pkg/contentapi"
	"fundocs-be/pkg/markdown"
	"fundocs-be/pkg/reportpdf"

	"github.com/google/uuid"
)

const (
	reportMarkdownName = "progress_report.md"
	reportPDFName      = "progress_report.pdf"
)

type IReportService interface {
	Generate(ctx context.Context, userID uuid.UUID) (*dto.ReportResponse, error)
	Export(ctx context.Context, req *dto.ExportReportRequest) (*dto.ExportedFile, error)
}

type reportService struct {
	api      contentapi.API
	renderer *reportpdf.Renderer
	logger   logger.ILogger
}

func NewReportService(api contentapi.API, renderer *reportpdf.Renderer, log logger.ILogger) IReportService {
	return &reportService{api: api, renderer: renderer, logger: log}
}

func (s *reportService) Generate(ctx context.Context, userID uuid.UUID) (*dto.ReportResponse, error) {
	report, err := s.api.GenerateReport(ctx, userID.String())
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(report) == "" {
		return nil, serverutils.NewBadGateway("report generation returned an empty report")
	}
	return &dto.ReportResponse{Report: report}, nil
}

func (s *reportService) Export(ctx context.Context, req *dto.ExportReportRequest) (*dto.ExportedFile, error) {
	req.Format = strings.ToLower(strings.TrimSpace(req.Format))
	if err := serverutils.ValidateRequest(req); err != nil {
		return nil, err
	}
	cleaned := markdown.Clean(req.Report)

	if req.Format == "md" {
		return &dto.ExportedFile{
			Filename:    reportMarkdownName,
			ContentType: "text/markdown; charset=utf-8",
			Body:        []byte(cleaned),
		}, nil
	}

	body, err := s.renderer.PDF(cleaned)
	if err != nil {
		return nil, serverutils.NewInternal("failed to render pdf", err)
	}
	s.logger.Debug("ReportService", "Rendered pdf report", map[string]interface{}{"bytes": len(body)})
	return &dto.ExportedFile{
		Filename:    reportPDFName,
		ContentType: "application/pdf",
		Body:        body,
	}, nil
}
