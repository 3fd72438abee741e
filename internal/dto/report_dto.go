package dto

type ReportResponse struct {
	Report string `json:"report"`
}

type ExportReportRequest struct {
	Report string `json:"report" validate:"required,notblank"`
	Format string `json:"format" validate:"required,oneof=md pdf"`
}

// ExportedFile is a rendered report ready to be sent as an attachment.
type ExportedFile struct {
	Filename    string
	ContentType string
	Body        []byte
}
