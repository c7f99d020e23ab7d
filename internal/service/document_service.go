package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fc-casework/felling-licence-api/internal/models"
	appErrors "github.com/fc-casework/felling-licence-api/pkg/errors"
)

type documentFileStorage interface {
	SaveStream(filename string, r io.Reader) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
}

type documentSignedURLSigner interface {
	Generate(id, relPath string) (string, time.Time, error)
	Parse(token string, allowExpired bool) (id, relPath string, expiresAt time.Time, err error)
}

// DocumentUpload carries upload metadata and the stream reader.
type DocumentUpload struct {
	Filename string
	Size     int64
	MimeType string
	Content  io.ReadSeeker
}

// DocumentDownload bundles a file reader with metadata for streaming.
type DocumentDownload struct {
	File      *os.File
	Filename  string
	MimeType  string
	SizeBytes int64
	ExpiresAt time.Time
}

// DocumentServiceConfig holds validation parameters for uploads.
type DocumentServiceConfig struct {
	MaxFileSize  int64
	AllowedMIMEs []string
	APIPrefix    string
}

// DocumentService stores supporting files against an application. The bytes
// live in external storage; the aggregate keeps only the reference row.
// Site visit attachments double as evidence for the site visit step.
type DocumentService struct {
	repo    applicationStore
	storage documentFileStorage
	signer  documentSignedURLSigner
	audit   auditLogger
	logger  *zap.Logger
	cfg     DocumentServiceConfig
	mimeSet map[string]struct{}
	now     func() time.Time
}

// NewDocumentService constructs the service with defaults.
func NewDocumentService(repo applicationStore, storage documentFileStorage, signer documentSignedURLSigner, audit auditLogger, logger *zap.Logger, cfg DocumentServiceConfig) *DocumentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = 32 * 1024 * 1024
	}
	if len(cfg.AllowedMIMEs) == 0 {
		cfg.AllowedMIMEs = []string{
			"application/pdf",
			"image/jpeg",
			"image/png",
			"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		}
	}
	if cfg.APIPrefix == "" {
		cfg.APIPrefix = "/api/v1"
	}
	mimeSet := make(map[string]struct{}, len(cfg.AllowedMIMEs))
	for _, mt := range cfg.AllowedMIMEs {
		mimeSet[strings.ToLower(mt)] = struct{}{}
	}
	return &DocumentService{
		repo:    repo,
		storage: storage,
		signer:  signer,
		audit:   audit,
		logger:  logger,
		cfg:     cfg,
		mimeSet: mimeSet,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Upload stores the file and appends a document row to the aggregate.
func (s *DocumentService) Upload(ctx context.Context, applicationID string, purpose models.DocumentPurpose, upload DocumentUpload, actorID string) (*models.Document, error) {
	if actorID == "" {
		return nil, appErrors.ErrUnauthorized
	}
	switch purpose {
	case models.DocumentPurposeAttachment, models.DocumentPurposeSiteVisitAttachment,
		models.DocumentPurposeAgentAuthorityForm, models.DocumentPurposeApplicationDocument,
		models.DocumentPurposeCorrespondence:
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown document purpose")
	}
	if upload.Content == nil || upload.Size <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "file is required")
	}
	if upload.Size > s.cfg.MaxFileSize {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("file exceeds %d bytes limit", s.cfg.MaxFileSize))
	}
	mimeType, err := s.detectMime(upload)
	if err != nil {
		return nil, err
	}
	if _, allowed := s.mimeSet[strings.ToLower(mimeType)]; !allowed {
		return nil, appErrors.Clone(appErrors.ErrValidation, "mime type not allowed")
	}

	app, err := loadApplication(ctx, s.repo, applicationID)
	if err != nil {
		return nil, err
	}

	docID := newID()
	location := filepath.Join(applicationID, fmt.Sprintf("%s_%s", docID, sanitizeFilename(upload.Filename)))
	if _, err := upload.Content.Seek(0, io.SeekStart); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reset upload stream")
	}
	stored, err := s.storage.SaveStream(location, upload.Content)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist document file")
	}

	doc := models.Document{
		ID:            docID,
		ApplicationID: applicationID,
		Purpose:       purpose,
		FileName:      upload.Filename,
		MimeType:      mimeType,
		Location:      stored,
		CreatedByID:   actorID,
		CreatedAt:     s.now(),
	}
	app.Documents = append(app.Documents, doc)
	if err := saveApplication(ctx, s.repo, app); err != nil {
		_ = s.storage.Delete(stored)
		return nil, err
	}
	emitAudit(ctx, s.audit, s.logger, actorID, models.AuditActionDocumentUpload, applicationID, map[string]interface{}{
		"documentId": doc.ID,
		"purpose":    string(purpose),
		"fileName":   doc.FileName,
	})
	return &doc, nil
}

// List returns the document references held on the aggregate.
func (s *DocumentService) List(ctx context.Context, applicationID string) ([]models.Document, error) {
	app, err := loadApplication(ctx, s.repo, applicationID)
	if err != nil {
		return nil, err
	}
	return app.Documents, nil
}

// GetDownloadURL generates a signed URL for downloading one document.
func (s *DocumentService) GetDownloadURL(ctx context.Context, applicationID, documentID string) (string, error) {
	if s.signer == nil {
		return "", appErrors.Clone(appErrors.ErrInternal, "download signer unavailable")
	}
	doc, err := s.find(ctx, applicationID, documentID)
	if err != nil {
		return "", err
	}
	token, _, err := s.signer.Generate(doc.ID, doc.Location)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate download token")
	}
	base := strings.TrimRight(s.cfg.APIPrefix, "/")
	return fmt.Sprintf("%s/applications/%s/documents/%s/download?token=%s", base, applicationID, doc.ID, token), nil
}

// Download validates the token and opens the stored file.
func (s *DocumentService) Download(ctx context.Context, applicationID, documentID, token string) (*DocumentDownload, error) {
	if s.signer == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "download signer unavailable")
	}
	doc, err := s.find(ctx, applicationID, documentID)
	if err != nil {
		return nil, err
	}
	docID, relPath, expiresAt, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired token")
	}
	if docID != doc.ID || relPath != doc.Location {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "token mismatch")
	}
	file, err := s.storage.Open(relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open document file")
	}
	info, err := file.Stat()
	if err != nil {
		file.Close() //nolint:errcheck
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read document metadata")
	}
	return &DocumentDownload{
		File:      file,
		Filename:  doc.FileName,
		MimeType:  doc.MimeType,
		SizeBytes: info.Size(),
		ExpiresAt: expiresAt,
	}, nil
}

// Delete removes the document row and the stored file.
func (s *DocumentService) Delete(ctx context.Context, applicationID, documentID, actorID string) error {
	if actorID == "" {
		return appErrors.ErrUnauthorized
	}
	app, err := loadApplication(ctx, s.repo, applicationID)
	if err != nil {
		return err
	}
	idx := -1
	for i := range app.Documents {
		if app.Documents[i].ID == documentID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "document not found")
	}
	removed := app.Documents[idx]
	app.Documents = append(app.Documents[:idx], app.Documents[idx+1:]...)
	if err := saveApplication(ctx, s.repo, app); err != nil {
		return err
	}
	if err := s.storage.Delete(removed.Location); err != nil {
		s.logger.Warn("failed to delete stored document file", zap.String("location", removed.Location), zap.Error(err))
	}
	emitAudit(ctx, s.audit, s.logger, actorID, models.AuditActionDocumentDelete, applicationID, map[string]interface{}{
		"documentId": removed.ID,
		"fileName":   removed.FileName,
	})
	return nil
}

func (s *DocumentService) find(ctx context.Context, applicationID, documentID string) (*models.Document, error) {
	app, err := loadApplication(ctx, s.repo, applicationID)
	if err != nil {
		return nil, err
	}
	for i := range app.Documents {
		if app.Documents[i].ID == documentID {
			return &app.Documents[i], nil
		}
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "document not found")
}

func (s *DocumentService) detectMime(upload DocumentUpload) (string, error) {
	if upload.MimeType != "" {
		return upload.MimeType, nil
	}
	head := make([]byte, 512)
	n, err := upload.Content.Read(head)
	if err != nil && err != io.EOF {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read upload stream")
	}
	return http.DetectContentType(head[:n]), nil
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
}
