package communication

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/commhub/backend/internal/domain/communication"
	"github.com/commhub/backend/internal/domain/shared"
	"github.com/commhub/backend/internal/infrastructure/logger"
	"github.com/commhub/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Pipeline stages, used as span names and metric labels
const (
	StageLoadTemplate = "load_template"
	StageFetchFile    = "fetch_template_file"
	StageAggregate    = "aggregate_member_data"
	StageRender       = "render"
	StagePublish      = "publish"
	StageRecord       = "record"
)

// LetterService generates letters and serves the generation ledger
type LetterService struct {
	templates communication.TemplateRepository
	letters   communication.LetterRepository
	documents DocumentRepository
	members   MemberDataSource
	catalog   CatalogProvider
	merger    communication.MergeEngine
	publisher ArtifactPublisher
	metrics   *telemetry.LetterMetrics
	now       func() time.Time
	logger    *zap.Logger
}

// LetterServiceOption configures a LetterService
type LetterServiceOption func(*LetterService)

// WithLetterMetrics records stage durations and outcomes
func WithLetterMetrics(m *telemetry.LetterMetrics) LetterServiceOption {
	return func(s *LetterService) {
		s.metrics = m
	}
}

// WithLetterClock sets the clock used for ledger timestamps
func WithLetterClock(now func() time.Time) LetterServiceOption {
	return func(s *LetterService) {
		s.now = now
	}
}

// WithLetterLogger sets the logger
func WithLetterLogger(l *zap.Logger) LetterServiceOption {
	return func(s *LetterService) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewLetterService creates a new LetterService
func NewLetterService(
	templates communication.TemplateRepository,
	letters communication.LetterRepository,
	documents DocumentRepository,
	members MemberDataSource,
	catalog CatalogProvider,
	merger communication.MergeEngine,
	publisher ArtifactPublisher,
	opts ...LetterServiceOption,
) *LetterService {
	s := &LetterService{
		templates: templates,
		letters:   letters,
		documents: documents,
		members:   members,
		catalog:   catalog,
		merger:    merger,
		publisher: publisher,
		now:       time.Now,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GenerateLetter renders a template for one member, publishes the result and
// records it in the ledger. Any failing stage aborts the request; the ledger
// entry is the last write.
func (s *LetterService) GenerateLetter(ctx context.Context, caller Caller, req GenerateLetterRequest) (resp *GenerateLetterResponse, err error) {
	ctx, span := telemetry.StartSpan(ctx, "letter.generate", telemetry.LetterRequest(caller.TenantID, "", "")...)
	defer func() { telemetry.EndSpan(span, err) }()

	log := logger.L(ctx, s.logger).With(
		zap.String("member_id", req.MemberID),
		zap.String("template_id", req.TemplateID),
	)
	defer func() {
		if err != nil {
			s.metrics.CountGeneration(telemetry.OutcomeFailure)
			log.Warn("Letter generation failed", zap.Error(err))
			return
		}
		s.metrics.CountGeneration(telemetry.OutcomeSuccess)
	}()

	if err := caller.Validate(); err != nil {
		return nil, err
	}
	if err := communication.ValidateRecordIDs(req.MemberID, req.TemplateID); err != nil {
		return nil, err
	}
	span.SetAttributes(telemetry.LetterRequest("", req.MemberID, req.TemplateID)...)

	var template *communication.Template
	if err := s.stage(ctx, StageLoadTemplate, func(ctx context.Context) error {
		t, err := s.templates.FindByIDForTenant(ctx, caller.TenantID, req.TemplateID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return templateNotFound()
			}
			return fmt.Errorf("failed to load template: %w", err)
		}
		template = t
		return nil
	}); err != nil {
		return nil, err
	}

	var templateBytes []byte
	if err := s.stage(ctx, StageFetchFile, func(ctx context.Context) error {
		b, err := s.documents.Fetch(ctx, template.FileRef)
		if errors.Is(err, shared.ErrNotFound) {
			// the template exists, so a missing file is a repository fault
			return communication.Failure(communication.ErrRepositoryUnavailable, err)
		}
		templateBytes = b
		return err
	}); err != nil {
		return nil, err
	}

	var data map[string]string
	if err := s.stage(ctx, StageAggregate, func(ctx context.Context) error {
		catalog, err := s.catalog.Catalog(ctx)
		if err != nil {
			return err
		}
		data, err = s.members.Aggregate(ctx, req.MemberID, catalog)
		return err
	}); err != nil {
		return nil, err
	}

	var rendered []byte
	if err := s.stage(ctx, StageRender, func(ctx context.Context) error {
		out, err := s.merger.Merge(ctx, templateBytes, data)
		if err != nil {
			return asPipelineError(communication.ErrMergeFailed, err)
		}
		rendered = out
		return nil
	}); err != nil {
		return nil, err
	}

	var artifact communication.Artifact
	if err := s.stage(ctx, StagePublish, func(ctx context.Context) error {
		a, err := s.publisher.Publish(ctx, caller.TenantID, req.MemberID, rendered)
		if err != nil {
			return asPipelineError(communication.ErrPublishFailed, err)
		}
		artifact = a
		return nil
	}); err != nil {
		return nil, err
	}

	letter := communication.NewLetter(caller.TenantID, caller.UserID, req.MemberID, req.TemplateID, artifact, shared.NewID(), s.now())
	if err := s.stage(ctx, StageRecord, func(ctx context.Context) error {
		return s.letters.Create(ctx, letter)
	}); err != nil {
		s.compensate(ctx, log, artifact.Path, err)
		return nil, fmt.Errorf("failed to record letter: %w", err)
	}

	span.SetAttributes(telemetry.AttrLetterID.String(letter.ID))
	log.Info("Letter generated",
		zap.String("letter_id", letter.ID),
		zap.String("artifact_path", letter.ArtifactPath),
	)
	return &GenerateLetterResponse{
		LetterID:    letter.ID,
		DownloadURL: artifact.SignedURL,
		FileName:    artifact.FileName,
		ExpiresAt:   artifact.ExpiresAt,
	}, nil
}

// compensate removes an artifact whose ledger entry could not be written.
// It runs even if the request was cancelled.
func (s *LetterService) compensate(ctx context.Context, log *zap.Logger, artifactPath string, cause error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	if err := s.publisher.Discard(ctx, artifactPath); err != nil {
		log.Error("Orphaned letter artifact left in storage",
			zap.String("artifact_path", artifactPath),
			zap.NamedError("ledger_error", cause),
			zap.Error(err),
		)
		return
	}
	log.Warn("Letter artifact removed after ledger write failed",
		zap.String("artifact_path", artifactPath),
		zap.NamedError("ledger_error", cause),
	)
}

func (s *LetterService) stage(ctx context.Context, name string, fn func(context.Context) error) error {
	ctx, span := telemetry.StartStage(ctx, name)
	start := time.Now()
	err := fn(ctx)
	s.metrics.ObserveStage(name, time.Since(start))
	telemetry.EndSpan(span, err)
	return err
}

// GetLetter returns one ledger entry of the caller's tenant
func (s *LetterService) GetLetter(ctx context.Context, caller Caller, letterID string) (*LetterResponse, error) {
	letter, err := s.loadLetter(ctx, caller, letterID)
	if err != nil {
		return nil, err
	}
	resp := toLetterResponse(letter)
	return &resp, nil
}

// ListLetters lists ledger entries, newest first by default
func (s *LetterService) ListLetters(ctx context.Context, caller Caller, req ListLettersRequest) ([]LetterResponse, int64, error) {
	if err := caller.Validate(); err != nil {
		return nil, 0, err
	}
	filter := shared.Filter{
		Page:     req.Page,
		PageSize: req.PageSize,
		OrderBy:  req.OrderBy,
		OrderDir: req.OrderDir,
	}
	for column, id := range map[string]string{"member_id": req.MemberID, "template_id": req.TemplateID} {
		if id == "" {
			continue
		}
		if err := communication.ValidateRecordID(id); err != nil {
			return nil, 0, err
		}
		filter = filter.Where(column, id)
	}

	letters, err := s.letters.FindAllForTenant(ctx, caller.TenantID, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list letters: %w", err)
	}
	total, err := s.letters.CountForTenant(ctx, caller.TenantID, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count letters: %w", err)
	}

	items := make([]LetterResponse, len(letters))
	for i := range letters {
		items[i] = toLetterResponse(&letters[i])
	}
	return items, total, nil
}

// RefreshDownloadURL signs a new link for a recorded letter
func (s *LetterService) RefreshDownloadURL(ctx context.Context, caller Caller, letterID string) (*DownloadURLResponse, error) {
	letter, err := s.loadLetter(ctx, caller, letterID)
	if err != nil {
		return nil, err
	}
	url, expiresAt, err := s.publisher.SignedURL(ctx, letter.ArtifactPath)
	if err != nil {
		return nil, err
	}
	return &DownloadURLResponse{
		LetterID:    letter.ID,
		DownloadURL: url,
		ExpiresAt:   expiresAt,
	}, nil
}

func (s *LetterService) loadLetter(ctx context.Context, caller Caller, letterID string) (*communication.Letter, error) {
	if err := caller.Validate(); err != nil {
		return nil, err
	}
	if err := communication.ValidateRecordID(letterID); err != nil {
		return nil, err
	}
	letter, err := s.letters.FindByIDForTenant(ctx, caller.TenantID, letterID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NotFound("Letter not found")
		}
		return nil, fmt.Errorf("failed to get letter: %w", err)
	}
	return letter, nil
}

// asPipelineError keeps domain errors and files anything else under sentinel
func asPipelineError(sentinel *shared.DomainError, err error) error {
	if _, ok := shared.AsDomainError(err); ok {
		return err
	}
	return communication.Failure(sentinel, err)
}
