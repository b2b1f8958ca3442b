// Package importer sequences template lookup, validation, row processing
// and the atomic rate-card write.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/gommon/log"
	"gopkg.in/yaml.v3"

	"github.com/carrier-rates/backend/internal/mapping"
	"github.com/carrier-rates/backend/internal/models"
	"github.com/carrier-rates/backend/internal/notify"
	"github.com/carrier-rates/backend/internal/parser"
	"github.com/carrier-rates/backend/internal/rates"
	"github.com/carrier-rates/backend/internal/storage"
)

// Limits bound the work done per request.
type Limits struct {
	ValidationSample   int
	PreviewRows        int
	SampleRetention    int
	SuggestionLookback int
}

// DefaultLimits returns the standard limits.
func DefaultLimits() Limits {
	return Limits{
		ValidationSample:   rates.DefaultSampleSize,
		PreviewRows:        5,
		SampleRetention:    models.MaxSampleRows,
		SuggestionLookback: 5,
	}
}

// Service implements the caller-facing import operations.
type Service struct {
	store     storage.Store
	engine    *mapping.Engine
	publisher notify.Publisher
	limits    Limits
	logger    *log.Logger
	now       func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithPublisher sets the import event publisher.
func WithPublisher(p notify.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithEngine replaces the default heuristics engine.
func WithEngine(e *mapping.Engine) Option {
	return func(s *Service) { s.engine = e }
}

// WithLimits overrides the default limits. Zero fields keep their default.
func WithLimits(l Limits) Option {
	return func(s *Service) {
		if l.ValidationSample > 0 {
			s.limits.ValidationSample = l.ValidationSample
		}
		if l.PreviewRows > 0 {
			s.limits.PreviewRows = l.PreviewRows
		}
		if l.SampleRetention > 0 {
			s.limits.SampleRetention = l.SampleRetention
		}
		if l.SuggestionLookback > 0 {
			s.limits.SuggestionLookback = l.SuggestionLookback
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a Service over store.
func NewService(store storage.Store, opts ...Option) *Service {
	s := &Service{
		store:     store,
		engine:    mapping.NewDefaultEngine(),
		publisher: notify.NopPublisher{},
		limits:    DefaultLimits(),
		logger:    log.New("importer"),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SuggestResult is returned by SuggestMapping.
type SuggestResult struct {
	Suggestions       *models.MappingSuggestion     `json:"suggestions"`
	Confidence        models.ConfidenceScore        `json:"confidence"`
	ExistingTemplates []*models.CarrierRateTemplate `json:"existingTemplates"`
}

// SuggestMapping proposes a template skeleton for headers and scores it
// against the carrier's most recently used templates.
func (s *Service) SuggestMapping(ctx context.Context, headers, sampleRow []string, carrierID string) (*SuggestResult, error) {
	if len(headers) == 0 {
		return nil, ErrNoHeaders
	}

	existing := make([]*models.CarrierRateTemplate, 0)
	if carrierID != "" {
		list, err := s.store.ListTemplates(ctx, carrierID, s.limits.SuggestionLookback)
		if err != nil {
			return nil, fmt.Errorf("listing templates for carrier %s: %w", carrierID, err)
		}
		existing = list
	}

	suggestion := s.engine.Suggest(headers, sampleRow)
	return &SuggestResult{
		Suggestions:       suggestion,
		Confidence:        mapping.ScoreConfidence(&suggestion.FieldMappings, existing),
		ExistingTemplates: existing,
	}, nil
}

// ValidateImport checks rows against the template.
func (s *Service) ValidateImport(ctx context.Context, templateID string, rows [][]string) (*models.ValidationResult, error) {
	tmpl, err := s.GetTemplate(ctx, templateID)
	if err != nil {
		return nil, err
	}
	return rates.Validate(rows, tmpl, s.limits.ValidationSample), nil
}

// PreviewResult is returned by PreviewImport.
type PreviewResult struct {
	Validation   *models.ValidationResult `json:"validation"`
	Records      []models.RateRecord      `json:"records"`
	SkippedCount int                      `json:"skippedCount"`
	TotalRows    int                      `json:"totalRows"`
}

// PreviewImport validates rows and processes the first few data rows
// without persisting anything. An invalid file returns the result together
// with a *ValidationError.
func (s *Service) PreviewImport(ctx context.Context, templateID string, rows [][]string) (*PreviewResult, error) {
	tmpl, err := s.GetTemplate(ctx, templateID)
	if err != nil {
		return nil, err
	}

	validation := rates.Validate(rows, tmpl, s.limits.ValidationSample)
	res := &PreviewResult{Validation: validation, Records: make([]models.RateRecord, 0)}
	if !validation.Valid {
		return res, &ValidationError{Result: validation}
	}

	table := rates.Split(rows, &tmpl.CSVStructure)
	batch := rates.ProcessRows(table.Data, tmpl, s.limits.PreviewRows)
	res.Records = batch.Records
	res.SkippedCount = batch.Skipped
	res.TotalRows = len(table.Data)
	return res, nil
}

// CommitOptions describe the rate card being created.
type CommitOptions struct {
	Name      string
	CreatedBy string
}

// CommitResult is returned by CommitImport.
type CommitResult struct {
	RateCardID     string                   `json:"rateCardId,omitempty"`
	ProcessedCount int                      `json:"processedCount"`
	SkippedCount   int                      `json:"skippedCount"`
	Validation     *models.ValidationResult `json:"validation"`
}

// CommitImport processes every data row and stores the results as a new
// rate card, incrementing the template's usage in the same write. Rows that
// fail are skipped and counted.
func (s *Service) CommitImport(ctx context.Context, templateID string, rows [][]string, opts CommitOptions) (*CommitResult, error) {
	tmpl, err := s.GetTemplate(ctx, templateID)
	if err != nil {
		return nil, err
	}

	validation := rates.Validate(rows, tmpl, s.limits.ValidationSample)
	res := &CommitResult{Validation: validation}
	if !validation.Valid {
		return res, &ValidationError{Result: validation}
	}

	table := rates.Split(rows, &tmpl.CSVStructure)
	batch := rates.ProcessRows(table.Data, tmpl, 0)
	for _, rowErr := range batch.RowErrors {
		s.logger.Debugf("template %s: skipped %v", templateID, rowErr)
	}
	res.ProcessedCount = len(batch.Records)
	res.SkippedCount = batch.Skipped
	if len(batch.Records) == 0 {
		return res, fmt.Errorf("template %s: %w (%d rows skipped)", templateID, ErrNoValidRows, batch.Skipped)
	}

	now := s.now().UTC()
	card := &models.RateCard{
		ID:              uuid.New().String(),
		TemplateID:      tmpl.ID,
		TemplateVersion: tmpl.Version,
		CarrierID:       tmpl.CarrierID,
		Name:            opts.Name,
		Status:          models.RateCardStatusActive,
		Records:         batch.Records,
		RecordCount:     len(batch.Records),
		SkippedCount:    batch.Skipped,
		CreatedAt:       now,
		CreatedBy:       opts.CreatedBy,
	}
	inc := models.UsageIncrement{TemplateID: tmpl.ID, By: 1, LastUsedAt: now}
	if err := s.store.CreateRateCard(ctx, card, inc); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, templateID)
		}
		return nil, fmt.Errorf("storing rate card: %w", err)
	}
	res.RateCardID = card.ID

	s.logger.Infof("template %s: committed rate card %s (%d processed, %d skipped)",
		templateID, card.ID, res.ProcessedCount, res.SkippedCount)

	evt := notify.RateCardImported{
		RateCardID:      card.ID,
		TemplateID:      card.TemplateID,
		TemplateVersion: card.TemplateVersion,
		CarrierID:       card.CarrierID,
		ProcessedCount:  res.ProcessedCount,
		SkippedCount:    res.SkippedCount,
		OccurredAt:      now,
	}
	if err := s.publisher.PublishImported(ctx, evt); err != nil {
		s.logger.Warnf("rate card %s committed but event not published: %v", card.ID, err)
	}
	return res, nil
}

// CreateTemplate normalizes and stores a new template at version 1 with
// zero usage.
func (s *Service) CreateTemplate(ctx context.Context, t *models.CarrierRateTemplate) (*models.CarrierRateTemplate, error) {
	if err := checkTemplate(t); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	t.ID = uuid.New().String()
	t.Version = 1
	t.Usage = models.TemplateUsage{}
	t.CreatedAt = now
	t.UpdatedAt = now
	t.Normalize()
	if len(t.SampleData) > s.limits.SampleRetention {
		t.SampleData = t.SampleData[:s.limits.SampleRetention]
	}

	if _, err := s.store.CreateTemplate(ctx, t); err != nil {
		return nil, fmt.Errorf("creating template: %w", err)
	}
	s.logger.Infof("created template %s (%s) for carrier %s", t.ID, t.Name, t.CarrierID)
	return t, nil
}

// ImportTemplateYAML decodes a YAML template document and creates it.
func (s *Service) ImportTemplateYAML(ctx context.Context, r io.Reader, createdBy string) (*models.CarrierRateTemplate, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var t models.CarrierRateTemplate
	if err := dec.Decode(&t); err != nil {
		return nil, fmt.Errorf("%w: decoding YAML: %v", ErrInvalidTemplate, err)
	}
	if createdBy != "" {
		t.CreatedBy = createdBy
	}
	return s.CreateTemplate(ctx, &t)
}

// GetTemplate loads and normalizes a template.
func (s *Service) GetTemplate(ctx context.Context, id string) (*models.CarrierRateTemplate, error) {
	t, err := s.store.GetTemplate(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("loading template %s: %w", id, err)
	}
	t.Normalize()
	return t, nil
}

// ListTemplates returns templates for carrierID, most recently used first.
func (s *Service) ListTemplates(ctx context.Context, carrierID string, limit int) ([]*models.CarrierRateTemplate, error) {
	list, err := s.store.ListTemplates(ctx, carrierID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing templates: %w", err)
	}
	return list, nil
}

// GetRateCard loads a rate card with its records.
func (s *Service) GetRateCard(ctx context.Context, id string) (*models.RateCard, error) {
	c, err := s.store.GetRateCard(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrRateCardNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("loading rate card %s: %w", id, err)
	}
	return c, nil
}

// ListRateCards returns a template's rate cards newest first.
func (s *Service) ListRateCards(ctx context.Context, templateID string, limit int) ([]*models.RateCard, error) {
	if _, err := s.GetTemplate(ctx, templateID); err != nil {
		return nil, err
	}
	list, err := s.store.ListRateCards(ctx, templateID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing rate cards: %w", err)
	}
	return list, nil
}

// DecodeFile reads an uploaded carrier file with the template's delimiter
// and encoding.
func (s *Service) DecodeFile(ctx context.Context, templateID string, data []byte) ([][]string, error) {
	tmpl, err := s.GetTemplate(ctx, templateID)
	if err != nil {
		return nil, err
	}
	rows, err := parser.ReadBytes(data, parser.Options{
		Delimiter: tmpl.CSVStructure.Delimiter,
		Encoding:  tmpl.CSVStructure.Encoding,
	})
	if err != nil {
		return nil, fmt.Errorf("reading file for template %s: %w", templateID, err)
	}
	return rows, nil
}
