package storage

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/gommon/log"
	"github.com/marcboeker/go-duckdb"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/carrier-rates/backend/internal/models"
)

// DuckOptions tune the embedded database.
type DuckOptions struct {
	MemoryLimit string
	Threads     int
	Logger      *log.Logger
}

// DuckStore implements Store on a DuckDB file. Templates are kept as JSON
// documents with usage counters in their own columns; rate-card records
// are kept as a MessagePack blob.
type DuckStore struct {
	db     *sql.DB
	dbPath string
	logger *log.Logger

	// DuckDB aborts concurrent transactions that touch the same row, so
	// writes are serialized.
	writeMu sync.Mutex
}

var duckSchema = []string{`
CREATE TABLE IF NOT EXISTS templates (
	id            VARCHAR PRIMARY KEY,
	carrier_id    VARCHAR NOT NULL,
	doc           VARCHAR NOT NULL,
	import_count  BIGINT NOT NULL DEFAULT 0,
	last_used_at  TIMESTAMP,
	created_at    TIMESTAMP NOT NULL
)`, `
CREATE TABLE IF NOT EXISTS rate_cards (
	id               VARCHAR PRIMARY KEY,
	template_id      VARCHAR NOT NULL,
	template_version INTEGER NOT NULL,
	carrier_id       VARCHAR NOT NULL,
	name             VARCHAR,
	status           VARCHAR NOT NULL,
	record_count     INTEGER NOT NULL,
	skipped_count    INTEGER NOT NULL,
	created_at       TIMESTAMP NOT NULL,
	created_by       VARCHAR,
	records          BLOB NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_templates_carrier ON templates(carrier_id)`,
	`CREATE INDEX IF NOT EXISTS idx_rate_cards_template ON rate_cards(template_id)`,
}

// NewDuckStore opens or creates the database at dbPath.
func NewDuckStore(dbPath string, opts DuckOptions) (*DuckStore, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.New("storage")
	}
	if opts.MemoryLimit == "" {
		opts.MemoryLimit = "512MB"
	}
	if opts.Threads <= 0 {
		opts.Threads = 2
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	logger.Infof("opening database at %s", dbPath)
	connector, err := duckdb.NewConnector(dbPath, func(execer driver.ExecerContext) error {
		pragmas := []string{
			fmt.Sprintf("PRAGMA memory_limit='%s'", opts.MemoryLimit),
			fmt.Sprintf("PRAGMA threads=%d", opts.Threads),
			"PRAGMA enable_progress_bar=false",
		}
		for _, pragma := range pragmas {
			if _, err := execer.ExecContext(context.Background(), pragma, nil); err != nil {
				return fmt.Errorf("%s: %w", pragma, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create DuckDB connector: %w", err)
	}

	db := sql.OpenDB(connector)
	for _, stmt := range duckSchema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return &DuckStore{db: db, dbPath: dbPath, logger: logger}, nil
}

// CreateTemplate inserts t. Usage counters are taken from t.Usage.
func (s *DuckStore) CreateTemplate(ctx context.Context, t *models.CarrierRateTemplate) (string, error) {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	doc, err := json.Marshal(t)
	if err != nil {
		return "", fmt.Errorf("encoding template: %w", err)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO templates (id, carrier_id, doc, import_count, last_used_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.CarrierID, string(doc), t.Usage.ImportCount, nullTime(t.Usage.LastUsedAt), t.CreatedAt.UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("inserting template %s: %w", t.ID, err)
	}
	return t.ID, nil
}

// GetTemplate loads the template with id.
func (s *DuckStore) GetTemplate(ctx context.Context, id string) (*models.CarrierRateTemplate, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT doc, import_count, last_used_at FROM templates WHERE id = ?`, id)
	t, err := scanTemplate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("template %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("loading template %s: %w", id, err)
	}
	return t, nil
}

// ListTemplates returns the carrier's templates, most recently used first.
func (s *DuckStore) ListTemplates(ctx context.Context, carrierID string, limit int) ([]*models.CarrierRateTemplate, error) {
	query := `SELECT doc, import_count, last_used_at FROM templates`
	var args []interface{}
	if carrierID != "" {
		query += ` WHERE carrier_id = ?`
		args = append(args, carrierID)
	}
	query += ` ORDER BY last_used_at DESC NULLS LAST, created_at DESC, id`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing templates: %w", err)
	}
	defer rows.Close()

	list := make([]*models.CarrierRateTemplate, 0)
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning template: %w", err)
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanTemplate(row scanner) (*models.CarrierRateTemplate, error) {
	var (
		doc      string
		count    int64
		lastUsed sql.NullTime
	)
	if err := row.Scan(&doc, &count, &lastUsed); err != nil {
		return nil, err
	}
	var t models.CarrierRateTemplate
	if err := json.Unmarshal([]byte(doc), &t); err != nil {
		return nil, fmt.Errorf("decoding template: %w", err)
	}
	t.Usage.ImportCount = int(count)
	t.Usage.LastUsedAt = nil
	if lastUsed.Valid {
		at := lastUsed.Time
		t.Usage.LastUsedAt = &at
	}
	return &t, nil
}

// IncrementUsage adds inc.By to the template's import count in place.
func (s *DuckStore) IncrementUsage(ctx context.Context, inc models.UsageIncrement) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := incrementTx(ctx, tx, inc); err != nil {
		return err
	}
	return tx.Commit()
}

func incrementTx(ctx context.Context, tx *sql.Tx, inc models.UsageIncrement) error {
	by := inc.By
	if by == 0 {
		by = 1
	}
	at := inc.LastUsedAt
	if at.IsZero() {
		at = time.Now()
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE templates
		SET import_count = import_count + ?, last_used_at = ?
		WHERE id = ?`,
		by, at.UTC(), inc.TemplateID,
	)
	if err != nil {
		return fmt.Errorf("incrementing usage of %s: %w", inc.TemplateID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("incrementing usage of %s: %w", inc.TemplateID, err)
	}
	if n == 0 {
		return fmt.Errorf("template %s: %w", inc.TemplateID, ErrNotFound)
	}
	return nil
}

// CreateRateCard inserts card and increments its template's usage in one
// transaction.
func (s *DuckStore) CreateRateCard(ctx context.Context, card *models.RateCard, inc models.UsageIncrement) error {
	if card.ID == "" {
		card.ID = uuid.New().String()
	}
	records, err := encodeRecords(card.Records)
	if err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO rate_cards (id, template_id, template_version, carrier_id, name, status,
			record_count, skipped_count, created_at, created_by, records)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		card.ID, card.TemplateID, card.TemplateVersion, card.CarrierID, card.Name, card.Status,
		card.RecordCount, card.SkippedCount, card.CreatedAt.UTC(), card.CreatedBy, records,
	)
	if err != nil {
		return fmt.Errorf("inserting rate card %s: %w", card.ID, err)
	}
	if err := incrementTx(ctx, tx, inc); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing rate card %s: %w", card.ID, err)
	}
	s.logger.Debugf("stored rate card %s with %d records", card.ID, card.RecordCount)
	return nil
}

const rateCardColumns = `id, template_id, template_version, carrier_id, name, status,
	record_count, skipped_count, created_at, created_by`

// GetRateCard loads the rate card with id including its records.
func (s *DuckStore) GetRateCard(ctx context.Context, id string) (*models.RateCard, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+rateCardColumns+`, records FROM rate_cards WHERE id = ?`, id)

	var blob []byte
	card, err := scanRateCard(row, &blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("rate card %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("loading rate card %s: %w", id, err)
	}
	if card.Records, err = decodeRecords(blob); err != nil {
		return nil, err
	}
	return card, nil
}

// ListRateCards returns the template's rate cards newest first, without
// records.
func (s *DuckStore) ListRateCards(ctx context.Context, templateID string, limit int) ([]*models.RateCard, error) {
	query := `SELECT ` + rateCardColumns + ` FROM rate_cards WHERE template_id = ? ORDER BY created_at DESC, id`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.db.QueryContext(ctx, query, templateID)
	if err != nil {
		return nil, fmt.Errorf("listing rate cards: %w", err)
	}
	defer rows.Close()

	list := make([]*models.RateCard, 0)
	for rows.Next() {
		card, err := scanRateCard(rows, nil)
		if err != nil {
			return nil, fmt.Errorf("scanning rate card: %w", err)
		}
		list = append(list, card)
	}
	return list, rows.Err()
}

func scanRateCard(row scanner, blob *[]byte) (*models.RateCard, error) {
	var (
		c         models.RateCard
		name      sql.NullString
		createdBy sql.NullString
	)
	dest := []interface{}{
		&c.ID, &c.TemplateID, &c.TemplateVersion, &c.CarrierID, &name, &c.Status,
		&c.RecordCount, &c.SkippedCount, &c.CreatedAt, &createdBy,
	}
	if blob != nil {
		dest = append(dest, blob)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	c.Name = name.String
	c.CreatedBy = createdBy.String
	return &c, nil
}

// Close closes the database.
func (s *DuckStore) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *DuckStore) Path() string {
	return s.dbPath
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func encodeRecords(records []models.RateRecord) ([]byte, error) {
	data, err := msgpack.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("encoding records: %w", err)
	}
	return data, nil
}

func decodeRecords(data []byte) ([]models.RateRecord, error) {
	records := make([]models.RateRecord, 0)
	if err := msgpack.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decoding records: %w", err)
	}
	return records, nil
}
