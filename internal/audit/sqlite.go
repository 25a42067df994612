package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite" // Register the pure-Go SQLite driver.

	"github.com/sells-group/fit-engine/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite, for local/dev/test use.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at dsn and configures WAL mode so the
// orchestrator's per-stage writes don't serialize behind each other.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	if !strings.Contains(dsn, "?") {
		dsn += "?"
	} else {
		dsn += "&"
	}
	dsn += "_pragma=busy_timeout(30000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	db.SetMaxOpenConns(10)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, eris.Wrap(err, "sqlite: ping")
	}

	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS audit_rows (
	id             TEXT PRIMARY KEY,
	lead_id        TEXT,
	crm_id         TEXT,
	job_id         TEXT NOT NULL,
	status         TEXT NOT NULL DEFAULT 'pending',
	places         TEXT,
	company        TEXT,
	webtech        TEXT,
	fit_score      INTEGER,
	breakdown      TEXT,
	projection     TEXT,
	crm_updated    INTEGER NOT NULL DEFAULT 0,
	crm_updated_at DATETIME,
	error_message  TEXT,
	created_at     DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at     DATETIME NOT NULL DEFAULT (datetime('now')),
	CHECK (lead_id IS NOT NULL OR crm_id IS NOT NULL)
);

CREATE INDEX IF NOT EXISTS idx_audit_rows_status ON audit_rows(status);
CREATE INDEX IF NOT EXISTS idx_audit_rows_crm_id ON audit_rows(crm_id);
CREATE INDEX IF NOT EXISTS idx_audit_rows_created_at ON audit_rows(created_at);
`

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreatePending(ctx context.Context, leadID, crmID, jobID string) (*model.AuditRow, error) {
	if leadID == "" && crmID == "" {
		return nil, ErrMissingIdentifier
	}

	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO audit_rows (id, lead_id, crm_id, job_id, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, nullable(leadID), nullable(crmID), jobID, string(model.StatusPending), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert audit row")
	}

	return &model.AuditRow{
		ID:        id,
		LeadID:    leadID,
		CRMID:     crmID,
		JobID:     jobID,
		Status:    model.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *SQLiteStore) UpdatePlaces(ctx context.Context, id string, facts *model.PlacesFacts) error {
	return s.updateJSONColumn(ctx, "places", id, facts)
}

func (s *SQLiteStore) UpdateCompany(ctx context.Context, id string, facts *model.CompanyFacts) error {
	return s.updateJSONColumn(ctx, "company", id, facts)
}

func (s *SQLiteStore) UpdateWebTech(ctx context.Context, id string, facts *model.WebTechFacts) error {
	return s.updateJSONColumn(ctx, "webtech", id, facts)
}

func (s *SQLiteStore) UpdateScore(ctx context.Context, id string, score int, breakdown model.ScoreBreakdown) error {
	breakdownJSON, err := json.Marshal(breakdown)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal breakdown")
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE audit_rows SET fit_score = ?, breakdown = ?, updated_at = ? WHERE id = ?`,
		score, string(breakdownJSON), time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update score %s", id)
	}
	return checkRowsAffected(res, id)
}

func (s *SQLiteStore) UpdateProjection(ctx context.Context, id string, projection model.CrmProjection) error {
	return s.updateJSONColumn(ctx, "projection", id, projection)
}

func (s *SQLiteStore) UpdateCRMResult(ctx context.Context, id string, updated bool, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE audit_rows SET crm_updated = ?, crm_updated_at = ?, updated_at = ? WHERE id = ?`,
		updated, at.UTC(), time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update crm result %s", id)
	}
	return checkRowsAffected(res, id)
}

func (s *SQLiteStore) FinalizeStatus(ctx context.Context, id string, status model.EnrichmentStatus, errMessage string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE audit_rows SET status = ?, error_message = ?, updated_at = ? WHERE id = ?`,
		string(status), nullable(errMessage), time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: finalize status %s", id)
	}
	return checkRowsAffected(res, id)
}

func (s *SQLiteStore) GetRow(ctx context.Context, id string) (*model.AuditRow, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, lead_id, crm_id, job_id, status, places, company, webtech,
		        fit_score, breakdown, projection, crm_updated, crm_updated_at,
		        error_message, created_at, updated_at
		 FROM audit_rows WHERE id = ?`,
		id,
	)
	return scanAuditRow(row)
}

func (s *SQLiteStore) ListRows(ctx context.Context, filter Filter) ([]model.AuditRow, error) {
	query := `SELECT id, lead_id, crm_id, job_id, status, places, company, webtech,
	                 fit_score, breakdown, projection, crm_updated, crm_updated_at,
	                 error_message, created_at, updated_at
	          FROM audit_rows WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	if filter.CRMID != "" {
		query += ` AND crm_id = ?`
		args = append(args, filter.CRMID)
	}
	if !filter.CreatedAfter.IsZero() {
		query += ` AND created_at >= ?`
		args = append(args, filter.CreatedAfter)
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list audit rows")
	}
	defer rows.Close() //nolint:errcheck

	var out []model.AuditRow
	for rows.Next() {
		r, err := scanAuditRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list audit rows iterate")
}

func (s *SQLiteStore) updateJSONColumn(ctx context.Context, column, id string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return eris.Wrapf(err, "sqlite: marshal %s", column)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE audit_rows SET `+column+` = ?, updated_at = ? WHERE id = ?`,
		string(payload), time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update %s %s", column, id)
	}
	return checkRowsAffected(res, id)
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func checkRowsAffected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return eris.Wrap(ErrRowNotFound, id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanAuditRow(row scannable) (*model.AuditRow, error) {
	var r model.AuditRow
	var leadID, crmID, placesJSON, companyJSON, webtechJSON, breakdownJSON, projectionJSON, errMessage sql.NullString
	var fitScore sql.NullInt64
	var crmUpdatedAt sql.NullTime

	err := row.Scan(
		&r.ID, &leadID, &crmID, &r.JobID, &r.Status,
		&placesJSON, &companyJSON, &webtechJSON,
		&fitScore, &breakdownJSON, &projectionJSON,
		&r.CRMUpdated, &crmUpdatedAt, &errMessage,
		&r.CreatedAt, &r.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrRowNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan audit row")
	}

	r.LeadID = leadID.String
	r.CRMID = crmID.String
	r.ErrorMessage = errMessage.String

	if fitScore.Valid {
		v := int(fitScore.Int64)
		r.FitScore = &v
	}
	if crmUpdatedAt.Valid {
		r.CRMUpdatedAt = &crmUpdatedAt.Time
	}
	if placesJSON.Valid {
		r.Places = &model.PlacesFacts{}
		if err := json.Unmarshal([]byte(placesJSON.String), r.Places); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal places")
		}
	}
	if companyJSON.Valid {
		r.Company = &model.CompanyFacts{}
		if err := json.Unmarshal([]byte(companyJSON.String), r.Company); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal company")
		}
	}
	if webtechJSON.Valid {
		r.WebTech = &model.WebTechFacts{}
		if err := json.Unmarshal([]byte(webtechJSON.String), r.WebTech); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal webtech")
		}
	}
	if breakdownJSON.Valid {
		r.Breakdown = &model.ScoreBreakdown{}
		if err := json.Unmarshal([]byte(breakdownJSON.String), r.Breakdown); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal breakdown")
		}
	}
	if projectionJSON.Valid {
		r.Projection = &model.CrmProjection{}
		if err := json.Unmarshal([]byte(projectionJSON.String), r.Projection); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal projection")
		}
	}

	return &r, nil
}
