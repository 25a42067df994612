//go:build integration

package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/fit-engine/internal/model"
)

// PostgresStore implements Store using pgxpool, for production deployments.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a PostgresStore backed by a connection pool to connString.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS audit_rows (
	id             TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	lead_id        TEXT,
	crm_id         TEXT,
	job_id         TEXT NOT NULL,
	status         TEXT NOT NULL DEFAULT 'pending',
	places         JSONB,
	company        JSONB,
	webtech        JSONB,
	fit_score      INTEGER,
	breakdown      JSONB,
	projection     JSONB,
	crm_updated    BOOLEAN NOT NULL DEFAULT false,
	crm_updated_at TIMESTAMPTZ,
	error_message  TEXT,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	CHECK (lead_id IS NOT NULL OR crm_id IS NOT NULL)
);

CREATE INDEX IF NOT EXISTS idx_audit_rows_status ON audit_rows(status);
CREATE INDEX IF NOT EXISTS idx_audit_rows_crm_id ON audit_rows(crm_id);
CREATE INDEX IF NOT EXISTS idx_audit_rows_created_at ON audit_rows(created_at);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) CreatePending(ctx context.Context, leadID, crmID, jobID string) (*model.AuditRow, error) {
	if leadID == "" && crmID == "" {
		return nil, ErrMissingIdentifier
	}

	now := time.Now().UTC()
	var id string
	err := s.pool.QueryRow(ctx,
		`INSERT INTO audit_rows (lead_id, crm_id, job_id, status, created_at, updated_at)
		 VALUES (NULLIF($1, ''), NULLIF($2, ''), $3, $4, $5, $5) RETURNING id`,
		leadID, crmID, jobID, string(model.StatusPending), now,
	).Scan(&id)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert audit row")
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

func (s *PostgresStore) UpdatePlaces(ctx context.Context, id string, facts *model.PlacesFacts) error {
	return s.updateJSONColumn(ctx, "places", id, facts)
}

func (s *PostgresStore) UpdateCompany(ctx context.Context, id string, facts *model.CompanyFacts) error {
	return s.updateJSONColumn(ctx, "company", id, facts)
}

func (s *PostgresStore) UpdateWebTech(ctx context.Context, id string, facts *model.WebTechFacts) error {
	return s.updateJSONColumn(ctx, "webtech", id, facts)
}

func (s *PostgresStore) UpdateScore(ctx context.Context, id string, score int, breakdown model.ScoreBreakdown) error {
	breakdownJSON, err := json.Marshal(breakdown)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal breakdown")
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE audit_rows SET fit_score = $1, breakdown = $2, updated_at = $3 WHERE id = $4`,
		score, breakdownJSON, time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update score %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrap(ErrRowNotFound, id)
	}
	return nil
}

func (s *PostgresStore) UpdateProjection(ctx context.Context, id string, projection model.CrmProjection) error {
	return s.updateJSONColumn(ctx, "projection", id, projection)
}

func (s *PostgresStore) UpdateCRMResult(ctx context.Context, id string, updated bool, at time.Time) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE audit_rows SET crm_updated = $1, crm_updated_at = $2, updated_at = $3 WHERE id = $4`,
		updated, at.UTC(), time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update crm result %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrap(ErrRowNotFound, id)
	}
	return nil
}

func (s *PostgresStore) FinalizeStatus(ctx context.Context, id string, status model.EnrichmentStatus, errMessage string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE audit_rows SET status = $1, error_message = NULLIF($2, ''), updated_at = $3 WHERE id = $4`,
		string(status), errMessage, time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: finalize status %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrap(ErrRowNotFound, id)
	}
	return nil
}

func (s *PostgresStore) GetRow(ctx context.Context, id string) (*model.AuditRow, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, COALESCE(lead_id, ''), COALESCE(crm_id, ''), job_id, status,
		        places, company, webtech, fit_score, breakdown, projection,
		        crm_updated, crm_updated_at, COALESCE(error_message, ''), created_at, updated_at
		 FROM audit_rows WHERE id = $1`,
		id,
	)
	return scanPgRow(row)
}

func (s *PostgresStore) ListRows(ctx context.Context, filter Filter) ([]model.AuditRow, error) {
	query := `SELECT id, COALESCE(lead_id, ''), COALESCE(crm_id, ''), job_id, status,
	                 places, company, webtech, fit_score, breakdown, projection,
	                 crm_updated, crm_updated_at, COALESCE(error_message, ''), created_at, updated_at
	          FROM audit_rows WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Status != "" {
		query += argClause("status", argIdx)
		args = append(args, string(filter.Status))
		argIdx++
	}
	if filter.CRMID != "" {
		query += argClause("crm_id", argIdx)
		args = append(args, filter.CRMID)
		argIdx++
	}
	if !filter.CreatedAfter.IsZero() {
		query += ` AND created_at >= $` + itoa(argIdx)
		args = append(args, filter.CreatedAfter)
		argIdx++
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT $` + itoa(argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += ` OFFSET $` + itoa(argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list audit rows")
	}
	defer rows.Close()

	var out []model.AuditRow
	for rows.Next() {
		r, err := scanPgRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list audit rows iterate")
}

func (s *PostgresStore) updateJSONColumn(ctx context.Context, column, id string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return eris.Wrapf(err, "postgres: marshal %s", column)
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE audit_rows SET `+column+` = $1, updated_at = $2 WHERE id = $3`,
		payload, time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update %s %s", column, id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrap(ErrRowNotFound, id)
	}
	return nil
}

func argClause(column string, idx int) string {
	return " AND " + column + " = $" + itoa(idx)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := [20]byte{}
	i := len(digits)
	for n > 0 {
		i--
		digits[i] = byte('0' + n%10)
		n /= 10
	}
	return string(digits[i:])
}

type pgRow interface {
	Scan(dest ...any) error
}

func scanPgRow(row pgRow) (*model.AuditRow, error) {
	var r model.AuditRow
	var placesJSON, companyJSON, webtechJSON, breakdownJSON, projectionJSON []byte
	var fitScore *int
	var crmUpdatedAt *time.Time

	err := row.Scan(
		&r.ID, &r.LeadID, &r.CRMID, &r.JobID, &r.Status,
		&placesJSON, &companyJSON, &webtechJSON,
		&fitScore, &breakdownJSON, &projectionJSON,
		&r.CRMUpdated, &crmUpdatedAt, &r.ErrorMessage,
		&r.CreatedAt, &r.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, ErrRowNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: scan audit row")
	}

	r.FitScore = fitScore
	r.CRMUpdatedAt = crmUpdatedAt

	if len(placesJSON) > 0 {
		r.Places = &model.PlacesFacts{}
		if err := json.Unmarshal(placesJSON, r.Places); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal places")
		}
	}
	if len(companyJSON) > 0 {
		r.Company = &model.CompanyFacts{}
		if err := json.Unmarshal(companyJSON, r.Company); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal company")
		}
	}
	if len(webtechJSON) > 0 {
		r.WebTech = &model.WebTechFacts{}
		if err := json.Unmarshal(webtechJSON, r.WebTech); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal webtech")
		}
	}
	if len(breakdownJSON) > 0 {
		r.Breakdown = &model.ScoreBreakdown{}
		if err := json.Unmarshal(breakdownJSON, r.Breakdown); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal breakdown")
		}
	}
	if len(projectionJSON) > 0 {
		r.Projection = &model.CrmProjection{}
		if err := json.Unmarshal(projectionJSON, r.Projection); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal projection")
		}
	}

	return &r, nil
}
