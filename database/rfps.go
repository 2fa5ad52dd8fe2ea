package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"rfp-agent/bidform"
	apperrors "rfp-agent/errors"
	"rfp-agent/web/types"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

func (s *PostgresStore) CreateRFP(ctx context.Context, rfp *types.RFP) error {
	if rfp.ID == uuid.Nil {
		rfp.ID = uuid.New()
	}
	if rfp.CreatedAt.IsZero() {
		rfp.CreatedAt = time.Now()
	}
	if rfp.Currency == "" {
		rfp.Currency = "USD"
	}
	if rfp.Status == "" {
		rfp.Status = "draft"
	}

	schemaJSON, rowsJSON, err := marshalForm(rfp.FormSchema, rfp.FormRows)
	if err != nil {
		return err
	}

	query := `
        INSERT INTO rfps (id, title, scope, requirements, budget, currency, timeline_start, timeline_end, status, form_schema, form_rows, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err = s.DB.ExecContext(ctx, query,
		rfp.ID, rfp.Title, rfp.Scope, pq.Array(rfp.Requirements), rfp.Budget, rfp.Currency,
		rfp.TimelineStart, rfp.TimelineEnd, rfp.Status, schemaJSON, rowsJSON, rfp.CreatedAt)
	if err != nil {
		return apperrors.WrapErrorf(apperrors.ErrDatabaseOperation, "create rfp: %v", err)
	}
	return nil
}

func (s *PostgresStore) GetRFP(ctx context.Context, id uuid.UUID) (types.RFP, error) {
	query := `
        SELECT id, title, scope, requirements, budget, currency, timeline_start, timeline_end, status, form_schema, form_rows, created_at
        FROM rfps WHERE id = $1`
	row := s.DB.QueryRowContext(ctx, query, id)

	rfp, err := scanRFP(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.RFP{}, apperrors.WrapErrorf(apperrors.ErrNotFound, "rfp %s", id)
	}
	if err != nil {
		return types.RFP{}, apperrors.WrapErrorf(apperrors.ErrDatabaseOperation, "get rfp: %v", err)
	}
	return rfp, nil
}

func (s *PostgresStore) ListRFPs(ctx context.Context) ([]types.RFP, error) {
	query := `
        SELECT id, title, scope, requirements, budget, currency, timeline_start, timeline_end, status, form_schema, form_rows, created_at
        FROM rfps ORDER BY created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.WrapErrorf(apperrors.ErrDatabaseOperation, "list rfps: %v", err)
	}
	defer rows.Close()

	var out []types.RFP
	for rows.Next() {
		rfp, err := scanRFP(rows)
		if err != nil {
			return nil, apperrors.WrapErrorf(apperrors.ErrDatabaseOperation, "scan rfp: %v", err)
		}
		out = append(out, rfp)
	}
	return out, rows.Err()
}

// UpdateRFPDetails overwrites the descriptive fields, leaving any stored form
// untouched.
func (s *PostgresStore) UpdateRFPDetails(ctx context.Context, rfp types.RFP) error {
	query := `
        UPDATE rfps
        SET title = $2, scope = $3, requirements = $4, budget = $5, currency = $6,
            timeline_start = $7, timeline_end = $8, status = $9
        WHERE id = $1`
	res, err := s.DB.ExecContext(ctx, query,
		rfp.ID, rfp.Title, rfp.Scope, pq.Array(rfp.Requirements), rfp.Budget, rfp.Currency,
		rfp.TimelineStart, rfp.TimelineEnd, rfp.Status)
	if err != nil {
		return apperrors.WrapErrorf(apperrors.ErrDatabaseOperation, "update rfp: %v", err)
	}
	return requireRowAffected(res, rfp.ID.String())
}

// DeleteRFP removes an RFP and all of its proposals.
func (s *PostgresStore) DeleteRFP(ctx context.Context, id uuid.UUID) error {
	if _, err := s.DB.ExecContext(ctx,
		`DELETE FROM proposals WHERE rfp_id = $1`, id); err != nil {
		return apperrors.WrapErrorf(apperrors.ErrDatabaseOperation, "delete rfp proposals: %v", err)
	}
	res, err := s.DB.ExecContext(ctx, `DELETE FROM rfps WHERE id = $1`, id)
	if err != nil {
		return apperrors.WrapErrorf(apperrors.ErrDatabaseOperation, "delete rfp: %v", err)
	}
	return requireRowAffected(res, id.String())
}

// SaveRFPForm persists the discovered form schema and issuer-side rows.
// Last writer wins.
func (s *PostgresStore) SaveRFPForm(ctx context.Context, id uuid.UUID, schema *bidform.FormSchema, formRows []bidform.FilledRow) error {
	schemaJSON, rowsJSON, err := marshalForm(schema, formRows)
	if err != nil {
		return err
	}
	res, err := s.DB.ExecContext(ctx,
		`UPDATE rfps SET form_schema = $2, form_rows = $3 WHERE id = $1`,
		id, schemaJSON, rowsJSON)
	if err != nil {
		return apperrors.WrapErrorf(apperrors.ErrDatabaseOperation, "save rfp form: %v", err)
	}
	return requireRowAffected(res, id.String())
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRFP(row rowScanner) (types.RFP, error) {
	var rfp types.RFP
	var schemaJSON, rowsJSON []byte
	err := row.Scan(&rfp.ID, &rfp.Title, &rfp.Scope, pq.Array(&rfp.Requirements),
		&rfp.Budget, &rfp.Currency, &rfp.TimelineStart, &rfp.TimelineEnd, &rfp.Status,
		&schemaJSON, &rowsJSON, &rfp.CreatedAt)
	if err != nil {
		return types.RFP{}, err
	}
	if len(schemaJSON) > 0 {
		rfp.FormSchema = &bidform.FormSchema{}
		if err := json.Unmarshal(schemaJSON, rfp.FormSchema); err != nil {
			return types.RFP{}, fmt.Errorf("decode form schema: %w", err)
		}
	}
	if len(rowsJSON) > 0 {
		if err := json.Unmarshal(rowsJSON, &rfp.FormRows); err != nil {
			return types.RFP{}, fmt.Errorf("decode form rows: %w", err)
		}
	}
	return rfp, nil
}

func marshalForm(schema *bidform.FormSchema, formRows []bidform.FilledRow) ([]byte, []byte, error) {
	var schemaJSON, rowsJSON []byte
	var err error
	if schema != nil {
		if schemaJSON, err = json.Marshal(schema); err != nil {
			return nil, nil, fmt.Errorf("encode form schema: %w", err)
		}
	}
	if formRows != nil {
		if rowsJSON, err = json.Marshal(formRows); err != nil {
			return nil, nil, fmt.Errorf("encode form rows: %w", err)
		}
	}
	return schemaJSON, rowsJSON, nil
}

func requireRowAffected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return apperrors.WrapErrorf(apperrors.ErrDatabaseOperation, "rows affected: %v", err)
	}
	if n == 0 {
		return apperrors.WrapErrorf(apperrors.ErrNotFound, "record %s", id)
	}
	return nil
}
