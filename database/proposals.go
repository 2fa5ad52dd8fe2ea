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

const proposalColumns = `id, rfp_id, contractor, contractor_email, price, currency, start_date, summary,
        experience, methodology, warranties, timeline_details, status, extracted_text, form_data, grand_total, created_at`

func (s *PostgresStore) CreateProposal(ctx context.Context, p *types.Proposal) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	if p.Currency == "" {
		p.Currency = "USD"
	}
	if p.Status == "" {
		p.Status = types.ProposalStatusPending
	}

	formJSON, err := marshalFormData(p.FormData)
	if err != nil {
		return err
	}

	query := `
        INSERT INTO proposals (` + proposalColumns + `)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	_, err = s.DB.ExecContext(ctx, query,
		p.ID, p.RFPID, p.Contractor, p.ContractorEmail, p.Price, p.Currency, p.StartDate, p.Summary,
		pq.Array(p.Experience), pq.Array(p.Methodology), pq.Array(p.Warranties), pq.Array(p.TimelineDetails),
		p.Status, p.ExtractedText, formJSON, p.GrandTotal, p.CreatedAt)
	if err != nil {
		return apperrors.WrapErrorf(apperrors.ErrDatabaseOperation, "create proposal: %v", err)
	}
	return nil
}

func (s *PostgresStore) GetProposal(ctx context.Context, id uuid.UUID) (types.Proposal, error) {
	row := s.DB.QueryRowContext(ctx,
		`SELECT `+proposalColumns+` FROM proposals WHERE id = $1`, id)

	p, err := scanProposal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Proposal{}, apperrors.WrapErrorf(apperrors.ErrNotFound, "proposal %s", id)
	}
	if err != nil {
		return types.Proposal{}, apperrors.WrapErrorf(apperrors.ErrDatabaseOperation, "get proposal: %v", err)
	}
	return p, nil
}

// ListProposals returns proposals newest first, optionally filtered by RFP.
func (s *PostgresStore) ListProposals(ctx context.Context, rfpID *uuid.UUID) ([]types.Proposal, error) {
	query := `SELECT ` + proposalColumns + ` FROM proposals`
	args := []any{}
	if rfpID != nil {
		query += ` WHERE rfp_id = $1`
		args = append(args, *rfpID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.WrapErrorf(apperrors.ErrDatabaseOperation, "list proposals: %v", err)
	}
	defer rows.Close()

	var out []types.Proposal
	for rows.Next() {
		p, err := scanProposal(rows)
		if err != nil {
			return nil, apperrors.WrapErrorf(apperrors.ErrDatabaseOperation, "scan proposal: %v", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// UpdateProposalExtraction persists everything the extraction pipeline filled
// in after upload. Last writer wins.
func (s *PostgresStore) UpdateProposalExtraction(ctx context.Context, p types.Proposal) error {
	formJSON, err := marshalFormData(p.FormData)
	if err != nil {
		return err
	}
	query := `
        UPDATE proposals
        SET contractor = $2, contractor_email = $3, price = $4, currency = $5, start_date = $6,
            summary = $7, experience = $8, methodology = $9, warranties = $10, timeline_details = $11,
            extracted_text = $12, form_data = $13, grand_total = $14
        WHERE id = $1`
	res, err := s.DB.ExecContext(ctx, query,
		p.ID, p.Contractor, p.ContractorEmail, p.Price, p.Currency, p.StartDate,
		p.Summary, pq.Array(p.Experience), pq.Array(p.Methodology), pq.Array(p.Warranties),
		pq.Array(p.TimelineDetails), p.ExtractedText, formJSON, p.GrandTotal)
	if err != nil {
		return apperrors.WrapErrorf(apperrors.ErrDatabaseOperation, "update proposal: %v", err)
	}
	return requireRowAffected(res, p.ID.String())
}

func (s *PostgresStore) SetProposalStatus(ctx context.Context, id uuid.UUID, status string) error {
	res, err := s.DB.ExecContext(ctx,
		`UPDATE proposals SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return apperrors.WrapErrorf(apperrors.ErrDatabaseOperation, "set proposal status: %v", err)
	}
	return requireRowAffected(res, id.String())
}

func (s *PostgresStore) DeleteProposal(ctx context.Context, id uuid.UUID) error {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM proposals WHERE id = $1`, id)
	if err != nil {
		return apperrors.WrapErrorf(apperrors.ErrDatabaseOperation, "delete proposal: %v", err)
	}
	return requireRowAffected(res, id.String())
}

func scanProposal(row rowScanner) (types.Proposal, error) {
	var p types.Proposal
	var formJSON []byte
	err := row.Scan(&p.ID, &p.RFPID, &p.Contractor, &p.ContractorEmail, &p.Price, &p.Currency,
		&p.StartDate, &p.Summary, pq.Array(&p.Experience), pq.Array(&p.Methodology),
		pq.Array(&p.Warranties), pq.Array(&p.TimelineDetails), &p.Status, &p.ExtractedText,
		&formJSON, &p.GrandTotal, &p.CreatedAt)
	if err != nil {
		return types.Proposal{}, err
	}
	if len(formJSON) > 0 {
		if err := json.Unmarshal(formJSON, &p.FormData); err != nil {
			return types.Proposal{}, fmt.Errorf("decode form data: %w", err)
		}
	}
	return p, nil
}

func marshalFormData(rows []bidform.FilledRow) ([]byte, error) {
	if rows == nil {
		return nil, nil
	}
	b, err := json.Marshal(rows)
	if err != nil {
		return nil, fmt.Errorf("encode form data: %w", err)
	}
	return b, nil
}
