package store

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// InsertRowParams is what the row mapper produces per canonical row.
type InsertRowParams struct {
	FileID           pgtype.UUID
	PolicyNumber     pgtype.Text
	InsuredName      pgtype.Text
	InceptionDate    pgtype.Date
	ExpiryDate       pgtype.Date
	PremiumAmount    pgtype.Numeric
	Currency         pgtype.Text
	ClaimAmount      pgtype.Numeric
	CommissionAmount pgtype.Numeric
	NetPremium       pgtype.Numeric
	BrokerName       pgtype.Text
	ProductType      pgtype.Text
	CoverageType     pgtype.Text
	RiskLocation     pgtype.Text
	RowNumber        int32
	RawData          []byte
}

var rowCopyColumns = []string{
	"id", "file_id", "policy_number", "insured_name", "inception_date", "expiry_date",
	"premium_amount", "currency", "claim_amount", "commission_amount", "net_premium",
	"broker_name", "product_type", "coverage_type", "risk_location", "row_number", "raw_data",
}

// InsertRows bulk-inserts canonical rows via the COPY protocol, falling back
// to a row-by-row INSERT if COPY fails (some poolers reject COPY). A
// savepoint taken before the COPY is rolled back first, so the fallback runs
// in a usable transaction. Either way the whole batch commits atomically
// with the caller's transaction.
func (q *Queries) InsertRows(ctx context.Context, tx pgx.Tx, rows []InsertRowParams) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	if _, spErr := tx.Exec(ctx, "SAVEPOINT insert_rows"); spErr != nil {
		return 0, spErr
	}

	n, err := tx.CopyFrom(ctx, pgx.Identifier{"bordereaux_rows"}, rowCopyColumns, &rowCopySource{rows: rows})
	if err == nil {
		return n, nil
	}

	if _, rbErr := tx.Exec(ctx, "ROLLBACK TO SAVEPOINT insert_rows"); rbErr != nil {
		return 0, err
	}

	inserted, insErr := insertRowsSequential(ctx, tx, rows)
	if insErr != nil {
		return 0, insErr
	}
	return inserted, nil
}

const insertRowSQL = `
INSERT INTO bordereaux_rows
	(id, file_id, policy_number, insured_name, inception_date, expiry_date,
	 premium_amount, currency, claim_amount, commission_amount, net_premium,
	 broker_name, product_type, coverage_type, risk_location, row_number, raw_data,
	 created_at, updated_at)
VALUES
	($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,now(),now())
`

func insertRowsSequential(ctx context.Context, tx pgx.Tx, rows []InsertRowParams) (int64, error) {
	var n int64
	for _, r := range rows {
		_, err := tx.Exec(ctx, insertRowSQL,
			NewUUID(), r.FileID, r.PolicyNumber, r.InsuredName, r.InceptionDate, r.ExpiryDate,
			r.PremiumAmount, r.Currency, r.ClaimAmount, r.CommissionAmount, r.NetPremium,
			r.BrokerName, r.ProductType, r.CoverageType, r.RiskLocation, r.RowNumber, r.RawData,
		)
		if err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// rowCopySource adapts []InsertRowParams to pgx.CopyFromSource.
type rowCopySource struct {
	rows []InsertRowParams
	pos  int
}

func (s *rowCopySource) Next() bool {
	return s.pos < len(s.rows)
}

func (s *rowCopySource) Values() ([]any, error) {
	r := s.rows[s.pos]
	s.pos++
	return []any{
		NewUUID(), r.FileID, r.PolicyNumber, r.InsuredName, r.InceptionDate, r.ExpiryDate,
		r.PremiumAmount, r.Currency, r.ClaimAmount, r.CommissionAmount, r.NetPremium,
		r.BrokerName, r.ProductType, r.CoverageType, r.RiskLocation, r.RowNumber, r.RawData,
	}, nil
}

func (s *rowCopySource) Err() error {
	return nil
}

const listRowsByFileIDSQL = `
SELECT id, file_id, policy_number, insured_name, inception_date, expiry_date,
	premium_amount, currency, claim_amount, commission_amount, net_premium,
	broker_name, product_type, coverage_type, risk_location, row_number, raw_data,
	created_at, updated_at
FROM bordereaux_rows WHERE file_id = $1 ORDER BY row_number ASC
`

func (q *Queries) ListRowsByFileID(ctx context.Context, fileID pgtype.UUID) ([]BordereauxRow, error) {
	rows, err := q.db.Query(ctx, listRowsByFileIDSQL, fileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []BordereauxRow
	for rows.Next() {
		var r BordereauxRow
		if err := rows.Scan(
			&r.ID, &r.FileID, &r.PolicyNumber, &r.InsuredName, &r.InceptionDate, &r.ExpiryDate,
			&r.PremiumAmount, &r.Currency, &r.ClaimAmount, &r.CommissionAmount, &r.NetPremium,
			&r.BrokerName, &r.ProductType, &r.CoverageType, &r.RiskLocation, &r.RowNumber, &r.RawData,
			&r.CreatedAt, &r.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

const deleteRowsByFileIDSQL = `DELETE FROM bordereaux_rows WHERE file_id = $1`

// DeleteRowsByFileID clears previously persisted rows ahead of a reprocess,
// per the rule that rows/errors are rewritten wholesale on every run.
func (q *Queries) DeleteRowsByFileID(ctx context.Context, tx pgx.Tx, fileID pgtype.UUID) error {
	_, err := tx.Exec(ctx, deleteRowsByFileIDSQL, fileID)
	return err
}
