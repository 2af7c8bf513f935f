package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/UnknownOlympus/hermes/internal/models"
	"github.com/jackc/pgx/v5"
)

const createCandidatesSchema = `
	CREATE TABLE IF NOT EXISTS offline_candidates (
		place_id TEXT NOT NULL DEFAULT '',
		branch_id TEXT NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		formatted_address TEXT NOT NULL DEFAULT '',
		city TEXT NOT NULL DEFAULT '',
		postal_code TEXT NOT NULL DEFAULT '',
		latitude DOUBLE PRECISION,
		longitude DOUBLE PRECISION,
		resolved_street_number TEXT NOT NULL DEFAULT '',
		address_fingerprint TEXT NOT NULL,
		source TEXT NOT NULL DEFAULT '',
		verified BOOLEAN NOT NULL DEFAULT false,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (branch_id, address_fingerprint)
	);
	CREATE INDEX IF NOT EXISTS idx_offline_candidates_place
		ON offline_candidates (branch_id, place_id);
`

// EnsureRuntimeReady performs idempotent initialization of the candidate
// store for the given branch. The schema statements are guarded by IF NOT
// EXISTS, so repeated calls are safe; successful branches are remembered to
// skip the round trip on later calls.
func (r *Repository) EnsureRuntimeReady(ctx context.Context, branchID string) error {
	if _, done := r.ready.Load(branchID); done {
		return nil
	}

	if _, err := r.db.Exec(ctx, createCandidatesSchema); err != nil {
		return fmt.Errorf("failed to initialize offline candidate schema: %w", err)
	}

	r.ready.Store(branchID, struct{}{})
	r.log.DebugContext(ctx, "Offline candidate store ready", "branch", branchID)

	return nil
}

// UpsertVerifiedCandidate inserts or replaces a candidate row by
// (branch_id, address_fingerprint). Last write wins on conflict.
func (r *Repository) UpsertVerifiedCandidate(ctx context.Context, record models.OfflineCandidateRecord) error {
	query := `
		INSERT INTO offline_candidates (
			place_id, branch_id, name, formatted_address, city, postal_code,
			latitude, longitude, resolved_street_number, address_fingerprint, source, verified
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (branch_id, address_fingerprint) DO UPDATE SET
			place_id = EXCLUDED.place_id,
			name = EXCLUDED.name,
			formatted_address = EXCLUDED.formatted_address,
			city = EXCLUDED.city,
			postal_code = EXCLUDED.postal_code,
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			resolved_street_number = EXCLUDED.resolved_street_number,
			source = EXCLUDED.source,
			verified = EXCLUDED.verified,
			updated_at = now();
	`

	var lat, lng *float64
	if record.Location != nil {
		lat, lng = &record.Location.Latitude, &record.Location.Longitude
	}

	_, err := r.db.Exec(ctx, query,
		record.PlaceID, record.BranchID, record.Name, record.FormattedAddress,
		record.City, record.PostalCode, lat, lng,
		record.ResolvedStreetNumber, record.AddressFingerprint, string(record.Source), record.Verified,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert offline candidate: %w", err)
	}

	return nil
}

// LookupByFingerprint retrieves the candidate stored for the given branch and
// fingerprint. It returns nil without an error when no row exists.
func (r *Repository) LookupByFingerprint(
	ctx context.Context,
	branchID, addressFingerprint string,
) (*models.OfflineCandidateRecord, error) {
	query := `
		SELECT place_id, branch_id, name, formatted_address, city, postal_code,
			latitude, longitude, resolved_street_number, address_fingerprint, source, verified
		FROM offline_candidates
		WHERE branch_id = $1 AND address_fingerprint = $2;
	`

	record, err := scanCandidate(r.db.QueryRow(ctx, query, branchID, addressFingerprint))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil //nolint:nilnil // absence of a cached candidate is not an error
		}
		return nil, fmt.Errorf("failed to look up candidate by fingerprint: %w", err)
	}

	return record, nil
}

// LookupByText retrieves candidates for the branch whose name or formatted
// address matches the query, prefix matches on name ranked first. Used as the
// degraded suggestion source when the online provider is unreachable.
func (r *Repository) LookupByText(
	ctx context.Context,
	branchID, query string,
	limit int,
) ([]models.OfflineCandidateRecord, error) {
	sqlQuery := `
		SELECT place_id, branch_id, name, formatted_address, city, postal_code,
			latitude, longitude, resolved_street_number, address_fingerprint, source, verified
		FROM offline_candidates
		WHERE branch_id = $1 AND (name ILIKE $2 OR formatted_address ILIKE $2)
		ORDER BY (name ILIKE $3) DESC, name ASC
		LIMIT $4;
	`

	rows, err := r.db.Query(ctx, sqlQuery, branchID, "%"+query+"%", query+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query candidates by text: %w", err)
	}
	defer rows.Close()

	var records []models.OfflineCandidateRecord
	for rows.Next() {
		record, errScan := scanCandidate(rows)
		if errScan != nil {
			return nil, fmt.Errorf("failed to scan candidate row: %w", errScan)
		}
		records = append(records, *record)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read row: %w", err)
	}

	return records, nil
}

// scanCandidate maps one row onto an OfflineCandidateRecord, folding the
// nullable coordinate columns into an optional Coordinates value.
func scanCandidate(row pgx.Row) (*models.OfflineCandidateRecord, error) {
	var (
		record   models.OfflineCandidateRecord
		source   string
		lat, lng *float64
	)

	err := row.Scan(
		&record.PlaceID, &record.BranchID, &record.Name, &record.FormattedAddress,
		&record.City, &record.PostalCode, &lat, &lng,
		&record.ResolvedStreetNumber, &record.AddressFingerprint, &source, &record.Verified,
	)
	if err != nil {
		return nil, err
	}

	record.Source = models.ValidationSource(source)
	if lat != nil && lng != nil {
		record.Location = &models.Coordinates{Latitude: *lat, Longitude: *lng}
	}

	return &record, nil
}
