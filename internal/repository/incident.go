package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/resqnow/emergency-dispatch/internal/models"
	"github.com/resqnow/emergency-dispatch/internal/service"
)

type IncidentRepository struct {
	db     *pgxpool.Pool
	logger *logrus.Logger
}

func NewIncidentRepository(db *pgxpool.Pool, logger *logrus.Logger) service.IncidentRepository {
	return &IncidentRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new pending accident report.
func (r *IncidentRepository) Create(ctx context.Context, report *models.IncidentReport) error {
	query := `
		INSERT INTO accident_reports (description, image_url, latitude, longitude, status)
		VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at, updated_at;
	`
	err := r.db.QueryRow(ctx, query,
		report.Description,
		report.ImageURL,
		report.Latitude,
		report.Longitude,
		report.Status,
	).Scan(&report.ID, &report.CreatedAt, &report.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create accident report: %w", err)
	}
	return nil
}

func scanReport(row pgx.Row) (*models.IncidentReport, error) {
	report := &models.IncidentReport{}
	err := row.Scan(
		&report.ID,
		&report.Description,
		&report.ImageURL,
		&report.Latitude,
		&report.Longitude,
		&report.Status,
		&report.AssignedTo,
		&report.CreatedAt,
		&report.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := report.Validate(); err != nil {
		return nil, err
	}
	return report, nil
}

const reportColumns = `
			id,
			description,
			image_url,
			latitude,
			longitude,
			status,
			assigned_to,
			created_at,
			updated_at`

// GetByID returns a single accident report. An unknown id wraps
// service.ErrNotFound so callers can tell it apart from a store failure.
func (r *IncidentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.IncidentReport, error) {
	query := `
		SELECT ` + reportColumns + `
		FROM accident_reports
		WHERE id = $1;
	`
	report, err := scanReport(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: accident report %s", service.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get accident report by id: %w", err)
	}
	return report, nil
}

// ListOpen returns every non-resolved report, newest first. Rows that fail
// shape validation are quarantined (logged and skipped) rather than allowed
// to reach ranking or lifecycle logic.
func (r *IncidentRepository) ListOpen(ctx context.Context) ([]*models.IncidentReport, error) {
	query := `
		SELECT ` + reportColumns + `
		FROM accident_reports
		WHERE status <> 'resolved'
		ORDER BY created_at DESC;
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list open accident reports: %w", err)
	}
	defer rows.Close()

	reports := make([]*models.IncidentReport, 0)
	for rows.Next() {
		report := &models.IncidentReport{}
		err := rows.Scan(
			&report.ID,
			&report.Description,
			&report.ImageURL,
			&report.Latitude,
			&report.Longitude,
			&report.Status,
			&report.AssignedTo,
			&report.CreatedAt,
			&report.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan accident report row: %w", err)
		}
		if err := report.Validate(); err != nil {
			r.logger.WithError(err).Warn("Quarantined malformed accident report row")
			continue
		}
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error list iteration: %w", err)
	}
	return reports, nil
}

// Claim is the single conditional write of the claim protocol. It binds the
// responder only if the report is still pending and reports how many rows the
// store touched; the service decides what zero means.
func (r *IncidentRepository) Claim(ctx context.Context, incidentID, responderID uuid.UUID) (int64, error) {
	query := `
		UPDATE accident_reports SET
			status = 'accepted',
			assigned_to = $2,
			updated_at = NOW()
		WHERE id = $1 AND status = 'pending';
	`
	cmdTag, err := r.db.Exec(ctx, query, incidentID, responderID)
	if err != nil {
		return 0, fmt.Errorf("failed to claim accident report: %w", err)
	}
	return cmdTag.RowsAffected(), nil
}

// SetStatus applies a status from any non-terminal state, regardless of
// assignment. Used for police transitions.
func (r *IncidentRepository) SetStatus(ctx context.Context, incidentID uuid.UUID, status models.IncidentStatus) (int64, error) {
	query := `
		UPDATE accident_reports SET
			status = $2,
			updated_at = NOW()
		WHERE id = $1 AND status <> 'resolved';
	`
	cmdTag, err := r.db.Exec(ctx, query, incidentID, status)
	if err != nil {
		return 0, fmt.Errorf("failed to set accident report status: %w", err)
	}
	return cmdTag.RowsAffected(), nil
}

// SetStatusByAssignee applies a status only when the caller is the assigned
// responder and the report is not terminal.
func (r *IncidentRepository) SetStatusByAssignee(ctx context.Context, incidentID, responderID uuid.UUID, status models.IncidentStatus) (int64, error) {
	query := `
		UPDATE accident_reports SET
			status = $3,
			updated_at = NOW()
		WHERE id = $1 AND assigned_to = $2 AND status <> 'resolved';
	`
	cmdTag, err := r.db.Exec(ctx, query, incidentID, responderID, status)
	if err != nil {
		return 0, fmt.Errorf("failed to set accident report status by assignee: %w", err)
	}
	return cmdTag.RowsAffected(), nil
}
