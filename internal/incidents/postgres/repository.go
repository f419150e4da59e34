// Package postgres provides the PostgreSQL implementation of the incidents repository.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/statusdeck/statusdeck/internal/domain"
	"github.com/statusdeck/statusdeck/internal/incidents"
)

// Repository implements the incidents.Repository interface using PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// CreateIncident creates an incident and its service links in one transaction.
func (r *Repository) CreateIncident(ctx context.Context, incident *domain.Incident) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := `
		INSERT INTO incidents (title, description, status, severity, started_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`
	err = tx.QueryRow(ctx, query,
		incident.Title,
		incident.Description,
		incident.Status,
		incident.Severity,
		incident.StartedAt,
		incident.CreatedBy,
	).Scan(&incident.ID, &incident.CreatedAt, &incident.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create incident: %w", err)
	}

	if err := linkServices(ctx, tx, incident.ID, incident.ServiceIDs); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func linkServices(ctx context.Context, tx pgx.Tx, incidentID string, serviceIDs []string) error {
	for _, serviceID := range serviceIDs {
		_, err := tx.Exec(ctx, `
			INSERT INTO incident_services (incident_id, service_id)
			VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, incidentID, serviceID)
		if err != nil {
			return fmt.Errorf("link service %s: %w", serviceID, err)
		}
	}
	return nil
}

// GetIncidentByID retrieves an incident with its affected service IDs.
func (r *Repository) GetIncidentByID(ctx context.Context, id string) (*domain.Incident, error) {
	query := `
		SELECT id, title, description, status, severity, started_at, resolved_at,
		       created_by, created_at, updated_at
		FROM incidents
		WHERE id = $1
	`
	var incident domain.Incident
	err := r.db.QueryRow(ctx, query, id).Scan(
		&incident.ID,
		&incident.Title,
		&incident.Description,
		&incident.Status,
		&incident.Severity,
		&incident.StartedAt,
		&incident.ResolvedAt,
		&incident.CreatedBy,
		&incident.CreatedAt,
		&incident.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, incidents.ErrIncidentNotFound
		}
		return nil, fmt.Errorf("get incident: %w", err)
	}

	serviceIDs, err := r.getServiceIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	incident.ServiceIDs = serviceIDs

	return &incident, nil
}

func (r *Repository) getServiceIDs(ctx context.Context, incidentID string) ([]string, error) {
	rows, err := r.db.Query(ctx, `
		SELECT service_id FROM incident_services WHERE incident_id = $1
	`, incidentID)
	if err != nil {
		return nil, fmt.Errorf("get incident services: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan service id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListIncidents retrieves incidents matching the filter, newest first, with total count.
func (r *Repository) ListIncidents(ctx context.Context, filter incidents.IncidentFilter) ([]domain.Incident, int, error) {
	where := ""
	var args []interface{}

	if filter.ActiveOnly {
		where = " WHERE status != 'resolved'"
	}
	if filter.ServiceID != nil {
		args = append(args, *filter.ServiceID)
		clause := fmt.Sprintf("id IN (SELECT incident_id FROM incident_services WHERE service_id = $%d)", len(args))
		if where == "" {
			where = " WHERE " + clause
		} else {
			where += " AND " + clause
		}
	}

	var total int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM incidents"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count incidents: %w", err)
	}

	args = append(args, filter.Limit, filter.Offset)
	query := fmt.Sprintf(`
		SELECT id, title, description, status, severity, started_at, resolved_at,
		       created_by, created_at, updated_at
		FROM incidents%s
		ORDER BY started_at DESC
		LIMIT $%d OFFSET $%d
	`, where, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list incidents: %w", err)
	}
	defer rows.Close()

	result := make([]domain.Incident, 0)
	for rows.Next() {
		var incident domain.Incident
		err := rows.Scan(
			&incident.ID,
			&incident.Title,
			&incident.Description,
			&incident.Status,
			&incident.Severity,
			&incident.StartedAt,
			&incident.ResolvedAt,
			&incident.CreatedBy,
			&incident.CreatedAt,
			&incident.UpdatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("scan incident: %w", err)
		}
		result = append(result, incident)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate incidents: %w", err)
	}

	for i := range result {
		serviceIDs, err := r.getServiceIDs(ctx, result[i].ID)
		if err != nil {
			return nil, 0, err
		}
		result[i].ServiceIDs = serviceIDs
	}

	return result, total, nil
}

// UpdateIncident updates incident fields and rewrites its service links.
func (r *Repository) UpdateIncident(ctx context.Context, incident *domain.Incident) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := `
		UPDATE incidents
		SET title = $2, description = $3, status = $4, severity = $5,
		    resolved_at = $6, updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`
	err = tx.QueryRow(ctx, query,
		incident.ID,
		incident.Title,
		incident.Description,
		incident.Status,
		incident.Severity,
		incident.ResolvedAt,
	).Scan(&incident.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return incidents.ErrIncidentNotFound
		}
		return fmt.Errorf("update incident: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM incident_services WHERE incident_id = $1`, incident.ID); err != nil {
		return fmt.Errorf("clear incident services: %w", err)
	}
	if err := linkServices(ctx, tx, incident.ID, incident.ServiceIDs); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// DeleteIncident removes an incident; links and updates cascade.
func (r *Repository) DeleteIncident(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM incidents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete incident: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return incidents.ErrIncidentNotFound
	}
	return nil
}

// CreateUpdate appends a timeline entry.
func (r *Repository) CreateUpdate(ctx context.Context, update *domain.IncidentUpdate) error {
	query := `
		INSERT INTO incident_updates (incident_id, status, message, created_by)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query,
		update.IncidentID,
		update.Status,
		update.Message,
		update.CreatedBy,
	).Scan(&update.ID, &update.CreatedAt)
	if err != nil {
		return fmt.Errorf("create incident update: %w", err)
	}
	return nil
}

// ListUpdates retrieves the timeline of an incident, oldest first.
func (r *Repository) ListUpdates(ctx context.Context, incidentID string) ([]domain.IncidentUpdate, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, incident_id, status, message, created_by, created_at
		FROM incident_updates
		WHERE incident_id = $1
		ORDER BY created_at
	`, incidentID)
	if err != nil {
		return nil, fmt.Errorf("list incident updates: %w", err)
	}
	defer rows.Close()

	updates := make([]domain.IncidentUpdate, 0)
	for rows.Next() {
		var update domain.IncidentUpdate
		err := rows.Scan(
			&update.ID,
			&update.IncidentID,
			&update.Status,
			&update.Message,
			&update.CreatedBy,
			&update.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan incident update: %w", err)
		}
		updates = append(updates, update)
	}
	return updates, rows.Err()
}
