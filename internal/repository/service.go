package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/adityakhanna/vouched/internal/entity"
)

// ServiceRepository is the store contract for deduplicated service
// providers and their observed name variants.
type ServiceRepository interface {
	GetByPhone(ctx context.Context, phone string) (*entity.Service, error)
	GetByEmail(ctx context.Context, email string) (*entity.Service, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Service, error)
	GetWithNames(ctx context.Context, id uuid.UUID) (*entity.Service, []entity.ServiceNameVariant, error)
	Create(ctx context.Context, svc *entity.Service) (uuid.UUID, error)
	Update(ctx context.Context, id uuid.UUID, fields map[string]any) (bool, error)
	AddName(ctx context.Context, serviceID uuid.UUID, name string, confidence float64) error
	UpdateCanonicalName(ctx context.Context, serviceID uuid.UUID) error
	SearchByName(ctx context.Context, query string, limit int) ([]entity.Service, error)
	SearchByPhoneSuffix(ctx context.Context, suffix string, limit int) ([]entity.Service, error)
	ReassignReferences(ctx context.Context, fromID, toID uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	FlagConflict(ctx context.Context, serviceID uuid.UUID, submittedName, reasoning string) error

	// RunInTx runs fn against a repository bound to a single transaction.
	// Any error rolls the whole transaction back. Nested calls reuse the
	// ambient transaction.
	RunInTx(ctx context.Context, fn func(ServiceRepository) error) error
}

type serviceRepository struct {
	db     DBTX
	pool   *pgxpool.Pool // nil when already inside a transaction
	logger *slog.Logger
}

func NewServiceRepository(pool *pgxpool.Pool, logger *slog.Logger) ServiceRepository {
	return &serviceRepository{db: pool, pool: pool, logger: logger}
}

const serviceColumns = `id, name, phone, email, service_type, business_name, address, website, metadata, created_at, updated_at`

func (r *serviceRepository) scanService(row pgx.Row) (*entity.Service, error) {
	var s entity.Service
	err := row.Scan(&s.ID, &s.Name, &s.Phone, &s.Email, &s.ServiceType,
		&s.BusinessName, &s.Address, &s.Website, &s.Metadata, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *serviceRepository) GetByPhone(ctx context.Context, phone string) (*entity.Service, error) {
	row := r.db.QueryRow(ctx, `SELECT `+serviceColumns+` FROM services WHERE phone = $1`, phone)
	return r.scanService(row)
}

func (r *serviceRepository) GetByEmail(ctx context.Context, email string) (*entity.Service, error) {
	row := r.db.QueryRow(ctx, `SELECT `+serviceColumns+` FROM services WHERE email = $1`, email)
	return r.scanService(row)
}

func (r *serviceRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Service, error) {
	row := r.db.QueryRow(ctx, `SELECT `+serviceColumns+` FROM services WHERE id = $1`, id)
	return r.scanService(row)
}

func (r *serviceRepository) GetWithNames(ctx context.Context, id uuid.UUID) (*entity.Service, []entity.ServiceNameVariant, error) {
	svc, err := r.GetByID(ctx, id)
	if err != nil || svc == nil {
		return svc, nil, err
	}
	rows, err := r.db.Query(ctx,
		`SELECT id, service_id, name, frequency, confidence, last_seen_at
		 FROM service_names WHERE service_id = $1
		 ORDER BY frequency * confidence DESC, frequency DESC, confidence DESC`, id)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var names []entity.ServiceNameVariant
	for rows.Next() {
		var v entity.ServiceNameVariant
		if err := rows.Scan(&v.ID, &v.ServiceID, &v.Name, &v.Frequency, &v.Confidence, &v.LastSeenAt); err != nil {
			return nil, nil, err
		}
		names = append(names, v)
	}
	return svc, names, rows.Err()
}

func (r *serviceRepository) Create(ctx context.Context, svc *entity.Service) (uuid.UUID, error) {
	id := uuid.New()
	_, err := r.db.Exec(ctx,
		`INSERT INTO services (id, name, phone, email, service_type, business_name, address, website, metadata, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now(), now())`,
		id, svc.Name, svc.Phone, svc.Email, svc.ServiceType, svc.BusinessName, svc.Address, svc.Website, svc.Metadata)
	if err != nil {
		r.logger.Error("failed to create service", "name", svc.Name, "error", err)
		return uuid.Nil, err
	}
	svc.ID = id
	return id, nil
}

// updatableServiceColumns guards against arbitrary keys reaching SQL.
var updatableServiceColumns = map[string]bool{
	"name": true, "phone": true, "email": true, "service_type": true,
	"business_name": true, "address": true, "website": true, "metadata": true,
}

func (r *serviceRepository) Update(ctx context.Context, id uuid.UUID, fields map[string]any) (bool, error) {
	if len(fields) == 0 {
		return false, nil
	}
	setClauses := make([]string, 0, len(fields)+1)
	args := make([]any, 0, len(fields)+1)
	args = append(args, id)
	for col, val := range fields {
		if !updatableServiceColumns[col] {
			return false, fmt.Errorf("update service: column %q is not updatable", col)
		}
		args = append(args, val)
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	setClauses = append(setClauses, "updated_at = now()")

	tag, err := r.db.Exec(ctx,
		`UPDATE services SET `+strings.Join(setClauses, ", ")+` WHERE id = $1`, args...)
	if err != nil {
		r.logger.Error("failed to update service", "service_id", id, "error", err)
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// AddName records a sighting of a name for a service: a new variant starts
// at frequency 1, a repeat sighting (case-insensitive) increments frequency
// and keeps the highest confidence ever observed.
func (r *serviceRepository) AddName(ctx context.Context, serviceID uuid.UUID, name string, confidence float64) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE service_names
		 SET frequency = frequency + 1,
		     confidence = GREATEST(confidence, $3),
		     last_seen_at = now()
		 WHERE service_id = $1 AND lower(name) = lower($2)`,
		serviceID, name, confidence)
	if err != nil {
		return err
	}
	if tag.RowsAffected() > 0 {
		return nil
	}
	_, err = r.db.Exec(ctx,
		`INSERT INTO service_names (id, service_id, name, frequency, confidence, last_seen_at)
		 VALUES ($1, $2, $3, 1, $4, now())`,
		uuid.New(), serviceID, name, confidence)
	return err
}

// UpdateCanonicalName sets the service's display name to the variant with
// the highest frequency × confidence, ties broken by frequency then
// confidence.
func (r *serviceRepository) UpdateCanonicalName(ctx context.Context, serviceID uuid.UUID) error {
	_, err := r.db.Exec(ctx,
		`UPDATE services SET name = best.name, updated_at = now()
		 FROM (
		   SELECT name FROM service_names
		   WHERE service_id = $1
		   ORDER BY frequency * confidence DESC, frequency DESC, confidence DESC
		   LIMIT 1
		 ) AS best
		 WHERE services.id = $1`, serviceID)
	return err
}

func (r *serviceRepository) SearchByName(ctx context.Context, query string, limit int) ([]entity.Service, error) {
	rows, err := r.db.Query(ctx,
		`SELECT DISTINCT `+prefixedServiceColumns("s")+`
		 FROM services s
		 LEFT JOIN service_names n ON n.service_id = s.id
		 WHERE s.name ILIKE '%' || $1 || '%' OR n.name ILIKE '%' || $1 || '%'
		 LIMIT $2`, query, limit)
	if err != nil {
		return nil, err
	}
	return collectServices(rows)
}

func (r *serviceRepository) SearchByPhoneSuffix(ctx context.Context, suffix string, limit int) ([]entity.Service, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+serviceColumns+` FROM services WHERE phone LIKE '%' || $1 LIMIT $2`,
		suffix, limit)
	if err != nil {
		return nil, err
	}
	return collectServices(rows)
}

// ReassignReferences moves all name variants and record foreign keys from
// one service to another. Variant name collisions fold into the surviving
// row, combining frequencies and keeping the higher confidence.
func (r *serviceRepository) ReassignReferences(ctx context.Context, fromID, toID uuid.UUID) error {
	_, err := r.db.Exec(ctx,
		`UPDATE service_names dst
		 SET frequency = dst.frequency + src.frequency,
		     confidence = GREATEST(dst.confidence, src.confidence),
		     last_seen_at = GREATEST(dst.last_seen_at, src.last_seen_at)
		 FROM service_names src
		 WHERE src.service_id = $1 AND dst.service_id = $2
		   AND lower(src.name) = lower(dst.name)`, fromID, toID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx,
		`DELETE FROM service_names src
		 USING service_names dst
		 WHERE src.service_id = $1 AND dst.service_id = $2
		   AND lower(src.name) = lower(dst.name)`, fromID, toID)
	if err != nil {
		return err
	}
	if _, err = r.db.Exec(ctx,
		`UPDATE service_names SET service_id = $2 WHERE service_id = $1`, fromID, toID); err != nil {
		return err
	}
	if _, err = r.db.Exec(ctx,
		`UPDATE recommendations SET service_id = $2 WHERE service_id = $1`, fromID, toID); err != nil {
		return err
	}
	_, err = r.db.Exec(ctx,
		`UPDATE annotations SET service_id = $2 WHERE service_id = $1`, fromID, toID)
	return err
}

func (r *serviceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM services WHERE id = $1`, id)
	return err
}

func (r *serviceRepository) FlagConflict(ctx context.Context, serviceID uuid.UUID, submittedName, reasoning string) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO service_conflicts (id, service_id, submitted_name, reasoning, created_at)
		 VALUES ($1, $2, $3, $4, now())`,
		uuid.New(), serviceID, submittedName, reasoning)
	return err
}

func (r *serviceRepository) RunInTx(ctx context.Context, fn func(ServiceRepository) error) error {
	if r.pool == nil {
		// already transactional
		return fn(r)
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	txRepo := &serviceRepository{db: tx, logger: r.logger}
	if err := fn(txRepo); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func prefixedServiceColumns(alias string) string {
	cols := strings.Split(serviceColumns, ", ")
	for i, c := range cols {
		cols[i] = alias + "." + c
	}
	return strings.Join(cols, ", ")
}

func collectServices(rows pgx.Rows) ([]entity.Service, error) {
	defer rows.Close()
	var out []entity.Service
	for rows.Next() {
		var s entity.Service
		if err := rows.Scan(&s.ID, &s.Name, &s.Phone, &s.Email, &s.ServiceType,
			&s.BusinessName, &s.Address, &s.Website, &s.Metadata, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
