package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roadsafety/backend/internal/models"
	"github.com/roadsafety/backend/libs/apperrors"
)

const moduleColumns = `id, course_id, title, description, order_index, status, created_at, updated_at`

type moduleRepository struct {
	db *sql.DB
}

// NewModuleRepository creates a new module repository
func NewModuleRepository(db *sql.DB) *moduleRepository {
	return &moduleRepository{
		db: db,
	}
}

func scanModule(row interface{ Scan(...any) error }, module *models.Module) error {
	return row.Scan(
		&module.ID,
		&module.CourseID,
		&module.Title,
		&module.Description,
		&module.OrderIndex,
		&module.Status,
		&module.CreatedAt,
		&module.UpdatedAt,
	)
}

// GetByID retrieves a module by its ID regardless of status
func (r *moduleRepository) GetByID(ctx context.Context, id int) (*models.Module, error) {
	query := `SELECT ` + moduleColumns + ` FROM modules WHERE id = ? LIMIT 1`

	var module models.Module
	err := scanModule(r.db.QueryRowContext(ctx, query, id), &module)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("module not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get module by id: %w", err)
	}

	return &module, nil
}

// ListByCourse retrieves the modules of a course ordered by order_index, then id
func (r *moduleRepository) ListByCourse(ctx context.Context, courseID int, includeInactive bool) ([]models.Module, error) {
	query := `SELECT ` + moduleColumns + ` FROM modules WHERE course_id = ?`
	args := []any{courseID}
	if !includeInactive {
		query += ` AND status = ?`
		args = append(args, models.StatusActive)
	}
	query += ` ORDER BY order_index ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query modules: %w", err)
	}
	defer rows.Close()

	modules := []models.Module{}
	for rows.Next() {
		var module models.Module
		if err := scanModule(rows, &module); err != nil {
			return nil, fmt.Errorf("failed to scan module: %w", err)
		}
		modules = append(modules, module)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return modules, nil
}

// Create inserts a new module and sets its ID
func (r *moduleRepository) Create(ctx context.Context, module *models.Module) error {
	query := `
		INSERT INTO modules (course_id, title, description, order_index, status)
		VALUES (?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		module.CourseID,
		module.Title,
		module.Description,
		module.OrderIndex,
		module.Status,
	)
	if isMissingParent(err) {
		return apperrors.NotFound("course not found")
	}
	if err != nil {
		return fmt.Errorf("failed to create module: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	module.ID = int(id)

	return nil
}

// Update applies the non-nil fields of req to a module
func (r *moduleRepository) Update(ctx context.Context, id int, req *models.UpdateModuleRequest) error {
	var b updateBuilder
	if req.Title != nil {
		b.set("title", *req.Title)
	}
	if req.Description != nil {
		b.set("description", *req.Description)
	}
	if req.OrderIndex != nil {
		b.set("order_index", *req.OrderIndex)
	}
	if req.Status != nil {
		b.set("status", *req.Status)
	}
	if b.empty() {
		return apperrors.Validation("no fields to update")
	}

	query := fmt.Sprintf("UPDATE modules SET %s WHERE id = ?", b.clause())
	result, err := r.db.ExecContext(ctx, query, append(b.args, id)...)
	if err != nil {
		return fmt.Errorf("failed to update module: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperrors.NotFound("module not found")
	}

	return nil
}
