package database

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/gregjazzy/Apex-Driver/internal/models"
)

// CreateProfile inserts a new profile. The role is fixed for the lifetime
// of the row; no role-change operation exists.
func (d *Database) CreateProfile(ctx context.Context, profile models.Profile) error {
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	now := d.now()
	_, err := d.DB.ExecContext(ctx, `
		INSERT INTO profiles (id, role, full_name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		profile.ID, string(profile.Role), profile.FullName, now, now)
	return wrapProfileErr("create", profile.ID, err)
}

// GetProfile retrieves one profile by id. Returns ErrNotFound when the id
// is unknown; callers treat that as "no identity, nothing to load".
func (d *Database) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	var p models.Profile
	var role string
	err := d.DB.QueryRowContext(ctx,
		"SELECT id, role, full_name, created_at, updated_at FROM profiles WHERE id = ?", id).
		Scan(&p.ID, &role, &p.FullName, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, wrapProfileErr("get", id, ErrNotFound)
	}
	if err != nil {
		return nil, wrapProfileErr("get", id, err)
	}
	p.Role = models.Role(role)
	return &p, nil
}

// GetStudents lists every student profile, for the coach's student picker.
func (d *Database) GetStudents(ctx context.Context) ([]models.Profile, error) {
	rows, err := d.DB.QueryContext(ctx,
		"SELECT id, role, full_name, created_at, updated_at FROM profiles WHERE role = 'student' ORDER BY full_name ASC")
	if err != nil {
		return nil, wrapProfileErr("list students", "", err)
	}
	defer rows.Close()

	var students []models.Profile
	for rows.Next() {
		var p models.Profile
		var role string
		if err := rows.Scan(&p.ID, &role, &p.FullName, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, wrapProfileErr("list students", "", err)
		}
		p.Role = models.Role(role)
		students = append(students, p)
	}
	return students, wrapProfileErr("list students", "", rows.Err())
}
