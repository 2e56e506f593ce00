package job

import (
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

//go:embed schema.sql
var schema string

type Repository struct {
	Db *sql.DB
}

// Open opens (or creates) the job database at dsn and applies the schema.
func Open(dsn string) (*Repository, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("Couldn't open database:\n%w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("Couldn't initialise database:\n%w", err)
	}
	return &Repository{Db: db}, nil
}

func (r *Repository) Close() error {
	return r.Db.Close()
}

func (r *Repository) Create(j *Job) error {
	_, err := r.Db.Exec(`
		INSERT INTO job (uuid, audio_filename, audio_path, status, text, image_path, raw_path, error_message, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		j.Uuid.String(), j.AudioFilename, j.AudioPath, string(j.Status),
		j.Text, j.ImagePath, j.RawPath, j.ErrorMessage, j.CreatedAt, j.UpdatedAt)
	if err != nil {
		return fmt.Errorf("Failed to insert job:\n%w", err)
	}
	return nil
}

func (r *Repository) Get(u uuid.UUID) (*Job, error) {
	row := r.Db.QueryRow(`
		SELECT uuid, audio_filename, audio_path, status, text, image_path, raw_path, error_message, created_at, updated_at
		FROM job
		WHERE uuid = ?`, u.String())

	j := Job{}
	var uuidString, status string
	if err := row.Scan(&uuidString, &j.AudioFilename, &j.AudioPath, &status,
		&j.Text, &j.ImagePath, &j.RawPath, &j.ErrorMessage, &j.CreatedAt, &j.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("Failed to read job:\n%w", err)
	}
	j.Uuid = uuid.MustParse(uuidString)
	j.Status = Status(status)
	return &j, nil
}

func (r *Repository) List(limit int) ([]Job, error) {
	rows, err := r.Db.Query(`
		SELECT uuid, audio_filename, audio_path, status, text, image_path, raw_path, error_message, created_at, updated_at
		FROM job
		ORDER BY created_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("Query execution failed:\n%w", err)
	}
	defer rows.Close()

	jobs := []Job{}
	for rows.Next() {
		j := Job{}
		var uuidString, status string
		if err := rows.Scan(&uuidString, &j.AudioFilename, &j.AudioPath, &status,
			&j.Text, &j.ImagePath, &j.RawPath, &j.ErrorMessage, &j.CreatedAt, &j.UpdatedAt); err != nil {
			return nil, fmt.Errorf("Row scanning failed:\n%w", err)
		}
		j.Uuid = uuid.MustParse(uuidString)
		j.Status = Status(status)
		jobs = append(jobs, j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("Error iterating rows:\n%w", err)
	}
	return jobs, nil
}

// SetStatus moves a job to status, clearing any previous error message.
func (r *Repository) SetStatus(u uuid.UUID, status Status) error {
	return r.update(u, `status = ?, error_message = ''`, string(status))
}

// SetResult records the completed pipeline output for a job.
func (r *Repository) SetResult(u uuid.UUID, text, imagePath, rawPath string) error {
	return r.update(u, `status = ?, text = ?, image_path = ?, raw_path = ?`,
		string(StatusCompleted), text, imagePath, rawPath)
}

// SetError marks a job failed with the given message.
func (r *Repository) SetError(u uuid.UUID, message string) error {
	return r.update(u, `status = ?, error_message = ?`, string(StatusFailed), message)
}

func (r *Repository) update(u uuid.UUID, set string, args ...any) error {
	args = append(args, time.Now().UTC(), u.String())
	res, err := r.Db.Exec(`UPDATE job SET `+set+`, updated_at = ? WHERE uuid = ?`, args...)
	if err != nil {
		return fmt.Errorf("Failed to update job:\n%w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("No job with uuid %s", u)
	}
	return nil
}
