package materialrepo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Legend373/Legend-Library-Ms/model"
)

var ErrNotFound = errors.New("material not found")

type Repo interface {
	Insert(ctx context.Context, m *model.Material) error
	Get(ctx context.Context, id int64) (*model.Material, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]model.Material, error)
	Delete(ctx context.Context, id int64) error
	IncrementDownloads(ctx context.Context, id int64) (int64, error)

	AddFavorite(ctx context.Context, userID, materialID int64) error
	RemoveFavorite(ctx context.Context, userID, materialID int64) error
	ListFavorites(ctx context.Context, userID int64) ([]model.Material, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

const materialCols = `id, owner_id, title, description, subject, file_name, file_size, download_count, uploaded_at`

func (r *repo) Insert(ctx context.Context, m *model.Material) error {
	const q = `
INSERT INTO materials (owner_id, title, description, subject, file_name, file_size)
VALUES ($1,$2,$3,$4,$5,$6)
RETURNING id, uploaded_at`
	return r.db.QueryRowContext(ctx, q, m.OwnerID, m.Title, m.Description, m.Subject, m.FileName, m.FileSize).
		Scan(&m.ID, &m.UploadedAt)
}

func (r *repo) Get(ctx context.Context, id int64) (*model.Material, error) {
	const q = `
SELECT ` + materialCols + `
FROM materials
WHERE id = $1`
	var m model.Material
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&m.ID, &m.OwnerID, &m.Title, &m.Description, &m.Subject,
		&m.FileName, &m.FileSize, &m.DownloadCount, &m.UploadedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *repo) ListByOwner(ctx context.Context, ownerID int64) ([]model.Material, error) {
	const q = `
SELECT ` + materialCols + `
FROM materials
WHERE owner_id = $1
ORDER BY uploaded_at DESC, id DESC`
	return r.queryMany(ctx, q, ownerID)
}

func (r *repo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM materials WHERE id = $1`, id)
	if err != nil {
		return err
	}
	aff, _ := res.RowsAffected()
	if aff == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repo) IncrementDownloads(ctx context.Context, id int64) (int64, error) {
	const q = `
UPDATE materials
SET download_count = download_count + 1
WHERE id = $1
RETURNING download_count`
	var n int64
	err := r.db.QueryRowContext(ctx, q, id).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	return n, err
}

func (r *repo) AddFavorite(ctx context.Context, userID, materialID int64) error {
	const q = `
INSERT INTO material_favorites (user_id, material_id)
VALUES ($1,$2)
ON CONFLICT DO NOTHING`
	_, err := r.db.ExecContext(ctx, q, userID, materialID)
	return err
}

func (r *repo) RemoveFavorite(ctx context.Context, userID, materialID int64) error {
	const q = `
DELETE FROM material_favorites
WHERE user_id = $1 AND material_id = $2`
	_, err := r.db.ExecContext(ctx, q, userID, materialID)
	return err
}

func (r *repo) ListFavorites(ctx context.Context, userID int64) ([]model.Material, error) {
	const q = `
SELECT m.id, m.owner_id, m.title, m.description, m.subject, m.file_name, m.file_size, m.download_count, m.uploaded_at
FROM material_favorites f
JOIN materials m ON m.id = f.material_id
WHERE f.user_id = $1
ORDER BY f.created_at DESC`
	return r.queryMany(ctx, q, userID)
}

func (r *repo) queryMany(ctx context.Context, q string, args ...any) ([]model.Material, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Material
	for rows.Next() {
		var m model.Material
		if err := rows.Scan(
			&m.ID, &m.OwnerID, &m.Title, &m.Description, &m.Subject,
			&m.FileName, &m.FileSize, &m.DownloadCount, &m.UploadedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
