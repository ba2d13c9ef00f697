package materialsvc

import (
	"context"
	"errors"

	"github.com/Legend373/Legend-Library-Ms/model"
	materialrepo "github.com/Legend373/Legend-Library-Ms/repository/material"
)

var (
	ErrNotFound = errors.New("material not found")
	ErrNotOwner = errors.New("not the material owner")
	ErrBadInput = errors.New("invalid payload")
)

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

type Service interface {
	Register(ctx context.Context, who model.Identity, m *model.Material) error
	Get(ctx context.Context, id int64) (*model.Material, error)
	Mine(ctx context.Context, who model.Identity) ([]model.Material, error)
	Delete(ctx context.Context, who model.Identity, id int64) error
	CountDownload(ctx context.Context, id int64) (int64, error)
	Favorite(ctx context.Context, who model.Identity, id int64) error
	Unfavorite(ctx context.Context, who model.Identity, id int64) error
	Favorites(ctx context.Context, who model.Identity) ([]model.Material, error)
}

type service struct{ r Repo }

func New(r Repo) Service { return &service{r: r} }

func (s *service) Register(ctx context.Context, who model.Identity, m *model.Material) error {
	if m.Title == "" || m.FileName == "" || m.FileSize < 0 {
		return ErrBadInput
	}
	m.OwnerID = who.UserID
	return s.r.Insert(ctx, m)
}

func (s *service) Get(ctx context.Context, id int64) (*model.Material, error) {
	m, err := s.r.Get(ctx, id)
	if errors.Is(err, materialrepo.ErrNotFound) {
		return nil, ErrNotFound
	}
	return m, err
}

func (s *service) Mine(ctx context.Context, who model.Identity) ([]model.Material, error) {
	return s.r.ListByOwner(ctx, who.UserID)
}

// Delete removes material metadata. Owners may delete their own uploads;
// admins may delete anything.
func (s *service) Delete(ctx context.Context, who model.Identity, id int64) error {
	m, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !who.Admin() && m.OwnerID != who.UserID {
		return ErrNotOwner
	}
	err = s.r.Delete(ctx, id)
	if errors.Is(err, materialrepo.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *service) CountDownload(ctx context.Context, id int64) (int64, error) {
	n, err := s.r.IncrementDownloads(ctx, id)
	if errors.Is(err, materialrepo.ErrNotFound) {
		return 0, ErrNotFound
	}
	return n, err
}

func (s *service) Favorite(ctx context.Context, who model.Identity, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.r.AddFavorite(ctx, who.UserID, id)
}

func (s *service) Unfavorite(ctx context.Context, who model.Identity, id int64) error {
	return s.r.RemoveFavorite(ctx, who.UserID, id)
}

func (s *service) Favorites(ctx context.Context, who model.Identity) ([]model.Material, error) {
	return s.r.ListFavorites(ctx, who.UserID)
}
