package content

import (
	"context"
	"errors"
	"fmt"

	"github.com/mkadlec/theater-api/internal/domain"
	"github.com/mkadlec/theater-api/internal/repository"
	postgresrepo "github.com/mkadlec/theater-api/internal/repository/postgres"
)

// Service manages the gallery and homepage slider image collections.
type Service struct {
	store *postgresrepo.Store
}

func New(store *postgresrepo.Store) *Service {
	return &Service{store: store}
}

func (s *Service) ListGallery(ctx context.Context) ([]domain.GalleryImage, error) {
	const op = "service.content.ListGallery"

	imgs, err := s.store.Media().ListGallery(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return imgs, nil
}

func (s *Service) CreateGalleryImage(ctx context.Context, url string) (*domain.GalleryImage, error) {
	const op = "service.content.CreateGalleryImage"

	id, err := s.store.Media().CreateGalleryImage(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return &domain.GalleryImage{ID: id, ImageURL: url}, nil
}

// UpdateGalleryImage replaces the image URL.
//
// Returns:
//   - error: content.ErrImageNotFound if the image is not found.
func (s *Service) UpdateGalleryImage(ctx context.Context, id int64, url string) (*domain.GalleryImage, error) {
	const op = "service.content.UpdateGalleryImage"

	if err := s.store.Media().UpdateGalleryImage(ctx, id, url); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s:%w", op, ErrImageNotFound)
		}

		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return &domain.GalleryImage{ID: id, ImageURL: url}, nil
}

// DeleteGalleryImage removes an image.
//
// Returns:
//   - error: content.ErrImageNotFound if the image is not found.
func (s *Service) DeleteGalleryImage(ctx context.Context, id int64) error {
	const op = "service.content.DeleteGalleryImage"

	if err := s.store.Media().DeleteGalleryImage(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%s:%w", op, ErrImageNotFound)
		}

		return fmt.Errorf("%s:%w", op, err)
	}

	return nil
}

func (s *Service) ListSlider(ctx context.Context) ([]domain.SliderImage, error) {
	const op = "service.content.ListSlider"

	imgs, err := s.store.Media().ListSlider(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return imgs, nil
}

func (s *Service) CreateSliderImage(ctx context.Context, url string) (*domain.SliderImage, error) {
	const op = "service.content.CreateSliderImage"

	id, err := s.store.Media().CreateSliderImage(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return &domain.SliderImage{ID: id, ImageURL: url}, nil
}

// UpdateSliderImage replaces the image URL.
//
// Returns:
//   - error: content.ErrImageNotFound if the image is not found.
func (s *Service) UpdateSliderImage(ctx context.Context, id int64, url string) (*domain.SliderImage, error) {
	const op = "service.content.UpdateSliderImage"

	if err := s.store.Media().UpdateSliderImage(ctx, id, url); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s:%w", op, ErrImageNotFound)
		}

		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return &domain.SliderImage{ID: id, ImageURL: url}, nil
}

// DeleteSliderImage removes an image.
//
// Returns:
//   - error: content.ErrImageNotFound if the image is not found.
func (s *Service) DeleteSliderImage(ctx context.Context, id int64) error {
	const op = "service.content.DeleteSliderImage"

	if err := s.store.Media().DeleteSliderImage(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%s:%w", op, ErrImageNotFound)
		}

		return fmt.Errorf("%s:%w", op, err)
	}

	return nil
}
