package postgres

import (
	"context"
	"fmt"

	"github.com/mkadlec/theater-api/internal/domain"
	"github.com/mkadlec/theater-api/internal/repository"
)

// MediaRepo persists the two image collections (gallery and homepage
// slider). Both tables share the same shape; the table name is fixed per
// method so no identifier ever comes from request data.
type MediaRepo struct {
	pool DB
	db   DB
}

func (r *MediaRepo) With(db DB) *MediaRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *MediaRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

const (
	galleryTable = "gallery_images"
	sliderTable  = "slider_images"
)

func (r *MediaRepo) listImages(ctx context.Context, op, table string) ([]domain.GalleryImage, error) {
	db := r.handle()

	rows, err := db.Query(ctx,
		`SELECT id, image_url FROM `+table+` ORDER BY id`,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	defer rows.Close()

	var out []domain.GalleryImage
	for rows.Next() {
		var img domain.GalleryImage
		if err := rows.Scan(&img.ID, &img.ImageURL); err != nil {
			return nil, wrapDBErr(op, err)
		}

		out = append(out, img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return out, nil
}

func (r *MediaRepo) createImage(ctx context.Context, op, table, url string) (int64, error) {
	db := r.handle()

	var id int64
	err := db.QueryRow(ctx,
		`INSERT INTO `+table+`(image_url) VALUES ($1) RETURNING id`,
		url,
	).Scan(&id)
	if err != nil {
		return 0, wrapDBErr(op, err)
	}

	return id, nil
}

func (r *MediaRepo) updateImage(ctx context.Context, op, table string, id int64, url string) error {
	db := r.handle()

	tag, err := db.Exec(ctx,
		`UPDATE `+table+` SET image_url = $2 WHERE id = $1`,
		id, url,
	)
	if err != nil {
		return wrapDBErr(op, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
	}

	return nil
}

func (r *MediaRepo) deleteImage(ctx context.Context, op, table string, id int64) error {
	db := r.handle()

	tag, err := db.Exec(ctx, `DELETE FROM `+table+` WHERE id = $1`, id)
	if err != nil {
		return wrapDBErr(op, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
	}

	return nil
}

func (r *MediaRepo) ListGallery(ctx context.Context) ([]domain.GalleryImage, error) {
	return r.listImages(ctx, "postgres.MediaRepo.ListGallery", galleryTable)
}

func (r *MediaRepo) CreateGalleryImage(ctx context.Context, url string) (int64, error) {
	return r.createImage(ctx, "postgres.MediaRepo.CreateGalleryImage", galleryTable, url)
}

func (r *MediaRepo) UpdateGalleryImage(ctx context.Context, id int64, url string) error {
	return r.updateImage(ctx, "postgres.MediaRepo.UpdateGalleryImage", galleryTable, id, url)
}

func (r *MediaRepo) DeleteGalleryImage(ctx context.Context, id int64) error {
	return r.deleteImage(ctx, "postgres.MediaRepo.DeleteGalleryImage", galleryTable, id)
}

func (r *MediaRepo) ListSlider(ctx context.Context) ([]domain.SliderImage, error) {
	imgs, err := r.listImages(ctx, "postgres.MediaRepo.ListSlider", sliderTable)
	if err != nil {
		return nil, err
	}

	out := make([]domain.SliderImage, 0, len(imgs))
	for _, img := range imgs {
		out = append(out, domain.SliderImage(img))
	}

	return out, nil
}

func (r *MediaRepo) CreateSliderImage(ctx context.Context, url string) (int64, error) {
	return r.createImage(ctx, "postgres.MediaRepo.CreateSliderImage", sliderTable, url)
}

func (r *MediaRepo) UpdateSliderImage(ctx context.Context, id int64, url string) error {
	return r.updateImage(ctx, "postgres.MediaRepo.UpdateSliderImage", sliderTable, id, url)
}

func (r *MediaRepo) DeleteSliderImage(ctx context.Context, id int64) error {
	return r.deleteImage(ctx, "postgres.MediaRepo.DeleteSliderImage", sliderTable, id)
}
