package postgres_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/mkadlec/theater-api/internal/repository"
	"github.com/stretchr/testify/require"
)

func TestMediaRepo_GalleryCRUD(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	url := "https://img.example.com/" + uuid.NewString() + ".jpg"
	id, err := store.Media().CreateGalleryImage(ctx, url)
	require.NoError(t, err)
	require.NotZero(t, id)

	imgs, err := store.Media().ListGallery(ctx)
	require.NoError(t, err)

	found := false
	for _, img := range imgs {
		if img.ID == id {
			found = true
			require.Equal(t, url, img.ImageURL)
		}
	}
	require.True(t, found)

	updated := url + "?v=2"
	require.NoError(t, store.Media().UpdateGalleryImage(ctx, id, updated))

	require.NoError(t, store.Media().DeleteGalleryImage(ctx, id))
	require.ErrorIs(t, store.Media().DeleteGalleryImage(ctx, id), repository.ErrNotFound)
}

func TestMediaRepo_SliderCRUD(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	url := "https://img.example.com/" + uuid.NewString() + ".jpg"
	id, err := store.Media().CreateSliderImage(ctx, url)
	require.NoError(t, err)

	imgs, err := store.Media().ListSlider(ctx)
	require.NoError(t, err)

	found := false
	for _, img := range imgs {
		if img.ID == id {
			found = true
		}
	}
	require.True(t, found)

	require.ErrorIs(t, store.Media().UpdateSliderImage(ctx, -1, url), repository.ErrNotFound)
	require.NoError(t, store.Media().DeleteSliderImage(ctx, id))
}
