package services

import (
	"context"
	"testing"

	"github.com/gbonee/hustle-vibes-africa-sub000/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModuleVideoLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	module, err := f.videos.UploadModuleVideo(ctx, "importation", 202, upload("Supplier Tips.mp4", "video/mp4", []byte("vid")))
	require.NoError(t, err)
	assert.Contains(t, module.VideoURL, "videos/importation/202/")

	objects, err := f.videos.ListModuleVideos(ctx, "importation", 202)
	require.NoError(t, err)
	require.Len(t, objects, 1)

	require.NoError(t, f.videos.RemoveVideo(ctx, objects[0].Key))
	course, err := f.catalog.GetCourse(ctx, "importation")
	require.NoError(t, err)
	assert.Empty(t, course.Modules[1].VideoURL)
	assert.Zero(t, f.store.Len())
}

func TestModuleVideoValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.videos.UploadModuleVideo(ctx, "importation", 101, upload("a.mp4", "video/mp4", []byte("v")))
	assert.ErrorIs(t, err, ErrUnknownModule)

	_, err = f.videos.UploadModuleVideo(ctx, "importation", 999, upload("a.mp4", "video/mp4", []byte("v")))
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.videos.UploadModuleVideo(ctx, "importation", 201, upload("notes.pdf", "application/pdf", []byte("v")))
	assert.ErrorIs(t, err, utils.ErrUnsupportedType)

	assert.ErrorIs(t, f.videos.RemoveVideo(ctx, "challenges/u1/x.png"), ErrInvalidInput)
	assert.ErrorIs(t, f.videos.RemoveVideo(ctx, "videos/../challenges/x"), ErrInvalidInput)
	assert.Equal(t, "videos/digital-marketing/3", VideoPrefix("Digital Marketing", 3))
}
