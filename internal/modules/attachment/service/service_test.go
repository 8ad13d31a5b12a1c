package attachment

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"anoa.com/eventhub/internal/entity"
	"anoa.com/eventhub/internal/modules/attachment/repository"
	"anoa.com/eventhub/pkg/storage"
)

type fakeImageRepo struct {
	repository.ImageRepository
	orphans []entity.EventImage
	deleted []uint
	cutoff  time.Time
}

func (f *fakeImageRepo) FindOrphans(ctx context.Context, cutoff time.Time) ([]entity.EventImage, error) {
	f.cutoff = cutoff
	return f.orphans, nil
}

func (f *fakeImageRepo) Delete(ctx context.Context, id uint) error {
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeStorage struct {
	failFor map[string]bool
	removed []string
}

func (f *fakeStorage) UploadImage(ctx context.Context, r io.Reader, folder, fileName string) (string, error) {
	return "https://res.cloudinary.com/demo/image/upload/v1/" + folder + "/" + fileName, nil
}

func (f *fakeStorage) UploadCroppedImage(ctx context.Context, r io.Reader, folder, fileName string, box storage.CropBox, size int) (string, error) {
	return f.UploadImage(ctx, r, folder, fileName)
}

func (f *fakeStorage) DeleteImage(ctx context.Context, url string) error {
	if f.failFor[url] {
		return errors.New("cloudinary down")
	}
	f.removed = append(f.removed, url)
	return nil
}

func TestCleanupOrphanImagesSkipsStorageFailures(t *testing.T) {
	repo := &fakeImageRepo{orphans: []entity.EventImage{
		{ID: 1, FileURL: "a"},
		{ID: 2, FileURL: "b"},
		{ID: 3, FileURL: "c"},
	}}
	store := &fakeStorage{failFor: map[string]bool{"b": true}}
	svc := NewAttachmentService(repo, store)

	removed, err := svc.CleanupOrphanImages(context.Background())
	if err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if removed != 2 || len(repo.deleted) != 2 || repo.deleted[0] != 1 || repo.deleted[1] != 3 {
		t.Fatalf("unexpected deletions %v (removed %d)", repo.deleted, removed)
	}
	if age := time.Since(repo.cutoff); age < 23*time.Hour || age > 25*time.Hour {
		t.Fatalf("unexpected cutoff age %v", age)
	}
}
