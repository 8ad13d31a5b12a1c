package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// ImageStorage defines contract for image storage provider (Cloudinary implementation).
type ImageStorage interface {
	// UploadImage uploads image from reader and returns the secure URL.
	// folder is a logical sub folder in storage (e.g. "covers").
	UploadImage(ctx context.Context, r io.Reader, folder, fileName string) (string, error)
	// UploadCroppedImage crops the uploaded image to box and scales it to a size x size square.
	UploadCroppedImage(ctx context.Context, r io.Reader, folder, fileName string, box CropBox, size int) (string, error)
	// DeleteImage deletes image from storage using its URL.
	DeleteImage(ctx context.Context, fileURL string) error
}

// CropBox is a rectangle in source image pixels. A zero box means no crop.
type CropBox struct {
	X      int
	Y      int
	Width  int
	Height int
}

func (b CropBox) IsZero() bool {
	return b.Width <= 0 || b.Height <= 0
}

type cloudinaryStorage struct {
	cld        *cloudinary.Cloudinary
	rootFolder string
}

// NewCloudinaryStorage creates Cloudinary-backed implementation of ImageStorage.
// When cloudinaryURL is empty the SDK falls back to CLOUDINARY_URL from the environment.
func NewCloudinaryStorage(cloudinaryURL, cloudName, rootFolder string) (ImageStorage, error) {
	var (
		cld *cloudinary.Cloudinary
		err error
	)
	if cloudinaryURL != "" {
		cld, err = cloudinary.NewFromURL(cloudinaryURL)
	} else {
		cld, err = cloudinary.New()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary client: %w", err)
	}

	// Ensure HTTPS URLs by default.
	cld.Config.URL.Secure = true

	if cloudName != "" {
		cld.Config.Cloud.CloudName = cloudName
	}

	return &cloudinaryStorage{cld: cld, rootFolder: rootFolder}, nil
}

func (s *cloudinaryStorage) folder(sub string) string {
	if s.rootFolder == "" {
		return sub
	}
	if sub == "" {
		return s.rootFolder
	}
	return s.rootFolder + "/" + sub
}

func (s *cloudinaryStorage) uploadParams(folder, fileName string) uploader.UploadParams {
	publicID := fmt.Sprintf("%d-%s", time.Now().UnixNano(), strings.TrimSuffix(fileName, filepath.Ext(fileName)))

	params := uploader.UploadParams{
		Folder:         s.folder(folder),
		UseFilename:    api.Bool(true),
		UniqueFilename: api.Bool(true),
		PublicID:       publicID,
		Overwrite:      api.Bool(false),
	}

	// Apply WebP conversion and compression only for images
	if isImage(fileName) {
		params.Format = "webp"
		params.Transformation = "q_auto"
	}
	return params
}

// UploadImage uploads an image to Cloudinary and returns the secure URL.
func (s *cloudinaryStorage) UploadImage(ctx context.Context, r io.Reader, folder, fileName string) (string, error) {
	return s.upload(ctx, r, s.uploadParams(folder, fileName))
}

func (s *cloudinaryStorage) UploadCroppedImage(ctx context.Context, r io.Reader, folder, fileName string, box CropBox, size int) (string, error) {
	if !isImage(fileName) {
		return "", fmt.Errorf("unsupported image type: %s", filepath.Ext(fileName))
	}
	params := s.uploadParams(folder, fileName)
	params.Transformation = cropTransformation(box, size)
	return s.upload(ctx, r, params)
}

func (s *cloudinaryStorage) upload(ctx context.Context, r io.Reader, params uploader.UploadParams) (string, error) {
	if s == nil || s.cld == nil {
		return "", fmt.Errorf("cloudinary storage is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	resp, err := s.cld.Upload.Upload(ctx, r, params)
	if err != nil {
		return "", fmt.Errorf("failed to upload image to cloudinary: %w", err)
	}

	if resp.SecureURL == "" {
		return "", fmt.Errorf("cloudinary upload succeeded but secure URL is empty")
	}

	return resp.SecureURL, nil
}

// DeleteImage deletes image from Cloudinary.
func (s *cloudinaryStorage) DeleteImage(ctx context.Context, fileURL string) error {
	if s == nil || s.cld == nil {
		return fmt.Errorf("cloudinary storage is not initialized")
	}

	publicID := extractPublicID(fileURL)
	if publicID == "" {
		return fmt.Errorf("could not extract public ID from URL: %s", fileURL)
	}

	// Invalidate: true helps to clear CDN cache
	params := uploader.DestroyParams{
		PublicID:   publicID,
		Invalidate: api.Bool(true),
	}

	resp, err := s.cld.Upload.Destroy(ctx, params)
	if err != nil {
		return fmt.Errorf("failed to delete image from cloudinary: %w", err)
	}

	if resp.Result != "ok" && resp.Result != "not found" {
		return fmt.Errorf("cloudinary destroy api returned result: %s", resp.Result)
	}

	return nil
}

func isImage(fileName string) bool {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".jpg", ".jpeg", ".png", ".bmp", ".tiff", ".gif", ".webp":
		return true
	}
	return false
}

// cropTransformation builds the chained transformation: crop the box first,
// then fill a square of the requested size.
func cropTransformation(box CropBox, size int) string {
	if size <= 0 {
		size = 256
	}
	fill := fmt.Sprintf("c_fill,g_center,w_%d,h_%d,q_auto", size, size)
	if box.IsZero() {
		return fill
	}
	return fmt.Sprintf("c_crop,x_%d,y_%d,w_%d,h_%d/%s", box.X, box.Y, box.Width, box.Height, fill)
}

// extractPublicID attempts to extract the public ID from a Cloudinary URL.
// Example: https://res.cloudinary.com/demo/image/upload/v123456789/folder/sample.jpg -> folder/sample
func extractPublicID(fileURL string) string {
	u, err := url.Parse(fileURL)
	if err != nil {
		return ""
	}

	// Path is roughly /<cloud_name>/image/upload/[v<version>/]<folder>/<file>.<ext>
	parts := strings.Split(u.Path, "/")
	uploadIndex := -1
	for i, p := range parts {
		if p == "upload" {
			uploadIndex = i
			break
		}
	}

	if uploadIndex == -1 || uploadIndex+1 >= len(parts) {
		return ""
	}

	relevantParts := parts[uploadIndex+1:]

	if len(relevantParts) > 0 && isVersionSegment(relevantParts[0]) {
		relevantParts = relevantParts[1:]
	}

	if len(relevantParts) == 0 {
		return ""
	}

	publicIDWithExt := strings.Join(relevantParts, "/")
	return strings.TrimSuffix(publicIDWithExt, filepath.Ext(publicIDWithExt))
}

func isVersionSegment(s string) bool {
	if len(s) < 2 || s[0] != 'v' {
		return false
	}
	for _, r := range s[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
