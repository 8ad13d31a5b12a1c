package handler

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	attachment "anoa.com/eventhub/internal/modules/attachment/service"
	commonDto "anoa.com/eventhub/pkg/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type fakeAttachmentService struct {
	attachment.AttachmentService
	calls int
}

func (f *fakeAttachmentService) UploadImage(ctx context.Context, userID uuid.UUID, file *multipart.FileHeader) (*commonDto.ImageResponse, error) {
	f.calls++
	return &commonDto.ImageResponse{FileURL: "https://cdn.example/" + file.Filename}, nil
}

func newUploadRequest(t *testing.T, size int) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "cover.png")
	if err != nil {
		t.Fatal(err)
	}
	part.Write(bytes.Repeat([]byte{0x1}, size))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/uploads/images", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUploadImage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &fakeAttachmentService{}
	h := NewAttachmentHandler(svc)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", uuid.NewString())
		c.Next()
	})
	r.POST("/api/uploads/images", h.UploadImage)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, newUploadRequest(t, 1024))
	if w.Code != http.StatusCreated || svc.calls != 1 {
		t.Fatalf("expected 201, got %d (%d calls)", w.Code, svc.calls)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, newUploadRequest(t, MaxImageSize+1))
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", w.Code)
	}
	if svc.calls != 1 {
		t.Fatal("oversized upload must not reach the service")
	}
}

func TestUploadImageRequiresUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewAttachmentHandler(&fakeAttachmentService{})

	r := gin.New()
	r.POST("/api/uploads/images", h.UploadImage)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, newUploadRequest(t, 10))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}
