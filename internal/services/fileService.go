package services

import (
	"context"
	"fmt"
	"log"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/arzan03/DevCamper/internal/common"
	"github.com/arzan03/DevCamper/internal/models"
	"github.com/arzan03/DevCamper/internal/policy"
	"github.com/arzan03/DevCamper/internal/repository"
	"github.com/arzan03/DevCamper/internal/storage"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PhotoService stores bootcamp photos and records their names.
type PhotoService struct {
	bootcamps repository.BootcampRepository
	store     storage.PhotoStore
	maxSize   int64
	logger    *log.Logger
}

func NewPhotoService(bootcamps repository.BootcampRepository, store storage.PhotoStore, maxSize int64, logger *log.Logger) *PhotoService {
	return &PhotoService{bootcamps: bootcamps, store: store, maxSize: maxSize, logger: logger}
}

// PhotoName is the stored name of a bootcamp photo.
func PhotoName(bootcampID primitive.ObjectID, filename string) string {
	return fmt.Sprintf("photo_%s%s", bootcampID.Hex(), filepath.Ext(filename))
}

// UploadPhoto validates the file, stores it and returns the stored name.
// fileHeader is nil when the request carried no file.
func (s *PhotoService) UploadPhoto(ctx context.Context, principal *models.User, id primitive.ObjectID, fileHeader *multipart.FileHeader) (string, error) {
	b, err := s.bootcamps.FindByID(ctx, id)
	if err != nil {
		return "", notFound(err, id)
	}
	if err := policy.Check(principal, policy.UploadPhoto, "bootcamp", b); err != nil {
		return "", err
	}

	if fileHeader == nil {
		return "", common.BadRequest("Please upload a file")
	}
	contentType := fileHeader.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return "", common.BadRequest("Please upload an image file")
	}
	if fileHeader.Size > s.maxSize {
		return "", common.BadRequest("Please upload an image less than %d", s.maxSize)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	name := PhotoName(id, fileHeader.Filename)
	if err := s.store.Put(ctx, name, file, fileHeader.Size, contentType); err != nil {
		s.logger.Printf("store photo %s: %v", name, err)
		return "", common.Internal("Problem with file upload")
	}

	if _, err := s.bootcamps.Update(ctx, id, bson.M{"photo": name}); err != nil {
		// the record is gone or unreachable; do not leave an orphan object
		go func() {
			if err := s.store.Remove(context.Background(), name); err != nil {
				s.logger.Printf("remove orphan photo %s: %v", name, err)
			}
		}()
		return "", notFound(err, id)
	}
	return name, nil
}
