package services

import (
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/msorokina/school-canteen-api/utils"
)

// LocalImageService implements ImageService on the local filesystem. Used
// in development when no S3 bucket is configured; files are served back
// through the /api/v1/uploads route.
type LocalImageService struct {
	uploadDir string
}

// InitLocalImageService initializes the image service with a local
// filesystem backend rooted at uploadDir.
func InitLocalImageService(uploadDir string) ImageService {
	imageServiceInstance = &LocalImageService{uploadDir: uploadDir}
	return imageServiceInstance
}

// UploadImage validates and saves an image file under the upload directory
func (s *LocalImageService) UploadImage(fileHeader *multipart.FileHeader, keyPrefix string) (string, error) {
	if err := utils.ValidateImageFile(fileHeader); err != nil {
		return "", err
	}

	filename, err := utils.SaveUploadedFile(fileHeader, filepath.Join(s.uploadDir, keyPrefix))
	if err != nil {
		return "", fmt.Errorf("failed to save image: %w", err)
	}

	return filepath.Join(keyPrefix, filename), nil
}

// GetImageURL returns the local serving path for an image
func (s *LocalImageService) GetImageURL(imageKey string) (string, error) {
	return utils.GetImageURL(imageKey), nil
}

// DeleteImage removes an image from the upload directory
func (s *LocalImageService) DeleteImage(imageKey string) error {
	if imageKey == "" {
		return nil
	}

	if err := os.Remove(filepath.Join(s.uploadDir, imageKey)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete image: %w", err)
	}

	return nil
}
