package submission

import (
	"errors"
	"fmt"
	"mime/multipart"

	"goldpawn/adapters/s3"
	"goldpawn/validation"
)

const (
	MaxImages    = 3
	MaxImageSize = 2 << 20
)

// ImageFile is an uploaded photo that passed the size and type checks.
type ImageFile struct {
	Name        string
	ContentType string
	Ext         string
	Data        []byte
}

// ReadImages loads the multipart files of a submission, rejecting oversize or non-image files.
func ReadImages(files []*multipart.FileHeader) ([]ImageFile, error) {
	const op = "ReadImages"

	if err := checkCount(len(files)); err != nil {
		return nil, err
	}

	images := make([]ImageFile, 0, len(files))
	for _, header := range files {
		if header.Size > MaxImageSize {
			return nil, validation.Invalid("%s exceeds the %s limit", header.Filename, s3.FormatBytes(MaxImageSize))
		}
		file, err := header.Open()
		if err != nil {
			return nil, fmt.Errorf("[%s] Fail to open %s, err=%w", op, header.Filename, err)
		}
		data, mimeType, ext, err := s3.ReadImage(file, MaxImageSize)
		file.Close()

		var limitErr *s3.ReachLimitError
		switch {
		case errors.As(err, &limitErr):
			return nil, validation.Invalid("%s exceeds the %s limit", header.Filename, s3.FormatBytes(MaxImageSize))
		case errors.Is(err, s3.ErrInsecureImage):
			return nil, validation.Invalid("%s is not an accepted image (%v)", header.Filename, err)
		case err != nil:
			return nil, fmt.Errorf("[%s] Fail to read %s, err=%w", op, header.Filename, err)
		}
		images = append(images, ImageFile{Name: header.Filename, ContentType: mimeType, Ext: ext, Data: data})
	}
	return images, nil
}

func checkCount(n int) error {
	if n < 1 {
		return validation.Invalid("at least one image is required")
	}
	if n > MaxImages {
		return validation.Invalid("at most %d images are allowed", MaxImages)
	}
	return nil
}

func checkImages(images []ImageFile) error {
	if err := checkCount(len(images)); err != nil {
		return err
	}
	for _, img := range images {
		if len(img.Data) > MaxImageSize {
			return validation.Invalid("%s exceeds the %s limit", img.Name, s3.FormatBytes(MaxImageSize))
		}
		if ok, _ := s3.CheckSecureImageAndGetExtension(img.ContentType); !ok {
			return validation.Invalid("%s is not an accepted image", img.Name)
		}
	}
	return nil
}
