package s3

import (
	"errors"
	"fmt"
	"io"
	"net/http"
)

var ErrInsecureImage = errors.New("unsupported image type")

// SecureMIMETypesExtension maps the image types accepted for upload to their file extension.
var SecureMIMETypesExtension = map[string]string{
	"image/jpeg": "jpeg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/bmp":  "bmp",
	"image/webp": "webp",
}

func CheckSecureImageAndGetExtension(mimeType string) (bool, string) {
	ext, ok := SecureMIMETypesExtension[mimeType]
	return ok, ext
}

// ReadImage reads at most maxSize bytes and sniffs the content type.
// Oversized input fails with *ReachLimitError, anything but an accepted image with ErrInsecureImage.
func ReadImage(r io.Reader, maxSize int64) (data []byte, mimeType, ext string, err error) {
	const op = "ReadImage"

	data, err = io.ReadAll(NewMaxSizeReader(r, maxSize))
	if err != nil {
		return nil, "", "", fmt.Errorf("[%s] Fail to read image, err=%w", op, err)
	}
	mimeType = http.DetectContentType(data)
	secure, ext := CheckSecureImageAndGetExtension(mimeType)
	if !secure {
		return nil, "", "", fmt.Errorf("%w: %s", ErrInsecureImage, mimeType)
	}
	return data, mimeType, ext, nil
}
