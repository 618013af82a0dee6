package submission

import (
	"bytes"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"goldpawn/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func multipartFiles(t *testing.T, files map[string][]byte) []*multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for name, data := range files {
		part, err := writer.CreateFormFile("images", name)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(8<<20))
	return req.MultipartForm.File["images"]
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 8, 8))))
	return buf.Bytes()
}

func TestReadImages(t *testing.T) {
	t.Run("accepts png", func(t *testing.T) {
		images, err := ReadImages(multipartFiles(t, map[string][]byte{"ring.png": pngBytes(t)}))
		require.NoError(t, err)
		require.Len(t, images, 1)
		assert.Equal(t, "ring.png", images[0].Name)
		assert.Equal(t, "image/png", images[0].ContentType)
		assert.Equal(t, "png", images[0].Ext)
	})

	t.Run("rejects text", func(t *testing.T) {
		_, err := ReadImages(multipartFiles(t, map[string][]byte{"note.png": []byte("just text")}))
		assert.ErrorIs(t, err, validation.ErrInvalid)
	})

	t.Run("rejects oversize", func(t *testing.T) {
		big := append(pngBytes(t), make([]byte, MaxImageSize)...)
		_, err := ReadImages(multipartFiles(t, map[string][]byte{"big.png": big}))
		assert.ErrorIs(t, err, validation.ErrInvalid)
		assert.Contains(t, err.Error(), "2.00 MB")
	})

	t.Run("rejects empty selection", func(t *testing.T) {
		_, err := ReadImages(nil)
		assert.ErrorIs(t, err, validation.ErrInvalid)
	})
}
