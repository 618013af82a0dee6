package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"goldpawn/adapters/imaging"
	"goldpawn/adapters/s3"
	"goldpawn/models"
	"goldpawn/submission"
	"goldpawn/validation"
)

// MaxImageUpload is the size limit of POST /api/images and the profile avatar.
const MaxImageUpload = 5 << 20

type objectUploader interface {
	UploadFile(ctx context.Context, key, contentType string, content []byte) (string, error)
}

type uploadRecorder interface {
	RecordUpload(ctx context.Context, image *models.Image) error
}

// imageUploader stores downscaled photos under prefix and logs each upload
// for the hourly rate limit.
type imageUploader struct {
	operator objectUploader
	store    uploadRecorder
	prefix   string
}

func (u *imageUploader) Upload(ctx context.Context, ownerID uuid.UUID, image submission.ImageFile) (string, error) {
	const op = "imageUploader.Upload"

	data, err := imaging.Downscale(image.Data, image.ContentType)
	if err != nil {
		return "", fmt.Errorf("[%s] Fail to downscale %s, err=%w", op, image.Name, err)
	}
	key := fmt.Sprintf("%s/%s.%s", u.prefix, uuid.NewString(), image.Ext)
	url, err := u.operator.UploadFile(ctx, key, image.ContentType, data)
	if err != nil {
		return "", fmt.Errorf("[%s] Fail to upload %s, err=%w", op, image.Name, err)
	}
	if err := u.store.RecordUpload(ctx, &models.Image{UploaderID: ownerID, Url: url}); err != nil {
		return "", fmt.Errorf("[%s] Fail to record upload, err=%w", op, err)
	}
	return url, nil
}

// PostImage uploads a single image from the raw request body.
// (POST /api/images)
func (impl *ServerImpl) PostImage(c *gin.Context) {
	const op = "PostImage"
	actor, _ := actorFrom(c)

	// hourly upload limit
	if limit := impl.config.S3.RateLimitPerHour; limit > 0 {
		count, err := impl.store.CountUploadsSince(c, actor.UserID, time.Now().Add(-time.Hour))
		if err != nil {
			fail(c, op, err)
			return
		}
		if count >= limit {
			reject(c, http.StatusTooManyRequests, "Upload limit reached, please try again later")
			return
		}
	}

	url, err := impl.uploadBody(c, actor.UserID, "images")
	if err != nil {
		fail(c, op, err)
		return
	}
	c.Header("Location", url)
	respond(c, http.StatusCreated, "Image uploaded", gin.H{"url": url})
}

// uploadBody reads an image from the request body, or from the "image" form
// field of a multipart request.
func (impl *ServerImpl) uploadBody(c *gin.Context, ownerID uuid.UUID, prefix string) (string, error) {
	var body io.Reader = c.Request.Body
	if c.ContentType() == gin.MIMEMultipartPOSTForm {
		header, err := c.FormFile("image")
		if err != nil {
			return "", validation.Invalid("image file is required")
		}
		file, err := header.Open()
		if err != nil {
			return "", validation.Invalid("cannot read %s", header.Filename)
		}
		defer file.Close()
		body = file
	}

	data, mimeType, ext, err := s3.ReadImage(body, MaxImageUpload)
	if err != nil {
		return "", err
	}
	uploader := &imageUploader{operator: impl.s3Operator, store: impl.store, prefix: prefix}
	return uploader.Upload(c, ownerID, submission.ImageFile{
		Name:        "upload." + ext,
		ContentType: mimeType,
		Ext:         ext,
		Data:        data,
	})
}
