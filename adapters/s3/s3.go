package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var ErrForeignURL = errors.New("url is not served from the public endpoint")

// ObjectAPI is the part of the S3 client the operator uses.
type ObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type S3Operator struct {
	Client ObjectAPI
	Bucket string
	// PublicEndpoint is the base every object URL is served from.
	PublicEndpoint *url.URL
}

func NewS3Operator(client ObjectAPI, bucket, publicBaseURL string) (*S3Operator, error) {
	const op = "NewS3Operator"

	publicEndpoint, err := url.Parse(publicBaseURL)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to parse public base URL, err=%w", op, err)
	}
	if publicEndpoint.Scheme == "" || publicEndpoint.Host == "" {
		return nil, fmt.Errorf("[%s] Public base URL must be absolute, url=%s", op, publicBaseURL)
	}
	return &S3Operator{Client: client, Bucket: bucket, PublicEndpoint: publicEndpoint}, nil
}

// UploadFile stores content under key and returns its public URL.
func (s *S3Operator) UploadFile(ctx context.Context, key, contentType string, content []byte) (string, error) {
	const op = "UploadFile"

	_, err := s.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(content),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("[%s] Fail to upload file to S3, err=%w", op, err)
	}
	return s.PublicURL(key), nil
}

func (s *S3Operator) PublicURL(key string) string {
	uri := *s.PublicEndpoint
	uri.Path = path.Join("/", uri.Path, key)
	return uri.String()
}

// KeyFromURL strips the public endpoint prefix from an object URL.
func (s *S3Operator) KeyFromURL(raw string) (string, error) {
	const op = "KeyFromURL"

	uri, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("[%s] Fail to parse url, err=%w", op, err)
	}
	if uri.Scheme != s.PublicEndpoint.Scheme || uri.Host != s.PublicEndpoint.Host {
		return "", fmt.Errorf("[%s] %w, url=%s", op, ErrForeignURL, raw)
	}
	prefix := strings.TrimSuffix(s.PublicEndpoint.Path, "/") + "/"
	if !strings.HasPrefix(uri.Path, prefix) {
		return "", fmt.Errorf("[%s] %w, url=%s", op, ErrForeignURL, raw)
	}
	key := strings.TrimPrefix(uri.Path, prefix)
	if key == "" {
		return "", fmt.Errorf("[%s] %w, url=%s", op, ErrForeignURL, raw)
	}
	return key, nil
}

func (s *S3Operator) DeleteFile(ctx context.Context, key string) error {
	const op = "DeleteFile"

	_, err := s.Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("[%s] Fail to delete file from S3, key=%s, err=%w", op, key, err)
	}
	return nil
}

// DeleteByURL deletes the object a public URL points at.
func (s *S3Operator) DeleteByURL(ctx context.Context, raw string) error {
	key, err := s.KeyFromURL(raw)
	if err != nil {
		return err
	}
	return s.DeleteFile(ctx, key)
}
