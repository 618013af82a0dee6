package s3_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goldpawn/adapters/s3"
)

type fakeObjectAPI struct {
	puts    map[string][]byte
	deleted []string
	err     error
}

func (f *fakeObjectAPI) PutObject(_ context.Context, params *awss3.PutObjectInput, _ ...func(*awss3.Options)) (*awss3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, _ := io.ReadAll(params.Body)
	f.puts[aws.ToString(params.Key)] = body
	return &awss3.PutObjectOutput{}, nil
}

func (f *fakeObjectAPI) DeleteObject(_ context.Context, params *awss3.DeleteObjectInput, _ ...func(*awss3.Options)) (*awss3.DeleteObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.deleted = append(f.deleted, aws.ToString(params.Key))
	return &awss3.DeleteObjectOutput{}, nil
}

func TestS3Operator_UploadAndDelete(t *testing.T) {
	client := &fakeObjectAPI{puts: map[string][]byte{}}
	operator, err := s3.NewS3Operator(client, "gold", "https://cdn.example.com/media")
	require.NoError(t, err)

	url, err := operator.UploadFile(context.Background(), "items/a.jpeg", "image/jpeg", []byte("jpeg"))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/media/items/a.jpeg", url)
	assert.Equal(t, []byte("jpeg"), client.puts["items/a.jpeg"])

	require.NoError(t, operator.DeleteByURL(context.Background(), url))
	assert.Equal(t, []string{"items/a.jpeg"}, client.deleted)

	err = operator.DeleteByURL(context.Background(), "https://elsewhere.example.com/media/items/a.jpeg")
	assert.ErrorIs(t, err, s3.ErrForeignURL)
	assert.Len(t, client.deleted, 1)

	client.err = errors.New("denied")
	assert.Error(t, operator.DeleteByURL(context.Background(), url))
	_, err = operator.UploadFile(context.Background(), "items/b.jpeg", "image/jpeg", nil)
	assert.Error(t, err)
}

func TestS3Operator_KeyFromURL(t *testing.T) {
	tests := []struct {
		name    string
		base    string
		url     string
		want    string
		wantErr bool
	}{
		{name: "root endpoint", base: "https://cdn.example.com", url: "https://cdn.example.com/items/a.png", want: "items/a.png"},
		{name: "root endpoint with slash", base: "https://cdn.example.com/", url: "https://cdn.example.com/a.png", want: "a.png"},
		{name: "prefixed endpoint", base: "https://cdn.example.com/bucket", url: "https://cdn.example.com/bucket/avatars/x.webp", want: "avatars/x.webp"},
		{name: "escaped key", base: "https://cdn.example.com", url: "https://cdn.example.com/items/a%20b.png", want: "items/a b.png"},
		{name: "other host", base: "https://cdn.example.com", url: "https://evil.example.com/items/a.png", wantErr: true},
		{name: "other prefix", base: "https://cdn.example.com/bucket", url: "https://cdn.example.com/other/a.png", wantErr: true},
		{name: "endpoint itself", base: "https://cdn.example.com/bucket", url: "https://cdn.example.com/bucket/", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			operator, err := s3.NewS3Operator(&fakeObjectAPI{}, "gold", tt.base)
			require.NoError(t, err)

			got, err := operator.KeyFromURL(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewS3Operator_RelativeURL(t *testing.T) {
	_, err := s3.NewS3Operator(&fakeObjectAPI{}, "gold", "/media")
	assert.Error(t, err)
}
