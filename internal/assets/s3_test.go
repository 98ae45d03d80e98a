package assets

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/videotube/internal/config"
)

type fakeS3 struct {
	puts    map[string]string
	deletes []string
	putErr  error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	b, _ := io.ReadAll(in.Body)
	f.puts[aws.ToString(in.Key)] = string(b)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) UploadPart(context.Context, *s3.UploadPartInput, ...func(*s3.Options)) (*s3.UploadPartOutput, error) {
	return nil, errors.New("multipart not expected")
}

func (f *fakeS3) CreateMultipartUpload(context.Context, *s3.CreateMultipartUploadInput, ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error) {
	return nil, errors.New("multipart not expected")
}

func (f *fakeS3) CompleteMultipartUpload(context.Context, *s3.CompleteMultipartUploadInput, ...func(*s3.Options)) (*s3.CompleteMultipartUploadOutput, error) {
	return nil, errors.New("multipart not expected")
}

func (f *fakeS3) AbortMultipartUpload(context.Context, *s3.AbortMultipartUploadInput, ...func(*s3.Options)) (*s3.AbortMultipartUploadOutput, error) {
	return &s3.AbortMultipartUploadOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.deletes = append(f.deletes, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

type fixedProbe float64

func (p fixedProbe) Duration(context.Context, string) (float64, error) { return float64(p), nil }

func newTestS3(t *testing.T, client *fakeS3) *S3Store {
	t.Helper()
	s := newS3Store(client, config.ObjectStoreConfig{Bucket: "media", PublicBaseURL: "https://cdn.test/"}, fixedProbe(42))
	s.now = func() time.Time { return time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC) }
	return s
}

func TestS3Store_UploadRemovesStagedFile(t *testing.T) {
	t.Parallel()

	client := &fakeS3{puts: map[string]string{}}
	s := newTestS3(t, client)

	p := filepath.Join(t.TempDir(), "clip.MP4")
	require.NoError(t, os.WriteFile(p, []byte("video-bytes"), 0o600))

	a, err := s.Upload(context.Background(), p)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(a.URL, "https://cdn.test/uploads/2025/03/09/"))
	assert.True(t, strings.HasSuffix(a.URL, ".mp4"))
	assert.Equal(t, 42.0, a.Duration)
	require.Len(t, client.puts, 1)
	for _, body := range client.puts {
		assert.Equal(t, "video-bytes", body)
	}

	_, err = os.Stat(p)
	assert.True(t, os.IsNotExist(err))
}

func TestS3Store_UploadFailureStillRemovesStagedFile(t *testing.T) {
	t.Parallel()

	client := &fakeS3{puts: map[string]string{}, putErr: errors.New("503")}
	s := newTestS3(t, client)

	p := filepath.Join(t.TempDir(), "t.png")
	require.NoError(t, os.WriteFile(p, []byte("img"), 0o600))

	_, err := s.Upload(context.Background(), p)
	assert.Error(t, err)
	_, statErr := os.Stat(p)
	assert.True(t, os.IsNotExist(statErr))
}

func TestS3Store_DeleteResolvesKey(t *testing.T) {
	t.Parallel()

	client := &fakeS3{puts: map[string]string{}}
	s := newTestS3(t, client)
	ctx := context.Background()

	require.NoError(t, s.Delete(ctx, "https://cdn.test/uploads/a.png"))
	require.NoError(t, s.Delete(ctx, "https://s3.amazonaws.com/media/uploads/b.png"))
	require.NoError(t, s.Delete(ctx, "uploads/c.png"))
	assert.Error(t, s.Delete(ctx, ""))

	assert.Equal(t, []string{"uploads/a.png", "uploads/b.png", "uploads/c.png"}, client.deletes)
}

type scriptedRunner struct {
	out  string
	err  error
	args []string
}

func (r *scriptedRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	r.args = append([]string{name}, args...)
	return []byte(r.out), r.err
}

func TestFFProbe_Duration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		out     string
		err     error
		want    float64
		wantErr bool
	}{
		{name: "video", out: "125.480000\n", want: 125.48},
		{name: "image", out: "N/A\n", wantErr: true},
		{name: "garbage", out: "abc", wantErr: true},
		{name: "missing binary", err: errors.New("not found"), wantErr: true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			runner := &scriptedRunner{out: tt.out, err: tt.err}
			p := &FFProbe{Binary: "ffprobe", Runner: runner}

			d, err := p.Duration(context.Background(), "/tmp/x.mp4")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, d, 0.0001)
			assert.Equal(t, "/tmp/x.mp4", runner.args[len(runner.args)-1])
		})
	}
}
