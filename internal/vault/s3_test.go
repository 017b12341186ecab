package vault

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

type fakeObject struct {
	data     []byte
	metadata map[string]string
}

// fakeS3 is an in-memory S3Client that only supports single-part uploads.
type fakeS3 struct {
	mu          sync.Mutex
	bucket      string
	objects     map[string]fakeObject
	headBuckErr error
}

func newFakeS3(bucket string) *fakeS3 {
	return &fakeS3{bucket: bucket, objects: make(map[string]fakeObject)}
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[aws.ToString(in.Key)] = fakeObject{data: data, metadata: in.Metadata}
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) UploadPart(context.Context, *s3.UploadPartInput, ...func(*s3.Options)) (*s3.UploadPartOutput, error) {
	return nil, errors.New("multipart not supported")
}

func (f *fakeS3) CreateMultipartUpload(context.Context, *s3.CreateMultipartUploadInput, ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error) {
	return nil, errors.New("multipart not supported")
}

func (f *fakeS3) CompleteMultipartUpload(context.Context, *s3.CompleteMultipartUploadInput, ...func(*s3.Options)) (*s3.CompleteMultipartUploadOutput, error) {
	return nil, errors.New("multipart not supported")
}

func (f *fakeS3) AbortMultipartUpload(context.Context, *s3.AbortMultipartUploadInput, ...func(*s3.Options)) (*s3.AbortMultipartUploadOutput, error) {
	return &s3.AbortMultipartUploadOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	obj, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{
		Body:     io.NopCloser(bytes.NewReader(obj.data)),
		Metadata: obj.metadata,
	}, nil
}

func (f *fakeS3) HeadObject(ctx context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	obj, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NotFound{}
	}
	return &s3.HeadObjectOutput{
		ContentLength: aws.Int64(int64(len(obj.data))),
		Metadata:      obj.metadata,
	}, nil
}

func (f *fakeS3) HeadBucket(ctx context.Context, in *s3.HeadBucketInput, _ ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	if f.headBuckErr != nil {
		return nil, f.headBuckErr
	}
	if aws.ToString(in.Bucket) != f.bucket {
		return nil, &types.NotFound{}
	}
	return &s3.HeadBucketOutput{}, nil
}

func TestS3Vault_PutAndGetSnapshot(t *testing.T) {
	client := newFakeS3("photos")
	v := NewS3Vault("remote", client, "photos", "backups")

	data := "sqlite snapshot bytes"
	if err := v.PutSnapshot("lib-1", strings.NewReader(data), int64(len(data)), 42); err != nil {
		t.Fatalf("PutSnapshot() error = %v", err)
	}

	obj, ok := client.objects["backups/lib-1/catalog.db"]
	if !ok {
		t.Fatalf("object not stored under expected key; have %v", client.objects)
	}
	if obj.metadata[versionMetadataKey] != "42" {
		t.Errorf("version metadata = %q, want %q", obj.metadata[versionMetadataKey], "42")
	}

	var buf bytes.Buffer
	if err := v.GetSnapshot("lib-1", &buf); err != nil {
		t.Fatalf("GetSnapshot() error = %v", err)
	}
	if buf.String() != data {
		t.Errorf("GetSnapshot() = %q, want %q", buf.String(), data)
	}

	version, err := v.GetSnapshotVersion("lib-1")
	if err != nil {
		t.Fatalf("GetSnapshotVersion() error = %v", err)
	}
	if version != 42 {
		t.Errorf("GetSnapshotVersion() = %d, want 42", version)
	}
}

func TestS3Vault_SizeMismatch(t *testing.T) {
	v := NewS3Vault("remote", newFakeS3("photos"), "photos", "")

	if err := v.PutSnapshot("lib-1", strings.NewReader("abc"), 10, 1); err == nil {
		t.Error("PutSnapshot() expected error for size mismatch")
	}
}

func TestS3Vault_NotFound(t *testing.T) {
	v := NewS3Vault("remote", newFakeS3("photos"), "photos", "")

	var buf bytes.Buffer
	if err := v.GetSnapshot("missing", &buf); !errors.Is(err, ErrSnapshotNotFound) {
		t.Errorf("GetSnapshot() error = %v, want ErrSnapshotNotFound", err)
	}

	version, err := v.GetSnapshotVersion("missing")
	if err != nil {
		t.Fatalf("GetSnapshotVersion() error = %v", err)
	}
	if version != 0 {
		t.Errorf("GetSnapshotVersion() = %d, want 0", version)
	}
}

func TestS3Vault_ValidateSetup(t *testing.T) {
	tests := []struct {
		name    string
		bucket  string
		headErr error
		wantErr bool
	}{
		{name: "bucket reachable", bucket: "photos"},
		{name: "wrong bucket", bucket: "other", wantErr: true},
		{name: "no bucket configured", bucket: "", wantErr: true},
		{name: "access denied", bucket: "photos", headErr: errors.New("forbidden"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newFakeS3("photos")
			client.headBuckErr = tt.headErr
			v := NewS3Vault("remote", client, tt.bucket, "")

			err := v.ValidateSetup()
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSetup() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
