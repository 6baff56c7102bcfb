package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"reflect"
	"sort"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

// fakeS3 keeps objects in a map and pages listings two keys at a time
type fakeS3 struct {
	s3iface.S3API
	objects map[string][]byte
	lists   int
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}}
}

func (f *fakeS3) ListObjectsV2WithContext(ctx aws.Context, in *s3.ListObjectsV2Input, _ ...request.Option) (*s3.ListObjectsV2Output, error) {
	f.lists++
	prefix := aws.StringValue(in.Prefix)
	var keys []string
	for k := range f.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	start := 0
	if in.ContinuationToken != nil {
		for i, k := range keys {
			if k == *in.ContinuationToken {
				start = i
			}
		}
	}
	end := min(start+2, len(keys))

	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(end < len(keys))}
	for _, k := range keys[start:end] {
		out.Contents = append(out.Contents, &s3.Object{Key: aws.String(k)})
	}
	if end < len(keys) {
		out.NextContinuationToken = aws.String(keys[end])
	}
	return out, nil
}

func (f *fakeS3) GetObjectWithContext(ctx aws.Context, in *s3.GetObjectInput, _ ...request.Option) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[aws.StringValue(in.Key)]
	if !ok {
		return nil, awserr.New(s3.ErrCodeNoSuchKey, "missing", nil)
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) PutObjectWithContext(ctx aws.Context, in *s3.PutObjectInput, _ ...request.Option) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.StringValue(in.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) HeadObjectWithContext(ctx aws.Context, in *s3.HeadObjectInput, _ ...request.Option) (*s3.HeadObjectOutput, error) {
	if _, ok := f.objects[aws.StringValue(in.Key)]; !ok {
		return nil, awserr.New("NotFound", "not found", nil)
	}
	return &s3.HeadObjectOutput{}, nil
}

func TestS3StorageList(t *testing.T) {
	api := newFakeS3()
	for _, k := range []string{"root/study/scan0", "root/study/scan1", "root/study/scan2", "root/study/sub/scan3", "root/other/x"} {
		api.objects[k] = []byte(k)
	}
	st := NewS3StorageWithAPI(api, "bucket", "/root/")

	paths, err := st.List(context.Background(), "study")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{"study/scan0", "study/scan1", "study/scan2"}
	if !reflect.DeepEqual(paths, want) {
		t.Errorf("List = %v, want %v", paths, want)
	}
	if api.lists < 2 {
		t.Errorf("listing was not paged: %d calls", api.lists)
	}
}

func TestS3StorageGetPutExists(t *testing.T) {
	ctx := context.Background()
	api := newFakeS3()
	st := NewS3StorageWithAPI(api, "bucket", "")

	if err := st.Put(ctx, "study/scan1", []byte("data")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, ok := api.objects["study/scan1"]; !ok {
		t.Fatalf("object stored under wrong key: %v", api.objects)
	}

	data, err := st.Get(ctx, "study/scan1")
	if err != nil || string(data) != "data" {
		t.Errorf("Get = %q, %v", data, err)
	}
	if _, err := st.Get(ctx, "study/missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
	}

	if ok, err := st.Exists(ctx, "study/scan1"); !ok || err != nil {
		t.Errorf("Exists = %v, %v", ok, err)
	}
	if ok, err := st.Exists(ctx, "study/missing"); ok || err != nil {
		t.Errorf("Exists(missing) = %v, %v", ok, err)
	}
}
