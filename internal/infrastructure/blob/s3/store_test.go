package s3

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Activos-api/pkg/config"
)

type fakeObjects struct {
	input *s3.PutObjectInput
	body  string
	err   error
}

func (f *fakeObjects) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.input = in
	b, _ := io.ReadAll(in.Body)
	f.body = string(b)
	return &s3.PutObjectOutput{}, nil
}

func TestStore_Put(t *testing.T) {
	fake := &fakeObjects{}
	s := &Store{client: fake, bucket: "ledger-archive"}

	err := s.Put(context.Background(), "ledger/2026/06/01/x.jsonl", strings.NewReader("{}\n"), "application/x-ndjson")
	require.NoError(t, err)
	assert.Equal(t, "ledger-archive", aws.ToString(fake.input.Bucket))
	assert.Equal(t, "ledger/2026/06/01/x.jsonl", aws.ToString(fake.input.Key))
	assert.Equal(t, "application/x-ndjson", aws.ToString(fake.input.ContentType))
	assert.Equal(t, "{}\n", fake.body)
}

func TestStore_PutPropagaError(t *testing.T) {
	s := &Store{client: &fakeObjects{err: errors.New("access denied")}, bucket: "b"}
	err := s.Put(context.Background(), "k", strings.NewReader(""), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
}

func TestNew_SinBucket(t *testing.T) {
	_, err := New(context.Background(), config.ArchiveConfig{})
	assert.Error(t, err)
}
