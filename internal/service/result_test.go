package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wholesomegoods/callback-relay/internal/core"
	"github.com/wholesomegoods/callback-relay/internal/data"
	"github.com/wholesomegoods/callback-relay/internal/domain/model"
	apperrors "github.com/wholesomegoods/callback-relay/internal/errors"
)

func newTestService(t *testing.T) *ResultService {
	t.Helper()
	return NewResultService(ResultServiceOptions{
		Store: data.NewMemoryStore(data.MemoryStoreOptions{}),
	})
}

func TestResultServiceStoreAndFetch(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	rec, err := svc.Store(ctx, "job_1700000000_abcd1234", json.RawMessage(`"<p>hello</p>"`))
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, `"<p>hello</p>"`, string(rec.Result))

	fetched, err := svc.Fetch(ctx, "job_1700000000_abcd1234")
	require.NoError(t, err)
	require.NotNil(t, fetched)
	assert.Equal(t, `"<p>hello</p>"`, string(fetched.Result))
}

func TestResultServiceMissingJobID(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Store(ctx, "", json.RawMessage(`"x"`))
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))

	_, err = svc.Fetch(ctx, "  ")
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestResultServiceReservedJobID(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Fetch(context.Background(), "result")
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestResultServiceNormalizesPayloads(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	rec, err := svc.Store(ctx, "job_absent_result", nil)
	require.NoError(t, err)
	assert.Equal(t, `null`, string(rec.Result))

	rec, err = svc.Store(ctx, "job_raw_text", json.RawMessage(`plain text payload`))
	require.NoError(t, err)
	assert.Equal(t, `"plain text payload"`, string(rec.Result))
}

func TestResultServiceFetchAbsent(t *testing.T) {
	svc := newTestService(t)

	rec, err := svc.Fetch(context.Background(), "job_never_submitted")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestResultServiceLastWriteWins(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Store(ctx, "job_lww", json.RawMessage(`"first"`))
	require.NoError(t, err)
	_, err = svc.Store(ctx, "job_lww", json.RawMessage(`"second"`))
	require.NoError(t, err)

	rec, err := svc.Fetch(ctx, "job_lww")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, `"second"`, string(rec.Result))
}

// failingStore injects backend failures for error-path coverage.
type failingStore struct {
	err error
}

func (f *failingStore) Put(context.Context, string, json.RawMessage) error { return f.err }
func (f *failingStore) Get(context.Context, string) (*model.JobResult, error) {
	return nil, f.err
}
func (f *failingStore) Delete(context.Context, string) (bool, error) { return false, f.err }
func (f *failingStore) Health(context.Context) error                 { return f.err }

var _ core.ResultStore = (*failingStore)(nil)

func TestResultServiceWrapsStoreErrors(t *testing.T) {
	backendErr := errors.New("backend unavailable")
	svc := NewResultService(ResultServiceOptions{Store: &failingStore{err: backendErr}})
	ctx := context.Background()

	_, err := svc.Store(ctx, "job_x", json.RawMessage(`1`))
	require.ErrorIs(t, err, backendErr)
	assert.False(t, apperrors.IsValidation(err))

	_, err = svc.Fetch(ctx, "job_x")
	require.ErrorIs(t, err, backendErr)
}
