package journal

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"sentidash/internal/predict"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T, max int) *Store {
	t.Helper()
	s, err := NewStore(max)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestRecordAndListStatuses(t *testing.T) {
	s := newStore(t, 0)
	ctx := context.Background()
	start := time.Now()

	require.NoError(t, s.Record(ctx, predict.Trace{TraceID: "t1", Target: "imdb", Path: "/predict-all-imdb", Text: "good", StartedAt: start, Raw: []byte(`{"logreg":"pos"}`), Elapsed: 12 * time.Millisecond}))
	require.NoError(t, s.Record(ctx, predict.Trace{TraceID: "t2", Target: "all", StartedAt: start, Missing: []string{"yelp.bert"}}))
	require.NoError(t, s.Record(ctx, predict.Trace{TraceID: "t3", Target: "imdb", StartedAt: start, Err: &predict.DispatchFailure{Kind: predict.FailureStatus, StatusCode: 502, Err: errors.New("bad gateway")}}))

	all, err := s.List(ctx, Query{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "t3", all[0].TraceID, "newest first")
	assert.Equal(t, StatusFailed, all[0].Status)
	assert.Equal(t, "status", all[0].ErrorKind)
	assert.Equal(t, 502, all[0].StatusCode)
	assert.Equal(t, StatusPartial, all[1].Status)
	assert.Equal(t, []string{"yelp.bert"}, all[1].Missing)
	assert.Equal(t, StatusOK, all[2].Status)
	assert.Equal(t, int64(12), all[2].ElapsedMS)
	assert.Equal(t, `{"logreg":"pos"}`, all[2].RawBody)

	imdb, err := s.List(ctx, Query{Target: "IMDB"})
	require.NoError(t, err)
	assert.Len(t, imdb, 2)

	failed, err := s.List(ctx, Query{Status: StatusFailed})
	require.NoError(t, err)
	assert.Len(t, failed, 1)
}

func TestRecordPrunesOldest(t *testing.T) {
	s := newStore(t, 3)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		s.AfterDispatch(ctx, predict.Trace{TraceID: fmt.Sprintf("t%d", i), Target: "yelp", StartedAt: time.Now()})
	}
	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	entries, err := s.List(ctx, Query{Limit: 10})
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "t4", entries[0].TraceID)
	assert.Equal(t, "t2", entries[2].TraceID)
}

func TestAfterDispatchIgnoresCanceledContext(t *testing.T) {
	s := newStore(t, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.AfterDispatch(ctx, predict.Trace{TraceID: "late", Target: "amazon", StartedAt: time.Now()})
	n, err := s.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
