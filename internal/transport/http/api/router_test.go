package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"sentidash/internal/platform"
	"sentidash/internal/predict"
	"sentidash/internal/result"
	"sentidash/internal/session"
	"sentidash/internal/store/journal"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDispatcher struct {
	mu    sync.Mutex
	calls []string
	fail  map[string]error
}

func (d *stubDispatcher) Dispatch(_ context.Context, text string, mode predict.RequestMode) (predict.RawResponse, error) {
	d.mu.Lock()
	d.calls = append(d.calls, mode.Target()+":"+text)
	d.mu.Unlock()
	if err := d.fail[mode.Target()]; err != nil {
		return nil, err
	}
	label := result.PlatformResult{LogisticRegression: "pos", NaiveBayes: "pos", Transformer: "neg", Combined: "pos"}
	switch mode.(type) {
	case predict.SinglePlatform:
		return predict.SingleResponse{Result: label}, nil
	case predict.AllPlatforms:
		out := make(map[platform.ID]result.PlatformResult)
		for _, id := range platform.All() {
			out[id] = label
		}
		return predict.BundleResponse{Results: out}, nil
	default:
		return predict.GlobalResponse{Combined: "neg"}, nil
	}
}

type stubJournal struct {
	query journal.Query
	items []journal.Entry
}

func (j *stubJournal) List(_ context.Context, q journal.Query) ([]journal.Entry, error) {
	j.query = q
	return j.items, nil
}

func newTestEngine(t *testing.T, d session.Dispatcher, j DispatchLog) (*gin.Engine, *session.Session) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	s := session.New(nil, d)
	engine := gin.New()
	NewRouter(s, j).Register(engine.Group("/api"))
	return engine, s
}

func do(engine http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestSetAndGetInput(t *testing.T) {
	engine, s := newTestEngine(t, &stubDispatcher{}, nil)

	rec := do(engine, http.MethodPut, "/api/inputs/yelp", `{"text":"great tacos"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "great tacos", s.Inputs().Text(platform.Key("yelp")))

	rec = do(engine, http.MethodGet, "/api/inputs/yelp", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"key":"yelp","text":"great tacos"}`, rec.Body.String())

	rec = do(engine, http.MethodGet, "/api/inputs", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var all map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &all))
	assert.Len(t, all, 5)
	assert.Equal(t, "great tacos", all["yelp"])
	assert.Equal(t, "", all["all"])
}

func TestSetInputRejectsBadRequests(t *testing.T) {
	engine, _ := newTestEngine(t, &stubDispatcher{}, nil)

	assert.Equal(t, http.StatusNotFound, do(engine, http.MethodPut, "/api/inputs/twitter", `{"text":"x"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(engine, http.MethodPut, "/api/inputs/imdb", `{}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(engine, http.MethodPut, "/api/inputs/imdb", `not json`).Code)
}

func TestPredictUsesBufferWhenTextOmitted(t *testing.T) {
	d := &stubDispatcher{}
	engine, s := newTestEngine(t, d, nil)
	require.NoError(t, s.Inputs().SetText(platform.IMDB.Key(), "buffered review"))

	rec := do(engine, http.MethodPost, "/api/predict/imdb", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, []string{"imdb:buffered review"}, d.calls)

	var view struct {
		State struct {
			Platforms map[string]*result.PlatformResult `json:"platforms"`
		} `json:"state"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	require.NotNil(t, view.State.Platforms["imdb"])
	assert.Equal(t, "neg", view.State.Platforms["imdb"].Transformer)
	assert.Nil(t, view.State.Platforms["yelp"])
	assert.Equal(t, "buffered review", s.Inputs().Text(platform.IMDB.Key()), "buffer is not cleared")
}

func TestPredictExplicitTextAndAllTarget(t *testing.T) {
	d := &stubDispatcher{}
	engine, s := newTestEngine(t, d, nil)
	require.NoError(t, s.Inputs().SetText(platform.KeyAll, "ignored"))

	rec := do(engine, http.MethodPost, "/api/predict/all", `{"text":""}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"all:"}, d.calls, "empty text is submittable")

	for _, id := range platform.All() {
		got, ok := s.State().Platform(id)
		require.True(t, ok)
		assert.Equal(t, "", got.Combined)
	}
}

func TestPredictUnknownTarget(t *testing.T) {
	engine, _ := newTestEngine(t, &stubDispatcher{}, nil)
	assert.Equal(t, http.StatusNotFound, do(engine, http.MethodPost, "/api/predict/twitter", "").Code)
}

func TestPredictFailureReturnsBadGateway(t *testing.T) {
	d := &stubDispatcher{fail: map[string]error{
		"amazon": &predict.DispatchFailure{Kind: predict.FailureStatus, Target: "amazon", StatusCode: 500, Err: errors.New("500 Internal Server Error")},
	}}
	engine, s := newTestEngine(t, d, nil)

	rec := do(engine, http.MethodPost, "/api/predict/amazon", `{"text":"meh"}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error"`)
	_, ok := s.State().Platform(platform.Amazon)
	assert.False(t, ok)
	assert.Contains(t, s.Errors(), "amazon")
}

func TestPredictAsync(t *testing.T) {
	d := &stubDispatcher{}
	engine, s := newTestEngine(t, d, nil)

	rec := do(engine, http.MethodPost, "/api/predict/global", `{"text":"x","async":true}`)
	require.Equal(t, http.StatusAccepted, rec.Code)
	s.Wait()

	label, ok := s.State().GlobalCombined()
	require.True(t, ok)
	assert.Equal(t, "neg", label)
}

func TestPredictEach(t *testing.T) {
	d := &stubDispatcher{}
	engine, s := newTestEngine(t, d, nil)

	rec := do(engine, http.MethodPost, "/api/predict-each", "")
	require.Equal(t, http.StatusOK, rec.Code)
	for _, id := range platform.All() {
		_, ok := s.State().Platform(id)
		assert.True(t, ok, id)
	}
	assert.Len(t, d.calls, 4)
}

func TestDispatchesQuery(t *testing.T) {
	j := &stubJournal{items: []journal.Entry{{ID: 1, Target: "yelp", Status: "ok"}}}
	engine, _ := newTestEngine(t, &stubDispatcher{}, j)

	rec := do(engine, http.MethodGet, "/api/dispatches?target=yelp&status=ok&limit=9999&offset=2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, journal.Query{Target: "yelp", Status: "ok", Limit: 500, Offset: 2}, j.query)
	assert.Contains(t, rec.Body.String(), `"trace_id"`)
}

func TestDispatchesWithoutJournal(t *testing.T) {
	engine, _ := newTestEngine(t, &stubDispatcher{}, nil)
	assert.Equal(t, http.StatusServiceUnavailable, do(engine, http.MethodGet, "/api/dispatches", "").Code)
}

func TestServerHealthz(t *testing.T) {
	srv, err := NewServer(ServerConfig{Session: session.New(nil, &stubDispatcher{})})
	require.NoError(t, err)
	assert.Equal(t, ":8088", srv.Addr())

	rec := do(srv.Handler(), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	_, err = NewServer(ServerConfig{})
	assert.Error(t, err)
}
