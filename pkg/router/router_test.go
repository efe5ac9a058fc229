package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/questx-lab/quest-escrow/pkg/errorx"
	"github.com/questx-lab/quest-escrow/pkg/logger"
	"github.com/questx-lab/quest-escrow/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

type echoRequest struct {
	ID    string   `json:"id"`
	Count int      `json:"count"`
	Tags  []string `json:"tags"`
}

type echoResponse struct {
	ID     string   `json:"id"`
	Count  int      `json:"count"`
	Tags   []string `json:"tags"`
	Caller string   `json:"caller"`
}

func echo(ctx context.Context, req *echoRequest) (*echoResponse, error) {
	if req.ID == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow an empty id")
	}

	return &echoResponse{
		ID:     req.ID,
		Count:  req.Count,
		Tags:   req.Tags,
		Caller: xcontext.RequestUserID(ctx),
	}, nil
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) (int64, string, map[string]any) {
	var resp struct {
		Code  int64          `json:"code"`
		Error string         `json:"error"`
		Data  map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Code, resp.Error, resp.Data
}

func newTestRouter() *Router {
	return New(xcontext.WithLogger(context.Background(), logger.NewNopLogger()))
}

func TestRouter_GET(t *testing.T) {
	r := newTestRouter()
	GET(r, "/echo", echo)

	rec := httptest.NewRecorder()
	r.Handler(nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/echo?id=q1&count=3&tags=a&tags=b", nil))

	code, _, data := decodeBody(t, rec)
	require.Equal(t, int64(0), code)
	require.Equal(t, "q1", data["id"])
	require.Equal(t, float64(3), data["count"])
	require.Equal(t, []any{"a", "b"}, data["tags"])
}

func TestRouter_POST(t *testing.T) {
	r := newTestRouter()
	POST(r, "/echo", echo)

	rec := httptest.NewRecorder()
	body := strings.NewReader(`{"id":"q2","count":5}`)
	r.Handler(nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/echo", body))

	code, _, data := decodeBody(t, rec)
	require.Equal(t, int64(0), code)
	require.Equal(t, "q2", data["id"])
}

func TestRouter_Errors(t *testing.T) {
	r := newTestRouter()
	POST(r, "/echo", echo)

	tests := []struct {
		name     string
		method   string
		body     string
		wantCode int64
	}{
		{name: "domain error", method: http.MethodPost, body: `{}`, wantCode: int64(errorx.BadRequest)},
		{name: "malformed body", method: http.MethodPost, body: `{"id":`, wantCode: int64(errorx.BadRequest)},
		{name: "wrong method", method: http.MethodGet, wantCode: int64(errorx.NotImplemented)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.Handler(nil).ServeHTTP(rec, httptest.NewRequest(tt.method, "/echo", strings.NewReader(tt.body)))

			code, msg, _ := decodeBody(t, rec)
			require.Equal(t, tt.wantCode, code)
			require.NotEmpty(t, msg)
		})
	}
}

func TestRouter_Middleware(t *testing.T) {
	r := newTestRouter()

	authorized := r.Branch()
	authorized.Before(func(ctx context.Context) (context.Context, error) {
		if xcontext.HTTPRequest(ctx).Header.Get("Authorization") == "" {
			return nil, errorx.New(errorx.Unauthenticated, "You need to authenticate before")
		}
		return xcontext.WithRequestUserID(ctx, "alice"), nil
	})

	closed := 0
	authorized.AddCloser(func(ctx context.Context) { closed++ })
	GET(authorized, "/me", echo)
	GET(r, "/public", echo)

	rec := httptest.NewRecorder()
	r.Handler(nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/me?id=x", nil))
	code, _, _ := decodeBody(t, rec)
	require.Equal(t, int64(errorx.Unauthenticated), code)
	require.Equal(t, 1, closed)

	req := httptest.NewRequest(http.MethodGet, "/me?id=x", nil)
	req.Header.Set("Authorization", "Bearer token")
	rec = httptest.NewRecorder()
	r.Handler(nil).ServeHTTP(rec, req)
	code, _, data := decodeBody(t, rec)
	require.Equal(t, int64(0), code)
	require.Equal(t, "alice", data["caller"])
	require.Equal(t, 2, closed)

	// Middlewares of a branch do not leak into the parent router.
	rec = httptest.NewRecorder()
	r.Handler(nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/public?id=x", nil))
	code, _, data = decodeBody(t, rec)
	require.Equal(t, int64(0), code)
	require.Equal(t, "", data["caller"])
	require.Equal(t, 2, closed)
}
