package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexuscare/nexuscare-cli/internal/logging"
)

// fakeTokens is a mutable TokenSource standing in for the session store.
type fakeTokens struct {
	mu    sync.Mutex
	token string
}

func (f *fakeTokens) Token() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token
}

func (f *fakeTokens) set(token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = token
}

func newTestClient(t *testing.T, handler http.HandlerFunc, tokens TokenSource) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return New(server.URL, 0, tokens, logging.NewDefault())
}

func TestDo_AttachesBearerTokenAndDefaultHeaders(t *testing.T) {
	var gotAuth, gotAccept, gotRequestID string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAccept = r.Header.Get("Accept")
		gotRequestID = r.Header.Get("X-Request-ID")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}, &fakeTokens{token: "abc"})

	require.NoError(t, client.Get(context.Background(), "/me/", nil, nil))
	assert.Equal(t, "Bearer abc", gotAuth)
	assert.Equal(t, "application/json", gotAccept)
	assert.NotEmpty(t, gotRequestID)
}

func TestDo_SkipAuthOmitsAuthorization(t *testing.T) {
	var sawAuth bool
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, sawAuth = r.Header["Authorization"]
		w.WriteHeader(http.StatusNoContent)
	}, &fakeTokens{token: "abc"})

	require.NoError(t, client.Get(context.Background(), "/auth/login/", nil, &Options{SkipAuth: true}))
	assert.False(t, sawAuth, "Authorization header must be absent with SkipAuth")
}

func TestDo_NoTokenMeansNoAuthorizationHeader(t *testing.T) {
	var sawAuth bool
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, sawAuth = r.Header["Authorization"]
		w.WriteHeader(http.StatusNoContent)
	}, &fakeTokens{})

	require.NoError(t, client.Get(context.Background(), "/x", nil, nil))
	assert.False(t, sawAuth)
}

func TestDo_TokenChangesPropagateToNextCall(t *testing.T) {
	var gotAuth string
	tokens := &fakeTokens{token: "old"}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	}, tokens)

	ctx := context.Background()

	require.NoError(t, client.Get(ctx, "/x", nil, nil))
	assert.Equal(t, "Bearer old", gotAuth)

	// Login installs a fresh token: no stale credential may leak through.
	tokens.set("new")
	require.NoError(t, client.Get(ctx, "/x", nil, nil))
	assert.Equal(t, "Bearer new", gotAuth)

	// Logout clears it: the next call goes out unauthenticated.
	tokens.set("")
	require.NoError(t, client.Get(ctx, "/x", nil, nil))
	assert.Empty(t, gotAuth)
}

func TestDo_TimeoutAbortsWithStatusZero(t *testing.T) {
	started := make(chan struct{})
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-r.Context().Done() // request must be aborted, not left running
	}, &fakeTokens{})

	begin := time.Now()
	err := client.Get(context.Background(), "/slow", nil, &Options{Timeout: 50 * time.Millisecond})
	elapsed := time.Since(begin)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 0, apiErr.Status)
	assert.Equal(t, "Request timeout", apiErr.Message)
	assert.Less(t, elapsed, 2*time.Second)

	<-started
}

func TestDo_CallerCancellationIsAnAbort(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}, &fakeTokens{})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	err := client.Get(ctx, "/slow", nil, nil)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 0, apiErr.Status)
	assert.Equal(t, "Request aborted", apiErr.Message)
}

func TestDo_ErrorResponseCarriesParsedBodyAndStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"email": ["This field is required."]}`))
	}, &fakeTokens{})

	err := client.Post(context.Background(), "/auth/register/", map[string]any{}, nil, nil)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "Request failed", apiErr.Message)
	assert.Equal(t, map[string]any{"email": []any{"This field is required."}}, apiErr.Data)
}

func TestDo_ErrorResponseWithTextBodyUsesItAsMessage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream exploded"))
	}, &fakeTokens{})

	err := client.Get(context.Background(), "/x", nil, nil)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "upstream exploded", apiErr.Message)
}

func TestDo_NoContentLeavesOutUntouched(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}, &fakeTokens{})

	out := map[string]any{"sentinel": true}
	require.NoError(t, client.Delete(context.Background(), "/x", &out, nil))
	assert.Equal(t, map[string]any{"sentinel": true}, out)
}

func TestDo_JSONBodyGetsJSONContentType(t *testing.T) {
	var gotContentType string
	var gotBody map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusNoContent)
	}, &fakeTokens{})

	body := map[string]any{"symptoms": "fever"}
	require.NoError(t, client.Post(context.Background(), "/x", body, nil, nil))
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, map[string]any{"symptoms": "fever"}, gotBody)
}

func TestDo_StringBodyGoesOutAsTextPlain(t *testing.T) {
	var gotContentType, gotBody string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		raw, _ := io.ReadAll(r.Body)
		gotBody = string(raw)
		w.WriteHeader(http.StatusNoContent)
	}, &fakeTokens{})

	require.NoError(t, client.Post(context.Background(), "/x", "ping", nil, nil))
	assert.Equal(t, "text/plain", gotContentType)
	assert.Equal(t, "ping", gotBody)
}

func TestDo_NonJSONContentTypeIsParsedOpportunistically(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte(`{"ok": true}`))
	}, &fakeTokens{})

	var out struct {
		OK bool `json:"ok"`
	}
	require.NoError(t, client.Get(context.Background(), "/x", &out, nil))
	assert.True(t, out.OK)
}

func TestDo_PlainTextResponseFitsAStringOut(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("pong"))
	}, &fakeTokens{})

	var out string
	require.NoError(t, client.Get(context.Background(), "/x", &out, nil))
	assert.Equal(t, "pong", out)
}

func TestDo_QueryParamsAreEncoded(t *testing.T) {
	var gotQuery map[string][]string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.WriteHeader(http.StatusNoContent)
	}, &fakeTokens{})

	opt := &Options{Params: map[string]any{
		"status": "pending",
		"ids":    []int{3, 5},
		"filter": map[string]any{"role": "doctor"},
		"absent": nil,
	}}
	require.NoError(t, client.Get(context.Background(), "/x", nil, opt))

	assert.Equal(t, []string{"pending"}, gotQuery["status"])
	assert.Equal(t, []string{"3", "5"}, gotQuery["ids"])
	assert.Equal(t, []string{`{"role":"doctor"}`}, gotQuery["filter"])
	_, ok := gotQuery["absent"]
	assert.False(t, ok, "nil params must be omitted")
}

func TestDo_PerCallHeadersAreSent(t *testing.T) {
	var got string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("X-Custom")
		w.WriteHeader(http.StatusNoContent)
	}, &fakeTokens{})

	opt := &Options{Headers: map[string]string{"X-Custom": "yes"}}
	require.NoError(t, client.Get(context.Background(), "/x", nil, opt))
	assert.Equal(t, "yes", got)
}
