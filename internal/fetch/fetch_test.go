package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFetchSendsUserAgent(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte("<html>ok</html>"))
	}))
	defer server.Close()

	body, err := New(Options{}).Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	require.Equal(t, "<html>ok</html>", string(body))
	require.Equal(t, DefaultUserAgent, gotUA)
}

func TestFetchNonSuccessStatus(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	_, err := New(Options{}).Fetch(context.Background(), server.URL+"/jobs")

	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	require.Equal(t, http.StatusForbidden, fetchErr.StatusCode)
	require.Equal(t, server.URL+"/jobs", fetchErr.URL)
	require.Equal(t, 1, calls)
}

func TestFetchTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := New(Options{}).Fetch(context.Background(), url)

	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	require.Equal(t, 0, fetchErr.StatusCode)
	require.Error(t, fetchErr.Unwrap())
}

func TestFetchTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	_, err := New(Options{Timeout: 20 * time.Millisecond}).Fetch(context.Background(), server.URL)

	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	require.Equal(t, 0, fetchErr.StatusCode)
}
