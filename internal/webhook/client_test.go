package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifySubmissionPostsJSON(t *testing.T) {
	var got SubmissionNotice
	var secret, path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		secret = r.Header.Get(SecretHeader)
		path = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "rahasia", false, nil)
	err := c.NotifySubmission(context.Background(), SubmissionNotice{
		DefinitionID: "abc",
		Word:         "foo",
		Author:       "budi",
		SubmittedAt:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	assert.Equal(t, "rahasia", secret)
	assert.Equal(t, "/submissions", path)
	assert.Equal(t, "foo", got.Word)
	assert.Equal(t, "budi", got.Author)
}

func TestSendDigestReportsFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/digest", r.URL.Path)
		http.Error(w, "down for maintenance", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	err := NewClient(srv.URL, "", false, nil).SendDigest(context.Background(), Digest{Pending: 3})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
	assert.Contains(t, err.Error(), "down for maintenance")
}

func TestStubModeMakesNoCalls(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	require.NoError(t, NewClient(srv.URL, "", true, nil).SendDigest(context.Background(), Digest{Pending: 1}))
	require.NoError(t, NewClient("", "", false, nil).NotifySubmission(context.Background(), SubmissionNotice{}))
	assert.False(t, called)
}
