package paperless

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/spendfolio/backend/src/logger"
)

func TestMain(m *testing.M) {
	logger.InitLogger("error")
	os.Exit(m.Run())
}

func TestIsDocumentURI(t *testing.T) {
	client := NewClient("http://paperless.local:8000", "")

	assert.True(t, client.IsDocumentURI("http://paperless.local:8000/documents/42/"))
	assert.True(t, client.IsDocumentURI("http://PAPERLESS.LOCAL:8000/documents/42/"))
	assert.False(t, client.IsDocumentURI("http://other.host:8000/documents/42/"))
	assert.False(t, client.IsDocumentURI("://not a uri"))
}

func TestFetchDocument(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		switch r.URL.Path {
		case "/api/documents/42/":
			json.NewEncoder(w).Encode(Document{ID: 42, Title: "receipt", Content: "some content"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret-token")

	document, err := client.FetchDocument(context.Background(), server.URL+"/documents/42/")
	require.NoError(t, err)
	require.NotNil(t, document)
	assert.Equal(t, 42, document.ID)
	assert.Equal(t, "some content", document.Content)
	assert.Equal(t, "Token secret-token", gotAuth)
}

func TestFetchDocument_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL, "")

	document, err := client.FetchDocument(context.Background(), server.URL+"/documents/99/")
	require.NoError(t, err)
	assert.Nil(t, document)
}

func TestFetchDocument_InvalidURI(t *testing.T) {
	client := NewClient("http://paperless.local:8000", "")

	_, err := client.FetchDocument(context.Background(), "http://paperless.local:8000/documents/not-a-number/")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "document id")
}

func TestGetDocument_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, "")

	_, err := client.GetDocument(context.Background(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 500")
}
