package shortcut

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchStory(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/stories/42", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("Shortcut-Token"))
		fmt.Fprint(w, `{"id": 42, "name": "Fix login", "workflow_state_id": 500086341}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret", "acme")

	story := client.FetchStory(context.Background(), 42)
	require.NotNil(t, story)
	assert.Equal(t, int64(42), story.ID)
	assert.Equal(t, "Fix login", story.Name)
	assert.Equal(t, int64(500086341), story.WorkflowStateID)
}

func TestFetchStoryNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret", "acme")
	assert.Nil(t, client.FetchStory(context.Background(), 42))
}

func TestFetchStoryTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused

	client := NewClient(server.URL, "secret", "acme")
	assert.Nil(t, client.FetchStory(context.Background(), 42))
}

func TestStoryWebURL(t *testing.T) {
	client := NewClient("http://unused", "secret", "acme")
	assert.Equal(t, "https://app.shortcut.com/acme/story/42", client.StoryWebURL(42))
}
