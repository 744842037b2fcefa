package slack

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendComposesBlocks(t *testing.T) {
	var received message
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &received))
	}))
	defer server.Close()

	passed := false
	err := NewSender().Send(context.Background(), server.URL,
		[]string{"Releasing *web*", "*<url|title>*"},
		[]string{"details"}, &passed)
	require.NoError(t, err)

	require.Len(t, received.Blocks, 2)
	assert.Equal(t, "section", received.Blocks[0].Type)
	assert.Equal(t, "mrkdwn", received.Blocks[0].Text.Type)
	assert.Equal(t, "Releasing *web*", received.Blocks[0].Text.Text)

	require.Len(t, received.Attachments, 1)
	assert.Equal(t, colorFailed, received.Attachments[0].Color)
	require.Len(t, received.Attachments[0].Blocks, 1)
	assert.Equal(t, "details", received.Attachments[0].Blocks[0].Text.Text)
}

func TestSendNoColorWithoutVerdict(t *testing.T) {
	var received message
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &received))
	}))
	defer server.Close()

	err := NewSender().Send(context.Background(), server.URL, []string{"hi"}, []string{"a"}, nil)
	require.NoError(t, err)
	assert.Empty(t, received.Attachments[0].Color)
}

func TestSendEmptyURLIsNoop(t *testing.T) {
	assert.NoError(t, NewSender().Send(context.Background(), "", []string{"hi"}, nil, nil))
}

func TestSendNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid_payload", http.StatusBadRequest)
	}))
	defer server.Close()

	err := NewSender().Send(context.Background(), server.URL, []string{"hi"}, nil, nil)
	assert.Error(t, err)
}
