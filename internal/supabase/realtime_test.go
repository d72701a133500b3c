package supabase_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"ai-tools-backend/internal/models"
	"ai-tools-backend/internal/supabase"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestRealtimeClient_PublishCreation(t *testing.T) {
	var body []byte
	var path, apikey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		apikey = r.Header.Get("apikey")
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	rt := supabase.NewRealtimeClient(srv.URL, "service-key", srv.Client())
	c := &models.Creation{ID: uuid.New(), Type: models.OperationImage, Content: "https://img", Prompt: "fox"}

	require.NoError(t, rt.PublishCreation(context.Background(), c))
	assert.Equal(t, "/realtime/v1/api/broadcast", path)
	assert.Equal(t, "service-key", apikey)
	assert.Equal(t, "community", gjson.GetBytes(body, "messages.0.topic").String())
	assert.Equal(t, "creation_created", gjson.GetBytes(body, "messages.0.event").String())
	assert.Equal(t, c.ID.String(), gjson.GetBytes(body, "messages.0.payload.creation_id").String())
}

func TestRealtimeClient_PublishFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	rt := supabase.NewRealtimeClient(srv.URL, "bad", srv.Client())
	err := rt.PublishLike(context.Background(), &models.Creation{ID: uuid.New(), Likes: []string{"a"}}, true)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}
