package models_test

import (
	"testing"

	"ai-tools-backend/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestCreation_ToggleLikeTwiceRestoresMembership(t *testing.T) {
	c := &models.Creation{Likes: []string{"user-a", "user-b"}}

	liked := c.ToggleLike("user-c")
	assert.True(t, liked)
	assert.Equal(t, []string{"user-a", "user-b", "user-c"}, c.Likes)

	liked = c.ToggleLike("user-c")
	assert.False(t, liked)
	assert.Equal(t, []string{"user-a", "user-b"}, c.Likes)
}

func TestCreation_ToggleLikeRemovesExisting(t *testing.T) {
	c := &models.Creation{Likes: []string{"user-a", "user-b"}}

	assert.False(t, c.ToggleLike("user-a"))
	assert.Equal(t, []string{"user-b"}, c.Likes)
	assert.True(t, c.ToggleLike("user-a"))
	assert.ElementsMatch(t, []string{"user-a", "user-b"}, c.Likes)
}

func TestParseOperationType(t *testing.T) {
	op, ok := models.ParseOperationType("object-removal")
	assert.True(t, ok)
	assert.Equal(t, models.OperationObjectRemoval, op)

	_, ok = models.ParseOperationType("video")
	assert.False(t, ok)
	assert.Len(t, models.OperationTypes(), 6)
}

func TestNewCreationResponse_NilLikes(t *testing.T) {
	resp := models.NewCreationResponse(&models.Creation{Type: models.OperationImage})
	assert.NotNil(t, resp.Likes)
	assert.Equal(t, "image", resp.Type)
}
