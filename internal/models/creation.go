package models

import (
	"time"

	"github.com/google/uuid"
)

type Creation struct {
	ID        uuid.UUID
	UserID    string
	Prompt    string
	Content   string
	Type      OperationType
	Publish   bool
	Likes     []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (c *Creation) LikedBy(userID string) bool {
	for _, id := range c.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

// ToggleLike flips userID's membership in Likes and reports whether it is now liked.
func (c *Creation) ToggleLike(userID string) bool {
	if c.LikedBy(userID) {
		likes := make([]string, 0, len(c.Likes))
		for _, id := range c.Likes {
			if id != userID {
				likes = append(likes, id)
			}
		}
		c.Likes = likes
		return false
	}
	c.Likes = append(c.Likes, userID)
	return true
}
