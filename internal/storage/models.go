package storage

import (
	"time"
)

// ViewedArticle records the first time an article's highlights were opened.
type ViewedArticle struct {
	ID          int       `json:"id"`
	FirstViewed time.Time `json:"first_viewed"`
}

// Session is the view state restored on the next start.
type Session struct {
	Query   string    `json:"query"`
	SavedAt time.Time `json:"saved_at"`
}
