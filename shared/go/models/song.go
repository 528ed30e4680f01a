package models

import "time"

// Song is a stored audio artifact. Data holds the raw MP3 payload and is
// omitted from JSON; clients fetch the bytes through the retrieve endpoint.
type Song struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Filename  string    `json:"filename" db:"filename"`
	Size      int64     `json:"size" db:"size"`
	Data      []byte    `json:"-" db:"data"`
	Owner     string    `json:"owner" db:"owner"`
	CreatedAt time.Time `json:"createdDate" db:"created_at"`
}

// SongSummary is the id/name projection used by account pages and search.
type SongSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Owner string `json:"owner,omitempty"`
}

// Upload carries a parsed multipart audio payload into admission control.
type Upload struct {
	Name        string
	Filename    string
	ContentType string
	Size        int64
	Data        []byte
}
