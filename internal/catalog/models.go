package catalog

import (
	"io"
	"time"
)

type ProcessingStatus string

const (
	StatusPending   ProcessingStatus = "pending"
	StatusCompleted ProcessingStatus = "completed"
	StatusFailed    ProcessingStatus = "failed"
)

// Done reports whether backend image processing has reached a final
// state. "failed" counts as done: the product record is authoritative
// either way and dependent work may proceed.
func (s ProcessingStatus) Done() bool {
	return s != "" && s != StatusPending
}

// Rendition holds the derived image URLs the product service generates
// for one uploaded original. Entries may be empty while processing is
// still running.
type Rendition struct {
	Original  string `json:"original"`
	Medium    string `json:"medium"`
	Thumbnail string `json:"thumbnail"`
}

// Product mirrors the product service representation. ImageRenditions
// is index-aligned with ImageURLs; the service is the only writer of
// both, and of ImageProcessingStatus.
type Product struct {
	ID                    string           `json:"id"`
	Name                  string           `json:"name"`
	Description           string           `json:"description"`
	Category              string           `json:"category"`
	PriceCents            int64            `json:"priceCents"`
	Currency              string           `json:"currency"`
	IsFeatured            bool             `json:"isFeatured"`
	ImageURLs             []string         `json:"imageUrls"`
	ImageRenditions       []Rendition      `json:"imageRenditions"`
	ImageProcessingStatus ProcessingStatus `json:"imageProcessingStatus"`
	CreatedAt             time.Time        `json:"createdAt"`
	UpdatedAt             time.Time        `json:"updatedAt"`
}

type ListQuery struct {
	Search   string
	Category string
	Sort     string
	Page     int
	PerPage  int
}

type ListPage struct {
	Products   []Product `json:"products"`
	Page       int       `json:"page"`
	TotalPages int       `json:"totalPages"`
	TotalCount int       `json:"totalCount"`
}

// Upload is one binary file in an upload batch. Reader is consumed by
// the client; the caller keeps ownership of the underlying resource.
type Upload struct {
	Name        string
	ContentType string
	Reader      io.Reader
}

type UpdateInput struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	PriceCents  int64    `json:"priceCents"`
	Currency    string   `json:"currency"`
	IsFeatured  bool     `json:"isFeatured"`
	ImageURLs   []string `json:"imageUrls"`
}
