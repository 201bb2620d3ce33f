package view

import (
	"github.com/ShahHussain182/ecommerce-admin-gateway/internal/catalog"
	"github.com/ShahHussain182/ecommerce-admin-gateway/internal/preview"
)

type PreviewItem struct {
	ID          string `json:"id"`
	DisplayURL  string `json:"displayUrl"`
	Status      string `json:"status"`
	IsExisting  bool   `json:"isExisting"`
	DeletionURL string `json:"deletionUrl,omitempty"`
}

// ImageGrid is what the dashboard renders for one product's image
// manager.
type ImageGrid struct {
	Items            []PreviewItem `json:"items"`
	ProcessingStatus string        `json:"processingStatus"`
	CanAddMore       bool          `json:"canAddMore"`
	CanDelete        bool          `json:"canDelete"`
	MaxImages        int           `json:"maxImages"`
}

func NewImageGrid(items []preview.Item, status catalog.ProcessingStatus) ImageGrid {
	grid := ImageGrid{
		Items:            make([]PreviewItem, 0, len(items)),
		ProcessingStatus: string(status),
		CanAddMore:       len(items) < preview.MaxImages,
		CanDelete:        len(items) > 1,
		MaxImages:        preview.MaxImages,
	}
	for _, it := range items {
		grid.Items = append(grid.Items, PreviewItem{
			ID:          it.ID,
			DisplayURL:  it.DisplayURL,
			Status:      string(it.Status),
			IsExisting:  it.IsExisting,
			DeletionURL: it.DeletionURL,
		})
	}
	return grid
}
