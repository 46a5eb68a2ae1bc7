package book

import (
	"fmt"

	"github.com/goccy/go-json"
)

// Record is one book as returned by the upstream catalog.
type Record struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Authors       []string `json:"authors,omitempty"`
	PublishedDate string   `json:"publishedDate,omitempty"`
	Description   string   `json:"description,omitempty"`
}

// Page is one page of search results plus the upstream's total count.
type Page struct {
	Items      []Record `json:"items"`
	TotalCount int      `json:"totalCount"`
}

// Empty reports whether the page has no items.
func (p Page) Empty() bool {
	return len(p.Items) == 0
}

// volumesResponse matches the Google Books volumes list payload.
type volumesResponse struct {
	TotalItems int `json:"totalItems"`
	Items      []struct {
		ID         string `json:"id"`
		VolumeInfo struct {
			Title         string   `json:"title"`
			Authors       []string `json:"authors"`
			PublishedDate string   `json:"publishedDate"`
			Description   string   `json:"description"`
		} `json:"volumeInfo"`
	} `json:"items"`
}

// DecodePage converts a volumes payload into a Page. Missing items yield an
// empty page.
func DecodePage(data []byte) (Page, error) {
	var res volumesResponse
	if err := json.Unmarshal(data, &res); err != nil {
		return Page{}, fmt.Errorf("decode volumes: %w", err)
	}

	page := Page{
		Items:      make([]Record, 0, len(res.Items)),
		TotalCount: res.TotalItems,
	}
	for _, it := range res.Items {
		page.Items = append(page.Items, Record{
			ID:            it.ID,
			Title:         it.VolumeInfo.Title,
			Authors:       it.VolumeInfo.Authors,
			PublishedDate: it.VolumeInfo.PublishedDate,
			Description:   it.VolumeInfo.Description,
		})
	}
	return page, nil
}
