package catalog

import "strings"

// UploadedImage is an image as reported by the upload widget.
type UploadedImage struct {
	ID           string `json:"id,omitempty"`
	URL          string `json:"url"`
	AltText      string `json:"alt_text,omitempty"`
	DisplayOrder *int   `json:"display_order,omitempty"`
}

// ImagePayload is the wire shape the create/update endpoints persist.
type ImagePayload struct {
	ID           string  `json:"id,omitempty"`
	ImageURL     string  `json:"image_url"`
	AltText      *string `json:"alt_text,omitempty"`
	DisplayOrder int     `json:"display_order"`
}

// MapProductImagesForAPI converts uploaded images to payloads, keeping the
// input order. display_order defaults to the position among kept images.
// Blank URLs are dropped. Existing ids survive only when editing.
func MapProductImagesForAPI(images []UploadedImage, isEdit bool) []ImagePayload {
	out := make([]ImagePayload, 0, len(images))
	for _, img := range images {
		url := strings.TrimSpace(img.URL)
		if url == "" {
			continue
		}
		p := ImagePayload{
			ImageURL:     url,
			AltText:      optional(strings.TrimSpace(img.AltText)),
			DisplayOrder: len(out),
		}
		if img.DisplayOrder != nil {
			p.DisplayOrder = *img.DisplayOrder
		}
		if isEdit {
			p.ID = img.ID
		}
		out = append(out, p)
	}
	return out
}

// Thumbnail returns the URL with the lowest display_order, or "".
func Thumbnail(images []ImagePayload) string {
	best := -1
	for i, img := range images {
		if best < 0 || img.DisplayOrder < images[best].DisplayOrder {
			best = i
		}
	}
	if best < 0 {
		return ""
	}
	return images[best].ImageURL
}
