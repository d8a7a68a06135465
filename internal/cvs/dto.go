package cvs

import (
	"time"

	"cv-builder/internal/cv"
)

// SummaryResponse is a saved CV without its document payload.
type SummaryResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Template  string    `json:"template"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ListResponse is the body of GET /cvs.
type ListResponse struct {
	Items      []SummaryResponse `json:"items"`
	Count      int               `json:"count"`
	TrashCount int               `json:"trashCount"`
	Max        int               `json:"max"`
}

// TrashItemResponse is a recycle bin entry.
type TrashItemResponse struct {
	SummaryResponse
	DeletedAt *time.Time `json:"deletedAt"`
	ExpiresAt *time.Time `json:"expiresAt"`
}

// TrashResponse is the body of GET /trash.
type TrashResponse struct {
	Items         []TrashItemResponse `json:"items"`
	Count         int                 `json:"count"`
	RetentionDays int                 `json:"retentionDays"`
}

func toSummary(s cv.SavedCV) SummaryResponse {
	return SummaryResponse{
		ID:        s.ID,
		Name:      s.Name,
		Template:  s.Template,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func toSummaries(list []cv.SavedCV) []SummaryResponse {
	out := make([]SummaryResponse, 0, len(list))
	for _, s := range list {
		out = append(out, toSummary(s))
	}
	return out
}

func toTrashItems(list []cv.TrashedCV, retention time.Duration) []TrashItemResponse {
	out := make([]TrashItemResponse, 0, len(list))
	for _, t := range list {
		item := TrashItemResponse{SummaryResponse: toSummary(t.SavedCV)}
		if !t.DeletedAt.IsZero() {
			deleted := t.DeletedAt
			expires := deleted.Add(retention)
			item.DeletedAt = &deleted
			item.ExpiresAt = &expires
		}
		out = append(out, item)
	}
	return out
}
