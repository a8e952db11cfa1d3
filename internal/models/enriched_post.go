package models

// CategorySummary is the slice of a category embedded in post views.
type CategorySummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
	Icon string `json:"icon"`
}

// EnrichedPost is a post joined with its category, author profile and author stats.
// Author is never nil and AuthorStats always holds exactly one element.
type EnrichedPost struct {
	Post
	Category    *CategorySummary `json:"category,omitempty"`
	Author      *UserProfile     `json:"author"`
	AuthorStats []UserStats      `json:"author_stats"`
}

// SummarizeCategory returns the embedded summary for c, or nil.
func SummarizeCategory(c *Category) *CategorySummary {
	if c == nil {
		return nil
	}
	return &CategorySummary{
		ID:   c.ID.String(),
		Name: c.Name,
		Slug: c.Slug,
		Icon: c.Icon,
	}
}
