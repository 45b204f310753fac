package models

// NewArticleFields builds a fully populated payload, mostly for callers that
// construct requests in Go.
func NewArticleFields(title, content, author string) ArticleFields {
	return ArticleFields{
		Title:   &title,
		Content: &content,
		Author:  &author,
	}
}

// HasID reports whether the request names a row. Zero is not a valid id.
func (r *UpdateArticleRequest) HasID() bool {
	return r.ID != nil && *r.ID != 0
}

// Complete reports whether both the id and a non-empty title are present.
func (r *UpdateTitleRequest) Complete() bool {
	return r.ID != nil && *r.ID != 0 && r.Title != nil && *r.Title != ""
}
