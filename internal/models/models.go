package models

// Article is the single record served by the API.
type Article struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Author  string `json:"author"`
}

// ArticleFields carries the writable columns of an article as sent by a client.
// A nil field is written as NULL and rejected by the NOT NULL columns.
type ArticleFields struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
	Author  *string `json:"author"`
}

type CreateArticleRequest struct {
	ArticleFields
}

type UpdateArticleRequest struct {
	ID *ID `json:"id"`
	ArticleFields
}

type UpdateTitleRequest struct {
	ID    *ID     `json:"id"`
	Title *string `json:"title"`
}
