// Package client is a small Go client for the articles API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/romangod6/articles-api/internal/models"
)

type Client struct {
	http.Client
	Addr string
}

// APIError is a non-2xx answer from the service.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("articles api: %d: %s", e.StatusCode, e.Message)
}

type TitleUpdate struct {
	Message string          `json:"message"`
	Result  *models.Article `json:"result"`
}

type Deletion struct {
	Message        string          `json:"message"`
	DeletedArticle *models.Article `json:"deletedArticle"`
}

func (c *Client) Welcome(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Addr+"/", nil)
	if err != nil {
		return "", err
	}

	resp, err := c.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return "", err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	return string(body), nil
}

func (c *Client) ListArticles(ctx context.Context) ([]*models.Article, error) {
	var articles []*models.Article
	err := c.do(ctx, http.MethodGet, "/articles", nil, &articles)
	return articles, err
}

func (c *Client) CreateArticle(ctx context.Context, fields models.ArticleFields) (*models.Article, error) {
	article := &models.Article{}
	if err := c.do(ctx, http.MethodPost, "/articles", models.CreateArticleRequest{ArticleFields: fields}, article); err != nil {
		return nil, err
	}
	return article, nil
}

func (c *Client) UpdateArticle(ctx context.Context, id int64, fields models.ArticleFields) (*models.Article, error) {
	article := &models.Article{}
	rowID := models.ID(id)
	body := models.UpdateArticleRequest{ID: &rowID, ArticleFields: fields}
	if err := c.do(ctx, http.MethodPut, "/articles/edit", body, article); err != nil {
		return nil, err
	}
	return article, nil
}

func (c *Client) UpdateArticleTitle(ctx context.Context, id int64, title string) (*TitleUpdate, error) {
	update := &TitleUpdate{}
	rowID := models.ID(id)
	body := models.UpdateTitleRequest{ID: &rowID, Title: &title}
	if err := c.do(ctx, http.MethodPatch, "/articles/edit/title", body, update); err != nil {
		return nil, err
	}
	return update, nil
}

func (c *Client) DeleteArticle(ctx context.Context, id int64) (*Deletion, error) {
	deletion := &Deletion{}
	if err := c.do(ctx, http.MethodDelete, "/articles/"+strconv.FormatInt(id, 10), nil, deletion); err != nil {
		return nil, err
	}
	return deletion, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.Addr+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

// checkStatus turns a non-2xx response into an *APIError carrying the
// service's message when the body has one.
func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		return nil
	}

	apiErr := &APIError{StatusCode: resp.StatusCode}
	var msg struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&msg); err == nil {
		apiErr.Message = msg.Message
	}
	return apiErr
}
