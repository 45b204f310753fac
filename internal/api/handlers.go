package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/romangod6/articles-api/internal/models"
	"github.com/romangod6/articles-api/internal/storage"
	"go.uber.org/zap"
)

type Handler struct {
	store  storage.Store
	logger *zap.Logger
	strict bool
}

type ErrorResponse struct {
	Message string `json:"message"`
}

type TitleUpdateResponse struct {
	Message string          `json:"message"`
	Result  *models.Article `json:"result"`
}

type DeleteResponse struct {
	Message        string          `json:"message"`
	DeletedArticle *models.Article `json:"deletedArticle"`
}

func NewHandler(store storage.Store, logger *zap.Logger, strict bool) *Handler {
	return &Handler{store: store, logger: logger, strict: strict}
}

func (h *Handler) Welcome(c *gin.Context) {
	c.String(http.StatusOK, msgWelcome)
}

func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (h *Handler) ListArticles(c *gin.Context) {
	articles, err := h.store.ListArticles(c.Request.Context())
	if err != nil {
		h.fail(c, internalError(err))
		return
	}

	if len(articles) == 0 {
		if h.strict {
			c.JSON(http.StatusOK, []*models.Article{})
			return
		}
		h.fail(c, newError(KindNotFound, msgEmptyTable))
		return
	}

	c.JSON(http.StatusOK, articles)
}

func (h *Handler) CreateArticle(c *gin.Context) {
	var req models.CreateArticleRequest
	if err := bindJSON(c, &req); err != nil {
		h.fail(c, bindError(err))
		return
	}

	// Compatible mode lets the NOT NULL columns reject missing fields.
	if h.strict && !complete(req.ArticleFields) {
		h.fail(c, newError(KindValidation, msgFieldsRequired))
		return
	}

	ctx := c.Request.Context()
	exists, err := h.store.TitleExists(ctx, req.Title)
	if err != nil {
		h.fail(c, internalError(err))
		return
	}
	if exists {
		h.fail(c, newError(KindDuplicate, msgDuplicateTitle))
		return
	}

	article, err := h.store.CreateArticle(ctx, req.ArticleFields)
	if err != nil {
		h.fail(c, h.writeError(err))
		return
	}

	c.JSON(http.StatusCreated, article)
}

func (h *Handler) UpdateArticle(c *gin.Context) {
	var req models.UpdateArticleRequest
	if err := bindJSON(c, &req); err != nil {
		h.fail(c, bindError(err))
		return
	}

	if !req.HasID() {
		h.fail(c, newError(KindValidation, msgIDRequired))
		return
	}
	if h.strict && !complete(req.ArticleFields) {
		h.fail(c, newError(KindValidation, msgFieldsRequired))
		return
	}

	article, err := h.store.UpdateArticle(c.Request.Context(), int64(*req.ID), req.ArticleFields)
	if err != nil {
		h.fail(c, h.writeError(err))
		return
	}
	if article == nil {
		h.fail(c, newError(KindNotFound, msgNotFound))
		return
	}

	c.JSON(http.StatusOK, article)
}

func (h *Handler) UpdateArticleTitle(c *gin.Context) {
	var req models.UpdateTitleRequest
	if err := bindJSON(c, &req); err != nil {
		h.fail(c, bindError(err))
		return
	}

	if !req.Complete() {
		h.fail(c, newError(KindValidation, msgIDAndTitleRequired))
		return
	}

	article, err := h.store.UpdateArticleTitle(c.Request.Context(), int64(*req.ID), *req.Title)
	if err != nil {
		h.fail(c, h.writeError(err))
		return
	}
	if article == nil {
		h.fail(c, newError(KindNotFound, msgNotFound))
		return
	}

	c.JSON(http.StatusOK, TitleUpdateResponse{
		Message: msgTitleUpdated,
		Result:  article,
	})
}

// DeleteArticle is the one route reporting a missing row as 404 in every mode.
func (h *Handler) DeleteArticle(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		h.fail(c, &Error{
			Kind:    KindValidation,
			Message: fmt.Sprintf("%sidentifiant invalide %q", msgDeleteFailed, c.Param("id")),
			Err:     err,
		})
		return
	}

	article, err := h.store.DeleteArticle(c.Request.Context(), id)
	if err != nil {
		h.fail(c, &Error{Kind: KindInternal, Message: msgDeleteFailed + err.Error(), Err: err})
		return
	}
	if article == nil {
		c.Error(newError(KindNotFound, msgNotFound))
		c.JSON(http.StatusNotFound, ErrorResponse{Message: msgNotFound})
		return
	}

	c.JSON(http.StatusOK, DeleteResponse{
		Message:        msgDeleted,
		DeletedArticle: article,
	})
}

func (h *Handler) fail(c *gin.Context, err *Error) {
	status := StatusFor(err, h.strict)
	// The request logger reports the failure itself.
	if status >= http.StatusInternalServerError && err.Err != nil {
		h.logger.Debug("article request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err.Err),
		)
	}

	c.Error(err)
	c.JSON(status, ErrorResponse{Message: err.Message})
}

// writeError turns a unique constraint violation on title into the
// duplicate error; anything else is a database failure.
func (h *Handler) writeError(err error) *Error {
	if h.store.IsUniqueViolation(err) {
		return &Error{Kind: KindDuplicate, Message: msgDuplicateTitle, Err: err}
	}
	return internalError(err)
}

// bindError classifies a decode failure. A body that is not JSON is
// malformed; a JSON value of the wrong type fails validation.
func bindError(err error) *Error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return &Error{Kind: KindValidation, Message: err.Error(), Err: err}
	}
	return malformedError(err)
}

// bindJSON decodes the body, treating an empty body as an empty object.
func bindJSON(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func complete(fields models.ArticleFields) bool {
	return fields.Title != nil && fields.Content != nil && fields.Author != nil
}
