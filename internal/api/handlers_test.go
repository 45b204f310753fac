package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/go-cmp/cmp"
	"github.com/romangod6/articles-api/internal/models"
	"github.com/romangod6/articles-api/internal/storage"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testAPI struct {
	t      *testing.T
	router http.Handler
	store  *storage.SQLiteStore
}

func newTestAPI(t *testing.T, strict bool, opts storage.Options) *testAPI {
	t.Helper()

	store, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "api.db"), opts)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	if err := store.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	server := NewServer(Options{StrictStatus: strict}, store, zap.NewNop(), nil)
	return &testAPI{t: t, router: server.Handler(), store: store}
}

func (a *testAPI) do(method, path, body string) *httptest.ResponseRecorder {
	a.t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testAPI) create(title, content, author string) *models.Article {
	a.t.Helper()

	payload, _ := json.Marshal(map[string]string{"title": title, "content": content, "author": author})
	w := a.do(http.MethodPost, "/articles", string(payload))
	if w.Code != http.StatusCreated {
		a.t.Fatalf("create %q: status %d, body %s", title, w.Code, w.Body.String())
	}
	return decode[models.Article](a.t, w)
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) *T {
	t.Helper()

	out := new(T)
	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("decoding %s: %v", w.Body.String(), err)
	}
	return out
}

func expectMessage(t *testing.T, w *httptest.ResponseRecorder, status int, message string) {
	t.Helper()

	if w.Code != status {
		t.Fatalf("status = %d, want %d (body %s)", w.Code, status, w.Body.String())
	}
	got := decode[ErrorResponse](t, w)
	if got.Message != message {
		t.Errorf("message = %q, want %q", got.Message, message)
	}
}

func TestWelcome(t *testing.T) {
	a := newTestAPI(t, false, storage.Options{})

	w := a.do(http.MethodGet, "/", "")
	if w.Code != http.StatusOK || w.Body.String() != msgWelcome {
		t.Errorf("GET / = %d %q", w.Code, w.Body.String())
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID header")
	}
}

func TestHealth(t *testing.T) {
	a := newTestAPI(t, false, storage.Options{})

	w := a.do(http.MethodGet, "/health", "")
	if w.Code != http.StatusOK {
		t.Errorf("GET /health = %d", w.Code)
	}

	a.store.Close()
	w = a.do(http.MethodGet, "/health", "")
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("GET /health on closed store = %d", w.Code)
	}
}

func TestListArticlesEmptyTable(t *testing.T) {
	a := newTestAPI(t, false, storage.Options{})
	expectMessage(t, a.do(http.MethodGet, "/articles", ""), http.StatusInternalServerError, msgEmptyTable)

	strict := newTestAPI(t, true, storage.Options{})
	w := strict.do(http.MethodGet, "/articles", "")
	if w.Code != http.StatusOK || strings.TrimSpace(w.Body.String()) != "[]" {
		t.Errorf("strict GET /articles = %d %s", w.Code, w.Body.String())
	}
}

func TestCreateAndListArticles(t *testing.T) {
	a := newTestAPI(t, false, storage.Options{})

	created := a.create("Hello", "World", "Ada")
	if created.ID <= 0 {
		t.Fatalf("expected generated id, got %d", created.ID)
	}

	w := a.do(http.MethodGet, "/articles", "")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /articles = %d %s", w.Code, w.Body.String())
	}
	got := decode[[]models.Article](t, w)
	want := []models.Article{*created}
	if diff := cmp.Diff(want, *got); diff != "" {
		t.Errorf("list mismatch (-want +got):\n%s", diff)
	}
}

func TestCreateArticleDuplicateTitle(t *testing.T) {
	a := newTestAPI(t, false, storage.Options{})
	a.create("Hello", "World", "Ada")

	body := `{"title":"Hello","content":"Again","author":"Bob"}`
	expectMessage(t, a.do(http.MethodPost, "/articles", body), http.StatusInternalServerError, msgDuplicateTitle)

	articles := decode[[]models.Article](t, a.do(http.MethodGet, "/articles", ""))
	if len(*articles) != 1 {
		t.Errorf("duplicate was inserted: %+v", *articles)
	}

	strict := newTestAPI(t, true, storage.Options{})
	strict.create("Hello", "World", "Ada")
	expectMessage(t, strict.do(http.MethodPost, "/articles", body), http.StatusConflict, msgDuplicateTitle)
}

func TestCreateArticleMissingFields(t *testing.T) {
	a := newTestAPI(t, false, storage.Options{})

	w := a.do(http.MethodPost, "/articles", `{"title":"Hello"}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500 (body %s)", w.Code, w.Body.String())
	}
	if msg := decode[ErrorResponse](t, w).Message; !strings.Contains(msg, "NOT NULL") {
		t.Errorf("expected database NOT NULL error, got %q", msg)
	}

	w = a.do(http.MethodPost, "/articles", "")
	if w.Code != http.StatusInternalServerError {
		t.Errorf("empty body status = %d, want 500", w.Code)
	}

	strict := newTestAPI(t, true, storage.Options{})
	expectMessage(t, strict.do(http.MethodPost, "/articles", `{"title":"Hello"}`), http.StatusBadRequest, msgFieldsRequired)
}

func TestCreateArticleMalformedBody(t *testing.T) {
	a := newTestAPI(t, false, storage.Options{})

	w := a.do(http.MethodPost, "/articles", `{"title":`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestUpdateArticle(t *testing.T) {
	a := newTestAPI(t, false, storage.Options{})
	created := a.create("Hello", "World", "Ada")

	body, _ := json.Marshal(map[string]interface{}{
		"id": created.ID, "title": "Bonjour", "content": "Monde", "author": "Grace",
	})
	w := a.do(http.MethodPut, "/articles/edit", string(body))
	if w.Code != http.StatusOK {
		t.Fatalf("PUT = %d %s", w.Code, w.Body.String())
	}
	want := &models.Article{ID: created.ID, Title: "Bonjour", Content: "Monde", Author: "Grace"}
	if diff := cmp.Diff(want, decode[models.Article](t, w)); diff != "" {
		t.Errorf("update mismatch (-want +got):\n%s", diff)
	}
}

func TestUpdateArticleErrors(t *testing.T) {
	a := newTestAPI(t, false, storage.Options{})

	full := `{"id":99,"title":"a","content":"b","author":"c"}`
	expectMessage(t, a.do(http.MethodPut, "/articles/edit", full), http.StatusInternalServerError, msgNotFound)
	expectMessage(t, a.do(http.MethodPut, "/articles/edit", `{"title":"a","content":"b","author":"c"}`),
		http.StatusInternalServerError, msgIDRequired)
	expectMessage(t, a.do(http.MethodPut, "/articles/edit", `{"id":0,"title":"a"}`),
		http.StatusInternalServerError, msgIDRequired)

	created := a.create("Hello", "World", "Ada")
	partial, _ := json.Marshal(map[string]interface{}{"id": created.ID, "title": "Only title"})
	w := a.do(http.MethodPut, "/articles/edit", string(partial))
	if w.Code != http.StatusInternalServerError {
		t.Errorf("partial PUT status = %d, want 500", w.Code)
	}

	strict := newTestAPI(t, true, storage.Options{})
	expectMessage(t, strict.do(http.MethodPut, "/articles/edit", full), http.StatusNotFound, msgNotFound)
	expectMessage(t, strict.do(http.MethodPut, "/articles/edit", `{"title":"a"}`), http.StatusBadRequest, msgIDRequired)
}

func TestUpdateArticleTitle(t *testing.T) {
	a := newTestAPI(t, false, storage.Options{})
	created := a.create("Hello", "World", "Ada")

	body, _ := json.Marshal(map[string]interface{}{"id": created.ID, "title": "Salut"})
	w := a.do(http.MethodPatch, "/articles/edit/title", string(body))
	if w.Code != http.StatusOK {
		t.Fatalf("PATCH = %d %s", w.Code, w.Body.String())
	}
	got := decode[TitleUpdateResponse](t, w)
	want := &TitleUpdateResponse{
		Message: msgTitleUpdated,
		Result:  &models.Article{ID: created.ID, Title: "Salut", Content: "World", Author: "Ada"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("patch mismatch (-want +got):\n%s", diff)
	}

	articles := decode[[]models.Article](t, a.do(http.MethodGet, "/articles", ""))
	if diff := cmp.Diff([]models.Article{*want.Result}, *articles); diff != "" {
		t.Errorf("list after patch mismatch (-want +got):\n%s", diff)
	}
}

func TestUpdateArticleTitleErrors(t *testing.T) {
	a := newTestAPI(t, false, storage.Options{})

	for _, body := range []string{`{"id":1}`, `{"title":"x"}`, `{"id":1,"title":""}`, ""} {
		expectMessage(t, a.do(http.MethodPatch, "/articles/edit/title", body),
			http.StatusInternalServerError, msgIDAndTitleRequired)
	}
	expectMessage(t, a.do(http.MethodPatch, "/articles/edit/title", `{"id":7,"title":"x"}`),
		http.StatusInternalServerError, msgNotFound)

	strict := newTestAPI(t, true, storage.Options{})
	expectMessage(t, strict.do(http.MethodPatch, "/articles/edit/title", `{"id":1}`),
		http.StatusBadRequest, msgIDAndTitleRequired)
	expectMessage(t, strict.do(http.MethodPatch, "/articles/edit/title", `{"id":7,"title":"x"}`),
		http.StatusNotFound, msgNotFound)
}

func TestUniqueTitleConstraint(t *testing.T) {
	opts := storage.Options{UniqueTitles: true}

	a := newTestAPI(t, false, opts)
	a.create("First", "a", "b")
	second := a.create("Second", "c", "d")

	body, _ := json.Marshal(map[string]interface{}{"id": second.ID, "title": "First"})
	expectMessage(t, a.do(http.MethodPatch, "/articles/edit/title", string(body)),
		http.StatusInternalServerError, msgDuplicateTitle)

	strict := newTestAPI(t, true, opts)
	strict.create("First", "a", "b")
	second = strict.create("Second", "c", "d")
	body, _ = json.Marshal(map[string]interface{}{"id": second.ID, "title": "First"})
	expectMessage(t, strict.do(http.MethodPatch, "/articles/edit/title", string(body)),
		http.StatusConflict, msgDuplicateTitle)
}

func TestDeleteArticle(t *testing.T) {
	a := newTestAPI(t, false, storage.Options{})
	keep := a.create("Keep", "a", "b")
	gone := a.create("Gone", "c", "d")

	expectMessage(t, a.do(http.MethodDelete, "/articles/999", ""), http.StatusNotFound, msgNotFound)

	w := a.do(http.MethodDelete, "/articles/"+jsonID(gone.ID), "")
	if w.Code != http.StatusOK {
		t.Fatalf("DELETE = %d %s", w.Code, w.Body.String())
	}
	want := &DeleteResponse{Message: msgDeleted, DeletedArticle: gone}
	if diff := cmp.Diff(want, decode[DeleteResponse](t, w)); diff != "" {
		t.Errorf("delete mismatch (-want +got):\n%s", diff)
	}

	articles := decode[[]models.Article](t, a.do(http.MethodGet, "/articles", ""))
	if diff := cmp.Diff([]models.Article{*keep}, *articles); diff != "" {
		t.Errorf("list after delete mismatch (-want +got):\n%s", diff)
	}
}

func TestDeleteArticleInvalidID(t *testing.T) {
	a := newTestAPI(t, false, storage.Options{})

	w := a.do(http.MethodDelete, "/articles/abc", "")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if msg := decode[ErrorResponse](t, w).Message; !strings.HasPrefix(msg, msgDeleteFailed) {
		t.Errorf("message = %q", msg)
	}

	strict := newTestAPI(t, true, storage.Options{})
	if w := strict.do(http.MethodDelete, "/articles/abc", ""); w.Code != http.StatusBadRequest {
		t.Errorf("strict status = %d, want 400", w.Code)
	}
	expectMessage(t, strict.do(http.MethodDelete, "/articles/5", ""), http.StatusNotFound, msgNotFound)
}

func TestStoreFailureIsInternal(t *testing.T) {
	a := newTestAPI(t, true, storage.Options{})
	a.store.Close()

	if w := a.do(http.MethodGet, "/articles", ""); w.Code != http.StatusInternalServerError {
		t.Errorf("GET /articles on closed store = %d", w.Code)
	}
	w := a.do(http.MethodDelete, "/articles/1", "")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("DELETE on closed store = %d", w.Code)
	}
	if msg := decode[ErrorResponse](t, w).Message; !strings.HasPrefix(msg, msgDeleteFailed) {
		t.Errorf("message = %q", msg)
	}
}

func TestLenientIDs(t *testing.T) {
	for _, strict := range []bool{false, true} {
		a := newTestAPI(t, strict, storage.Options{})
		created := a.create("Hello", "World", "Ada")
		id := jsonID(created.ID)

		w := a.do(http.MethodPatch, "/articles/edit/title", `{"id":"`+id+`","title":"Salut"}`)
		if w.Code != http.StatusOK {
			t.Fatalf("strict=%v PATCH with string id = %d %s", strict, w.Code, w.Body.String())
		}
		if got := decode[TitleUpdateResponse](t, w).Result.Title; got != "Salut" {
			t.Errorf("strict=%v title = %q, want Salut", strict, got)
		}

		body := `{"id":` + id + `.0,"title":"Hola","content":"Mundo","author":"Ada"}`
		w = a.do(http.MethodPut, "/articles/edit", body)
		if w.Code != http.StatusOK {
			t.Fatalf("strict=%v PUT with float id = %d %s", strict, w.Code, w.Body.String())
		}
		if got := decode[models.Article](t, w); got.ID != created.ID || got.Title != "Hola" {
			t.Errorf("strict=%v PUT returned %+v", strict, got)
		}
	}
}

func TestWrongJSONTypes(t *testing.T) {
	tests := []struct {
		name, method, path, body string
	}{
		{"non-numeric id on PATCH", http.MethodPatch, "/articles/edit/title", `{"id":"abc","title":"x"}`},
		{"non-numeric id on PUT", http.MethodPut, "/articles/edit", `{"id":"abc","title":"a","content":"b","author":"c"}`},
		{"numeric title on POST", http.MethodPost, "/articles", `{"title":42,"content":"b","author":"c"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			compat := newTestAPI(t, false, storage.Options{})
			if w := compat.do(tt.method, tt.path, tt.body); w.Code != http.StatusInternalServerError {
				t.Errorf("compatible status = %d, want 500 (body %s)", w.Code, w.Body.String())
			}

			strict := newTestAPI(t, true, storage.Options{})
			if w := strict.do(tt.method, tt.path, tt.body); w.Code != http.StatusBadRequest {
				t.Errorf("strict status = %d, want 400 (body %s)", w.Code, w.Body.String())
			}
		})
	}
}

func TestFailureLoggedOnce(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)

	store, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "log.db"), storage.Options{})
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	store.Close()

	router := NewServer(Options{}, store, zap.New(core), nil).Handler()
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/articles", nil))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}

	errorsLogged := 0
	for _, entry := range logs.All() {
		if entry.Level == zapcore.ErrorLevel {
			errorsLogged++
		}
	}
	if errorsLogged != 1 {
		t.Errorf("got %d error entries, want 1: %v", errorsLogged, logs.All())
	}
}

func jsonID(id int64) string {
	b, _ := json.Marshal(id)
	return string(b)
}
