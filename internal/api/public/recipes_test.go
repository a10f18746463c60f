package public

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cookbook/cookbook-backend/internal/db/repositories"
)

var recipeCols = []string{
	"id", "name", "description", "lang", "owner", "publisher", "tags", "year", "location", "category",
	"portion", "preparation_time_minutes", "calification", "preparation",
	"image_name", "image_url", "image_content_type",
	"published", "reviewed", "is_disabled", "created_at", "updated_at", "username_insert", "username_update",
}

func publishedRow(id string, published bool) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(recipeCols).AddRow(
		id, "Tortilla de patatas", "Classic omelette", "es", "grandma", "jane.doe#0042",
		"{spanish}", 2024, "Madrid", "{dinner}",
		4, 45, 5, []byte(`[{"name":"base","ingredients":[],"steps":[]}]`),
		nil, nil, nil,
		published, nil, false, now, now, "jane.doe#0042", nil,
	)
}

func newRouter(t *testing.T) (*gin.Engine, sqlmock.Sqlmock) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	h := NewRecipeHandlers(repositories.NewRecipeRepository(db))

	r := gin.New()
	r.GET("/recipes", h.ListHandler())
	r.GET("/recipes/:id", h.GetHandler())
	r.GET("/recipes/:id/meta", h.MetaHandler())
	r.GET("/skill/recipes", h.SkillHandler())
	return r, mock
}

func get(r *gin.Engine, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestListHandler_CatalogIsTrimmed(t *testing.T) {
	r, mock := newRouter(t)

	mock.ExpectQuery(`SELECT .+ FROM recipes\s+WHERE is_disabled = FALSE AND published = .+ ORDER BY created_at DESC`).
		WithArgs(true, 20, 0).
		WillReturnRows(publishedRow("r1", true))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM recipes`).
		WithArgs(true).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	w := get(r, "/recipes")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Content []map[string]interface{} `json:"content"`
		Total   int                      `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Content, 1)
	assert.Equal(t, 1, resp.Total)

	item := resp.Content[0]
	for _, key := range []string{"id", "name", "description", "image", "published", "tags", "preparation_time_minutes", "year", "location", "portion", "owner", "publisher"} {
		assert.Contains(t, item, key)
	}
	// the heavy document fields never appear in the list
	for _, key := range []string{"preparation", "category", "calification", "lang"} {
		assert.NotContains(t, item, key)
	}
}

func TestListHandler_SearchPassedToPredicate(t *testing.T) {
	r, mock := newRouter(t)

	mock.ExpectQuery(`\(name ILIKE .+ OR description ILIKE .+\)`).
		WithArgs(true, "%tortilla%", 20, 0).
		WillReturnRows(sqlmock.NewRows(recipeCols))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM recipes`).
		WithArgs(true, "%tortilla%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	w := get(r, "/recipes?search=tortilla")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetHandler_UnpublishedIs404(t *testing.T) {
	r, mock := newRouter(t)

	// the row exists but is not published: indistinguishable from absent
	mock.ExpectQuery("SELECT .+ FROM recipes WHERE id = .+").
		WithArgs("r1").
		WillReturnRows(publishedRow("r1", false))

	w := get(r, "/recipes/r1")
	assert.Equal(t, http.StatusNotFound, w.Code, w.Body.String())
}

func TestGetHandler_PublishedIsFullDocument(t *testing.T) {
	r, mock := newRouter(t)

	mock.ExpectQuery("SELECT .+ FROM recipes WHERE id = .+").
		WithArgs("r1").
		WillReturnRows(publishedRow("r1", true))

	w := get(r, "/recipes/r1")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Contains(t, doc, "preparation")
}

func TestMetaHandler_LinkPreviewShape(t *testing.T) {
	r, mock := newRouter(t)

	mock.ExpectQuery("SELECT .+ FROM recipes WHERE id = .+").
		WithArgs("r1").
		WillReturnRows(publishedRow("r1", true))

	w := get(r, "/recipes/r1/meta")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var meta map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &meta))
	assert.Len(t, meta, 4)
	for _, key := range []string{"id", "name", "description", "image"} {
		assert.Contains(t, meta, key)
	}
}

func TestSkillHandler_NoQuerySamplesRandomly(t *testing.T) {
	r, mock := newRouter(t)

	mock.ExpectQuery(`ORDER BY random\(\)`).
		WithArgs(true, 5).
		WillReturnRows(publishedRow("r1", true))

	w := get(r, "/skill/recipes")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

// The assistant looks recipes up by spoken name, so the query must hit the
// name column alone and never the description.
func TestSkillHandler_QuerySearchesNameOnly(t *testing.T) {
	r, mock := newRouter(t)

	mock.ExpectQuery(`published = .+ AND name ILIKE .+\s+ORDER BY created_at DESC`).
		WithArgs(true, "%gazpacho%", 20, 0).
		WillReturnRows(sqlmock.NewRows(recipeCols))

	w := get(r, "/skill/recipes?q=gazpacho")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "[]", w.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}
