package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"cinestream/internal/app"
	"cinestream/internal/database"
	"cinestream/internal/handlers"
	"cinestream/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	fiber *fiber.App
	db    database.DB
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db := testutil.NewDB(t)
	core, err := app.Build(testutil.Config(""), db)
	require.NoError(t, err)

	server := fiber.New()
	require.NoError(t, handlers.Router(server, core))

	return &testServer{fiber: server, db: db}
}

func (s *testServer) request(
	t *testing.T,
	method, path, token string,
	body any,
) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := s.fiber.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]any
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded), string(raw))
	}

	return resp.StatusCode, decoded
}

// login signs in a fixture user; fixtures share the password "password123".
func (s *testServer) login(t *testing.T, email string) string {
	t.Helper()

	status, body := s.request(t, http.MethodPost, "/api/auth/login", "", fiber.Map{
		"email":    email,
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, status, body)

	data := body["data"].(map[string]any)
	return data["token"].(string)
}

func TestHealth(t *testing.T) {
	server := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Trace-ID", "trace-123")
	resp, err := server.fiber.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "trace-123", resp.Header.Get("X-Trace-ID"))

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "ok", body["data"].(map[string]any)["status"])
}

func TestAuth_RegisterAndMe(t *testing.T) {
	server := newTestServer(t)

	status, body := server.request(t, http.MethodPost, "/api/auth/register", "", fiber.Map{
		"name":     "Viewer",
		"email":    "Viewer@Example.com",
		"password": "long-enough",
	})
	require.Equal(t, http.StatusCreated, status, body)
	token := body["data"].(map[string]any)["token"].(string)

	status, body = server.request(t, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "viewer@example.com", body["data"].(map[string]any)["email"])

	status, body = server.request(t, http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, false, body["success"])

	status, _ = server.request(t, http.MethodGet, "/api/auth/me", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestAdmin_RequiresAdmin(t *testing.T) {
	server := newTestServer(t)
	testutil.CreateUser(t, server.db.SQL, "viewer@example.com", false)
	testutil.CreateUser(t, server.db.SQL, "admin@example.com", true)

	status, _ := server.request(t, http.MethodGet, "/api/admin/users", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body := server.request(t, http.MethodGet, "/api/admin/users", server.login(t, "viewer@example.com"), nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "Admin access required", body["message"])

	status, body = server.request(t, http.MethodGet, "/api/admin/users", server.login(t, "admin@example.com"), nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(2), body["total"])
	assert.Len(t, body["data"], 2)
}

func TestAdmin_MediaLifecycle(t *testing.T) {
	server := newTestServer(t)
	testutil.CreateUser(t, server.db.SQL, "admin@example.com", true)
	drama := testutil.CreateGenre(t, server.db.SQL, "Drama")
	token := server.login(t, "admin@example.com")

	status, body := server.request(t, http.MethodPost, "/api/admin/media", token, fiber.Map{})
	require.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "Validation failed", body["message"])
	errs := body["errors"].(map[string]any)
	assert.Contains(t, errs, "title")
	assert.Contains(t, errs, "type")

	status, body = server.request(t, http.MethodPost, "/api/admin/movies", token, fiber.Map{
		"title":    "Test Movie",
		"year":     2020,
		"duration": 120,
		"rating":   7.5,
		"genreIds": []uint{drama.ID},
	})
	require.Equal(t, http.StatusCreated, status, body)
	created := body["data"].(map[string]any)
	assert.Equal(t, "movie", created["type"])
	id := uint(created["id"].(float64))

	status, body = server.request(t, http.MethodPut, fmt.Sprintf("/api/admin/movies/%d", id), token, fiber.Map{
		"title": "Renamed Movie",
	})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "Renamed Movie", body["data"].(map[string]any)["title"])

	status, body = server.request(t, http.MethodGet, fmt.Sprintf("/api/admin/tvshows/%d", id), token, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "subtype_mismatch", body["reason"])

	status, _ = server.request(t, http.MethodDelete, fmt.Sprintf("/api/admin/tvshows/%d", id), token, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = server.request(t, http.MethodDelete, fmt.Sprintf("/api/admin/movies/%d", id), token, nil)
	require.Equal(t, http.StatusOK, status)

	status, _ = server.request(t, http.MethodGet, fmt.Sprintf("/api/media/%d", id), "", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestAdmin_EpisodesAndGenres(t *testing.T) {
	server := newTestServer(t)
	testutil.CreateUser(t, server.db.SQL, "admin@example.com", true)
	show := testutil.CreateShow(t, server.db.SQL, "Test Show")
	movie := testutil.CreateMovie(t, server.db.SQL, "Test Movie")
	token := server.login(t, "admin@example.com")

	status, body := server.request(t, http.MethodPost, "/api/admin/episodes", token, fiber.Map{
		"mediaId":       show.ID,
		"season":        1,
		"episodeNumber": 1,
	})
	require.Equal(t, http.StatusCreated, status, body)
	assert.Equal(t, "S01E01", body["data"].(map[string]any)["title"])

	status, body = server.request(t, http.MethodPost, "/api/admin/episodes", token, fiber.Map{
		"mediaId":       movie.ID,
		"season":        1,
		"episodeNumber": 1,
	})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "subtype_mismatch", body["reason"])

	status, body = server.request(t, http.MethodGet, fmt.Sprintf("/api/admin/tvshows/%d/episodes", show.ID), token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["data"], 1)

	status, body = server.request(t, http.MethodGet, fmt.Sprintf("/api/admin/episodes?mediaId=%d", show.ID), token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), body["total"])

	status, body = server.request(t, http.MethodPost, "/api/admin/genres", token, fiber.Map{"name": "Science Fiction"})
	require.Equal(t, http.StatusCreated, status, body)
	assert.Equal(t, "science-fiction", body["data"].(map[string]any)["slug"])

	status, body = server.request(t, http.MethodGet, "/api/genres/science-fiction/media", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Science Fiction", body["genre"].(map[string]any)["name"])
	assert.Equal(t, float64(0), body["total"])
}

func TestCatalog_ListingAndEmbed(t *testing.T) {
	server := newTestServer(t)
	linked := testutil.CreateMovie(t, server.db.SQL, "Linked Movie")
	require.NoError(t, server.db.SQL.Model(&linked).Update("external_id", "603").Error)
	unlinked := testutil.CreateMovie(t, server.db.SQL, "Unlinked Movie")
	testutil.CreateShow(t, server.db.SQL, "Some Show")

	status, body := server.request(t, http.MethodGet, "/api/movies", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(2), body["total"])
	assert.Equal(t, float64(1), body["page"])
	assert.Equal(t, float64(1), body["lastPage"])

	status, body = server.request(t, http.MethodGet, "/api/media?title=linked", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(2), body["total"], "title search is a case-insensitive substring match")

	status, body = server.request(t, http.MethodGet, fmt.Sprintf("/api/media/%d/embed", linked.ID), "", nil)
	require.Equal(t, http.StatusOK, status, body)
	embed := body["data"].(map[string]any)
	assert.Equal(t, "https://vidsrc.test/embed/movie?tmdb=603", embed["url"])
	assert.True(t, strings.HasPrefix(embed["html"].(string), "<iframe"))

	status, body = server.request(t, http.MethodGet, fmt.Sprintf("/api/media/%d/embed", unlinked.ID), "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Not available", body["message"])
	assert.Equal(t, "provider_not_found", body["reason"])

	status, body = server.request(t, http.MethodGet, "/api/media/abc", "", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Contains(t, body["errors"], "id")
}

func TestMe_FavoriteToggle(t *testing.T) {
	server := newTestServer(t)
	testutil.CreateUser(t, server.db.SQL, "viewer@example.com", false)
	movie := testutil.CreateMovie(t, server.db.SQL, "Test Movie")
	token := server.login(t, "viewer@example.com")

	status, body := server.request(t, http.MethodPost, "/api/me/favorites/toggle", token, fiber.Map{"mediaId": movie.ID})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "added", body["data"].(map[string]any)["status"])

	status, body = server.request(t, http.MethodGet, "/api/me/favorites", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["data"], 1)

	status, body = server.request(t, http.MethodGet, fmt.Sprintf("/api/me/media/%d/state", movie.ID), token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["data"].(map[string]any)["favorited"])

	status, body = server.request(t, http.MethodPost, "/api/me/favorites/toggle", token, fiber.Map{"mediaId": movie.ID})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "removed", body["data"].(map[string]any)["status"])

	status, body = server.request(t, http.MethodPost, "/api/me/favorites/toggle", token, fiber.Map{})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, false, body["success"])

	status, _ = server.request(t, http.MethodPost, "/api/me/favorites/toggle", token, fiber.Map{"mediaId": 9999})
	assert.Equal(t, http.StatusNotFound, status)
}

func TestMetricsEndpoint(t *testing.T) {
	server := newTestServer(t)

	status, _ := server.request(t, http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusOK, status)

	resp, err := server.fiber.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), "cinestream_http_requests_total")
}

func TestMetricsEndpoint_LabelsSurviveRequestReuse(t *testing.T) {
	server := newTestServer(t)
	testutil.CreateUser(t, server.db.SQL, "viewer@example.com", false)

	for i := 0; i < 3; i++ {
		status, _ := server.request(t, http.MethodPost, "/api/auth/login", "", fiber.Map{
			"email":    "viewer@example.com",
			"password": "wrong-password",
		})
		require.Equal(t, http.StatusUnauthorized, status)

		status, _ = server.request(t, http.MethodGet, "/api/health", "", nil)
		require.Equal(t, http.StatusOK, status)

		resp, err := server.fiber.Test(httptest.NewRequest(http.MethodDelete, "/api/unknown/route/with/a/longer/path", nil), -1)
		require.NoError(t, err)
		resp.Body.Close()
	}

	resp, err := server.fiber.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	assert.Contains(t, string(raw), `method="POST",route="/api/auth/login",status="401"`)
	assert.Contains(t, string(raw), `method="GET",route="/api/health",status="200"`)
}
