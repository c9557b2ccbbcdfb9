package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"taskhive/internal/config"
	"taskhive/internal/database"
	"taskhive/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestMain(m *testing.M) {
	_ = os.Setenv("APP_ENV", "test")
	os.Exit(m.Run())
}

// newTestApp builds a Server on an in-memory database with routes mounted
// on a bare Fiber app. Redis is absent; rate limits are bypassed in tests.
func newTestApp(t *testing.T) (*Server, *fiber.App) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	cfg := &config.Config{
		JWTSecret: "test-secret-for-handlers",
		Port:      "0",
		Env:       "test",
	}

	s, err := NewServerWithDeps(cfg, db, nil)
	require.NoError(t, err)

	app := fiber.New()
	s.SetupRoutes(app)
	return s, app
}

// createUserToken inserts a user directly and mints a token for it, so tests
// can exercise roles (admin) that signup does not hand out.
func createUserToken(t *testing.T, s *Server, username string, role models.UserRole) (*models.User, string) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("SecurePass12!@"), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: string(hash),
		Role:     role,
	}
	require.NoError(t, s.userRepo.Create(t.Context(), user))

	token, err := s.generateToken(user.ID, user.Username, user.Role)
	require.NoError(t, err)
	return user, token
}

// doJSON performs a JSON request against the test app and decodes the body.
func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var decoded map[string]interface{}
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()
	if len(data) > 0 {
		// Arrays decode to nil; callers needing lists re-decode themselves.
		_ = json.Unmarshal(data, &decoded)
	}
	return resp, decoded
}

// doJSONList is doJSON for endpoints returning a JSON array.
func doJSONList(t *testing.T, app *fiber.App, method, path, token string) (*http.Response, []interface{}) {
	t.Helper()

	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var decoded []interface{}
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()
	if len(data) > 0 {
		_ = json.Unmarshal(data, &decoded)
	}
	return resp, decoded
}

// createCatalogFixture inserts a category and service for order tests.
func createCatalogFixture(t *testing.T, s *Server) *models.Service {
	t.Helper()

	category := &models.ServiceCategory{Name: "Development " + t.Name(), Slug: "dev"}
	require.NoError(t, s.catalogRepo.CreateCategory(t.Context(), category))

	svc := &models.Service{
		CategoryID: category.ID,
		Name:       "Backend work",
		BasePrice:  10000,
	}
	require.NoError(t, s.catalogRepo.CreateService(t.Context(), svc))
	return svc
}
