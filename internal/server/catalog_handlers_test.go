package server

import (
	"fmt"
	"net/http"
	"testing"

	"taskhive/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryCRUDOverHTTP(t *testing.T) {
	s, app := newTestApp(t)
	_, adminToken := createUserToken(t, s, "catadmin", models.RoleAdmin)
	_, clientToken := createUserToken(t, s, "catclient", models.RoleClient)

	// Writes are admin-only.
	resp, _ := doJSON(t, app, http.MethodPost, "/api/categories", clientToken, map[string]interface{}{
		"name": "Design",
		"slug": "design",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body := doJSON(t, app, http.MethodPost, "/api/categories", adminToken, map[string]interface{}{
		"name": "Design",
		"slug": "design",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	categoryID := uint(body["id"].(float64))

	// Reads are public.
	resp, categories := doJSONList(t, app, http.MethodGet, "/api/categories", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, categories, 1)

	resp, _ = doJSON(t, app, http.MethodDelete,
		fmt.Sprintf("/api/categories/%d", categoryID), adminToken, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, categories = doJSONList(t, app, http.MethodGet, "/api/categories", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, categories)
}

func TestCreateCategorySlugValidation(t *testing.T) {
	s, app := newTestApp(t)
	_, adminToken := createUserToken(t, s, "slugadmin", models.RoleAdmin)

	tests := []struct {
		name string
		slug string
	}{
		{"Uppercase", "Web-Design"},
		{"Too Short", "ab"},
		{"Reserved Word", "admin"},
		{"Leading Hyphen", "-design"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := doJSON(t, app, http.MethodPost, "/api/categories", adminToken, map[string]interface{}{
				"name": "Whatever",
				"slug": tt.slug,
			})
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestServiceCRUDOverHTTP(t *testing.T) {
	s, app := newTestApp(t)
	_, adminToken := createUserToken(t, s, "svcadmin", models.RoleAdmin)

	resp, body := doJSON(t, app, http.MethodPost, "/api/categories", adminToken, map[string]interface{}{
		"name": "Writing",
		"slug": "writing",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	categoryID := uint(body["id"].(float64))

	// Base price must be positive and the category must exist.
	resp, _ = doJSON(t, app, http.MethodPost, "/api/services", adminToken, map[string]interface{}{
		"category_id": categoryID,
		"name":        "Copywriting",
		"base_price":  0,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodPost, "/api/services", adminToken, map[string]interface{}{
		"category_id": categoryID + 100,
		"name":        "Copywriting",
		"base_price":  5000,
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = doJSON(t, app, http.MethodPost, "/api/services", adminToken, map[string]interface{}{
		"category_id": categoryID,
		"name":        "Copywriting",
		"base_price":  5000,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	serviceID := uint(body["id"].(float64))

	// Partial update only touches the fields sent.
	resp, body = doJSON(t, app, http.MethodPut,
		fmt.Sprintf("/api/services/%d", serviceID), adminToken, map[string]interface{}{
			"base_price": 7500,
		})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Copywriting", body["name"])
	assert.Equal(t, float64(7500), body["base_price"])

	// Category filter on the public listing.
	resp, services := doJSONList(t, app, http.MethodGet,
		fmt.Sprintf("/api/services?category_id=%d", categoryID), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, services, 1)

	resp, services = doJSONList(t, app, http.MethodGet,
		fmt.Sprintf("/api/services?category_id=%d", categoryID+100), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, services)

	resp, _ = doJSON(t, app, http.MethodDelete,
		fmt.Sprintf("/api/services/%d", serviceID), adminToken, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodGet,
		fmt.Sprintf("/api/services/%d", serviceID), "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
