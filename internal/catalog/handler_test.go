package catalog

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/xinchao-storefront/internal/kvstore"
	"github.com/wichananm65/xinchao-storefront/internal/persistence"
)

func makeCatalogApp() *fiber.App {
	svc := NewService(persistence.New[Item](nil, kvstore.NewMemory(), nil, StoreOptions()))
	h := NewHandler(svc)
	app := fiber.New()
	h.RegisterPublicRoutes(app)
	h.RegisterAdminRoutes(app.Group("/api/v1/admin"))
	return app
}

func decodeItems(t *testing.T, body io.Reader) []Item {
	t.Helper()
	var items []Item
	if err := json.NewDecoder(body).Decode(&items); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return items
}

func TestCatalogRoutes_Registered(t *testing.T) {
	app := makeCatalogApp()
	routes := map[string]bool{}
	for _, grp := range app.Stack() {
		for _, r := range grp {
			routes[r.Method+" "+r.Path] = true
		}
	}
	for _, want := range []string{
		"GET /api/v1/products",
		"GET /api/v1/products/:id",
		"POST /api/v1/admin/products",
		"PUT /api/v1/admin/products",
		"PUT /api/v1/admin/products/:id",
		"PATCH /api/v1/admin/products/:id/video",
		"DELETE /api/v1/admin/products/:id",
	} {
		if !routes[want] {
			t.Fatalf("expected route %q to be registered", want)
		}
	}
}

func TestGetProducts_DefaultSeed(t *testing.T) {
	app := makeCatalogApp()
	res, err := app.Test(httptest.NewRequest("GET", "/api/v1/products", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	items := decodeItems(t, res.Body)
	if len(items) != len(DefaultItems()) {
		t.Fatalf("expected %d items, got %d", len(DefaultItems()), len(items))
	}
}

func TestCreateProduct_ThenListed(t *testing.T) {
	app := makeCatalogApp()

	body := `{"name":"ドンホー版画","price":1500,"makerName":"Thanh","images":["a.jpg"]}`
	req := httptest.NewRequest("POST", "/api/v1/admin/products", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != fiber.StatusCreated {
		b, _ := io.ReadAll(res.Body)
		t.Fatalf("expected 201, got %d: %s", res.StatusCode, b)
	}
	var created Item
	if err := json.NewDecoder(res.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.ID == "" {
		t.Fatalf("expected generated id")
	}

	res2, _ := app.Test(httptest.NewRequest("GET", "/api/v1/products/"+created.ID, nil))
	if res2.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 for created product, got %d", res2.StatusCode)
	}

	res3, _ := app.Test(httptest.NewRequest("GET", "/api/v1/products", nil))
	if n := len(decodeItems(t, res3.Body)); n != len(DefaultItems())+1 {
		t.Fatalf("expected %d items after create, got %d", len(DefaultItems())+1, n)
	}
}

func TestCreateProduct_ValidationErrors(t *testing.T) {
	app := makeCatalogApp()
	req := httptest.NewRequest("POST", "/api/v1/admin/products", strings.NewReader(`{"shortStory":"no name"}`))
	req.Header.Set("Content-Type", "application/json")
	res, _ := app.Test(req)
	if res.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.StatusCode)
	}
	b, _ := io.ReadAll(res.Body)
	if !strings.Contains(string(b), "name is required") || !strings.Contains(string(b), "price is required") {
		t.Fatalf("unexpected body: %s", b)
	}
}

func TestUpdateProduct_NotFound(t *testing.T) {
	app := makeCatalogApp()
	req := httptest.NewRequest("PUT", "/api/v1/admin/products/ghost", strings.NewReader(`{"name":"x","price":1}`))
	req.Header.Set("Content-Type", "application/json")
	res, _ := app.Test(req)
	if res.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.StatusCode)
	}
}

func TestUpdateVideoRoute(t *testing.T) {
	app := makeCatalogApp()
	id := DefaultItems()[0].ID
	req := httptest.NewRequest("PATCH", "/api/v1/admin/products/"+id+"/video", strings.NewReader(`{"videoUrl":"https://cdn.example/new.mp4"}`))
	req.Header.Set("Content-Type", "application/json")
	res, _ := app.Test(req)
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	b, _ := io.ReadAll(res.Body)
	if !strings.Contains(string(b), "https://cdn.example/new.mp4") {
		t.Fatalf("unexpected body: %s", b)
	}
}

func TestDeleteProduct_Idempotent(t *testing.T) {
	app := makeCatalogApp()
	for i := 0; i < 2; i++ {
		res, _ := app.Test(httptest.NewRequest("DELETE", "/api/v1/admin/products/ghost", nil))
		if res.StatusCode != fiber.StatusNoContent {
			t.Fatalf("expected 204, got %d", res.StatusCode)
		}
	}
}

func TestResetProducts_EmptyArrayClears(t *testing.T) {
	app := makeCatalogApp()
	req := httptest.NewRequest("PUT", "/api/v1/admin/products", strings.NewReader(`[]`))
	req.Header.Set("Content-Type", "application/json")
	res, _ := app.Test(req)
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}

	res2, _ := app.Test(httptest.NewRequest("GET", "/api/v1/products", nil))
	if n := len(decodeItems(t, res2.Body)); n != 0 {
		t.Fatalf("expected empty catalog, got %d", n)
	}

	// no body reseeds the built-in catalog
	res3, _ := app.Test(httptest.NewRequest("PUT", "/api/v1/admin/products", nil))
	if res3.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res3.StatusCode)
	}
	res4, _ := app.Test(httptest.NewRequest("GET", "/api/v1/products", nil))
	if n := len(decodeItems(t, res4.Body)); n != len(DefaultItems()) {
		t.Fatalf("expected reseeded catalog, got %d", n)
	}
}

func TestResetProducts_MalformedBodyKeepsCatalog(t *testing.T) {
	app := makeCatalogApp()
	put := func(target, body string) int {
		req := httptest.NewRequest("PUT", target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		res, err := app.Test(req)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		return res.StatusCode
	}

	if code := put("/api/v1/admin/products", `[{"id":"mine","name":"Mine","price":100}]`); code != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if code := put("/api/v1/admin/products", `[{"id":"mine","name":"Mine","price":200},]`); code != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for a trailing comma, got %d", code)
	}
	if code := put("/api/v1/admin/products", `null`); code != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for null, got %d", code)
	}

	res, _ := app.Test(httptest.NewRequest("GET", "/api/v1/products", nil))
	items := decodeItems(t, res.Body)
	if len(items) != 1 || items[0].ID != "mine" || items[0].Price != 100 {
		t.Fatalf("expected the saved catalog to survive, got %+v", items)
	}

	if code := put("/api/v1/admin/products?seed=default", `ignored`); code != fiber.StatusOK {
		t.Fatalf("expected 200 for an explicit reseed, got %d", code)
	}
	res2, _ := app.Test(httptest.NewRequest("GET", "/api/v1/products", nil))
	if n := len(decodeItems(t, res2.Body)); n != len(DefaultItems()) {
		t.Fatalf("expected reseeded catalog, got %d", n)
	}
}
