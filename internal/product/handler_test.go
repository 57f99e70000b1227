package product

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func newCatalogApp() (*fiber.App, Repository) {
	repo := NewMemoryRepository()
	h := NewHandler(repo)

	app := fiber.New()
	app.Get("/products", h.List)
	app.Get("/products/:id", h.Get)
	app.Post("/products", h.Create)
	app.Put("/products/:id", h.Update)
	app.Delete("/products/:id", h.Delete)
	return app, repo
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string) *http.Response {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test %s %s: %v", method, path, err)
	}
	return resp
}

func decodeProduct(t *testing.T, resp *http.Response) productResponse {
	t.Helper()
	var p productResponse
	raw, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(raw, &p); err != nil {
		t.Fatalf("decode product: %v (%s)", err, raw)
	}
	return p
}

func TestCreateProduct(t *testing.T) {
	app, _ := newCatalogApp()

	resp := doJSON(t, app, fiber.MethodPost, "/products", `{
		"name": "Paracetamol",
		"slug": "paracetamol",
		"price": 4.5,
		"variants": [{"mg_option": 500, "price": 4.5, "stock_status": true}]
	}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	p := decodeProduct(t, resp)
	if p.ID == "" {
		t.Fatal("missing generated id")
	}
	if p.Status != StatusActive || !p.StockStatus {
		t.Fatalf("unexpected defaults: status=%q stock=%v", p.Status, p.StockStatus)
	}
	if len(p.Variants) != 1 || p.Variants[0].MgOption != 500 {
		t.Fatalf("variants not persisted: %+v", p.Variants)
	}
}

func TestCreateProductValidation(t *testing.T) {
	app, _ := newCatalogApp()

	resp := doJSON(t, app, fiber.MethodPost, "/products", `{"price": 4.5}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestCreateProductDuplicateSlug(t *testing.T) {
	app, _ := newCatalogApp()

	body := `{"name": "Paracetamol", "slug": "paracetamol"}`
	if resp := doJSON(t, app, fiber.MethodPost, "/products", body); resp.StatusCode != http.StatusCreated {
		t.Fatalf("first create: expected 201, got %d", resp.StatusCode)
	}
	if resp := doJSON(t, app, fiber.MethodPost, "/products", body); resp.StatusCode != http.StatusConflict {
		t.Fatalf("second create: expected 409, got %d", resp.StatusCode)
	}
}

func TestGetProduct(t *testing.T) {
	app, _ := newCatalogApp()

	created := decodeProduct(t, doJSON(t, app, fiber.MethodPost, "/products", `{"name": "Ibuprofen", "slug": "ibuprofen"}`))

	resp := doJSON(t, app, fiber.MethodGet, "/products/"+created.ID, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if got := decodeProduct(t, resp); got.Name != "Ibuprofen" {
		t.Fatalf("unexpected product %+v", got)
	}

	resp = doJSON(t, app, fiber.MethodGet, "/products/missing", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestUpdateProductPartial(t *testing.T) {
	app, _ := newCatalogApp()

	created := decodeProduct(t, doJSON(t, app, fiber.MethodPost, "/products", `{
		"name": "Ibuprofen", "slug": "ibuprofen", "price": 6.0
	}`))

	// Only the discount is sent; other fields must survive untouched.
	resp := doJSON(t, app, fiber.MethodPut, "/products/"+created.ID, `{"discount": 1.5}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	got := decodeProduct(t, resp)
	if got.Discount != 1.5 {
		t.Fatalf("discount not applied: %v", got.Discount)
	}
	if got.Name != "Ibuprofen" || got.Price != 6.0 {
		t.Fatalf("partial update clobbered fields: %+v", got)
	}
}

func TestDeleteProduct(t *testing.T) {
	app, _ := newCatalogApp()

	created := decodeProduct(t, doJSON(t, app, fiber.MethodPost, "/products", `{"name": "Ibuprofen", "slug": "ibuprofen"}`))

	if resp := doJSON(t, app, fiber.MethodDelete, "/products/"+created.ID, ""); resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if resp := doJSON(t, app, fiber.MethodGet, "/products/"+created.ID, ""); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", resp.StatusCode)
	}

	// The slug is reusable once the product is gone.
	if resp := doJSON(t, app, fiber.MethodPost, "/products", `{"name": "Ibuprofen", "slug": "ibuprofen"}`); resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201 reusing freed slug, got %d", resp.StatusCode)
	}
}

func TestListProducts(t *testing.T) {
	app, _ := newCatalogApp()

	doJSON(t, app, fiber.MethodPost, "/products", `{"name": "Zinc", "slug": "zinc"}`)
	doJSON(t, app, fiber.MethodPost, "/products", `{"name": "Aspirin", "slug": "aspirin"}`)

	resp := doJSON(t, app, fiber.MethodGet, "/products", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var list []productResponse
	raw, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(raw, &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 products, got %d", len(list))
	}
	if list[0].Name != "Aspirin" {
		t.Fatalf("expected name ordering, got %q first", list[0].Name)
	}
}
