package address

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func newAddressApp() *fiber.App {
	h := NewHandler(NewMemoryRepository())

	app := fiber.New()
	app.Get("/addresses", h.List)
	app.Post("/addresses", h.Create)
	app.Put("/addresses/:id", h.Update)
	app.Delete("/addresses/:id", h.Delete)
	return app
}

func addressJSON(t *testing.T, app *fiber.App, method, path, body string) *http.Response {
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

func decodeAddress(t *testing.T, resp *http.Response) addressResponse {
	t.Helper()
	var a addressResponse
	raw, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(raw, &a); err != nil {
		t.Fatalf("decode address: %v (%s)", err, raw)
	}
	return a
}

const fullAddressBody = `{
	"division": "Dhaka",
	"district": "Dhaka",
	"sub_district": "Gulshan",
	"address": "House 12, Road 5",
	"name": "Alice",
	"phone": "01700000000"
}`

func TestCreateAddress(t *testing.T) {
	app := newAddressApp()

	resp := addressJSON(t, app, fiber.MethodPost, "/addresses", fullAddressBody)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	a := decodeAddress(t, resp)
	if a.ID == "" {
		t.Fatal("missing generated id")
	}
	if a.Line != "House 12, Road 5" || a.SubDistrict != "Gulshan" {
		t.Fatalf("unexpected address %+v", a)
	}
}

func TestCreateAddressValidation(t *testing.T) {
	app := newAddressApp()

	cases := []struct {
		name string
		body string
	}{
		{"empty body", `{}`},
		{"missing phone", `{"division": "Dhaka", "district": "Dhaka", "sub_district": "Gulshan", "address": "House 12", "name": "Alice"}`},
		{"blank field", `{"division": "", "district": "Dhaka", "sub_district": "Gulshan", "address": "House 12", "name": "Alice", "phone": "017"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if resp := addressJSON(t, app, fiber.MethodPost, "/addresses", tc.body); resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", resp.StatusCode)
			}
		})
	}
}

func TestUpdateAddressPartial(t *testing.T) {
	app := newAddressApp()

	created := decodeAddress(t, addressJSON(t, app, fiber.MethodPost, "/addresses", fullAddressBody))

	resp := addressJSON(t, app, fiber.MethodPut, "/addresses/"+created.ID, `{"phone": "01911111111"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	got := decodeAddress(t, resp)
	if got.Phone != "01911111111" {
		t.Fatalf("phone not updated: %+v", got)
	}
	if got.Line != "House 12, Road 5" || got.Name != "Alice" {
		t.Fatalf("partial update clobbered fields: %+v", got)
	}

	if resp := addressJSON(t, app, fiber.MethodPut, "/addresses/missing", `{"phone": "017"}`); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestDeleteAddress(t *testing.T) {
	app := newAddressApp()

	created := decodeAddress(t, addressJSON(t, app, fiber.MethodPost, "/addresses", fullAddressBody))

	if resp := addressJSON(t, app, fiber.MethodDelete, "/addresses/"+created.ID, ""); resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if resp := addressJSON(t, app, fiber.MethodDelete, "/addresses/"+created.ID, ""); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 deleting twice, got %d", resp.StatusCode)
	}

	resp := addressJSON(t, app, fiber.MethodGet, "/addresses", "")
	var list []addressResponse
	raw, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(raw, &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected empty list, got %d", len(list))
	}
}
