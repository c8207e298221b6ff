package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"bloxmarket/internal/http/handlers"
	"bloxmarket/internal/repos"
	"bloxmarket/internal/services"
)

type searchPage struct {
	Count   int `json:"count"`
	Results []struct {
		ID    string `json:"id"`
		Price string `json:"price"`
	} `json:"results"`
}

func newSearchApp(t *testing.T) *fiber.App {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })

	h := &handlers.SearchHandler{Listings: services.NewListingService(repos.NewListingRepo(db))}
	app := fiber.New()
	app.Get("/api/v1/search", h.Search)
	return app
}

func getPage(t *testing.T, app *fiber.App, url string) (int, searchPage) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", url, nil))
	if err != nil {
		t.Fatal(err)
	}
	var page searchPage
	if resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
			t.Fatal(err)
		}
	}
	return resp.StatusCode, page
}

func TestSearchEndpointReturnsSeededListings(t *testing.T) {
	app := newSearchApp(t)

	code, page := getPage(t, app, "/api/v1/search")
	if code != http.StatusOK || page.Count != 3 {
		t.Fatalf("default search: code=%d count=%d", code, page.Count)
	}
}

func TestSearchEndpointPriceBuckets(t *testing.T) {
	app := newSearchApp(t)

	// Seeds: 89.99, 149.99, 299.99
	for _, tc := range []struct {
		bucket string
		want   string
	}{
		{"50-100", "acc_seed_mansion"},
		{"100-200", "acc_seed_godly"},
		{"200%2B", "acc_seed_dragon"}, // "200+" url-encoded
	} {
		code, page := getPage(t, app, "/api/v1/search?price="+tc.bucket)
		if code != http.StatusOK || page.Count != 1 || page.Results[0].ID != tc.want {
			t.Fatalf("bucket %s: code=%d page=%+v", tc.bucket, code, page)
		}
	}
	code, page := getPage(t, app, "/api/v1/search?price=0-50")
	if code != http.StatusOK || page.Count != 0 {
		t.Fatalf("bucket 0-50: code=%d count=%d", code, page.Count)
	}
}

func TestSearchEndpointTextAndSort(t *testing.T) {
	app := newSearchApp(t)

	code, page := getPage(t, app, "/api/v1/search?q=chroma")
	if code != http.StatusOK || page.Count != 1 || page.Results[0].ID != "acc_seed_godly" {
		t.Fatalf("text query: code=%d page=%+v", code, page)
	}

	code, page = getPage(t, app, "/api/v1/search?sort=price_asc")
	if code != http.StatusOK || page.Results[0].ID != "acc_seed_mansion" {
		t.Fatalf("price_asc: code=%d page=%+v", code, page)
	}
}

func TestSearchEndpointRejectsBadInput(t *testing.T) {
	app := newSearchApp(t)

	for _, url := range []string{
		"/api/v1/search?q=%3Cscript%3E",
		"/api/v1/search?category=Fortnite",
		"/api/v1/search?price=0-999",
		"/api/v1/search?sort=sideways",
	} {
		if code, _ := getPage(t, app, url); code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", url, code)
		}
	}
}

func TestSearchEndpointPaginates(t *testing.T) {
	app := newSearchApp(t)

	code, page := getPage(t, app, "/api/v1/search?sort=price_asc&page=2&page_size=2")
	if code != http.StatusOK || page.Count != 1 || page.Results[0].ID != "acc_seed_dragon" {
		t.Fatalf("page 2: code=%d page=%+v", code, page)
	}
}
