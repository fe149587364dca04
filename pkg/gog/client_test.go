package gog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/GTDGit/gtd_catalog/internal/utils"
)

const catalogBody = `{
  "pages": 12,
  "currentPage": 1,
  "productCount": 2,
  "products": [
    {
      "id": "1",
      "title": "Title X",
      "slug": "title-x",
      "genres": [{"name": "RPG", "slug": "rpg"}],
      "developers": ["Dev A"],
      "publishers": ["Pub A"],
      "operatingSystems": ["windows"],
      "releaseDate": "2015.05.19",
      "price": {"finalMoney": {"amount": "9.99", "currency": "USD"}},
      "coverHorizontal": "https://images.gog.com/cover.jpg",
      "screenshots": ["https://images.gog.com/a_{formatter}.jpg"]
    },
    {"id": "2", "title": "Title Y", "slug": "title-y"}
  ]
}`

func TestFetchCatalogPage(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{
			"limit": r.URL.Query().Get("limit"),
			"order": r.URL.Query().Get("order"),
			"page":  r.URL.Query().Get("page"),
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(catalogBody))
	}))
	defer srv.Close()

	c := NewClient(Config{CatalogURL: srv.URL})
	products, err := c.FetchCatalogPage(context.Background(), CatalogOptions{})
	if err != nil {
		t.Fatalf("FetchCatalogPage: %v", err)
	}

	if gotQuery["limit"] != "48" || gotQuery["order"] != DefaultOrder {
		t.Errorf("defaults not applied: %v", gotQuery)
	}
	if gotQuery["page"] != "" {
		t.Errorf("page should be omitted when unset, got %q", gotQuery["page"])
	}

	if len(products) != 2 {
		t.Fatalf("got %d products, want 2", len(products))
	}
	x := products[0]
	if x.Title != "Title X" || x.Genres[0].Name != "RPG" || x.Price.FinalMoney.Amount != "9.99" {
		t.Errorf("unexpected first product: %+v", x)
	}
	if products[1].Title != "Title Y" {
		t.Errorf("order not preserved: %q", products[1].Title)
	}
}

func TestFetchCatalogPageOptions(t *testing.T) {
	var raw string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw = r.URL.RawQuery
		_, _ = w.Write([]byte(`{"products":[]}`))
	}))
	defer srv.Close()

	c := NewClient(Config{CatalogURL: srv.URL})
	if _, err := c.FetchCatalogPage(context.Background(), CatalogOptions{Limit: 2, Order: "desc:bestselling", Page: 3}); err != nil {
		t.Fatalf("FetchCatalogPage: %v", err)
	}
	if want := "limit=2&order=desc%3Abestselling&page=3"; raw != want {
		t.Fatalf("query = %q, want %q", raw, want)
	}
}

func TestFetchCatalogPageErrors(t *testing.T) {
	t.Run("non-2xx is a FetchError", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		_, err := NewClient(Config{CatalogURL: srv.URL}).FetchCatalogPage(context.Background(), CatalogOptions{})
		var fe *utils.FetchError
		if !errors.As(err, &fe) {
			t.Fatalf("want *utils.FetchError, got %T (%v)", err, err)
		}
		if fe.StatusCode != http.StatusServiceUnavailable {
			t.Errorf("status = %d", fe.StatusCode)
		}
	})

	t.Run("bad json is a ParseError", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html>`))
		}))
		defer srv.Close()

		_, err := NewClient(Config{CatalogURL: srv.URL}).FetchCatalogPage(context.Background(), CatalogOptions{})
		var pe *utils.ParseError
		if !errors.As(err, &pe) {
			t.Fatalf("want *utils.ParseError, got %T (%v)", err, err)
		}
	})
}

func TestDetailPath(t *testing.T) {
	cases := map[string]string{
		"my-game-name":               "my_game-name",
		"The-Witcher-3-Wild-Hunt":    "the_witcher-3-wild-hunt",
		"nohyphen":                   "nohyphen",
		"cyberpunk_2077":             "cyberpunk_2077",
		"-leading":                   "_leading",
		"Baldurs-Gate-3-Digital-Ed.": "baldurs_gate-3-digital-ed.",
	}
	for in, want := range cases {
		if got := DetailPath(in); got != want {
			t.Errorf("DetailPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFetchDetailPage(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		if r.Header.Get("User-Agent") == "" {
			t.Error("missing User-Agent")
		}
		_, _ = w.Write([]byte(`<div class="description">hi</div>`))
	}))
	defer srv.Close()

	c := NewClient(Config{StorefrontURL: srv.URL + "/"})
	body, err := c.FetchDetailPage(context.Background(), "my-game-name")
	if err != nil {
		t.Fatalf("FetchDetailPage: %v", err)
	}
	if path != "/game/my_game-name" {
		t.Errorf("path = %q", path)
	}
	if string(body) != `<div class="description">hi</div>` {
		t.Errorf("body = %q", body)
	}
	if got := c.DetailURL("A-B"); got != srv.URL+"/game/a_b" {
		t.Errorf("DetailURL = %q", got)
	}
}

func TestDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.jpg" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write([]byte{0xff, 0xd8, 0xff})
	}))
	defer srv.Close()

	c := NewClient(Config{})
	data, ct, err := c.Download(context.Background(), srv.URL+"/cover.jpg")
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if ct != "image/jpeg" || len(data) != 3 {
		t.Errorf("got %d bytes of %q", len(data), ct)
	}

	_, _, err = c.Download(context.Background(), srv.URL+"/missing.jpg")
	var fe *utils.FetchError
	if !errors.As(err, &fe) || fe.StatusCode != http.StatusNotFound {
		t.Fatalf("want 404 FetchError, got %v", err)
	}
}

func TestDownloadRejectsOversizedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write(make([]byte, 17))
	}))
	defer srv.Close()

	c := NewClient(Config{})
	c.maxBody = 16
	data, _, err := c.Download(context.Background(), srv.URL+"/huge.jpg")
	var fe *utils.FetchError
	if !errors.As(err, &fe) || !errors.Is(err, ErrBodyTooLarge) {
		t.Fatalf("want FetchError wrapping ErrBodyTooLarge, got %v", err)
	}
	if data != nil {
		t.Errorf("truncated body returned: %d bytes", len(data))
	}

	c.maxBody = 17
	if data, _, err = c.Download(context.Background(), srv.URL+"/exact.jpg"); err != nil || len(data) != 17 {
		t.Fatalf("body at the limit: %d bytes, err %v", len(data), err)
	}
}
