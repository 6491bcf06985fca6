package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"testing"

	"github.com/shelfmate/shelfmate/internal/api"
	"github.com/shelfmate/shelfmate/internal/session"
	"github.com/shelfmate/shelfmate/internal/shelf"
)

func testSession(t *testing.T, token string) *session.Store {
	t.Helper()
	s := session.NewStore(filepath.Join(t.TempDir(), "session.yml"))
	if token != "" {
		if err := s.Save(token, 3600); err != nil {
			t.Fatal(err)
		}
	}
	return s
}

func TestListShelf_SendsAuthAndQuery(t *testing.T) {
	var gotAuth string
	var gotQuery url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.Query()
		_ = json.NewEncoder(w).Encode(api.ShelfPage{
			Books:    []shelf.ShelvedBook{{ID: "1", BookKey: "/works/OL1W", Status: shelf.StatusOwned}},
			Page:     2,
			LastPage: 5,
		})
	}))
	defer srv.Close()

	c := api.New(srv.URL, testSession(t, "tok-1"), nil)
	q := url.Values{}
	q.Set("title", "Hobbit")
	q.Set("page", "2")

	page, err := c.ListShelf(context.Background(), q)
	if err != nil {
		t.Fatalf("ListShelf: %v", err)
	}
	if gotAuth != "Bearer tok-1" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "Bearer tok-1")
	}
	if gotQuery.Get("title") != "Hobbit" || gotQuery.Get("page") != "2" {
		t.Errorf("query = %v", gotQuery)
	}
	if len(page.Books) != 1 || page.LastPage != 5 {
		t.Errorf("page = %+v", page)
	}
}

func TestCreateBook_NormalizesBeforeTransmission(t *testing.T) {
	var sent map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&sent)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := api.New(srv.URL, testSession(t, "tok"), nil)
	book := shelf.ShelvedBook{
		BookKey:   "/works/OL1W",
		Status:    shelf.StatusOwned,
		OtherName: "Alex", // stale from a prior status selection
		Date:      "2025-02-01",
	}
	if err := c.CreateBook(context.Background(), book, false); err != nil {
		t.Fatalf("CreateBook: %v", err)
	}
	if _, ok := sent["other_name"]; ok {
		t.Error("owned book must not transmit other_name")
	}
	if _, ok := sent["date"]; ok {
		t.Error("owned book must not transmit date")
	}
	if sent["status"] != "owned" {
		t.Errorf("status = %v, want owned", sent["status"])
	}
}

func TestUnauthorized_MapsToSessionExpired(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := api.New(srv.URL, testSession(t, ""), nil)
	_, err := c.ListShelf(context.Background(), nil)
	if err != api.ErrSessionExpired {
		t.Errorf("err = %v, want ErrSessionExpired", err)
	}
}

func TestBadRequest_DecodesFormError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"Validation failed","errors":[{"path":"book_key","msg":"Book is required"}]}`))
	}))
	defer srv.Close()

	c := api.New(srv.URL, testSession(t, "tok"), nil)
	err := c.CreateBook(context.Background(), shelf.ShelvedBook{}, false)
	fe, ok := api.AsFormError(err)
	if !ok {
		t.Fatalf("err = %v, want FormError", err)
	}
	if fe.Message != "Validation failed" {
		t.Errorf("Message = %q", fe.Message)
	}
	if len(fe.Fields) != 1 || fe.Fields[0].Path != "book_key" || fe.Fields[0].Message != "Book is required" {
		t.Errorf("Fields = %+v", fe.Fields)
	}
}

func TestBadRequest_UnparsableBodyStillFormError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("nope"))
	}))
	defer srv.Close()

	c := api.New(srv.URL, testSession(t, "tok"), nil)
	err := c.DeleteBook(context.Background(), "x")
	if _, ok := api.AsFormError(err); !ok {
		t.Errorf("err = %v, want FormError", err)
	}
}

func TestNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := api.New(srv.URL, testSession(t, "tok"), nil)
	if _, err := c.GetBook(context.Background(), "42", false); err != api.ErrNotFound {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestWishlistRoutes(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{"books":[],"page":1,"last_page":1}`))
	}))
	defer srv.Close()

	c := api.New(srv.URL, testSession(t, "tok"), nil)
	if _, err := c.ListWishlist(context.Background(), nil); err != nil {
		t.Fatalf("ListWishlist: %v", err)
	}
	if gotPath != "/wishlist" {
		t.Errorf("path = %q, want /wishlist", gotPath)
	}
	if _, err := c.GetBook(context.Background(), "7", true); err != nil {
		t.Fatalf("GetBook: %v", err)
	}
	if gotPath != "/wishlist/book/7" {
		t.Errorf("path = %q, want /wishlist/book/7", gotPath)
	}
}
