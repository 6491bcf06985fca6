package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/shelfmate/shelfmate/internal/shelf"
)

// ShelfPage is one page of a shelf or wishlist listing. LastPage is
// derived server-side from the total count and the current limit.
type ShelfPage struct {
	Books    []shelf.ShelvedBook `json:"books"`
	Page     int                 `json:"page"`
	LastPage int                 `json:"last_page"`
}

// wishPrefix selects between the shelf and wishlist route families.
func wishPrefix(wishlist bool) string {
	if wishlist {
		return "/wishlist"
	}
	return ""
}

// ListShelf fetches the user's shelf with the composed query.
func (c *Client) ListShelf(ctx context.Context, query url.Values) (*ShelfPage, error) {
	var page ShelfPage
	if err := c.doJSON(ctx, http.MethodGet, "", query, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// ListWishlist fetches the user's wishlist with the composed query.
func (c *Client) ListWishlist(ctx context.Context, query url.Values) (*ShelfPage, error) {
	var page ShelfPage
	if err := c.doJSON(ctx, http.MethodGet, "/wishlist", query, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetBook fetches a single shelved book by id.
func (c *Client) GetBook(ctx context.Context, id string, wishlist bool) (*shelf.ShelvedBook, error) {
	var book shelf.ShelvedBook
	if err := c.doJSON(ctx, http.MethodGet, wishPrefix(wishlist)+"/book/"+url.PathEscape(id), nil, nil, &book); err != nil {
		return nil, err
	}
	return &book, nil
}

// CreateBook adds a book to the shelf or wishlist. The payload is
// normalized before transmission so the possession invariant holds
// regardless of what the form handed over.
func (c *Client) CreateBook(ctx context.Context, book shelf.ShelvedBook, wishlist bool) error {
	book.Normalize()
	return c.doJSON(ctx, http.MethodPost, wishPrefix(wishlist), nil, book, nil)
}

// UpdateBook patches an existing shelved book. Normalized like CreateBook.
func (c *Client) UpdateBook(ctx context.Context, id string, book shelf.ShelvedBook, wishlist bool) error {
	book.Normalize()
	return c.doJSON(ctx, http.MethodPatch, wishPrefix(wishlist)+"/book/"+url.PathEscape(id), nil, book, nil)
}

// DeleteBook removes a shelved book.
func (c *Client) DeleteBook(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/book/"+url.PathEscape(id), nil, nil, nil)
}
