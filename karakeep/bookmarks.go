package karakeep

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// maxPageLimit is the server-enforced page size ceiling; checked client-side
// to fail before the round trip.
const maxPageLimit = 100

// ListBookmarks fetches a single page of bookmarks. Corresponds to
// GET /bookmarks. Pass the returned page's NextCursor verbatim in
// opts.Cursor to fetch the following page; use Bookmarks for a full
// traversal.
func (c *Client) ListBookmarks(ctx context.Context, opts ListBookmarksOptions, callOpts ...CallOption) (*BookmarkPage, error) {
	if opts.Limit > maxPageLimit {
		return nil, fmt.Errorf("maximum limit is %d", maxPageLimit)
	}

	query := url.Values{}
	if opts.Archived != nil {
		query.Set("archived", strconv.FormatBool(*opts.Archived))
	}
	if opts.Favourited != nil {
		query.Set("favourited", strconv.FormatBool(*opts.Favourited))
	}
	if opts.SortOrder != "" {
		query.Set("sortOrder", string(opts.SortOrder))
	}
	if opts.Limit > 0 {
		query.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Cursor != "" {
		query.Set("cursor", opts.Cursor)
	}
	setIncludeContent(query, opts.IncludeContent, false)

	_, body, err := c.doJSON(ctx, http.MethodGet, "/bookmarks", query, nil)
	if err != nil {
		return nil, err
	}

	var page BookmarkPage
	if err := decodeResponse(body, &page, c.callOptions(callOpts)); err != nil {
		return nil, err
	}
	page.Raw = body
	return &page, nil
}

// SearchBookmarks fetches a single page of bookmarks matching the query
// string. Corresponds to GET /bookmarks/search.
func (c *Client) SearchBookmarks(ctx context.Context, q string, opts SearchBookmarksOptions, callOpts ...CallOption) (*BookmarkPage, error) {
	if strings.TrimSpace(q) == "" {
		return nil, errors.New("search query cannot be empty")
	}
	if opts.Limit > maxPageLimit {
		return nil, fmt.Errorf("maximum limit is %d", maxPageLimit)
	}

	query := url.Values{}
	query.Set("q", q)
	if opts.SortOrder != "" {
		query.Set("sortOrder", string(opts.SortOrder))
	}
	if opts.Limit > 0 {
		query.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Cursor != "" {
		query.Set("cursor", opts.Cursor)
	}
	setIncludeContent(query, opts.IncludeContent, true)

	_, body, err := c.doJSON(ctx, http.MethodGet, "/bookmarks/search", query, nil)
	if err != nil {
		return nil, err
	}

	var page BookmarkPage
	if err := decodeResponse(body, &page, c.callOptions(callOpts)); err != nil {
		return nil, err
	}
	page.Raw = body
	return &page, nil
}

// setIncludeContent applies the includeContent parameter. The server default
// is true; the listing default here is false since full content makes large
// listings expensive.
func setIncludeContent(query url.Values, include *bool, def bool) {
	v := def
	if include != nil {
		v = *include
	}
	query.Set("includeContent", strconv.FormatBool(v))
}

// GetBookmark fetches a single bookmark by its ID, content included.
// Corresponds to GET /bookmarks/{bookmarkId}.
func (c *Client) GetBookmark(ctx context.Context, bookmarkID string, callOpts ...CallOption) (*Bookmark, error) {
	bookmarkID = strings.TrimSpace(bookmarkID)
	if bookmarkID == "" {
		return nil, errors.New("bookmark id cannot be empty")
	}

	query := url.Values{}
	query.Set("includeContent", "true")

	_, body, err := c.doJSON(ctx, http.MethodGet, "/bookmarks/"+bookmarkID, query, nil)
	if err != nil {
		return nil, err
	}

	var bm Bookmark
	if err := decodeResponse(body, &bm, c.callOptions(callOpts)); err != nil {
		return nil, err
	}
	bm.Raw = body
	return &bm, nil
}

// CreateBookmark creates a new bookmark. Corresponds to POST /bookmarks.
// The request's Type decides which payload fields are required: link needs
// URL, text needs Text, asset needs AssetContentType and AssetID.
//
// The server answers 201 for a new bookmark and 200 when an equivalent one
// already exists; both decode to the resulting bookmark.
func (c *Client) CreateBookmark(ctx context.Context, req CreateBookmarkRequest, callOpts ...CallOption) (*Bookmark, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	_, body, err := c.doJSON(ctx, http.MethodPost, "/bookmarks", nil, &req)
	if err != nil {
		return nil, err
	}

	var bm Bookmark
	if err := decodeResponse(body, &bm, c.callOptions(callOpts)); err != nil {
		return nil, err
	}
	bm.Raw = body
	return &bm, nil
}

// UpdateBookmark applies a partial update to a bookmark. Corresponds to
// PATCH /bookmarks/{bookmarkId}. The response is a partial representation of
// the bookmark, so it is decoded best-effort regardless of the validation
// setting; the exact body is available on the result's Raw field.
func (c *Client) UpdateBookmark(ctx context.Context, bookmarkID string, req UpdateBookmarkRequest) (*Bookmark, error) {
	bookmarkID = strings.TrimSpace(bookmarkID)
	if bookmarkID == "" {
		return nil, errors.New("bookmark id cannot be empty")
	}
	if req.isEmpty() {
		return nil, errors.New("update must contain at least one field")
	}

	_, body, err := c.doJSON(ctx, http.MethodPatch, "/bookmarks/"+bookmarkID, nil, &req)
	if err != nil {
		return nil, err
	}

	var bm Bookmark
	if err := decodeResponse(body, &bm, callOptions{skipValidation: true}); err != nil {
		return nil, err
	}
	bm.Raw = body
	return &bm, nil
}

// DeleteBookmark deletes a bookmark by its ID. Corresponds to
// DELETE /bookmarks/{bookmarkId}. Deleting a nonexistent ID returns
// ErrNotFound, which callers may treat as already-deleted.
func (c *Client) DeleteBookmark(ctx context.Context, bookmarkID string) error {
	bookmarkID = strings.TrimSpace(bookmarkID)
	if bookmarkID == "" {
		return errors.New("bookmark id cannot be empty")
	}

	_, _, err := c.doJSON(ctx, http.MethodDelete, "/bookmarks/"+bookmarkID, nil, nil)
	return err
}

// GetBookmarkIDByURL looks up the bookmark whose canonical URL matches the
// given one, via search plus an exact-match scan. Returns empty string when
// no bookmark matches; lookup failures are returned, not swallowed.
func (c *Client) GetBookmarkIDByURL(ctx context.Context, rawURL string) (string, error) {
	want, err := normalizeURL(rawURL)
	if err != nil {
		return "", err
	}

	include := true
	page, err := c.SearchBookmarks(ctx, want, SearchBookmarksOptions{
		Limit:          maxPageLimit,
		IncludeContent: &include,
	})
	if err != nil {
		return "", fmt.Errorf("searching bookmark by url: %w", err)
	}

	for i := range page.Bookmarks {
		got := page.Bookmarks[i].GetURL()
		if got == "" {
			continue
		}
		if normalized, err := normalizeURL(got); err == nil && normalized == want {
			return page.Bookmarks[i].ID, nil
		}
	}
	return "", nil
}
