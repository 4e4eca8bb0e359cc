package karakeep

import (
	"context"
	"fmt"
	"iter"
)

// Bookmarks returns a lazy iterator over every bookmark reachable from the
// given listing options, following the cursor chain page by page until the
// server reports no next cursor. Pages are fetched on demand; breaking out
// of the loop stops further requests. The traversal is strictly sequential
// and cannot be resumed mid-way: iterate again to start over.
//
// A server that returns the same non-empty cursor twice in a row would make
// the walk loop forever, so that case surfaces as ErrCursorStalled instead.
func (c *Client) Bookmarks(ctx context.Context, opts ListBookmarksOptions, callOpts ...CallOption) iter.Seq2[*Bookmark, error] {
	return func(yield func(*Bookmark, error) bool) {
		cursor := opts.Cursor
		for {
			pageOpts := opts
			pageOpts.Cursor = cursor

			page, err := c.ListBookmarks(ctx, pageOpts, callOpts...)
			if err != nil {
				yield(nil, fmt.Errorf("listing bookmarks: %w", err))
				return
			}

			for i := range page.Bookmarks {
				if !yield(&page.Bookmarks[i], nil) {
					return
				}
			}

			if page.NextCursor == nil || *page.NextCursor == "" {
				return
			}
			if *page.NextCursor == cursor {
				yield(nil, fmt.Errorf("%w: cursor %q", ErrCursorStalled, cursor))
				return
			}
			cursor = *page.NextCursor
		}
	}
}

// AllURLs walks every bookmark and collects the canonical URLs of those that
// have one, in page order. Bookmarks whose content variant carries no URL
// (text, asset, unknown) are skipped.
func (c *Client) AllURLs(ctx context.Context, callOpts ...CallOption) ([]string, error) {
	urls := []string{}
	for bm, err := range c.Bookmarks(ctx, ListBookmarksOptions{Limit: maxPageLimit}, callOpts...) {
		if err != nil {
			return nil, err
		}
		if u := bm.GetURL(); u != "" {
			urls = append(urls, u)
		}
	}
	return urls, nil
}
