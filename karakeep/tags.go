package karakeep

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type tagMutationRequest struct {
	Tags []TagRef `json:"tags"`
}

// tagMutationResponse covers both tag endpoints; only one of the two fields
// is present depending on the operation.
type tagMutationResponse struct {
	Attached []string `json:"attached"`
	Detached []string `json:"detached"`
}

func (r *tagMutationResponse) validate() error {
	if r.Attached == nil && r.Detached == nil {
		return errors.New("tag response missing attached/detached")
	}
	return nil
}

func validateTagRefs(tags []TagRef) error {
	if len(tags) == 0 {
		return errors.New("at least one tag must be provided")
	}
	for i, tag := range tags {
		if err := tag.validate(); err != nil {
			return fmt.Errorf("tag %d: %w", i, err)
		}
	}
	return nil
}

// AttachTags attaches tags to a bookmark and returns the attached tag IDs.
// Corresponds to POST /bookmarks/{bookmarkId}/tags. Referencing tags by name
// creates them server-side when they do not exist yet; the endpoint is
// idempotent, already-attached tags are not duplicated.
func (c *Client) AttachTags(ctx context.Context, bookmarkID string, tags []TagRef, callOpts ...CallOption) ([]string, error) {
	return c.mutateTags(ctx, http.MethodPost, bookmarkID, tags, callOpts)
}

// DetachTags detaches tags from a bookmark and returns the detached tag IDs.
// Corresponds to DELETE /bookmarks/{bookmarkId}/tags. Only the
// bookmark-to-tag relation changes; the tags themselves survive.
func (c *Client) DetachTags(ctx context.Context, bookmarkID string, tags []TagRef, callOpts ...CallOption) ([]string, error) {
	return c.mutateTags(ctx, http.MethodDelete, bookmarkID, tags, callOpts)
}

func (c *Client) mutateTags(ctx context.Context, method, bookmarkID string, tags []TagRef, callOpts []CallOption) ([]string, error) {
	bookmarkID = strings.TrimSpace(bookmarkID)
	if bookmarkID == "" {
		return nil, errors.New("bookmark id cannot be empty")
	}
	if err := validateTagRefs(tags); err != nil {
		return nil, err
	}

	_, body, err := c.doJSON(ctx, method, "/bookmarks/"+bookmarkID+"/tags", nil, &tagMutationRequest{Tags: tags})
	if err != nil {
		return nil, err
	}

	var resp tagMutationResponse
	if err := decodeResponse(body, &resp, c.callOptions(callOpts)); err != nil {
		return nil, err
	}
	if method == http.MethodDelete {
		return resp.Detached, nil
	}
	return resp.Attached, nil
}
