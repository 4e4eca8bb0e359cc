package karakeep

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
)

// UploadAsset uploads a new asset as a single multipart request and returns
// its metadata. Corresponds to POST /assets. Assets are immutable: replacing
// one means uploading a new asset and re-attaching it.
func (c *Client) UploadAsset(ctx context.Context, fileName string, content io.Reader, contentType string, callOpts ...CallOption) (*Asset, error) {
	if fileName == "" {
		return nil, errors.New("file name cannot be empty")
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)

	// CreateFormFile would hardcode application/octet-stream, so build the
	// part header by hand to carry the real content type.
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, fileName))
	header.Set("Content-Type", contentType)

	part, err := form.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("building multipart request: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("reading asset content: %w", err)
	}
	if err := form.Close(); err != nil {
		return nil, fmt.Errorf("building multipart request: %w", err)
	}

	_, body, err := c.do(ctx, http.MethodPost, "/assets", nil, &buf, form.FormDataContentType(), false)
	if err != nil {
		return nil, err
	}

	var asset Asset
	if err := decodeResponse(body, &asset, c.callOptions(callOpts)); err != nil {
		return nil, err
	}
	asset.Raw = body
	return &asset, nil
}

// GetAsset fetches the raw bytes of an asset. Corresponds to
// GET /assets/{assetId}. The payload is not JSON, so response validation
// never applies here.
func (c *Client) GetAsset(ctx context.Context, assetID string) ([]byte, error) {
	assetID = strings.TrimSpace(assetID)
	if assetID == "" {
		return nil, errors.New("asset id cannot be empty")
	}

	_, body, err := c.do(ctx, http.MethodGet, "/assets/"+assetID, nil, nil, "", true)
	if err != nil {
		return nil, err
	}
	return body, nil
}

type attachAssetRequest struct {
	ID        string    `json:"id"`
	AssetType AssetType `json:"assetType"`
}

type replaceAssetRequest struct {
	AssetID string `json:"assetId"`
}

// AttachAsset attaches an uploaded asset to a bookmark. Corresponds to
// POST /bookmarks/{bookmarkId}/assets.
func (c *Client) AttachAsset(ctx context.Context, bookmarkID, assetID string, assetType AssetType, callOpts ...CallOption) (*BookmarkAsset, error) {
	bookmarkID, assetID = strings.TrimSpace(bookmarkID), strings.TrimSpace(assetID)
	if bookmarkID == "" || assetID == "" {
		return nil, errors.New("bookmark id and asset id cannot be empty")
	}

	req := attachAssetRequest{ID: assetID, AssetType: assetType}
	_, body, err := c.doJSON(ctx, http.MethodPost, "/bookmarks/"+bookmarkID+"/assets", nil, &req)
	if err != nil {
		return nil, err
	}

	var attached BookmarkAsset
	if err := decodeResponse(body, &attached, c.callOptions(callOpts)); err != nil {
		return nil, err
	}
	attached.Raw = body
	return &attached, nil
}

// ReplaceAsset swaps an asset attached to a bookmark for another uploaded
// asset. Corresponds to PUT /bookmarks/{bookmarkId}/assets/{assetId}.
func (c *Client) ReplaceAsset(ctx context.Context, bookmarkID, assetID, newAssetID string) error {
	bookmarkID, assetID = strings.TrimSpace(bookmarkID), strings.TrimSpace(assetID)
	newAssetID = strings.TrimSpace(newAssetID)
	if bookmarkID == "" || assetID == "" || newAssetID == "" {
		return errors.New("bookmark id, asset id, and new asset id cannot be empty")
	}

	_, _, err := c.doJSON(ctx, http.MethodPut, "/bookmarks/"+bookmarkID+"/assets/"+assetID, nil, &replaceAssetRequest{AssetID: newAssetID})
	return err
}

// DetachAsset detaches an asset from a bookmark. Corresponds to
// DELETE /bookmarks/{bookmarkId}/assets/{assetId}. The asset itself is not
// deleted.
func (c *Client) DetachAsset(ctx context.Context, bookmarkID, assetID string) error {
	bookmarkID, assetID = strings.TrimSpace(bookmarkID), strings.TrimSpace(assetID)
	if bookmarkID == "" || assetID == "" {
		return errors.New("bookmark id and asset id cannot be empty")
	}

	_, _, err := c.doJSON(ctx, http.MethodDelete, "/bookmarks/"+bookmarkID+"/assets/"+assetID, nil, nil)
	return err
}
