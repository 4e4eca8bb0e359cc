package karakeep

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ContentType discriminates the payload of a bookmark's content.
type ContentType string

const (
	ContentTypeLink    ContentType = "link"
	ContentTypeText    ContentType = "text"
	ContentTypeAsset   ContentType = "asset"
	ContentTypeUnknown ContentType = "unknown"
)

// BookmarkContent is the tagged union behind a bookmark. Type selects which
// fields are populated; everything variant-specific is a pointer so absent
// fields stay distinguishable from empty ones.
type BookmarkContent struct {
	Type ContentType `json:"type"`

	// link variant
	URL                      *string `json:"url,omitempty"`
	Title                    *string `json:"title,omitempty"`
	Description              *string `json:"description,omitempty"`
	ImageURL                 *string `json:"imageUrl,omitempty"`
	ImageAssetID             *string `json:"imageAssetId,omitempty"`
	ScreenshotAssetID        *string `json:"screenshotAssetId,omitempty"`
	FullPageArchiveAssetID   *string `json:"fullPageArchiveAssetId,omitempty"`
	PrecrawledArchiveAssetID *string `json:"precrawledArchiveAssetId,omitempty"`
	VideoAssetID             *string `json:"videoAssetId,omitempty"`
	Favicon                  *string `json:"favicon,omitempty"`
	HTMLContent              *string `json:"htmlContent,omitempty"`
	ContentAssetID           *string `json:"contentAssetId,omitempty"`
	CrawledAt                *string `json:"crawledAt,omitempty"`
	Author                   *string `json:"author,omitempty"`
	Publisher                *string `json:"publisher,omitempty"`
	DatePublished            *string `json:"datePublished,omitempty"`
	DateModified             *string `json:"dateModified,omitempty"`

	// text variant
	Text      *string `json:"text,omitempty"`
	SourceURL *string `json:"sourceUrl,omitempty"` // also set on asset variant

	// asset variant
	AssetContentType *string  `json:"assetType,omitempty"` // "image" or "pdf"
	AssetID          *string  `json:"assetId,omitempty"`
	FileName         *string  `json:"fileName,omitempty"`
	Size             *float64 `json:"size,omitempty"`
	Content          *string  `json:"content,omitempty"`
}

// Kind returns the content's discriminant, mapping any unrecognized value to
// ContentTypeUnknown so that server-side additions never break callers.
func (c BookmarkContent) Kind() ContentType {
	switch c.Type {
	case ContentTypeLink, ContentTypeText, ContentTypeAsset:
		return c.Type
	default:
		return ContentTypeUnknown
	}
}

// GetURL returns the canonical URL of the content: the URL field for the
// link variant, empty string for every other variant. Total over all
// discriminants, including unrecognized ones.
func (c BookmarkContent) GetURL() string {
	if c.Kind() == ContentTypeLink && c.URL != nil {
		return *c.URL
	}
	return ""
}

func (c BookmarkContent) validate() error {
	switch c.Kind() {
	case ContentTypeLink:
		if c.URL == nil {
			return errors.New("link content missing url")
		}
	case ContentTypeText:
		if c.Text == nil {
			return errors.New("text content missing text")
		}
	case ContentTypeAsset:
		if c.AssetContentType == nil {
			return errors.New("asset content missing assetType")
		}
		if c.AssetID == nil {
			return errors.New("asset content missing assetId")
		}
	}
	return nil
}

// TagShort is the tag representation embedded in a bookmark.
type TagShort struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	AttachedBy string `json:"attachedBy"` // "ai" or "human"
}

// AssetType categorizes an asset attached to a bookmark.
type AssetType string

const (
	AssetTypeLinkHTMLContent   AssetType = "linkHtmlContent"
	AssetTypeScreenshot        AssetType = "screenshot"
	AssetTypeAssetScreenshot   AssetType = "assetScreenshot"
	AssetTypeBannerImage       AssetType = "bannerImage"
	AssetTypeFullPageArchive   AssetType = "fullPageArchive"
	AssetTypeVideo             AssetType = "video"
	AssetTypeBookmarkAsset     AssetType = "bookmarkAsset"
	AssetTypePrecrawledArchive AssetType = "precrawledArchive"
	AssetTypeUnknown           AssetType = "unknown"
)

// BookmarkAsset is an asset reference attached to a bookmark.
type BookmarkAsset struct {
	ID        string    `json:"id"`
	AssetType AssetType `json:"assetType"`

	// Raw holds the exact response body when this object came off the wire.
	Raw json.RawMessage `json:"-"`
}

func (a *BookmarkAsset) validate() error {
	if a.ID == "" {
		return errors.New("bookmark asset missing id")
	}
	if a.AssetType == "" {
		return errors.New("bookmark asset missing assetType")
	}
	return nil
}

// Asset describes an uploaded asset as returned by POST /assets.
type Asset struct {
	AssetID     string  `json:"assetId"`
	ContentType string  `json:"contentType"`
	Size        float64 `json:"size"`
	FileName    string  `json:"fileName"`

	Raw json.RawMessage `json:"-"`
}

func (a *Asset) validate() error {
	if a.AssetID == "" {
		return errors.New("asset missing assetId")
	}
	if a.ContentType == "" {
		return errors.New("asset missing contentType")
	}
	return nil
}

// Bookmark is a single bookmark as returned by the API.
type Bookmark struct {
	ID                  string          `json:"id"`
	CreatedAt           string          `json:"createdAt"` // ISO8601
	ModifiedAt          *string         `json:"modifiedAt"`
	Title               *string         `json:"title"`
	Archived            bool            `json:"archived"`
	Favourited          bool            `json:"favourited"`
	TaggingStatus       *string         `json:"taggingStatus"`       // success | failure | pending
	SummarizationStatus *string         `json:"summarizationStatus"` // success | failure | pending
	Note                *string         `json:"note"`
	Summary             *string         `json:"summary"`
	Tags                []TagShort      `json:"tags"`
	Content             BookmarkContent `json:"content"`
	Assets              []BookmarkAsset `json:"assets"`

	Raw json.RawMessage `json:"-"`
}

func (b *Bookmark) validate() error {
	if b.ID == "" {
		return errors.New("bookmark missing id")
	}
	if b.CreatedAt == "" {
		return errors.New("bookmark missing createdAt")
	}
	if b.Content.Type == "" {
		return errors.New("bookmark missing content type")
	}
	return b.Content.validate()
}

// GetURL returns the canonical URL of the bookmark's content, or empty
// string when the content variant carries none.
func (b *Bookmark) GetURL() string {
	return b.Content.GetURL()
}

// BookmarkPage is one page of a cursor-paginated bookmark listing. A nil
// NextCursor marks the end of the sequence; a non-nil cursor must be passed
// verbatim to the next fetch.
type BookmarkPage struct {
	Bookmarks  []Bookmark `json:"bookmarks"`
	NextCursor *string    `json:"nextCursor"`

	Raw json.RawMessage `json:"-"`
}

func (p *BookmarkPage) validate() error {
	if p.Bookmarks == nil {
		return errors.New("page missing bookmarks")
	}
	for i := range p.Bookmarks {
		if err := p.Bookmarks[i].validate(); err != nil {
			return fmt.Errorf("bookmark %d: %w", i, err)
		}
	}
	return nil
}

// BookmarkType discriminates a bookmark creation request.
type BookmarkType string

const (
	BookmarkTypeLink  BookmarkType = "link"
	BookmarkTypeText  BookmarkType = "text"
	BookmarkTypeAsset BookmarkType = "asset"
)

// CreateBookmarkRequest is the request body for POST /bookmarks. Type is
// required and decides which variant-specific fields must be set.
type CreateBookmarkRequest struct {
	Type BookmarkType `json:"type"`

	// common optional fields
	Title      *string `json:"title,omitempty"`
	Archived   *bool   `json:"archived,omitempty"`
	Favourited *bool   `json:"favourited,omitempty"`
	Note       *string `json:"note,omitempty"`
	Summary    *string `json:"summary,omitempty"`
	CreatedAt  *string `json:"createdAt,omitempty"` // ISO8601 override

	// link variant
	URL                 *string `json:"url,omitempty"`
	PrecrawledArchiveID *string `json:"precrawledArchiveId,omitempty"`

	// text variant
	Text      *string `json:"text,omitempty"`
	SourceURL *string `json:"sourceUrl,omitempty"` // also used by asset

	// asset variant
	AssetContentType *string `json:"assetType,omitempty"` // "image" or "pdf"
	AssetID          *string `json:"assetId,omitempty"`
	FileName         *string `json:"fileName,omitempty"`
}

func (r *CreateBookmarkRequest) validate() error {
	switch r.Type {
	case BookmarkTypeLink:
		if r.URL == nil {
			return errors.New("url is required when type is link")
		}
	case BookmarkTypeText:
		if r.Text == nil {
			return errors.New("text is required when type is text")
		}
	case BookmarkTypeAsset:
		if r.AssetContentType == nil {
			return errors.New("assetType (image or pdf) is required when type is asset")
		}
		if r.AssetID == nil {
			return errors.New("assetId is required when type is asset")
		}
	default:
		return fmt.Errorf("unsupported bookmark type %q", r.Type)
	}
	return nil
}

// UpdateBookmarkRequest is the partial field set accepted by
// PATCH /bookmarks/{id}. Only non-nil fields are sent.
type UpdateBookmarkRequest struct {
	Title      *string `json:"title,omitempty"`
	Archived   *bool   `json:"archived,omitempty"`
	Favourited *bool   `json:"favourited,omitempty"`
	Note       *string `json:"note,omitempty"`
	Summary    *string `json:"summary,omitempty"`
	CreatedAt  *string `json:"createdAt,omitempty"`
	URL        *string `json:"url,omitempty"`
	Text       *string `json:"text,omitempty"`
}

func (r *UpdateBookmarkRequest) isEmpty() bool {
	return r.Title == nil && r.Archived == nil && r.Favourited == nil &&
		r.Note == nil && r.Summary == nil && r.CreatedAt == nil &&
		r.URL == nil && r.Text == nil
}

// TagRef addresses a tag by id or by name. Referencing by name creates the
// tag server-side if it does not exist yet; detaching by name never does.
type TagRef struct {
	TagID   string `json:"tagId,omitempty"`
	TagName string `json:"tagName,omitempty"`
}

func (t TagRef) validate() error {
	if t.TagID == "" && t.TagName == "" {
		return errors.New("tag ref needs a tagId or tagName")
	}
	return nil
}

// SortOrder controls result ordering for list and search calls.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
	// SortRelevance is only meaningful for search.
	SortRelevance SortOrder = "relevance"
)

// ListBookmarksOptions are the query parameters of GET /bookmarks. Zero
// values are omitted from the request.
type ListBookmarksOptions struct {
	Limit          int // max 100, 0 means server default
	Cursor         string
	SortOrder      SortOrder
	Archived       *bool
	Favourited     *bool
	IncludeContent *bool // server defaults to true
}

// SearchBookmarksOptions are the pagination and ordering parameters of
// GET /bookmarks/search; the query string itself is a method argument.
type SearchBookmarksOptions struct {
	Limit          int // max 100, 0 means server default
	Cursor         string
	SortOrder      SortOrder
	IncludeContent *bool
}
