package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ahgraber/karakeep-client/karakeep"
	"github.com/ahgraber/karakeep-client/logger"
)

// Version and Commit are set by the main package at startup.
var (
	Version = "dev"
	Commit  = "none"
)

const usageText = `karakeep - command-line client for a Karakeep bookmark server

Usage:
  karakeep [global flags] <command> [command flags] [args]

Commands:
  check                     Verify connectivity and credentials
  urls                      Print the URL of every link bookmark
  list                      List bookmarks page by page
  search <query>            Full-text search over bookmarks
  get <bookmark-id>         Fetch a single bookmark
  create                    Create a bookmark (link, text, or asset)
  update <bookmark-id>      Update bookmark metadata
  delete <bookmark-id>      Delete a bookmark
  tag <bookmark-id> <tag>   Attach one or more tags
  untag <bookmark-id> <tag> Detach one or more tags
  upload <file>             Upload a file as an asset
  asset <asset-id>          Download an asset's raw bytes
  version                   Print version information

Global flags:
  -config PATH     Config file (default $XDG_CONFIG_HOME/karakeep/config.yaml)
  -base-url URL    Karakeep server base URL (env KARAKEEP_BASEURL)
  -api-key KEY     API key (env KARAKEEP_API_KEY)
  -timeout DUR     Request timeout (default 30s)
  -log-level LVL   Log level: debug, info, warn, error (default info)
  -verbose         Log every request and response status
  -no-validate     Skip response validation, pass server payloads through
`

// app bundles the resolved configuration with the client every subcommand
// talks through.
type app struct {
	cfg    *Config
	client *karakeep.Client
	stdout io.Writer
	stderr io.Writer
}

// Run executes the CLI with the process arguments.
func Run(ctx context.Context) error {
	fs := flag.NewFlagSet("karakeep", flag.ContinueOnError)
	fs.Usage = func() { fmt.Fprint(os.Stderr, usageText) }

	var flags globalFlags
	fs.StringVar(&flags.configPath, "config", "", "config file path")
	fs.StringVar(&flags.baseURL, "base-url", "", "Karakeep server base URL")
	fs.StringVar(&flags.apiKey, "api-key", "", "Karakeep API key")
	fs.DurationVar(&flags.timeout, "timeout", 0, "request timeout")
	fs.StringVar(&flags.logLevel, "log-level", "", "log level")
	fs.BoolVar(&flags.verbose, "verbose", false, "log requests")
	fs.BoolVar(&flags.noValidate, "no-validate", false, "skip response validation")

	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	args := fs.Args()
	if len(args) == 0 {
		fs.Usage()
		return nil
	}
	command, args := args[0], args[1:]

	if command == "version" {
		fmt.Printf("karakeep %s (%s)\n", Version, Commit)
		return nil
	}

	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}

	level := cfg.LogLevel
	if cfg.Verbose && level != "debug" {
		level = "debug"
	}
	log, err := logger.New(level, true)
	if err != nil {
		return fmt.Errorf("configuring logger: %w", err)
	}

	opts := []karakeep.ClientOption{
		karakeep.WithTimeout(cfg.Timeout),
		karakeep.WithLogger(log),
	}
	if cfg.Verbose {
		opts = append(opts, karakeep.WithVerbose())
	}
	if cfg.NoValidate {
		opts = append(opts, karakeep.WithoutValidation())
	}

	client, err := karakeep.NewClient(cfg.BaseURL, cfg.APIKey, opts...)
	if err != nil {
		return err
	}

	a := &app{cfg: cfg, client: client, stdout: os.Stdout, stderr: os.Stderr}
	return a.dispatch(ctx, command, args)
}

func (a *app) dispatch(ctx context.Context, command string, args []string) error {
	switch command {
	case "check":
		return a.runCheck(ctx)
	case "urls":
		return a.runURLs(ctx)
	case "list":
		return a.runList(ctx, args)
	case "search":
		return a.runSearch(ctx, args)
	case "get":
		return a.runGet(ctx, args)
	case "create":
		return a.runCreate(ctx, args)
	case "update":
		return a.runUpdate(ctx, args)
	case "delete":
		return a.runDelete(ctx, args)
	case "tag":
		return a.runTag(ctx, args, false)
	case "untag":
		return a.runTag(ctx, args, true)
	case "upload":
		return a.runUpload(ctx, args)
	case "asset":
		return a.runAsset(ctx, args)
	default:
		return fmt.Errorf("unknown command %q (run without arguments for usage)", command)
	}
}

func (a *app) runCheck(ctx context.Context) error {
	if err := a.client.CheckConnectivity(ctx); err != nil {
		return fmt.Errorf("connectivity check failed: %w", err)
	}
	fmt.Fprintln(a.stdout, "ok")
	return nil
}

func (a *app) runURLs(ctx context.Context) error {
	urls, err := a.client.AllURLs(ctx)
	if err != nil {
		return err
	}
	for _, u := range urls {
		fmt.Fprintln(a.stdout, u)
	}
	return nil
}

func (a *app) runList(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	limit := fs.Int("limit", 20, "page size (max 100)")
	cursor := fs.String("cursor", "", "resume from a pagination cursor")
	sort := fs.String("sort", "", "sort order: asc or desc")
	archived := fs.String("archived", "", "filter by archived state: true or false")
	favourited := fs.String("favourited", "", "filter by favourite state: true or false")
	all := fs.Bool("all", false, "follow the cursor chain to the end")
	content := fs.Bool("content", false, "include full content in results")
	if err := fs.Parse(args); err != nil {
		return err
	}

	opts := karakeep.ListBookmarksOptions{
		Limit:     *limit,
		Cursor:    *cursor,
		SortOrder: karakeep.SortOrder(*sort),
	}
	var err error
	if opts.Archived, err = parseBoolFlag("archived", *archived); err != nil {
		return err
	}
	if opts.Favourited, err = parseBoolFlag("favourited", *favourited); err != nil {
		return err
	}
	if *content {
		opts.IncludeContent = boolPtr(true)
	}

	if *all {
		for bm, err := range a.client.Bookmarks(ctx, opts) {
			if err != nil {
				return err
			}
			if err := printJSON(a.stdout, bm); err != nil {
				return err
			}
		}
		return nil
	}

	page, err := a.client.ListBookmarks(ctx, opts)
	if err != nil {
		return err
	}
	if err := printJSON(a.stdout, page.Bookmarks); err != nil {
		return err
	}
	if page.NextCursor != nil && *page.NextCursor != "" {
		fmt.Fprintf(a.stderr, "next cursor: %s\n", *page.NextCursor)
	}
	return nil
}

func (a *app) runSearch(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("search", flag.ContinueOnError)
	limit := fs.Int("limit", 20, "page size (max 100)")
	sort := fs.String("sort", "", "sort order: asc, desc, or relevance")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return errors.New("usage: karakeep search <query>")
	}

	page, err := a.client.SearchBookmarks(ctx, strings.Join(fs.Args(), " "), karakeep.SearchBookmarksOptions{
		Limit:     *limit,
		SortOrder: karakeep.SortOrder(*sort),
	})
	if err != nil {
		return err
	}
	return printJSON(a.stdout, page.Bookmarks)
}

func (a *app) runGet(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: karakeep get <bookmark-id>")
	}
	bm, err := a.client.GetBookmark(ctx, args[0])
	if err != nil {
		return err
	}
	return printJSON(a.stdout, bm)
}

func (a *app) runCreate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("create", flag.ContinueOnError)
	url := fs.String("url", "", "create a link bookmark for this URL")
	text := fs.String("text", "", "create a text bookmark with this content")
	sourceURL := fs.String("source-url", "", "source URL for text or asset bookmarks")
	assetID := fs.String("asset-id", "", "create an asset bookmark from an uploaded asset")
	assetType := fs.String("asset-type", "", "asset content type: image or pdf")
	title := fs.String("title", "", "bookmark title")
	note := fs.String("note", "", "bookmark note")
	tags := fs.String("tags", "", "comma-separated tags to attach after creation")
	if err := fs.Parse(args); err != nil {
		return err
	}

	req, err := buildCreateRequest(*url, *text, *sourceURL, *assetID, *assetType, *title, *note)
	if err != nil {
		return err
	}

	bm, err := a.client.CreateBookmark(ctx, req)
	if err != nil {
		return err
	}

	if refs := parseTagArgs(splitTags(*tags)); len(refs) > 0 {
		if _, err := a.client.AttachTags(ctx, bm.ID, refs); err != nil {
			return fmt.Errorf("bookmark %s created, but attaching tags: %w", bm.ID, err)
		}
	}
	return printJSON(a.stdout, bm)
}

func (a *app) runUpdate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("update", flag.ContinueOnError)
	title := fs.String("title", "", "new title")
	note := fs.String("note", "", "new note")
	summary := fs.String("summary", "", "new summary")
	archived := fs.String("archived", "", "set archived state: true or false")
	favourited := fs.String("favourited", "", "set favourite state: true or false")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: karakeep update [flags] <bookmark-id>")
	}

	req := karakeep.UpdateBookmarkRequest{}
	if *title != "" {
		req.Title = title
	}
	if *note != "" {
		req.Note = note
	}
	if *summary != "" {
		req.Summary = summary
	}
	var err error
	if req.Archived, err = parseBoolFlag("archived", *archived); err != nil {
		return err
	}
	if req.Favourited, err = parseBoolFlag("favourited", *favourited); err != nil {
		return err
	}

	bm, err := a.client.UpdateBookmark(ctx, fs.Arg(0), req)
	if err != nil {
		return err
	}
	return printJSON(a.stdout, bm)
}

func (a *app) runDelete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: karakeep delete <bookmark-id>")
	}
	if err := a.client.DeleteBookmark(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "deleted %s\n", args[0])
	return nil
}

func (a *app) runTag(ctx context.Context, args []string, detach bool) error {
	if len(args) < 2 {
		verb := "tag"
		if detach {
			verb = "untag"
		}
		return fmt.Errorf("usage: karakeep %s <bookmark-id> <tag> [tag...]", verb)
	}
	bookmarkID, refs := args[0], parseTagArgs(args[1:])

	var ids []string
	var err error
	if detach {
		ids, err = a.client.DetachTags(ctx, bookmarkID, refs)
	} else {
		ids, err = a.client.AttachTags(ctx, bookmarkID, refs)
	}
	if err != nil {
		return err
	}
	for _, id := range ids {
		fmt.Fprintln(a.stdout, id)
	}
	return nil
}

func (a *app) runUpload(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("upload", flag.ContinueOnError)
	contentType := fs.String("type", "", "content type (default inferred from the file extension)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: karakeep upload [flags] <file>")
	}
	path := fs.Arg(0)

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening file: %w", err)
	}
	defer func() { _ = f.Close() }()

	ct := *contentType
	if ct == "" {
		ct = mime.TypeByExtension(filepath.Ext(path))
	}

	asset, err := a.client.UploadAsset(ctx, filepath.Base(path), f, ct)
	if err != nil {
		return err
	}
	return printJSON(a.stdout, asset)
}

func (a *app) runAsset(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("asset", flag.ContinueOnError)
	outPath := fs.String("o", "", "write the asset to this file instead of stdout")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: karakeep asset [flags] <asset-id>")
	}

	data, err := a.client.GetAsset(ctx, fs.Arg(0))
	if err != nil {
		return err
	}

	if *outPath == "" {
		_, err := a.stdout.Write(data)
		return err
	}
	if err := os.WriteFile(*outPath, data, 0o644); err != nil {
		return fmt.Errorf("writing asset: %w", err)
	}
	fmt.Fprintf(a.stderr, "wrote %d bytes to %s\n", len(data), *outPath)
	return nil
}

// buildCreateRequest assembles a bookmark creation request from the create
// command's flag values. Empty strings mean the flag was not given: unset
// flags stay nil on the request so the library's per-variant required-field
// checks see what was actually provided.
func buildCreateRequest(url, text, sourceURL, assetID, assetType, title, note string) (karakeep.CreateBookmarkRequest, error) {
	req := karakeep.CreateBookmarkRequest{}
	switch {
	case url != "":
		req.Type = karakeep.BookmarkTypeLink
		req.URL = &url
	case text != "":
		req.Type = karakeep.BookmarkTypeText
		req.Text = &text
	case assetID != "":
		req.Type = karakeep.BookmarkTypeAsset
		req.AssetID = &assetID
		if assetType != "" {
			req.AssetContentType = &assetType
		}
	default:
		return req, errors.New("one of -url, -text, or -asset-id is required")
	}
	if sourceURL != "" {
		req.SourceURL = &sourceURL
	}
	if title != "" {
		req.Title = &title
	}
	if note != "" {
		req.Note = &note
	}
	return req, nil
}

// parseBoolFlag turns a tri-state string flag into a *bool; empty means unset.
func parseBoolFlag(name, value string) (*bool, error) {
	if value == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return nil, fmt.Errorf("-%s must be true or false, got %q", name, value)
	}
	return &b, nil
}

func boolPtr(b bool) *bool { return &b }

// parseTagArgs turns tag arguments into references. Arguments prefixed with
// "id:" reference an existing tag by ID; everything else is a tag name.
func parseTagArgs(args []string) []karakeep.TagRef {
	refs := make([]karakeep.TagRef, 0, len(args))
	for _, arg := range args {
		arg = strings.TrimSpace(arg)
		if arg == "" {
			continue
		}
		if id, ok := strings.CutPrefix(arg, "id:"); ok {
			refs = append(refs, karakeep.TagRef{TagID: id})
			continue
		}
		refs = append(refs, karakeep.TagRef{TagName: arg})
	}
	return refs
}

// splitTags parses a comma-separated string of tags into a slice of strings.
func splitTags(tags string) []string {
	var slice []string
	for split := range strings.SplitSeq(tags, ",") {
		if tag := strings.TrimSpace(split); tag != "" {
			slice = append(slice, tag)
		}
	}
	return slice
}
