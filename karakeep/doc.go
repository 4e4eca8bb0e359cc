// Package karakeep provides a client for the Karakeep bookmark-management
// API: bookmark CRUD, search, tag attach/detach, and asset upload/retrieval
// over the /api/v1 REST surface.
//
// Most of the code references the following parts of the Karakeep codebase:
//   - API routes (http layer): packages/api/routes/bookmarks.ts, assets.ts
//   - Shared types: packages/shared/types/bookmarks.ts
//   - OpenAPI spec: packages/open-api/karakeep-openapi-spec.json
//
// The client is configured once at construction (explicit arguments win over
// the KARAKEEP_API_KEY / KARAKEEP_BASEURL environment variables) and holds
// no other state. Requests are never retried; callers own retry policy.
package karakeep
