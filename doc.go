// Package backend provides the Punkontrol API server.

// This package contains the main application entry point. The actual API
// documentation is organized into subpackages:

// - internal/handlers: HTTP request handlers for all API endpoints
// - internal/models: Data models and database schemas
// - internal/auth: Authentication and authorization services
// - internal/feed: Keyset pagination engine for the post feed
// - internal/discover: Aggregated search across artworks, posts and users
// - internal/categories: Closed artwork category vocabulary
// - internal/counts: Denormalized counter repair
// - internal/storage: File storage (S3) operations
// - internal/database: Database connection and migrations
// - internal/cache: Redis response caching
// - internal/middleware: HTTP middleware (request ids, logging, metrics)
// - internal/seed: Development data seeding

// See the individual package documentation for detailed API reference.
package backend
