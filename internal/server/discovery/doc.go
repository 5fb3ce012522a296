// Package discovery answers "which active, non-deleted postings match a query,
// and in what order". The Index applies paging validation, the per-query
// timeout and error classification; Store implementations (postgres, mongo,
// memory) own filtering and ranking.
package discovery
