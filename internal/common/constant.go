// Package common contains shared constants and sentinel errors used across
// the jobmarket server and client.
package common

const (
	// AuthorizationHeaderName carries the bearer credential on protected requests.
	AuthorizationHeaderName = "Authorization"

	// BearerScheme is the only accepted Authorization scheme.
	BearerScheme = "Bearer"

	// RecentlyViewedKey is the local storage slot holding the recency list.
	RecentlyViewedKey = "recentlyViewedJobs"
)
