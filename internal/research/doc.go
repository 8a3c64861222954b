// Package research holds the two web tools the planning agents use: a
// DuckDuckGo search that returns result URLs and an article fetcher that
// returns readable page text. Both report failures as string payloads
// instead of errors, so an agent always gets something to read.
package research
