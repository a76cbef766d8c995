// Package llm provides an OpenRouter chat client used as the alternate lyric
// translation back end, plus the fence-tolerant JSON helpers both back ends
// share.
//
// Retries use github.com/sethvargo/go-retry: 408, 429, 5xx and empty
// completions back off exponentially from one second, capped at ten, for up
// to three attempts. Other errors and context cancellation stop immediately.
package llm
