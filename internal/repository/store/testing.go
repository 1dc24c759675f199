package store

import "github.com/redis/rueidis"

// NewForTest wraps an externally constructed (usually mocked) client.
func NewForTest(c rueidis.Client) *Store {
	return &Store{client: c}
}
