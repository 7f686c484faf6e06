// Package record defines the persisted shadow document and the scoped store
// contract shared by the analysis and visualization services.
package record

import (
	"context"
	"time"
)

// Record is one stored shadow analysis. Data holds the raster in the JSON
// records layout written by raster.Encode.
type Record struct {
	ID        string
	Timestamp time.Time
	Time      string
	Data      string
}

// Store is a single connection to the record backend. A Store is owned by one
// request and must not be shared across goroutines.
type Store interface {
	// Connect is idempotent. After a failed Connect the store stays eligible for
	// another attempt and every other operation fails.
	Connect(ctx context.Context) error
	Insert(ctx context.Context, rec Record) (string, error)
	// Get fails with an invalid_input error for ids the backend cannot parse and
	// with not_found when the id is well formed but unknown.
	Get(ctx context.Context, id string) (Record, error)
	// Close is safe before Connect and when called repeatedly.
	Close(ctx context.Context) error
}

// Opener constructs a fresh, unconnected Store per request.
type Opener interface {
	Open() Store
}

// OpenerFunc adapts a constructor to Opener.
type OpenerFunc func() Store

// Open implements Opener.
func (f OpenerFunc) Open() Store {
	return f()
}

// IDValidator is implemented by openers that can reject a malformed id without
// reaching the backend.
type IDValidator interface {
	ValidateID(id string) error
}

// WithIDValidation returns an opener that also implements IDValidator.
func WithIDValidation(opener Opener, validate func(id string) error) Opener {
	return validatingOpener{Opener: opener, validate: validate}
}

type validatingOpener struct {
	Opener
	validate func(id string) error
}

func (o validatingOpener) ValidateID(id string) error {
	return o.validate(id)
}

// ValidateID checks id with opener when it implements IDValidator and accepts
// it otherwise.
func ValidateID(opener Opener, id string) error {
	if v, ok := opener.(IDValidator); ok {
		return v.ValidateID(id)
	}
	return nil
}
