package collectors

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"tool-pulse/models"
)

// Meta keys every collector must set. Source-specific keys are additive.
const (
	MetaWindowStart = "window_start"
	MetaWindowEnd   = "window_end"
)

// RawSourceData is one collector invocation's output: ordered text blocks
// (order carries no ranking meaning) plus collection metadata.
type RawSourceData struct {
	Source    string
	SubjectID primitive.ObjectID
	Texts     []string
	Meta      map[string]any
}

// Window returns the declared collection window stored in Meta.
func (r *RawSourceData) Window() (start, end time.Time) {
	start, _ = r.Meta[MetaWindowStart].(time.Time)
	end, _ = r.Meta[MetaWindowEnd].(time.Time)
	return start, end
}

// CollectionError is raised when a source cannot produce data: no network
// path, no qualifying data, automation target not found, or the upstream
// rejected the query.
type CollectionError struct {
	Source string
	Reason string
	Err    error
}

func (e *CollectionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("collect %s: %s: %v", e.Source, e.Reason, e.Err)
	}
	return fmt.Sprintf("collect %s: %s", e.Source, e.Reason)
}

func (e *CollectionError) Unwrap() error { return e.Err }

// Collector turns a subject into raw opinion text from one external source.
// Implementations are stateless; every call is independent.
type Collector interface {
	Source() string
	Collect(ctx context.Context, subject models.Subject) (*RawSourceData, error)
}

// LookbackWindow computes the [start, end] collection window from the
// configured lookback in months, ending now.
func LookbackWindow(lookbackMonths int) (start, end time.Time) {
	end = time.Now().UTC()
	if lookbackMonths <= 0 {
		lookbackMonths = 6
	}
	start = end.AddDate(0, -lookbackMonths, 0)
	return start, end
}

func baseMeta(start, end time.Time) map[string]any {
	return map[string]any{
		MetaWindowStart: start,
		MetaWindowEnd:   end,
	}
}
