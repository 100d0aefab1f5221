// Package service orchestrates the extraction pipeline: listing,
// per-activity detail retrieval, translation, caching, and the
// optional per-activity file exports.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"coros-export/internal/coros"
	"coros-export/internal/model"
	"coros-export/internal/store"
)

// Extractor runs extraction and export against an authenticated
// session. Execution is strictly sequential: activities and pages are
// processed one at a time. That is a deliberate simplicity choice for
// a low-volume personal export tool.
type Extractor struct {
	client *coros.Client
	db     *store.DB
}

// NewExtractor creates an extractor backed by the given client and
// cache.
func NewExtractor(client *coros.Client, db *store.DB) *Extractor {
	return &Extractor{client: client, db: db}
}

// Progress reports pipeline progress.
type Progress struct {
	Phase     string // "listing", "extracting", "exporting"
	Total     int
	Completed int
	Current   string
}

// Options control one extraction run.
type Options struct {
	Filter coros.Filter
	// Force re-fetches activities that are already cached.
	Force bool
}

// Result summarizes one extraction run.
type Result struct {
	Listed    int
	Extracted int
	Cached    int // served from the local cache without a fetch
	Skipped   int // dropped after fetch or translation failures
	Errors    []error
}

// ExtractAll runs the full pipeline. Only a listing failure is fatal;
// every per-activity failure is logged, counted and skipped, and the
// run completes with a possibly-incomplete collection. The returned
// collection preserves server listing order.
func (e *Extractor) ExtractAll(ctx context.Context, sess coros.Session, opts Options, progress chan<- Progress) (model.Collection, *Result, error) {
	if progress != nil {
		defer close(progress)
	}

	result := &Result{}
	collection := model.Collection{}

	if progress != nil {
		progress <- Progress{Phase: "listing"}
	}

	refs, err := e.client.ListActivities(ctx, sess, opts.Filter)
	if err != nil {
		return nil, result, fmt.Errorf("listing activities: %w", err)
	}
	result.Listed = len(refs)

	for i, ref := range refs {
		select {
		case <-ctx.Done():
			return collection, result, ctx.Err()
		default:
		}

		if progress != nil {
			progress <- Progress{
				Phase:     "extracting",
				Total:     len(refs),
				Completed: i,
				Current:   ref.Name,
			}
		}

		if !opts.Force {
			if cached, err := e.db.HasActivity(ref.LabelID); err == nil && cached {
				if activity, err := e.db.GetActivity(ref.LabelID); err == nil {
					collection.Add(*activity)
					result.Cached++
					continue
				}
			}
		}

		detail, err := e.client.FetchDetail(ctx, sess, ref)
		if err != nil {
			if ctx.Err() != nil {
				return collection, result, ctx.Err()
			}
			log.Printf("activity %s (%s): fetch failed, continuing: %v", ref.LabelID, ref.Name, err)
			result.Errors = append(result.Errors, fmt.Errorf("activity %s: %w", ref.LabelID, err))
			result.Skipped++
			continue
		}

		activity, err := model.TranslateActivity(ref.SportType, detail)
		if err != nil {
			log.Printf("activity %s (%s): translation failed, continuing: %v", ref.LabelID, ref.Name, err)
			result.Errors = append(result.Errors, fmt.Errorf("activity %s: %w", ref.LabelID, err))
			result.Skipped++
			continue
		}

		collection.Add(activity)
		result.Extracted++

		if err := e.db.UpsertActivity(ref.LabelID, activity); err != nil {
			log.Printf("activity %s: caching failed: %v", ref.LabelID, err)
			result.Errors = append(result.Errors, fmt.Errorf("caching %s: %w", ref.LabelID, err))
		}
	}

	if err := e.db.SetLastExtract(time.Now()); err != nil {
		log.Printf("recording extraction time: %v", err)
	}

	return collection, result, nil
}

// WriteJSON writes the collection as a JSON array with 2-space
// indentation. Timestamps render as ISO-8601 strings.
func WriteJSON(c model.Collection, path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding activities: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
