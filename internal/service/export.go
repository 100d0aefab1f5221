package service

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"coros-export/internal/coros"
	"coros-export/internal/model"
)

// ExportResult summarizes one file-export run.
type ExportResult struct {
	Listed  int
	Written int
	// Skipped counts unsupported sport/format combinations, both the
	// ones known up front and the ones the server signals by omitting
	// a download URL.
	Skipped int
	Errors  []error
}

// ExportFiles downloads every listed activity in the given format into
// dir. Unsupported combinations are expected and skipped; transport
// failures abort only the affected file.
func (e *Extractor) ExportFiles(ctx context.Context, sess coros.Session, filter coros.Filter, ft coros.FileType, dir string, progress chan<- Progress) (*ExportResult, error) {
	if progress != nil {
		defer close(progress)
	}

	result := &ExportResult{}

	refs, err := e.client.ListActivities(ctx, sess, filter)
	if err != nil {
		return result, fmt.Errorf("listing activities: %w", err)
	}
	result.Listed = len(refs)

	if err := os.MkdirAll(dir, 0755); err != nil {
		return result, fmt.Errorf("creating export directory: %w", err)
	}

	for i, ref := range refs {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		if progress != nil {
			progress <- Progress{
				Phase:     "exporting",
				Total:     len(refs),
				Completed: i,
				Current:   ref.Name,
			}
		}

		if !ref.SportType.SupportsExport(ft) {
			log.Printf("activity %s: %s export not available for %s, skipping", ref.LabelID, ft, ref.SportType)
			result.Skipped++
			continue
		}

		fileURL, ok, err := e.client.RequestDownload(ctx, sess, ref, ft)
		if err != nil {
			log.Printf("activity %s: download request failed, continuing: %v", ref.LabelID, err)
			result.Errors = append(result.Errors, fmt.Errorf("activity %s: %w", ref.LabelID, err))
			continue
		}
		if !ok {
			// The server omits the data key instead of erroring when a
			// format isn't available for a sport type. Expected, not
			// exceptional.
			log.Printf("activity %s: server offers no %s download for %s, skipping", ref.LabelID, ft, ref.SportType)
			result.Skipped++
			continue
		}

		path := filepath.Join(dir, exportFilename(ref, ft))
		if err := e.downloadTo(ctx, fileURL, path); err != nil {
			log.Printf("activity %s: download failed, continuing: %v", ref.LabelID, err)
			result.Errors = append(result.Errors, fmt.Errorf("activity %s: %w", ref.LabelID, err))
			continue
		}
		result.Written++
	}

	return result, nil
}

func (e *Extractor) downloadTo(ctx context.Context, fileURL, path string) error {
	body, err := e.client.Download(ctx, fileURL)
	if err != nil {
		return err
	}
	defer body.Close()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, body); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// exportFilename names a downloaded file
// {startTimestamp}_{name}_{labelId}.{ext}, matching the layout the
// vendor's own exports use. A ref with no start time at all falls back
// to the labelId so the name carries no sentinel date.
func exportFilename(ref coros.ActivityRef, ft coros.FileType) string {
	var start time.Time
	switch {
	case ref.StartTimestamp != 0:
		start = model.FromCentis(ref.StartTimestamp).Time
	case ref.StartTime != 0:
		start = time.Unix(ref.StartTime, 0).Local()
	default:
		log.Printf("activity %s: listing carries no start time, naming file by id", ref.LabelID)
		return fmt.Sprintf("%s.%s", ref.LabelID, ft.Ext())
	}

	name := strings.ReplaceAll(ref.Name, string(filepath.Separator), "-")
	return fmt.Sprintf("%s_%s_%s.%s", start.Format(time.RFC3339), name, ref.LabelID, ft.Ext())
}
