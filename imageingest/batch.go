package imageingest

import (
	"context"
	"errors"
	"log"

	"golang.org/x/sync/errgroup"
)

// DefaultWorkers is the number of files decoded in parallel.
const DefaultWorkers = 4

// FileError records a file that was an image by type but failed to ingest.
type FileError struct {
	Name string
	Err  error
}

func (e FileError) Error() string { return e.Name + ": " + e.Err.Error() }

func (e FileError) Unwrap() error { return e.Err }

// Batch is the outcome of ingesting a selection. Photos and Captions are
// parallel and keep selection order; each caption starts empty.
type Batch struct {
	Photos   []string
	Captions []string
	Skipped  int
	Failed   []FileError
}

// Ingester processes multi-file selections.
type Ingester struct {
	Workers int
}

// NewIngester returns an Ingester decoding up to workers files at once.
func NewIngester(workers int) *Ingester {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Ingester{Workers: workers}
}

// Batch ingests every image in files. Non-images are skipped and files that
// fail to decode are reported in Failed without losing their siblings. The
// whole call fails only if ctx is cancelled or no image could be processed.
func (in *Ingester) Batch(ctx context.Context, files []File) (Batch, error) {
	var candidates []File
	var out Batch
	for _, f := range files {
		if !f.IsImage() {
			out.Skipped++
			continue
		}
		candidates = append(candidates, f)
	}
	if len(candidates) == 0 {
		return out, nil
	}

	results := make([]string, len(candidates))
	errs := make([]error, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(in.Workers)
	for i, f := range candidates {
		i, f := i, f
		g.Go(func() error {
			data, err := Ingest(gctx, f)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				errs[i] = err
				return nil
			}
			results[i] = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Batch{}, err
	}

	for i, f := range candidates {
		if errs[i] != nil {
			log.Printf("imageingest: skipping %s: %v", f.Name, errs[i])
			out.Failed = append(out.Failed, FileError{Name: f.Name, Err: errs[i]})
			continue
		}
		out.Photos = append(out.Photos, results[i])
		out.Captions = append(out.Captions, "")
	}
	if len(out.Photos) == 0 {
		return out, errors.Join(ErrNothingIngested, failures(out.Failed))
	}
	return out, nil
}

func failures(fs []FileError) error {
	errs := make([]error, len(fs))
	for i, f := range fs {
		errs[i] = f
	}
	return errors.Join(errs...)
}
