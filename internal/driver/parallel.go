package driver

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// PreprocessAll preprocesses files in parallel, one preprocessor
// instance per file. Results come back in input order. The returned
// error only reports cancellation; per-file failures live in each
// Result.
func PreprocessAll(ctx context.Context, files []string, opts Options, sink ProgressSink) ([]*Result, error) {
	opts = opts.normalized()
	results := make([]*Result, len(files))

	for _, path := range files {
		emit(sink, Event{File: path, Stage: StagePreprocess, Status: StatusQueued})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(opts.Jobs, max(len(files), 1)))

	for i, path := range files {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			emit(sink, Event{File: path, Stage: StagePreprocess, Status: StatusWorking})
			res := Preprocess(path, opts)
			results[i] = res

			status := StatusDone
			if res.Failed() {
				status = StatusError
			}
			emit(sink, Event{
				File: path, Stage: StagePreprocess, Status: status,
				Err: res.Err, Elapsed: res.Elapsed,
			})
			return nil
		})
	}

	err := g.Wait()
	return results, err
}
