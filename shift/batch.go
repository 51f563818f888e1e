package shift

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// DayRequest is one unit of batch work.
type DayRequest struct {
	EmployeeID EmployeeID
	Date       Date
}

// DayResult pairs a request with its outcome. Err carries per-day failures,
// including the "no schedule" kinds (see IsNoSchedule).
type DayResult struct {
	Request DayRequest
	Day     ResolvedDay
	Err     error
}

// ResolveBatch resolves every request concurrently, at most Workers at a
// time. Results are index-aligned with reqs. The returned error is non-nil
// only when ctx is done; per-day errors stay in their DayResult.
func (e *Engine) ResolveBatch(ctx context.Context, reqs []DayRequest) ([]DayResult, error) {
	results := make([]DayResult, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	workers := e.Workers
	if workers <= 0 {
		workers = 1
	}
	g.SetLimit(workers)

	for i, req := range reqs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			day, err := e.Resolve(gctx, req.EmployeeID, req.Date)
			results[i] = DayResult{Request: req, Day: day, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	e.Logger.Debug().Int("days", len(reqs)).Int("workers", workers).Msg("batch resolved")
	return results, nil
}

// ResolveRange resolves employee's days in [from, to]. Days with no schedule
// are skipped; any other error aborts the range.
func (e *Engine) ResolveRange(ctx context.Context, employee EmployeeID, from, to Date) ([]ResolvedDay, error) {
	dates := DatesBetween(from, to)
	reqs := make([]DayRequest, len(dates))
	for i, d := range dates {
		reqs[i] = DayRequest{EmployeeID: employee, Date: d}
	}

	results, err := e.ResolveBatch(ctx, reqs)
	if err != nil {
		return nil, err
	}
	days := make([]ResolvedDay, 0, len(results))
	for _, r := range results {
		switch {
		case IsNoSchedule(r.Err):
			continue
		case r.Err != nil:
			return nil, r.Err
		}
		days = append(days, r.Day)
	}
	return days, nil
}
