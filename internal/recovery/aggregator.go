// Package recovery flattens the paginated WHOOP recovery listing into a
// time-ordered list of HRV samples for a bounded trailing window.
package recovery

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/wrale/whoop-hrv-bridge/internal/whoop"
)

// MaxPages bounds the pagination walk so a misbehaving cursor that repeats
// forever cannot hang a request.
const MaxPages = 40

// ErrTooManyPages indicates the upstream cursor never terminated within
// MaxPages pages.
var ErrTooManyPages = errors.New("recovery listing exceeded page limit")

// Pager fetches one page of the upstream recovery listing. Satisfied by
// *whoop.Client.
type Pager interface {
	RecoveryPage(ctx context.Context, accessToken string, start, end time.Time, nextToken string) (*whoop.RecoveryPage, error)
}

// Sample is one HRV reading derived from a scored recovery record. Samples
// are produced fresh per request, never persisted.
type Sample struct {
	CycleID       int64     `json:"cycle_id"`
	Date          time.Time `json:"date"`
	HRVRMSSDMilli float64   `json:"hrv_rmssd_milli"`
}

// Aggregator walks recovery pages and converts them to samples.
type Aggregator struct {
	pager Pager
}

// NewAggregator creates an aggregator over the given pager.
func NewAggregator(pager Pager) *Aggregator {
	return &Aggregator{pager: pager}
}

// Collect fetches every page in [start, end], keeps only scored records
// carrying an HRV value, and returns the samples sorted ascending by date.
// Unscored or scoreless records are silently dropped, not errors. Upstream
// failures propagate as the pager's errors; in particular the caller must
// invalidate the stored credential on whoop.ErrUnauthorized.
func (a *Aggregator) Collect(ctx context.Context, accessToken string, start, end time.Time) ([]Sample, error) {
	samples := []Sample{}
	nextToken := ""

	for pages := 0; ; pages++ {
		if pages >= MaxPages {
			return nil, ErrTooManyPages
		}

		page, err := a.pager.RecoveryPage(ctx, accessToken, start, end, nextToken)
		if err != nil {
			return nil, err
		}

		for _, rec := range page.Records {
			if rec.ScoreState != whoop.ScoreStateScored || rec.Score == nil || rec.Score.HRVRMSSDMilli == nil {
				continue
			}
			samples = append(samples, Sample{
				CycleID:       rec.CycleID,
				Date:          rec.CreatedAt,
				HRVRMSSDMilli: *rec.Score.HRVRMSSDMilli,
			})
		}

		if page.NextToken == "" {
			break
		}
		nextToken = page.NextToken
	}

	// Stable: ties keep arrival order, no secondary key is defined.
	sort.SliceStable(samples, func(i, j int) bool {
		return samples[i].Date.Before(samples[j].Date)
	})
	return samples, nil
}
