package syncjob

import (
	"context"

	"github.com/turath/archive-sync/pkg/logger"
)

// OrphanReport lists binaries with no canonical record referencing them,
// typically left behind by ingestions that failed between blob upload
// and canonical create.
type OrphanReport struct {
	// Keys are blob object keys with no canonical reference.
	Keys []string `json:"keys"`
	// Scanned is the total number of blob objects examined.
	Scanned int `json:"scanned"`
}

// ReportOrphans diffs blob keys against canonical binary references.
// Report-only: nothing is deleted here.
func (j *Job) ReportOrphans(ctx context.Context, blobs BinaryLister) (*OrphanReport, error) {
	keys, err := blobs.List(ctx)
	if err != nil {
		return nil, err
	}

	referenced := make(map[string]struct{})
	for offset := 0; ; offset += j.opts.PageSize {
		items, err := j.canonical.List(ctx, offset, j.opts.PageSize)
		if err != nil {
			return nil, err
		}
		if len(items) == 0 {
			break
		}
		for _, item := range items {
			if item.BinaryURL != "" {
				referenced[item.BinaryURL] = struct{}{}
			}
		}
		if len(items) < j.opts.PageSize {
			break
		}
	}

	report := &OrphanReport{Scanned: len(keys)}
	for _, key := range keys {
		if _, ok := referenced[blobs.URL(key)]; !ok {
			report.Keys = append(report.Keys, key)
		}
	}

	if len(report.Keys) > 0 {
		j.logger.Warn("Found orphaned binaries",
			logger.Int("orphans", len(report.Keys)),
			logger.Int("scanned", report.Scanned),
		)
	}
	return report, nil
}
