package repository

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/FocuswithJustin/RosaArchive/core/codec"
	"github.com/FocuswithJustin/RosaArchive/core/errors"
	"github.com/FocuswithJustin/RosaArchive/core/model"
	"github.com/FocuswithJustin/RosaArchive/core/store"
	"github.com/FocuswithJustin/RosaArchive/internal/logging"
	"github.com/FocuswithJustin/RosaArchive/internal/tools"
)

// ErrInterrupted reports crop jobs abandoned when the run's time bound or
// context expired.
var ErrInterrupted = errors.New("crop interrupted")

type cropJob struct {
	id   string
	src  string
	dst  string
	rect image.Rectangle
}

type cropResult struct {
	id  string
	err error
	// interrupted marks a failure caused by the run's time bound.
	interrupted bool
}

// CropStats summarizes a crop run.
type CropStats struct {
	Cropped int
	Skipped int
	Failed  int
}

// CropImages crops every present image of a book that has crop data into
// the book's cropped sub-store. Existing outputs are kept unless force is
// set. Tool failures go to errs; jobs still outstanding when the run's time
// bound expires are reported as one ErrInterrupted diagnostic. Outputs
// already written are not rolled back.
func (r *Repository) CropImages(ctx context.Context, col *model.Collection, book string, force bool, errs *errors.Collector) (CropStats, error) {
	var stats CropStats
	if r.cropper == nil {
		return stats, errors.NewUnsupported("crop", "no cropping tool configured")
	}
	s, err := r.bookStore(col.ID, book)
	if err != nil {
		return stats, err
	}
	cropped := s.Child(CroppedDir)
	srcLoc, ok1 := s.(store.Locator)
	dstLoc, ok2 := cropped.(store.Locator)
	if !ok1 || !ok2 {
		return stats, errors.NewUnsupported("crop", "store is not backed by files")
	}

	local := &errors.Collector{}
	list, ok := codec.Load(r.registry, codec.ImageListKind, s, book+ImagesSuffix, local)
	if !ok || list == nil {
		errs.Merge(local)
		return stats, errors.NewNotFound("artifact", book+ImagesSuffix)
	}
	info, ok := codec.Load(r.registry, codec.CropInfoKind, s, book+CropInfoSuffix, local)
	errs.Merge(local)
	if !ok || info == nil {
		return stats, errors.NewNotFound("artifact", book+CropInfoSuffix)
	}

	var jobs []cropJob
	for _, img := range list.Images {
		if img.Missing {
			continue
		}
		data, ok := info.Find(img.ID)
		if !ok {
			continue
		}
		if !force && cropped.Exists(img.ID) {
			stats.Skipped++
			continue
		}
		w, h := img.Width, img.Height
		if (w <= 0 || h <= 0) && r.prober != nil {
			if w, h, err = r.prober.Probe(ctx, srcLoc.Locate(img.ID)); err != nil {
				errs.Add(err)
				stats.Failed++
				continue
			}
		}
		rect := data.Rect(w, h)
		if rect.Empty() {
			errs.Add(errors.NewInconsistency(img.ID, "crop of %dx%d image leaves no pixels", w, h))
			stats.Failed++
			continue
		}
		jobs = append(jobs, cropJob{id: img.ID, src: srcLoc.Locate(img.ID), dst: dstLoc.Locate(img.ID), rect: rect})
	}
	if len(jobs) == 0 {
		return stats, nil
	}

	ctx, cancel := context.WithTimeout(ctx, r.cropTimeout)
	defer cancel()

	pool := tools.NewWorkerPool[cropJob, cropResult](r.cropWorkers, len(jobs))
	results, outstanding, _ := pool.Run(ctx, jobs, func(ctx context.Context, job cropJob) cropResult {
		start := time.Now()
		err := r.cropper.Crop(ctx, job.src, job.dst, job.rect)
		switch {
		case err != nil && ctx.Err() != nil:
			return cropResult{id: job.id, err: err, interrupted: true}
		case err == nil:
			logging.CropImage(r.logger, job.id, time.Since(start), "book", book)
		}
		return cropResult{id: job.id, err: err}
	})
	for _, res := range results {
		switch {
		case res.interrupted:
			outstanding++
		case res.err != nil:
			stats.Failed++
			logging.CropFailed(r.logger, res.id, res.err, "book", book)
			errs.Add(res.err)
		default:
			stats.Cropped++
		}
	}
	if outstanding > 0 {
		stats = interrupted(stats, outstanding, len(jobs), errs)
	}
	return stats, nil
}

func interrupted(stats CropStats, outstanding, total int, errs *errors.Collector) CropStats {
	errs.Add(fmt.Errorf("%w: %d of %d images not cropped", ErrInterrupted, outstanding, total))
	stats.Failed += outstanding
	return stats
}
