package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"crate/internal/logging"
	"crate/internal/reconcile"
	"crate/internal/record"
	"crate/internal/sources"
	"crate/internal/sources/discogs"
)

// Run executes one pass over the selected scope. The returned error is
// non-nil only for run-level failures: context cancellation, a fatal
// credential failure, or an unreachable catalog.
func (p *Pipeline) Run(ctx context.Context, scope Scope) (*Summary, error) {
	runID := strings.Split(uuid.NewString(), "-")[0]
	logger := p.logger.With(logging.String(logging.FieldRunID, runID))

	summary := &Summary{RunID: runID}
	started := time.Now()
	defer func() {
		summary.Duration = time.Since(started)
	}()

	if p.delay == 0 {
		logger.Warn("throttle delay is zero, catalog rate limits apply unbuffered")
	}
	if scope.DryRun {
		logger.Info("dry run, nothing will be written")
	}

	run := &runState{
		pipeline:    p,
		scope:       scope,
		logger:      logger,
		summary:     summary,
		artistsDone: make(map[int64]bool),
	}

	var err error
	if scope.ReleaseID != 0 {
		err = run.processSingleRelease(ctx, scope.ReleaseID)
	} else {
		err = run.processListing(ctx)
	}
	if err != nil {
		return summary, err
	}

	logger.Info("run complete",
		logging.Int("processed", summary.Processed),
		logging.Int("skipped", summary.Skipped),
		logging.Int("already_done", summary.AlreadyDone),
		logging.Int("failed", summary.Failed),
		logging.Int("artists_updated", summary.ArtistsUpdated),
		logging.Int("missed_fragments", summary.MissedFragments),
		logging.Duration("duration", summary.Duration))
	return summary, nil
}

// runState carries per-run bookkeeping: summary counters and the artist
// memoization that keeps artist-level sources at one query per artist per
// run.
type runState struct {
	pipeline *Pipeline
	scope    Scope
	logger   *slog.Logger
	summary  *Summary

	artistsDone map[int64]bool
	handled     int
}

func (r *runState) limitReached() bool {
	return r.scope.Limit > 0 && r.handled >= r.scope.Limit
}

func (r *runState) processListing(ctx context.Context) error {
	p := r.pipeline

	page := 1
	for {
		listing, err := p.catalog.ListCollection(ctx, page, p.cfg.Discogs.PageSize, p.cfg.Discogs.SortOrder)
		if err != nil {
			// The catalog is the source of truth; without the listing
			// there is nothing to resume from.
			return fmt.Errorf("list collection page %d: %w", page, err)
		}
		r.logger.Info("collection page listed",
			logging.Int("page", listing.Page),
			logging.Int("pages", listing.Pages),
			logging.Int("items", len(listing.Items)))

		for _, item := range listing.Items {
			if r.limitReached() {
				return nil
			}
			if r.scope.ArtistID != 0 && item.ArtistID != r.scope.ArtistID {
				continue
			}

			var err error
			if r.scope.ArtistsOnly {
				err = r.processArtistsOnlyItem(ctx, item)
			} else {
				err = r.processItem(ctx, item)
			}
			if err != nil {
				return err
			}

			if err := sleepContext(ctx, p.delay); err != nil {
				return err
			}
		}

		if !listing.HasNext() || r.limitReached() {
			return nil
		}
		page++
		if err := sleepContext(ctx, p.delay); err != nil {
			return err
		}
	}
}

// processSingleRelease serves the single-release force scope. Listing is
// skipped; identity fields missing from the detail fetch come from the
// cached record when one exists.
func (r *runState) processSingleRelease(ctx context.Context, releaseID int64) error {
	item := discogs.CollectionItem{ReleaseID: releaseID}
	if previous, err := r.pipeline.store.GetRelease(ctx, releaseID); err == nil && previous != nil {
		item.InstanceID = previous.InstanceID
		item.ArtistID = previous.ArtistID
		item.ArtistName = previous.ArtistName
		item.AlbumTitle = previous.AlbumTitle
		item.DateAdded = previous.DateAdded
	}
	return r.processItem(ctx, item)
}

// processItem walks one release through the state machine. The returned
// error is nil for all per-item outcomes; a non-nil return halts the run.
func (r *runState) processItem(ctx context.Context, item discogs.CollectionItem) error {
	p := r.pipeline
	logger := r.logger.With(
		logging.Int64(logging.FieldReleaseID, item.ReleaseID),
		logging.String(logging.FieldArtist, item.ArtistName),
		logging.String(logging.FieldAlbum, item.AlbumTitle))

	skipped, err := p.store.IsSkipped(ctx, item.ReleaseID)
	if err != nil {
		return fmt.Errorf("check skip list: %w", err)
	}
	if skipped {
		logger.Info("release on skip list", logging.String(logging.FieldStage, StatusSkipped))
		r.summary.Skipped++
		return nil
	}

	if !r.scope.Force {
		done, err := p.store.IsDone(ctx, item.ReleaseID)
		if err != nil {
			return fmt.Errorf("check progress: %w", err)
		}
		if done {
			r.summary.AlreadyDone++
			return nil
		}
	}
	r.handled++

	// FETCHING. Mandatory: anything but a miss halts the run.
	logger.Info("fetching release", logging.String(logging.FieldStage, StatusFetching))
	base, err := p.catalog.GetRelease(ctx, item.ReleaseID)
	if err != nil {
		if sources.IsMiss(err) {
			logger.Error("release vanished from catalog", logging.Error(err))
			r.summary.Failed++
			return nil
		}
		return fmt.Errorf("fetch release %d: %w", item.ReleaseID, err)
	}
	applyItemIdentity(base, item)

	slug, err := reconcile.UniqueSlug(ctx, p.store, base.ArtistName, base.AlbumTitle, base.ReleaseID)
	if err != nil {
		return err
	}
	base.Slug = slug

	// ENRICHING. Best effort: a miss or exhausted retry leaves the
	// fragment absent; only credential failures halt.
	logger.Info("enriching release", logging.String(logging.FieldStage, StatusEnriching))
	fragments, err := r.enrichRelease(ctx, logger, base)
	if err != nil {
		return err
	}
	artist, err := r.ensureArtist(ctx, base.ArtistID, base.ArtistName)
	if err != nil {
		return err
	}
	if artist != nil && artist.Enrichment.Wikipedia != nil && fragments.Wikipedia == nil {
		// The artist summary doubles as the release narrative candidate.
		fragments.Wikipedia = artist.Enrichment.Wikipedia
	}

	// RECONCILING.
	previous, err := p.store.GetRelease(ctx, base.ReleaseID)
	if err != nil {
		return fmt.Errorf("load previous record: %w", err)
	}
	reconciled := reconcile.Release(base, fragments, previous, reconcile.Options{
		ArtworkSize: p.cfg.AppleMusic.ArtworkSize,
	})

	if r.scope.DryRun {
		logger.Info("dry run, would persist release", logging.String(logging.FieldStage, StatusPersisting))
		r.summary.Processed++
		return nil
	}

	// PERSISTING. The durability point: the record commits before the
	// progress marker so an interruption re-processes rather than skips.
	logger.Info("persisting release", logging.String(logging.FieldStage, StatusPersisting))
	if err := p.store.UpsertRelease(ctx, reconciled); err != nil {
		return fmt.Errorf("persist release %d: %w", reconciled.ReleaseID, err)
	}

	// RENDERING. Failures are logged and the item still counts as done;
	// content can be regenerated from the cache at any time.
	r.renderRelease(ctx, logger, reconciled)

	if err := p.store.MarkDone(ctx, reconciled.ReleaseID, reconciled.ArtistID, r.summary.RunID); err != nil {
		return fmt.Errorf("mark release %d done: %w", reconciled.ReleaseID, err)
	}
	logger.Info("release done", logging.String(logging.FieldStage, StatusDone))
	r.summary.Processed++
	return nil
}

// processArtistsOnlyItem refreshes the artist behind a collection item
// without touching the release record.
func (r *runState) processArtistsOnlyItem(ctx context.Context, item discogs.CollectionItem) error {
	if item.ArtistID == 0 || r.artistsDone[item.ArtistID] {
		return nil
	}
	r.handled++
	_, err := r.ensureArtist(ctx, item.ArtistID, item.ArtistName)
	return err
}

func (r *runState) renderRelease(ctx context.Context, logger *slog.Logger, release *record.Release) {
	p := r.pipeline
	if p.renderer == nil {
		return
	}
	logger.Info("rendering release", logging.String(logging.FieldStage, StatusRendering))

	if p.images != nil && release.Enrichment.ArtworkURL != "" {
		imagePath := p.renderer.ReleaseImagePath(release)
		if err := p.images.Download(ctx, release.Enrichment.ArtworkURL, imagePath); err != nil {
			logger.Error("cover download failed", logging.Error(err))
		} else {
			release.CoverImagePath = imagePath
		}
	}
	if _, err := p.renderer.RenderRelease(release); err != nil {
		logger.Error("release render failed", logging.Error(err))
	}
}

func applyItemIdentity(base *record.Release, item discogs.CollectionItem) {
	if base.InstanceID == 0 {
		base.InstanceID = item.InstanceID
	}
	if base.DateAdded.IsZero() {
		base.DateAdded = item.DateAdded
	}
	if base.ArtistID == 0 {
		base.ArtistID = item.ArtistID
	}
	if base.ArtistName == "" {
		base.ArtistName = item.ArtistName
	}
	if base.AlbumTitle == "" {
		base.AlbumTitle = item.AlbumTitle
	}
}
