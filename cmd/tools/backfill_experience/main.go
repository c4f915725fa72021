package main

import (
	"context"
	"flag"
	"log"
	"math"
	"time"

	"go.uber.org/zap"

	"talent-search/internal/cache"
	"talent-search/internal/colleagues"
	"talent-search/internal/config"
	"talent-search/internal/logger"
	"talent-search/internal/storage"
)

// Recomputes candidates.total_experience_years from work history, counting
// overlapping roles once.
func main() {
	var (
		dryRun      bool
		limit       int
		onlyMissing bool
	)
	flag.BoolVar(&dryRun, "dry-run", true, "If true, do not persist updates; just print changes")
	flag.IntVar(&limit, "limit", 0, "Max number of candidates to update in one run (0 = all)")
	flag.BoolVar(&onlyMissing, "only-missing", false, "Only fill candidates without a recorded total")
	flag.Parse()

	cfg, _, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}
	lg, err := logger.New(cfg.LogJSON, cfg.LogDebug)
	if err != nil {
		log.Fatal("logger:", err)
	}
	defer lg.Sync()
	lg = lg.Named("backfill")

	if cfg.DatabaseURL == "" {
		lg.Fatal("DATABASE_URL is required")
	}

	db, err := storage.NewDB(cfg.DatabaseURL, lg)
	if err != nil {
		lg.Fatal("failed to connect to db", zap.Error(err))
	}
	defer db.Close()

	ctx := context.Background()
	candidates, err := db.FetchCandidatePool(ctx, storage.PoolFilter{AnyResumeStatus: true})
	if err != nil {
		lg.Fatal("fetch candidates", zap.Error(err))
	}
	lg.Info("candidates loaded", zap.Int("count", len(candidates)), zap.Bool("dry_run", dryRun))

	now := time.Now()
	updated := 0
	for _, c := range candidates {
		if limit > 0 && updated >= limit {
			break
		}
		if len(c.Experiences) == 0 {
			continue
		}
		if onlyMissing && c.TotalExperienceYears != nil {
			continue
		}

		years := math.Round(float64(colleagues.TotalMonths(c.Experiences, now))/12*10) / 10
		if c.TotalExperienceYears != nil && math.Abs(*c.TotalExperienceYears-years) < 0.05 {
			continue
		}

		fields := []zap.Field{
			zap.Stringer("candidate_id", c.ID),
			zap.String("name", c.FullName),
			zap.Float64("years", years),
		}
		if c.TotalExperienceYears != nil {
			fields = append(fields, zap.Float64("previous", *c.TotalExperienceYears))
		}

		if dryRun {
			lg.Info("[dry-run] would update total experience", fields...)
			updated++
			continue
		}

		if err := db.UpdateTotalExperience(ctx, c.ID, years); err != nil {
			lg.Warn("failed to update candidate", append(fields, zap.Error(err))...)
			continue
		}
		lg.Info("total experience updated", fields...)
		updated++
	}

	if !dryRun && updated > 0 && cfg.CacheEnabled && !cfg.CacheInMemory {
		invalidateCache(ctx, cfg, lg)
	}

	lg.Info("Backfill run complete", zap.Int("updated", updated), zap.Bool("dry_run", dryRun))
}

// invalidateCache drops cached results computed from the old totals. The
// store is locked while the API server runs; in that case the server's
// POST /api/cache/invalidate endpoint has to be used instead.
func invalidateCache(ctx context.Context, cfg *config.Config, lg *zap.Logger) {
	store, err := cache.OpenBadgerStore(cfg.CacheDir, false, lg)
	if err != nil {
		lg.Warn("cache store not available, invalidate through the API instead", zap.Error(err))
		return
	}
	defer store.Close()

	rc := cache.New(store, cache.WithLogger(lg))
	removed := 0
	for _, ns := range []cache.Namespace{cache.NamespaceSearch, cache.NamespaceColleagues, cache.NamespaceCandidate, cache.NamespaceFilters} {
		removed += rc.Invalidate(ctx, ns.Prefix())
	}
	lg.Info("cache invalidated", zap.Int("removed", removed))
}
