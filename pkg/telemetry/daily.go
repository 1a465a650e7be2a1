package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/bsidebar/insights/pkg/bookmarks"
)

// Share states reported with the daily snapshot.
const (
	ShareStateAll      = "all"
	ShareStateConfig   = "config"
	ShareStateActivity = "activity"
	ShareStateNothing  = "nothing"
	ShareStateNotSet   = "not_set"
)

// ShareState labels the user's share permissions.
func ShareState(perms SharePermissions, set bool) string {
	switch {
	case !set:
		return ShareStateNotSet
	case perms.Config && perms.Activity:
		return ShareStateAll
	case perms.Config:
		return ShareStateConfig
	case perms.Activity:
		return ShareStateActivity
	default:
		return ShareStateNothing
	}
}

// startOfDay truncates t to local midnight.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// CheckDaily takes the daily snapshot unless it already ran today or is
// running right now. It reports whether a snapshot cycle ran.
//
// The very first check only records today's date: a first run is not
// reported because its timing depends too much on the installation.
func (tc *Client) CheckDaily(ctx context.Context) bool {
	if !tc.enabled {
		return false
	}
	if !tc.snapshotRunning.CompareAndSwap(false, true) {
		tc.logger.Debug("Daily snapshot already running")
		return false
	}
	defer tc.snapshotRunning.Store(false)

	ctx, span := tc.tracer.Start(ctx, "telemetry.daily")
	defer span.End()

	today := startOfDay(tc.now())

	last, tracked, err := tc.model.LastTrackDate(ctx)
	if err != nil {
		tc.logger.Debug("Failed to read last track date", "error", err)
	}
	if tracked && last.Equal(today) {
		return false
	}

	var userType string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		userType, err = tc.model.UserType(gctx)
		return err
	})
	g.Go(func() error {
		return tc.model.SetLastTrackDate(gctx, today)
	})
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		tc.logger.Warn("Daily snapshot aborted", "error", err)
		return false
	}

	span.SetAttributes(attribute.Bool("telemetry.first_run", !tracked))
	if !tracked {
		tc.logger.Debug("First run, snapshot skipped", "day", today)
		return true
	}

	perms, permsSet, err := tc.model.SharePermissions(ctx)
	if err != nil {
		tc.logger.Debug("Failed to read share permissions", "error", err)
	}

	tc.Track(ctx, KindVersion, tc.env.Version(), true)
	tc.Track(ctx, KindSystem, tc.env.UserAgent(), true)
	tc.Track(ctx, KindLanguage, tc.env.Language(), true)
	tc.Track(ctx, KindShareInfo, ShareState(perms, permsSet), true)
	tc.Track(ctx, KindUserType, userType, true)

	if installed, ok, err := tc.model.InstallationDate(ctx); err != nil {
		tc.logger.Debug("Failed to read installation date", "error", err)
	} else if ok {
		tc.Track(ctx, KindInstallationYear, installed.In(today.Location()).Year(), true)
	}

	if perms.Activity {
		tc.trackBookmarkCount(ctx)
	}
	if perms.Config {
		tc.trackConfiguration(ctx)
	}

	tc.logger.Debug("Daily snapshot recorded", "day", today, "share_state", ShareState(perms, permsSet))
	return true
}

func (tc *Client) trackBookmarkCount(ctx context.Context) {
	if tc.bookmarks == nil {
		return
	}

	tree, err := tc.bookmarks.SubTree(ctx, bookmarks.RootID)
	if err != nil {
		tc.logger.Debug("Failed to read bookmarks", "error", err)
		return
	}

	count := 0
	if len(tree) > 0 && tree[0] != nil {
		count = bookmarks.Count(tree[0].Children)
	}

	tc.Track(ctx, KindBookmarks, count, false)
}
