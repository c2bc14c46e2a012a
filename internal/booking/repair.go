package booking

import (
	"context"
	"log/slog"
	"strings"

	"github.com/rs/xid"

	"github.com/sakif/railbook/internal/directory"
	"github.com/sakif/railbook/internal/model"
	"github.com/sakif/railbook/internal/store"
)

// RepairTickets is the self-healing migration step run once after the user
// collection is loaded.
//
// Old data files sometimes carry tickets with a blank owning-user ID or a
// blank ticket ID. Those are repaired in place — the owner ID backfilled from
// the containing user, the ticket ID freshly generated — and the collection
// is re-persisted once if anything changed. This is maintenance, not an
// error: the load succeeds either way.
func RepairTickets(
	ctx context.Context,
	users *directory.UserDirectory,
	userStore store.Store[model.User],
	logger *slog.Logger,
) error {
	repaired := 0
	users.Each(func(u *model.User) {
		for i := range u.Tickets {
			t := &u.Tickets[i]
			if strings.TrimSpace(t.UserID) == "" {
				t.UserID = u.ID
				repaired++
			}
			if strings.TrimSpace(t.ID) == "" {
				t.ID = xid.New().String()
				repaired++
			}
		}
	})

	if repaired == 0 {
		return nil
	}

	if err := userStore.Save(ctx, users.All()); err != nil {
		return err
	}
	logger.Info("repaired tickets on load", slog.Int("fields", repaired))
	return nil
}
