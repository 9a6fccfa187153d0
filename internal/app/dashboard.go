package app

import (
	"context"
	"fmt"

	"github.com/okian/onboard/internal/domain/model"
	"github.com/okian/onboard/internal/domain/progress"
	"github.com/okian/onboard/pkg/logger"
)

// DashboardState is the dashboard slice of client state.
type DashboardState struct {
	User          *model.User
	Stats         model.DashboardStats
	Notifications []model.NotificationLog
	Overall       progress.Summary
	Loading       bool
	Error         string
}

// DashboardStore mirrors the candidate dashboard.
type DashboardStore struct {
	st      guarded[DashboardState]
	backend DashboardBackend
	log     logger.Logger
}

// NewDashboardStore returns an empty store.
func NewDashboardStore(backend DashboardBackend, log logger.Logger) *DashboardStore {
	return &DashboardStore{backend: backend, log: logger.OrNop(log)}
}

// State returns a snapshot.
func (d *DashboardStore) State() DashboardState { return d.st.get() }

// Load fetches the dashboard. Notifications come from the recent activity.
func (d *DashboardStore) Load(ctx context.Context) error {
	d.st.update(func(s DashboardState) DashboardState {
		s.Loading = true
		s.Error = ""
		return s
	})
	dash, err := d.backend.CandidateDashboard(ctx)
	if err != nil {
		d.st.update(func(s DashboardState) DashboardState {
			s.Loading = false
			s.Error = UserMessage(err, msgLoadDashboard)
			return s
		})
		d.log.Warn(ctx, msgLoadDashboard, logger.Error(err))
		return err
	}
	d.st.update(func(DashboardState) DashboardState {
		return DashboardState{
			User:          &dash.User,
			Stats:         dash.Stats,
			Notifications: dash.RecentActivity,
			Overall:       progress.Overall(dash.Stats),
		}
	})
	return nil
}

// MarkNotificationRead marks a notification read locally; the backend has
// no candidate endpoint for it.
func (d *DashboardStore) MarkNotificationRead(id int64) error {
	var found bool
	d.st.update(func(s DashboardState) DashboardState {
		next := make([]model.NotificationLog, len(s.Notifications))
		copy(next, s.Notifications)
		for i := range next {
			if next[i].ID == id {
				next[i].IsRead = true
				found = true
			}
		}
		if !found {
			s.Error = msgMarkNotification
			return s
		}
		s.Notifications = next
		s.Error = ""
		return s
	})
	if !found {
		return fmt.Errorf("%w: notification %d", ErrNotFound, id)
	}
	return nil
}

// UnreadCount returns the number of unread notifications.
func (d *DashboardStore) UnreadCount() int {
	var n int
	for _, note := range d.st.get().Notifications {
		if !note.IsRead {
			n++
		}
	}
	return n
}

// ClearError resets the error message.
func (d *DashboardStore) ClearError() {
	d.st.update(func(s DashboardState) DashboardState { s.Error = ""; return s })
}
