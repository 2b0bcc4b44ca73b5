// Package seed loads the sample users and work items used for local runs.
package seed

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/task-management/internal/auth"
	userDatamodel "github.com/frahmantamala/task-management/internal/core/datamodel/user"
	workitemDatamodel "github.com/frahmantamala/task-management/internal/core/datamodel/workitem"
	"github.com/frahmantamala/task-management/internal/store"
	"github.com/frahmantamala/task-management/internal/user"
	"github.com/frahmantamala/task-management/internal/workitem"
	"gorm.io/gorm"
)

type Report struct {
	Users     int
	WorkItems int
}

type sampleItem struct {
	title       string
	description string
	toAdmin     bool
}

var sampleItems = []sampleItem{
	{"Setup project", "Initial project setup", true},
	{"Create users module", "Implement users CRUD", false},
	{"Create tasks module", "Implement tasks CRUD", false},
}

// Run seeds each table only while it has no live rows, so it is safe to
// call repeatedly. With clear set every row is removed first.
func Run(ctx context.Context, db *gorm.DB, clear bool, logger *slog.Logger) (Report, error) {
	var report Report
	err := store.RunInTx(ctx, db, func(ctx context.Context) error {
		conn := store.Conn(ctx, db).WithContext(ctx)
		if clear {
			if err := wipe(conn); err != nil {
				return err
			}
			logger.Info("cleared existing data")
		}

		users := store.New[userDatamodel.User](db)
		items := store.New[workitemDatamodel.WorkItem](db)

		var err error
		if report.Users, err = seedUsers(ctx, users); err != nil {
			return err
		}
		report.WorkItems, err = seedWorkItems(ctx, users, items)
		return err
	})
	if err != nil {
		return Report{}, err
	}

	logger.Info("seed finished", "users", report.Users, "work_items", report.WorkItems)
	return report, nil
}

func wipe(conn *gorm.DB) error {
	all := conn.Session(&gorm.Session{AllowGlobalUpdate: true})
	if err := all.Delete(&workitemDatamodel.WorkItem{}).Error; err != nil {
		return fmt.Errorf("failed to clear work items: %w", err)
	}
	if err := all.Delete(&userDatamodel.User{}).Error; err != nil {
		return fmt.Errorf("failed to clear users: %w", err)
	}
	return nil
}

func seedUsers(ctx context.Context, users *store.Store[userDatamodel.User]) (int, error) {
	seeded, err := users.Exists(ctx, nil)
	if err != nil || seeded {
		return 0, err
	}

	samples := []struct {
		name, email string
		role        auth.Role
	}{
		{"Admin User", "admin@test.com", auth.RoleAdmin},
		{"Normal User", "user@test.com", auth.RoleUser},
	}
	for _, s := range samples {
		u, err := user.NewUser(s.name, s.email, s.role, nil)
		if err != nil {
			return 0, err
		}
		if err := users.Add(ctx, user.ToDataModel(u)); err != nil {
			return 0, fmt.Errorf("failed to seed user %s: %w", s.email, err)
		}
	}
	return len(samples), nil
}

func seedWorkItems(ctx context.Context, users *store.Store[userDatamodel.User], items *store.Store[workitemDatamodel.WorkItem]) (int, error) {
	seeded, err := items.Exists(ctx, nil)
	if err != nil || seeded {
		return 0, err
	}

	admin, err := firstWithRole(ctx, users, auth.RoleAdmin)
	if err != nil {
		return 0, err
	}
	normal, err := firstWithRole(ctx, users, auth.RoleUser)
	if err != nil {
		return 0, err
	}

	for _, s := range sampleItems {
		assignee := normal.ID
		if s.toAdmin {
			assignee = admin.ID
		}
		description := s.description
		w, err := workitem.NewWorkItem(s.title, &description, &assignee, &admin.ID)
		if err != nil {
			return 0, err
		}
		if err := items.Add(ctx, workitem.ToDataModel(w)); err != nil {
			return 0, fmt.Errorf("failed to seed work item %q: %w", s.title, err)
		}
	}
	return len(sampleItems), nil
}

func firstWithRole(ctx context.Context, users *store.Store[userDatamodel.User], role auth.Role) (*userDatamodel.User, error) {
	r := int(role)
	page, err := users.Page(ctx, store.Equal("role", &r), 0, 1)
	if err != nil {
		return nil, err
	}
	if len(page.Items) == 0 {
		return nil, fmt.Errorf("no %s user to assign sample work items to", role)
	}
	return page.Items[0], nil
}
