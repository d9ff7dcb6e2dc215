package ui

import (
	"context"
	"fmt"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"forecastconsole/internal/api"
	"forecastconsole/internal/table"
)

// dashboardRecent is the number of assets listed on the dashboard.
const dashboardRecent = 5

// dashboardCounts are the collections counted on the dashboard, in display
// order.
var dashboardCounts = []api.Resource{api.AssetTypes, api.Assets, api.Schedules, api.Forecasts}

// loadPageCmd fetches a page's collection and its related collections in
// parallel. Any failure fails the whole load.
func loadPageCmd(ctx context.Context, b Backend, spec *PageSpec) tea.Cmd {
	return func() tea.Msg {
		g, gctx := errgroup.WithContext(ctx)
		var records []table.Record
		g.Go(func() error {
			recs, err := b.List(gctx, spec.Resource, nil)
			if err != nil {
				return fmt.Errorf("list %s: %w", spec.Resource, err)
			}
			records = recs
			return nil
		})

		var mu sync.Mutex
		lk := make(Lookups, len(spec.Related))
		for _, r := range spec.Related {
			g.Go(func() error {
				recs, err := b.List(gctx, r, nil)
				if err != nil {
					return fmt.Errorf("list %s: %w", r, err)
				}
				mu.Lock()
				lk[r] = recs
				mu.Unlock()
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return PageLoadedMsg{Page: spec.Page, Err: err}
		}
		return PageLoadedMsg{Page: spec.Page, Records: records, Lookups: lk}
	}
}

// loadDashboardCmd counts the dashboard collections and checks health.
// A failing collection counts as zero and is reported in Errs, so one
// broken endpoint does not blank the dashboard.
func loadDashboardCmd(ctx context.Context, b Backend) tea.Cmd {
	return func() tea.Msg {
		msg := DashboardLoadedMsg{Counts: make(map[api.Resource]int, len(dashboardCounts))}
		var mu sync.Mutex
		var g errgroup.Group
		for _, r := range dashboardCounts {
			g.Go(func() error {
				recs, err := b.List(ctx, r, nil)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					msg.Errs = append(msg.Errs, fmt.Errorf("list %s: %w", r, err))
					return nil
				}
				msg.Counts[r] = len(recs)
				if r == api.Assets {
					msg.Recent = recs[:min(len(recs), dashboardRecent)]
				}
				return nil
			})
		}
		g.Go(func() error {
			res, err := b.Health(ctx)
			mu.Lock()
			defer mu.Unlock()
			msg.HealthErr = err
			if ok, _ := res["ok"].(bool); err == nil && ok {
				msg.Healthy = true
			}
			return nil
		})
		_ = g.Wait()
		return msg
	}
}

// saveCmd creates (id 0) or updates a record of spec.
func saveCmd(ctx context.Context, b Backend, spec *PageSpec, id int, payload map[string]any) tea.Cmd {
	return func() tea.Msg {
		var (
			rec table.Record
			err error
		)
		if id == 0 {
			rec, err = b.Create(ctx, spec.Resource, payload)
		} else {
			rec, err = b.Update(ctx, spec.Resource, id, payload)
		}
		if err != nil {
			op := "update " + spec.Singular
			if id == 0 {
				op = "create " + spec.Singular
			}
			return ErrorMsg{Op: op, Err: err}
		}
		return RecordSavedMsg{Page: spec.Page, Record: rec, Created: id == 0}
	}
}

func deleteCmd(ctx context.Context, b Backend, spec *PageSpec, id int) tea.Cmd {
	return func() tea.Msg {
		if err := b.Delete(ctx, spec.Resource, id); err != nil {
			return ErrorMsg{Op: "delete " + spec.Singular, Err: err}
		}
		return RecordDeletedMsg{Page: spec.Page, ID: id}
	}
}

// tickCmd schedules the next periodic refresh.
func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
