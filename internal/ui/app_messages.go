package ui

import (
	"time"

	"forecastconsole/internal/api"
	"forecastconsole/internal/table"
)

// GotoPageMsg switches to a page (SPC g <key>).
type GotoPageMsg struct {
	Page Page
}

// NextPageMsg and PrevPageMsg rotate through pages (tab, shift+tab).
type NextPageMsg struct{}
type PrevPageMsg struct{}

// RefreshMsg drops the request cache and reloads the current page.
type RefreshMsg struct{}

// ShowFormMsg opens the create form (Record nil) or the edit form of Record.
type ShowFormMsg struct {
	Page   Page
	Record table.Record
}

// ShowDetailMsg opens the read-only detail overlay for a record.
type ShowDetailMsg struct {
	Page   Page
	Record table.Record
}

// ShowDeleteMsg asks for confirmation before deleting a record.
type ShowDeleteMsg struct {
	Page   Page
	Record table.Record
}

// SubmitFormMsg is sent by a valid form. ID is 0 for a create.
type SubmitFormMsg struct {
	Page    Page
	ID      int
	Payload map[string]any
}

// ConfirmDeleteMsg is sent when the user confirms a delete.
type ConfirmDeleteMsg struct {
	Page Page
	ID   int
}

// DismissModalMsg is sent when user cancels a modal (Esc).
type DismissModalMsg struct{}

// PageLoadedMsg carries a page's records and the related collections its
// columns and forms resolve names from.
type PageLoadedMsg struct {
	Page    Page
	Records []table.Record
	Lookups Lookups
	Err     error
}

// DashboardLoadedMsg carries the dashboard counts and health.
type DashboardLoadedMsg struct {
	Counts    map[api.Resource]int
	Recent    []table.Record
	Healthy   bool
	HealthErr error
	Errs      []error
}

// RecordSavedMsg reports a successful create or update.
type RecordSavedMsg struct {
	Page    Page
	Record  table.Record
	Created bool
}

// RecordDeletedMsg reports a successful delete.
type RecordDeletedMsg struct {
	Page Page
	ID   int
}

// ErrorMsg reports a failed API operation. Op names it for the status line.
type ErrorMsg struct {
	Op  string
	Err error
}

// tickMsg triggers the periodic refresh.
type tickMsg time.Time
