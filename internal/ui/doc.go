// Package ui is the terminal console for the forecasts backend.
//
// The root AppModel shows a sidebar of pages next to the active page. Most
// pages are a ResourcePage: a table.Model over one API collection with
// add, view, edit and delete actions. Modals (forms, confirmations, record
// details) sit on an OverlayStack and receive input before the page.
//
// Keys are dispatched through a KeybindRegistry with a spacemacs-style
// leader: "SPC g a" opens Assets, "SPC r" refreshes, "tab" rotates pages.
package ui
