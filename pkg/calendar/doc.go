// Package calendar syncs analyzed meals to the user's Google Calendar.
// Users connect through the standard OAuth authorization-code flow;
// tokens are stored per user and refreshed transparently.
package calendar
