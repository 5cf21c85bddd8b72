// Package storage persists connected Todoist accounts.
//
// Accounts are created by the OAuth flow, read by the webhook path and the
// periodic sweep, and removed when a user disconnects. The mutation engine
// itself never creates or deletes accounts; it only reads them.
package storage
