// Package preview serves a live card preview for the active note. The page
// reloads through server-sent events whenever the note changes on disk, and
// exposes the card commands as POST endpoints.
package preview
