// Package tasks manages user-owned todo items over HTTP: CRUD with status
// and priority enums, due dates, completion tracking, tag association, soft
// delete, and filtered offset pagination.
package tasks
