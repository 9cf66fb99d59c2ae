// Package main implements the sqlmirror CLI.
//
// The CLI supports:
//   - up: apply every pending migration in ascending version order
//   - down: revert the single most-recently-applied migration
//   - create: scaffold up/down/config files for the next version
//   - status: show ledger state and pending migrations
//
// Commands that touch the database (up, down, status) need --db or a
// database.url entry in sqlmirror.yaml; create only works with files.
package main

func main() {
	Execute()
}
