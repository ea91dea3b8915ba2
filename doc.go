/*
Package qbt provides a typed client for the qBittorrent WebUI API.

Highlights:
  - Session cookie management with login/logout and version negotiation
  - Bounded retries for idempotent requests honoring Retry-After
  - Typed result objects built by a schema-driven mapper that tolerates
    evolving server payloads
  - Version-gated parameters and endpoint names across API revisions

Quick start:

	import (
	    "context"
	    "log"

	    "github.com/aqbt/qbt"
	)

	func main() {
	    client, err := qbt.New(qbt.Config{
	        BaseURL:  "http://localhost:8080",
	        Username: "admin",
	        Password: "password",
	    })
	    if err != nil {
	        log.Fatal(err)
	    }
	    defer client.Close()

	    ctx := context.Background()
	    if err := client.Login(ctx); err != nil {
	        log.Fatal(err)
	    }

	    torrents, err := client.Torrents.Info(ctx, nil)
	    if err != nil {
	        log.Fatal(err)
	    }
	    for _, t := range torrents {
	        log.Printf("%s: %s", t.Name, t.State)
	    }
	}
*/
package qbt
