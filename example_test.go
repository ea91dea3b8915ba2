package qbt_test

import (
	"context"
	"fmt"
	"os"

	qbt "github.com/aqbt/qbt"
)

func ExampleTorrentsAPI_Info() {
	if os.Getenv("QBT_EXAMPLE_LIVE") == "" {
		fmt.Println("skipped")
		// Output: skipped
		return
	}

	client, _ := qbt.New(qbt.Config{
		BaseURL:  "http://localhost:8080",
		Username: "admin",
		Password: "adminadmin",
	})
	defer client.Close()

	ctx := context.Background()
	_ = client.Login(ctx)

	list, _ := client.Torrents.Info(ctx, &qbt.TorrentInfoOptions{
		Filter: qbt.FilterDownloading,
	})
	fmt.Printf("downloading: %d\n", len(list))
}

func ExampleTorrentsAPI_Add() {
	if os.Getenv("QBT_EXAMPLE_LIVE") == "" {
		fmt.Println("skipped")
		// Output: skipped
		return
	}

	client, _ := qbt.New(qbt.Config{BaseURL: "http://localhost:8080"})
	defer client.Close()

	ctx := context.Background()
	_ = client.Login(ctx)

	form := qbt.AddForm{}.
		URLs("magnet:?xt=urn:btih:c9e15763f722f23e98a29decdfae341b98d53056").
		SavePath("/downloads").
		Category("linux").
		Stopped(true)
	if err := client.Torrents.Add(ctx, form); err != nil {
		fmt.Println("add failed:", err)
	}
}

func ExampleSyncAPI_MainData() {
	if os.Getenv("QBT_EXAMPLE_LIVE") == "" {
		fmt.Println("skipped")
		// Output: skipped
		return
	}

	client, _ := qbt.New(qbt.Config{BaseURL: "http://localhost:8080"})
	defer client.Close()

	ctx := context.Background()
	_ = client.Login(ctx)

	var rid int64
	for i := 0; i < 3; i++ {
		md, err := client.Sync.MainData(ctx, rid)
		if err != nil {
			break
		}
		rid = md.RID
		fmt.Printf("changed torrents: %d\n", len(md.Torrents))
	}
}
