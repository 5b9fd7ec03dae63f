package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gregjazzy/Apex-Driver/internal/config"
	"github.com/gregjazzy/Apex-Driver/internal/database"
	"github.com/gregjazzy/Apex-Driver/internal/feed"
	"github.com/gregjazzy/Apex-Driver/internal/httpapi"
	"github.com/gregjazzy/Apex-Driver/internal/util"
)

func main() {
	var (
		addr   = flag.String("addr", ":8080", "listen address")
		dbPath = flag.String("db", "", "database file (defaults to the user data dir)")
	)
	flag.Parse()

	path := *dbPath
	if path == "" {
		root := util.DataDir(config.AppName)
		if err := os.MkdirAll(root, 0o755); err != nil {
			log.Fatalf("creating data dir: %v", err)
		}
		path = filepath.Join(root, config.DBFileName)
	}

	hub := feed.NewHub()
	db, err := database.Open(context.Background(), path, hub)
	if err != nil {
		log.Fatalf("opening database: %v", err)
	}
	defer db.DB.Close()

	srv := httpapi.NewServer(db, hub)

	log.Printf("listening on %s", *addr)
	if err := http.ListenAndServe(*addr, srv.Router()); err != nil {
		log.Fatal(err)
	}
}
