// keyctl is operator tooling for the credential allow-list: it issues
// keys and mints admin API tokens. It is never exposed to end users.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/mkrylov/tgrelay/internal/apikey"
	"github.com/mkrylov/tgrelay/internal/auth"
	"github.com/mkrylov/tgrelay/internal/config"
	"github.com/mkrylov/tgrelay/internal/db"
)

func usage() {
	fmt.Fprintf(os.Stderr, `usage: keyctl <command> [flags]

commands:
  generate           generate a fresh key and register it
  add -key <key>     register a provided key
  token [-ttl <d>]   mint an admin API bearer token
`)
	os.Exit(2)
}

func openKeys(cfg config.Config) *apikey.Store {
	gdb, err := db.Open(cfg.DBDSN)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	return apikey.NewStore(gdb)
}

func main() {
	log.SetFlags(0)
	if len(os.Args) < 2 {
		usage()
	}
	cfg := config.Load()
	ctx := context.Background()

	switch os.Args[1] {
	case "generate":
		key, err := apikey.Generate()
		if err != nil {
			log.Fatalf("generate: %v", err)
		}
		if err := openKeys(cfg).Issue(ctx, key); err != nil {
			log.Fatalf("store key: %v", err)
		}
		// Printed exactly once; only hash and prefix are stored.
		fmt.Println(key)

	case "add":
		fs := flag.NewFlagSet("add", flag.ExitOnError)
		key := fs.String("key", "", "key to register")
		_ = fs.Parse(os.Args[2:])
		if *key == "" {
			log.Fatalf("add: -key is required")
		}
		if err := openKeys(cfg).Issue(ctx, *key); err != nil {
			log.Fatalf("store key: %v", err)
		}
		fmt.Println("ok")

	case "token":
		fs := flag.NewFlagSet("token", flag.ExitOnError)
		ttl := fs.Duration("ttl", 24*time.Hour, "token lifetime")
		_ = fs.Parse(os.Args[2:])
		tok, err := auth.SignJWT("operator", cfg.AdminJWTSecret, *ttl)
		if err != nil {
			log.Fatalf("sign token: %v", err)
		}
		fmt.Println(tok)

	default:
		usage()
	}
}
