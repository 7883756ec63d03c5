package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/adammck/lrucache/pkg/api"
	"github.com/adammck/lrucache/pkg/impl/store/mongo"
	"github.com/adammck/lrucache/pkg/impl/store/s3"
	"github.com/adammck/lrucache/pkg/readthrough"
	shmongo "github.com/adammck/lrucache/pkg/shared/mongo"
	"github.com/jonboulle/clockwork"
	"go.mongodb.org/mongo-driver/bson"
)

func main() {
	ctx := context.Background()

	if len(os.Args) < 2 {
		fmt.Println("Usage: lrucache <replay|get|put> [arguments]")
		os.Exit(1)
	}

	cmd := os.Args[1]
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	capacity := fs.Int("capacity", 128, "maximum number of entries to cache")
	useFilter := fs.Bool("filter", false, "build a key filter before reading (get only)")
	fs.Parse(os.Args[2:])

	switch cmd {
	case "replay":
		err := replay(os.Stdin, os.Stdout, *capacity)
		if err != nil {
			log.Fatalf("replay: %s", err)
		}
	case "get":
		store := openStore(ctx)
		cmdGet(ctx, store, *capacity, *useFilter, fs.Args())
	case "put":
		store := openStore(ctx)
		cmdPut(ctx, store, os.Stdin)
	default:
		log.Fatalf("Unknown command: %s", cmd)
	}
}

// openStore picks a backing store from the environment. Mongo wins if both are
// configured.
func openStore(ctx context.Context) api.Store {
	if mongoURL := os.Getenv("MONGO_URL"); mongoURL != "" {
		db, err := shmongo.NewClient(mongoURL).DB(ctx)
		if err != nil {
			log.Fatalf("mongo: %s", err)
		}

		return mongo.New(db, clockwork.NewRealClock())
	}

	if bucket := os.Getenv("S3_BUCKET"); bucket != "" {
		store := s3.New(bucket, os.Getenv("S3_PREFIX"))
		err := store.Ping(ctx)
		if err != nil {
			log.Fatalf("s3.Ping: %s", err)
		}

		return store
	}

	log.Fatalf("Required: MONGO_URL or S3_BUCKET")
	return nil
}

// cmdGet reads each key through a cache, so repeated keys are only fetched
// once.
func cmdGet(ctx context.Context, store api.Store, capacity int, useFilter bool, keys []string) {
	c := readthrough.New(store, capacity)
	defer c.Close()

	if useFilter {
		err := c.RebuildFilter(ctx)
		if err != nil {
			log.Fatalf("RebuildFilter: %s", err)
		}
	}

	for _, key := range keys {
		b, stats, err := c.Get(ctx, key)
		if err != nil {
			log.Printf("Get(%s): %s", key, err)
			continue
		}

		o := map[string]interface{}{}
		err = bson.Unmarshal(b, &o)
		if err != nil {
			log.Fatalf("bson.Unmarshal: %s", err)
		}

		out, err := json.Marshal(o)
		if err != nil {
			log.Fatalf("json.Marshal: %s", err)
		}

		fmt.Fprintf(os.Stderr, "Got %s from: %s\n", key, stats.Source)
		fmt.Printf("%s\n", out)
	}

	m := c.Metrics()
	fmt.Fprintf(os.Stderr, "hits=%d misses=%d loads=%d filtered=%d\n", m.Hits, m.Misses, m.Loads, m.Filtered)
}

func cmdPut(ctx context.Context, store api.Store, r io.Reader) {
	n := 0
	dec := json.NewDecoder(r)
	for {
		var doc map[string]interface{}
		err := dec.Decode(&doc)
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Fatalf("Decode: %s", err)
		}

		id, ok := doc["_id"]
		if !ok {
			log.Fatalf("Document missing _id field")
		}
		k := fmt.Sprintf("%v", id)

		b, err := bson.Marshal(doc)
		if err != nil {
			log.Fatalf("bson.Marshal: %s", err)
		}

		err = store.Put(ctx, k, b)
		if err != nil {
			log.Fatalf("Put: %s", err)
		}

		n += 1
	}

	fmt.Printf("Wrote %d documents\n", n)
}
