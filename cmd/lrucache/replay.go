package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/adammck/lrucache/pkg/lru"
)

// op is one line of a replay script.
type op struct {
	Op    string `json:"op"`
	Key   string `json:"key"`
	Value string `json:"value"`
}

// replay applies each op read from r to a fresh cache, and writes one result
// line per op to w, followed by the cache stats and its keys from most to
// least recently used.
func replay(r io.Reader, w io.Writer, capacity int) error {
	if capacity < 0 {
		return fmt.Errorf("capacity must not be negative: %d", capacity)
	}

	c := lru.New[string, string](capacity)
	defer c.Close()

	dec := json.NewDecoder(r)
	for n := 1; ; n++ {
		var o op
		err := dec.Decode(&o)
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("Decode (op %d): %w", n, err)
		}

		switch o.Op {
		case "put":
			c.Put(o.Key, o.Value)
			fmt.Fprintf(w, "put %s\n", o.Key)

		case "get":
			if v, ok := c.Get(o.Key); ok {
				fmt.Fprintf(w, "get %s = %s\n", o.Key, v)
			} else {
				fmt.Fprintf(w, "get %s: not found\n", o.Key)
			}

		case "contains":
			fmt.Fprintf(w, "contains %s = %t\n", o.Key, c.Contains(o.Key))

		case "delete":
			fmt.Fprintf(w, "delete %s = %t\n", o.Key, c.Delete(o.Key))

		case "clear":
			c.Clear()
			fmt.Fprintf(w, "clear\n")

		default:
			return fmt.Errorf("unknown op %q (op %d)", o.Op, n)
		}
	}

	s := c.Stats()
	fmt.Fprintf(w, "len=%d hits=%d misses=%d evictions=%d\n", c.Len(), s.Hits, s.Misses, s.Evictions)
	fmt.Fprintf(w, "keys=%v\n", c.Keys())
	return nil
}
