package main

import (
	"flag"
	"fmt"
	"log"
	"strconv"
	"strings"

	"ringdht/dht"
	"ringdht/index"
	"ringdht/rdcommon"
)

var bits int
var order int
var backend string
var machines string
var files string
var start uint64

func parseIDs(list string) ([]rdcommon.ID, error) {
	parts := strings.Split(list, ",")
	ids := make([]rdcommon.ID, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.ParseUint(p, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("machine id %q: %v", p, err)
		}
		ids = append(ids, rdcommon.ID(v))
	}
	return ids, nil
}

func main() {
	flag.IntVar(&bits, "bits", 4, "identifier space bits, 1-31")
	flag.IntVar(&order, "order", 5, "btree branching factor, >= 3")
	flag.StringVar(&backend, "backend", "btree", "local index engine: btree or llrb")
	flag.StringVar(&machines, "machines", "1,4,7,12,15", "comma separated machine ids to join")
	flag.StringVar(&files, "files", "docs/a.txt,docs/b.txt,img/c.png", "comma separated file paths to insert")
	flag.Uint64Var(&start, "start", 1, "machine every file operation starts from")

	flag.Parse()

	cfg := dht.Config{Bits: bits, Order: order}
	switch backend {
	case "btree":
		cfg.Backend = index.BackendBTree
	case "llrb":
		cfg.Backend = index.BackendLLRB
	default:
		log.Fatalf("unknown backend %q", backend)
	}

	d, err := dht.New(cfg)
	if err != nil {
		log.Fatalf("configure: %v", err)
	}

	ids, err := parseIDs(machines)
	if err != nil {
		log.Fatalf("parse machines: %v", err)
	}
	out := d.JoinAll(ids)
	for _, s := range out.Skipped {
		fmt.Printf("[JOIN] skipped %d: %v\n", s.ID, s.Reason)
	}
	fmt.Printf("[RING] %d bits, machines=%v\n\n", bits, d.ListRing())

	startID := rdcommon.ID(start)
	for _, path := range strings.Split(files, ",") {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		res, err := d.InsertFileByPath(startID, path)
		if err != nil {
			fmt.Printf("[PUT] %q ERROR: %v\n", path, err)
			continue
		}
		fmt.Printf("[PUT] %q key=%d status=%v machine=%d route=%v\n",
			path, res.Key, res.Status, res.Responsible, res.Trace)
	}
	fmt.Println()

	for _, path := range strings.Split(files, ",") {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		res, err := d.SearchFileByPath(startID, path)
		if err != nil {
			fmt.Printf("[GET] %q ERROR: %v\n", path, err)
			continue
		}
		fmt.Printf("[GET] %q key=%d status=%v machine=%d route=%v\n",
			path, res.Key, res.Status, res.Responsible, res.Trace)
	}
	fmt.Println()

	for _, row := range d.Status() {
		lo, hi, _ := d.ResponsibleRange(row.ID)
		fmt.Printf("[MACHINE] %3d owns (%d, %d] files=%d\n", row.ID, lo, hi, row.Files)
		table, _ := d.FingerTable(row.ID)
		for i, e := range table {
			fmt.Printf("          FT[%d] target=%3d -> machine %d\n", i, e.Target, e.Successor)
		}
	}
}
