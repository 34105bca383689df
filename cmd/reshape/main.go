// brain-reshape: edits the topology of a saved network
//
// Usage:
//
//	brain-reshape --net=nets/demo.brain --op=expand --layer=1 --n=4
//	brain-reshape --net=nets/demo.brain --op=stretch --layer=1 --n=2 --group=4 --out=wide
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"brainlib/m"
)

var (
	netFile = flag.String("net", "", "Network file (.brain)")
	op      = flag.String("op", "", "expand, shrink or stretch")
	layer   = flag.Int("layer", 1, "Neuron layer index, 0 is the input")
	n       = flag.Int("n", 1, "Neurons to add/remove, or the stretch factor")
	group   = flag.Int("group", 1, "Stretch group width")
	out     = flag.String("out", "", "Output name (overwrites the input when empty)")
	format  = flag.String("format", "plain", "plain or legacy")
)

func main() {
	flag.Parse()
	if *netFile == "" {
		fmt.Fprintln(os.Stderr, "--net is required")
		flag.Usage()
		os.Exit(1)
	}
	f, err := m.ParseFormat(*format)
	if err != nil {
		log.Fatal(err)
	}

	net, err := m.LoadFile(*netFile)
	if err != nil {
		log.Fatalf("load: %v", err)
	}
	before := net.LayerCounts()

	switch strings.ToLower(*op) {
	case "expand":
		err = net.ExpandLayer(*layer, *n)
	case "shrink":
		err = net.ShrinkLayer(*layer, *n)
	case "stretch":
		err = net.StretchLayer(*layer, *n, *group)
	default:
		log.Fatalf("unknown op %q", *op)
	}
	if err != nil {
		log.Fatalf("%s: %v", *op, err)
	}

	name := *out
	if name == "" {
		name = net.Name()
	}
	path, err := net.SaveFile(filepath.Dir(*netFile), name, m.WithFormat(f))
	if err != nil {
		log.Fatalf("save: %v", err)
	}
	fmt.Printf("%v -> %v, saved %s\n", before, net.LayerCounts(), path)
}
