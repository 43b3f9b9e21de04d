// Command miter evaluates geometry query scripts and checks segment
// intersections. With no arguments it runs the bundled scenario
// suite and reports a pass/fail count.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/chazu/miter/pkg/engine"
	"github.com/chazu/miter/pkg/geom"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("miter: ")

	check := flag.Bool("check", false, "run the bundled scenario suite and exit")
	eps := flag.Float64("eps", geom.DefaultEps, "intersection tolerance for the scenario suite")
	flag.Parse()

	if *check || flag.NArg() == 0 {
		os.Exit(runChecks(*eps))
	}

	eng := engine.NewEngine()
	exit := 0
	for _, path := range flag.Args() {
		src, err := os.ReadFile(path)
		if err != nil {
			log.Fatalf("%v", err)
		}

		rep, evalErrs, err := eng.Evaluate(string(src))
		if err != nil {
			log.Fatalf("%s: %v", path, err)
		}
		if len(evalErrs) > 0 {
			for _, e := range evalErrs {
				log.Printf("%s: %v", path, e)
			}
			exit = 1
			continue
		}

		printReport(path, rep)
	}
	os.Exit(exit)
}

func printReport(path string, rep *engine.Report) {
	for _, q := range rep.Queries {
		switch q.Kind {
		case geom.KindNone:
			fmt.Printf("%s: query %d: no intersection\n", path, q.Index)
		case geom.KindOverlap:
			fmt.Printf("%s: query %d: overlap from (%g, %g, %g)\n",
				path, q.Index, q.Point.X, q.Point.Y, q.Point.Z)
		default:
			fmt.Printf("%s: query %d: intersect at (%g, %g, %g)\n",
				path, q.Index, q.Point.X, q.Point.Y, q.Point.Z)
		}
	}
}
