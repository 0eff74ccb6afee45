// defcheck validates state machine definition files and prints the clamped
// transition timing layout each authored transition resolves to.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"github.com/hazelite/animstate/definitions"
	"github.com/hazelite/animstate/statemachine"
)

func main() {
	verbose := flag.Bool("v", false, "print states and clips, not just transitions")
	flag.Parse()

	names := flag.Args()
	if len(names) == 0 {
		names = definitions.List()
	}
	if len(names) == 0 {
		log.Fatal("defcheck: no definition files found")
	}

	failed := false
	for _, name := range names {
		if err := check(name, *verbose); err != nil {
			log.Printf("defcheck: %s: %v", name, err)
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}

func check(name string, verbose bool) error {
	spec, err := definitions.LoadSpec(name)
	if err != nil {
		return err
	}
	def, err := spec.Build()
	if err != nil {
		return err
	}

	fmt.Printf("%s: %q ok (%d clips, %d states, %d transitions)\n",
		name, def.Name, len(def.Clips), len(def.States), len(def.Transitions))

	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	if verbose {
		fmt.Fprintln(w, "  state\tkind\tloop\tduration")
		for i := range def.States {
			st := &def.States[i]
			dur := statemachine.StateDuration(def, st, statemachine.BlendParams{})
			fmt.Fprintf(w, "  %s\t%s\t%v\t%.3fs\n", st.Name, st.Kind, st.Loop, dur)
		}
		fmt.Fprintln(w)
	}

	if len(def.Transitions) > 0 {
		fmt.Fprintln(w, "  transition\texit\tduration\tcycles\tlayout (ghost/from/blend/to/ghost)")
		for _, tr := range def.Transitions {
			from := &def.States[tr.From]
			to := &def.States[tr.To]
			timing := statemachine.ComputeTransitionTiming(
				statemachine.StateDuration(def, from, statemachine.BlendParams{}),
				statemachine.StateDuration(def, to, statemachine.BlendParams{}),
				tr.ExitTime, tr.Duration,
			)
			fmt.Fprintf(w, "  %s > %s\t%.3fs\t%.3fs\t%dx%d\t%.2f / %.2f / %.2f / %.2f / %.2f\n",
				from.Name, to.Name,
				timing.ExitTime, timing.TransitionDuration,
				timing.FromVisualCycles, timing.ToVisualCycles,
				timing.GhostFrom, timing.FromBar, timing.TransitionDuration, timing.ToBar, timing.GhostTo)
		}
	}
	return w.Flush()
}
