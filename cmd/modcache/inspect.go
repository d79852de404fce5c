package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wippyai/modcache/gas"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [module files...]",
	Short: "Resolve every struct and call target of the published modules",
	RunE:  runInspect,
}

func runInspect(cmd *cobra.Command, args []string) error {
	p, err := newPainter(cmd)
	if err != nil {
		return err
	}
	s, err := openSession(cmd, args)
	if err != nil {
		return err
	}
	defer s.close()

	txn := s.transaction()
	defer txn.Discard()

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, p.render(titleStyle, "Module cache")+fmt.Sprintf(" %d modules at version %d", len(s.modules), s.cfg.State.Version))
	fmt.Fprintln(out)

	meter := func() gas.Meter { return s.meter() }
	for _, id := range s.modules {
		printReport(out, p, inspectModule(txn, id, meter))
	}

	st := s.vm.Stats()
	fmt.Fprintln(out, p.render(helpStyle, fmt.Sprintf(
		"loaded %d modules: %d fetches, %d misses, %d hits (%.0f%%), %d structs built, %d memo hits",
		s.vm.Len(), st.Fetches, st.Misses, st.Hits, st.HitRate()*100, st.StructsBuilt, st.MemoHits)))
	return nil
}

func printReport(w io.Writer, p painter, r moduleReport) {
	fmt.Fprintln(w, p.render(moduleStyle, r.id.String()))
	switch {
	case r.err != nil:
		fmt.Fprintln(w, "  "+p.render(errorStyle, r.err.Error()))
		fmt.Fprintln(w)
		return
	case r.module == nil:
		fmt.Fprintln(w, "  "+p.render(unknownStyle, "not published"))
		fmt.Fprintln(w)
		return
	}

	for _, sr := range r.structs {
		name := sr.name
		if sr.formals > 0 {
			params := make([]string, sr.formals)
			for i := range params {
				params[i] = fmt.Sprintf("T%d", i)
			}
			name += "<" + strings.Join(params, ", ") + ">"
		}
		fmt.Fprintf(w, "  struct %s %s\n", p.render(nameStyle, name), describeStruct(p, sr))
	}
	for _, cr := range r.calls {
		fmt.Fprintf(w, "  fun %s -> %s\n", p.render(nameStyle, cr.from), describeCall(p, cr))
	}
	fmt.Fprintln(w)
}

func describeStruct(p painter, sr structReport) string {
	switch {
	case sr.err != nil:
		return p.render(errorStyle, sr.err.Error())
	case sr.def == nil:
		return p.render(unknownStyle, "unresolved: depends on an unpublished module")
	default:
		return p.render(typeStyle, sr.def.String())
	}
}

func describeCall(p painter, cr callReport) string {
	switch {
	case cr.err != nil:
		return p.render(errorStyle, cr.err.Error())
	case cr.ref == nil:
		return p.render(unknownStyle, cr.target+" (unpublished)")
	default:
		return p.render(typeStyle, cr.ref.String())
	}
}
