package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/bsidebar/insights/pkg/server"
	"github.com/bsidebar/insights/pkg/telemetry"
)

var (
	bold  = color.New(color.Bold).SprintfFunc()
	red   = color.New(color.FgRed).SprintfFunc()
	green = color.New(color.FgGreen).SprintfFunc()
)

type Printer struct {
	out io.Writer
}

func NewPrinter(out io.Writer) *Printer {
	if f, ok := out.(*os.File); !ok || !isatty.IsTerminal(f.Fd()) {
		color.NoColor = true
	}
	return &Printer{
		out: out,
	}
}

func (p *Printer) Println(a ...any) {
	fmt.Fprintln(p.out, a...)
}

func (p *Printer) Print(a ...any) {
	fmt.Fprint(p.out, a...)
}

func (p *Printer) Printf(format string, a ...any) {
	fmt.Fprintf(p.out, format, a...)
}

// PrintWelcomeMessage prints the banner shown when the daemon starts
func (p *Printer) PrintWelcomeMessage(appName, endpoint string) {
	p.Printf("\n------- %s is running -------\n", bold(appName))
	if endpoint == "" {
		p.Println("No endpoint configured, batches are dropped.")
	} else {
		p.Printf("Sending to %s\n", endpoint)
	}
	p.Print("(Ctrl+C to stop)\n\n")
}

// PrintError prints an error message
func (p *Printer) PrintError(err error) {
	p.Printf("%s %s\n", red("error:"), err)
}

// PrintEvent prints a queued event
func (p *Printer) PrintEvent(e telemetry.Event) {
	p.Printf("%s %s\n", bold(e.Kind), formatEventValue(e))
}

// PrintResult prints the outcome of a flush
func (p *Printer) PrintResult(res telemetry.Result) {
	switch {
	case res.Attempts == 0:
		p.Println("Nothing sent.")
	case res.Success:
		p.Printf("%s after %d attempt(s)\n", green("Delivered"), res.Attempts)
	default:
		p.Printf("%s after %d attempt(s)\n", red("Dropped"), res.Attempts)
	}
}

// PrintStats prints the collection server counters, kinds sorted by name
func (p *Printer) PrintStats(stats server.Stats) {
	p.Printf("%s %d (%d duplicate, %d rejected)\n", bold("Batches:"), stats.Batches, stats.Duplicates, stats.Rejected)
	p.Printf("%s %d\n", bold("Events:"), stats.Events)
	for _, kind := range slices.Sorted(maps.Keys(stats.Kinds)) {
		p.Printf("  %-18s %d\n", kind, stats.Kinds[kind])
	}
}

func formatEventValue(e telemetry.Event) string {
	if e.Value != nil {
		return fmt.Sprintf("→ %q", *e.Value)
	}
	return "→ " + formatValues(e.Values)
}

// formatValues prints structured values as (key: value, ...) with keys in
// sorted order.
func formatValues(values map[string]any) string {
	if len(values) == 0 {
		return "()"
	}

	data, err := json.Marshal(values)
	if err != nil {
		return fmt.Sprintf("(%v)", values)
	}

	kv := orderedmap.New[string, any]()
	if err := json.Unmarshal(data, &kv); err != nil {
		return fmt.Sprintf("(%s)", data)
	}

	var parts []string
	for key, value := range kv.FromOldest() {
		formatted, _ := json.Marshal(value)
		parts = append(parts, fmt.Sprintf("%s: %s", key, formatted))
	}

	return fmt.Sprintf("(%s)", strings.Join(parts, ", "))
}
