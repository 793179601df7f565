package main

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/roshni-games/resilience/internal/app"
	"github.com/roshni-games/resilience/internal/errors"
	"github.com/roshni-games/resilience/internal/recovery"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a fault injection scenario through the recovery pipeline",
	Long: `Drive synthetic operations through the configured recovery pipeline
and report which strategies handled which failures.

Scenarios inject classified faults at a configurable rate so retry,
circuit breaker, and adaptive policies can be observed and tuned before
shipping a configuration.`,
	Example: `  # Flaky network calls, default rate
  resilience simulate --scenario network

  # Heavier failure rate with more operations
  resilience simulate --scenario gameplay --ops 200 --fail-rate 0.5

  # Prompt when a failure needs user action
  resilience simulate --scenario mixed --interactive`,
	RunE: runSimulate,
}

var (
	scenarioName string
	opCount      int
	failRate     float64
	interactive  bool
	seed         int64
)

func init() {
	simulateCmd.Flags().StringVarP(&scenarioName, "scenario", "s", "network",
		"Fault scenario: network, gameplay, ratelimit, oom, mixed")
	simulateCmd.Flags().IntVar(&opCount, "ops", 50,
		"Number of operations to run")
	simulateCmd.Flags().Float64Var(&failRate, "fail-rate", 0.3,
		"Probability that an operation fails on a given invocation")
	simulateCmd.Flags().BoolVarP(&interactive, "interactive", "i", false,
		"Prompt when a failure requires user action")
	simulateCmd.Flags().Int64Var(&seed, "seed", 0,
		"Random seed (0 uses the current time)")
}

// scenario maps a name to the faults it injects.
type scenario struct {
	component string
	faults    []fault
}

type fault struct {
	kind    errors.Kind
	message string
}

var scenarios = map[string]scenario{
	"network": {
		component: "network",
		faults: []fault{
			{errors.KindNetworkConnection, "connection refused"},
			{errors.KindNetworkTimeout, "request timed out"},
			{errors.KindNetworkUnavailable, "service returned 503"},
		},
	},
	"gameplay": {
		component: "gameplay",
		faults: []fault{
			{errors.KindGameplaySaveFailed, "save write failed"},
			{errors.KindGameplayLoadFailed, "save file unreadable"},
			{errors.KindGameplayInvalidMove, "move rejected by rules"},
		},
	},
	"ratelimit": {
		component: "network",
		faults: []fault{
			{errors.KindNetworkRateLimited, "quota exceeded"},
		},
	},
	"oom": {
		component: "system",
		faults: []fault{
			{errors.KindSystemOutOfMemory, "allocation failed"},
		},
	},
	"mixed": {
		component: "client",
		faults: []fault{
			{errors.KindNetworkConnection, "connection reset"},
			{errors.KindNetworkAuth, "token rejected"},
			{errors.KindPermissionDenied, "storage permission denied"},
			{errors.KindGameplaySaveFailed, "save write failed"},
			{errors.KindValidation, "malformed request"},
		},
	},
}

func runSimulate(cmd *cobra.Command, args []string) error {
	sc, ok := scenarios[scenarioName]
	if !ok {
		names := make([]string, 0, len(scenarios))
		for name := range scenarios {
			names = append(names, name)
		}
		sort.Strings(names)
		return fmt.Errorf("unknown scenario %q (want one of: %s)",
			scenarioName, strings.Join(names, ", "))
	}

	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	application := app.New()
	ctx := context.Background()
	if err := application.Initialize(ctx, cfgFile); err != nil {
		return err
	}
	defer application.Shutdown()

	fmt.Println(color.CyanString("Fault injection: %s", scenarioName))
	fmt.Printf("Operations: %d  Fail rate: %.0f%%  Seed: %d\n\n",
		opCount, failRate*100, seed)

	bar := progressbar.NewOptions(opCount,
		progressbar.OptionSetDescription("simulating"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(false),
	)

	tally := newTally()
	handler := application.Handler()

	for i := 0; i < opCount; i++ {
		f := sc.faults[rng.Intn(len(sc.faults))]
		opName := fmt.Sprintf("%s_op_%d", scenarioName, i)

		// Each invocation independently fails with probability
		// failRate, so retries can genuinely succeed.
		op := func(ctx context.Context) (interface{}, error) {
			if rng.Float64() < failRate {
				return nil, errors.New(f.kind, f.message, nil)
			}
			return "ok", nil
		}

		_, result := handler.ExecuteWithRecovery(ctx, opName, sc.component, nil, op)
		tally.record(result)

		if interactive && result.RequiredAction != recovery.ActionNone {
			bar.Clear()
			if promptAction(result) {
				// The user claims the action is done; run once more.
				_, result = handler.ExecuteWithRecovery(ctx, opName, sc.component, nil, op)
				tally.record(result)
			}
		}

		bar.Add(1)
	}
	bar.Finish()
	fmt.Println()

	tally.print()
	printBreaker(application.Breaker())
	printAdaptive(application.Adaptive())

	return nil
}

// promptAction asks the user to resolve a failure that automation cannot.
func promptAction(result *recovery.Result) bool {
	fmt.Println()
	fmt.Println(color.YellowString("⚠ %s", result.UserMessage))

	done := false
	prompt := &survey.Confirm{
		Message: fmt.Sprintf("Action required (%s). Done?", result.RequiredAction),
		Default: false,
	}
	survey.AskOne(prompt, &done)
	return done
}

// tally aggregates simulation outcomes per strategy.
type tally struct {
	runs      int
	successes int
	attempts  int
	byStrat   map[string]*stratCount
}

type stratCount struct {
	handled   int
	succeeded int
}

func newTally() *tally {
	return &tally{byStrat: make(map[string]*stratCount)}
}

func (t *tally) record(r *recovery.Result) {
	t.runs++
	t.attempts += r.Attempts
	if r.Success {
		t.successes++
	}

	name := r.StrategyUsed
	if name == "" {
		name = "(none)"
	}
	sc := t.byStrat[name]
	if sc == nil {
		sc = &stratCount{}
		t.byStrat[name] = sc
	}
	sc.handled++
	if r.Success {
		sc.succeeded++
	}
}

func (t *tally) print() {
	fmt.Println(color.CyanString("Results"))
	fmt.Printf("Operations: %d  Recovered: %s  Failed: %s  Invocations: %d\n\n",
		t.runs,
		color.GreenString("%d", t.successes),
		color.RedString("%d", t.runs-t.successes),
		t.attempts,
	)

	tw := table.NewWriter()
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"Strategy", "Handled", "Recovered", "Rate"})

	names := make([]string, 0, len(t.byStrat))
	for name := range t.byStrat {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		sc := t.byStrat[name]
		rate := float64(sc.succeeded) / float64(sc.handled) * 100
		tw.AppendRow(table.Row{name, sc.handled, sc.succeeded,
			fmt.Sprintf("%.0f%%", rate)})
	}

	fmt.Println(tw.Render())
	fmt.Println()
}

func printBreaker(breaker *recovery.CircuitBreakerStrategy) {
	snapshot := breaker.Snapshot()
	if len(snapshot) == 0 {
		return
	}

	fmt.Println(color.CyanString("Circuit breaker"))
	tw := table.NewWriter()
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"Kind", "State", "Failures"})

	kinds := make([]errors.Kind, 0, len(snapshot))
	for k := range snapshot {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })

	for _, k := range kinds {
		st := snapshot[k]
		tw.AppendRow(table.Row{k.String(), colorState(st.State), st.Failures})
	}

	fmt.Println(tw.Render())
	fmt.Println()
}

func printAdaptive(adaptive *recovery.AdaptiveStrategy) {
	snapshot := adaptive.Snapshot()
	if len(snapshot) == 0 {
		return
	}

	fmt.Println(color.CyanString("Adaptive strategy"))
	tw := table.NewWriter()
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"Kind", "Severity", "Success rate", "Avg delay", "Confidence"})

	kinds := make([]errors.Kind, 0, len(snapshot))
	for k := range snapshot {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })

	for _, k := range kinds {
		bySev := snapshot[k]
		sevs := make([]errors.Severity, 0, len(bySev))
		for s := range bySev {
			sevs = append(sevs, s)
		}
		sort.Slice(sevs, func(i, j int) bool { return sevs[i] < sevs[j] })

		for _, s := range sevs {
			p := bySev[s]
			tw.AppendRow(table.Row{
				k.String(), s.String(),
				fmt.Sprintf("%.0f%%", p.SuccessRate*100),
				fmt.Sprintf("%.0fms", p.AvgDelayMs),
				fmt.Sprintf("%.2f", p.Confidence),
			})
		}
	}

	fmt.Println(tw.Render())
}

func colorState(s recovery.CircuitState) string {
	switch s {
	case recovery.StateOpen:
		return color.RedString(s.String())
	case recovery.StateHalfOpen:
		return color.YellowString(s.String())
	default:
		return color.GreenString(s.String())
	}
}
