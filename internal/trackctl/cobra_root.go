package trackctl

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"
)

// Main is the trackctl entry point.
func Main() {
	if err := buildRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func defaultAddr() string {
	if v := os.Getenv("TRACKD_ADDR"); v != "" {
		return v
	}
	return "http://127.0.0.1:8080"
}

// buildRootCmd constructs the Cobra command tree over the HTTP client.
func buildRootCmd() *cobra.Command {
	addr := defaultAddr()
	root := &cobra.Command{
		Use:           "trackctl",
		Short:         "Inspect and edit live trackd state",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&addr, "addr", addr, "trackd base URL (defaults TRACKD_ADDR or http://127.0.0.1:8080)")
	client := func() *Client { return NewClient(addr) }

	listCmd := &cobra.Command{
		Use:     "list",
		Short:   "List all trackables and their attributes",
		Example: "  trackctl list",
		RunE: func(cmd *cobra.Command, args []string) error {
			all, err := client().Trackables()
			if err != nil {
				return err
			}
			return printJSON(cmd, all)
		},
	}

	showCmd := &cobra.Command{
		Use:     "show <trackable>",
		Short:   "Show one trackable's attributes and method counts",
		Example: "  trackctl show player",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := client().Trackable(args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd, st)
		},
	}

	getCmd := &cobra.Command{
		Use:     "get <trackable> <key>",
		Short:   "Read one attribute",
		Example: "  trackctl get player x",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := client().Get(args[0], args[1])
			if err != nil {
				return err
			}
			return printJSON(cmd, v)
		},
	}

	var silent bool
	setCmd := &cobra.Command{
		Use:     "set <trackable> <key> <value>",
		Short:   "Write one attribute (value parsed as JSON, else string)",
		Example: "  trackctl set player x 120.5\n  trackctl set vars mode '\"paused\"'",
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := client().Set(args[0], args[1], parseValue(args[2]), silent)
			if err != nil {
				return err
			}
			return printJSON(cmd, v)
		},
	}
	setCmd.Flags().BoolVar(&silent, "silent", false, "store without notifying observers")

	callCmd := &cobra.Command{
		Use:     "call <trackable> <method> [args...]",
		Short:   "Invoke a tracked method",
		Example: "  trackctl call player Jump\n  trackctl call player Push 2.5",
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			callArgs := make([]any, 0, len(args)-2)
			for _, a := range args[2:] {
				callArgs = append(callArgs, parseValue(a))
			}
			out, err := client().Call(args[0], args[1], callArgs)
			if err != nil {
				return err
			}
			return printJSON(cmd, out)
		},
	}

	methodsCmd := &cobra.Command{
		Use:     "methods",
		Short:   "Show method invocation counts for all trackables",
		Example: "  trackctl methods",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := client().Methods()
			if err != nil {
				return err
			}
			return printJSON(cmd, m)
		},
	}

	var interval time.Duration
	var count int
	watchCmd := &cobra.Command{
		Use:     "watch <trackable>",
		Short:   "Poll one trackable and print attribute changes",
		Example: "  trackctl watch player --interval 500ms",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return watch(cmd, client(), args[0], interval, count)
		},
	}
	watchCmd.Flags().DurationVar(&interval, "interval", time.Second, "poll interval")
	watchCmd.Flags().IntVar(&count, "count", 0, "number of polls (0 = forever)")

	root.AddCommand(listCmd, showCmd, getCmd, setCmd, callCmd, methodsCmd, watchCmd)
	return root
}

// watch polls the trackable and prints one line per changed attribute.
func watch(cmd *cobra.Command, c *Client, name string, interval time.Duration, count int) error {
	prev := map[string]any{}
	for i := 0; count == 0 || i < count; i++ {
		if i > 0 {
			time.Sleep(interval)
		}
		st, err := c.Trackable(name)
		if err != nil {
			return err
		}
		for _, line := range diffAttributes(prev, st.Attributes) {
			fmt.Fprintln(cmd.OutOrStdout(), line)
		}
		prev = st.Attributes
	}
	return nil
}

// diffAttributes reports changed keys in sorted order as "key: old -> new".
func diffAttributes(prev, cur map[string]any) []string {
	keys := make([]string, 0, len(cur))
	for k := range cur {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var out []string
	for _, k := range keys {
		old, had := prev[k]
		if !had {
			out = append(out, fmt.Sprintf("%s: %v", k, cur[k]))
			continue
		}
		// stringify before comparing; snapshot values may be uncomparable
		if fmt.Sprint(old) != fmt.Sprint(cur[k]) {
			out = append(out, fmt.Sprintf("%s: %v -> %v", k, old, cur[k]))
		}
	}
	return out
}

func printJSON(cmd *cobra.Command, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return nil
}
