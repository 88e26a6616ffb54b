// cmd/kvctl is the CLI front-end for the hierarchical KV store (spec §6),
// grounded on original_source/ex03/cli/cli.py's fire.Fire subcommand
// dispatch, re-expressed with cobra per SPEC_FULL.md §2.
package main

import (
	"fmt"
	"os"
	"regexp"
	"strconv"

	"github.com/spf13/cobra"
)

var nodeNameRegex = regexp.MustCompile(`(?i)^NODE-[0-9]+$`)

var (
	nodeURLPrefix string
	portStart     int
	docker        bool
)

func main() {
	root := &cobra.Command{
		Use:   "kvctl",
		Short: "put/get/delete keys against a hierarchical KV store node",
	}
	root.PersistentFlags().StringVar(&nodeURLPrefix, "node-url-prefix", "127.0.0.1", "hostname prefix used in host mode")
	root.PersistentFlags().IntVar(&portStart, "port-start", 8080, "base port used in host mode (port = port-start + node id)")
	root.PersistentFlags().BoolVar(&docker, "docker", false, "address nodes by container name (NODE-{n}) instead of host:port-start+n")

	root.AddCommand(newPutCmd(), newGetCmd(), newDeleteCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// parseNodeIdentifier accepts either a bare integer or "NODE-{n}"
// (case-insensitive), per spec §6's CLI contract.
func parseNodeIdentifier(s string) (int, error) {
	if id, err := strconv.Atoi(s); err == nil {
		return id, nil
	}
	if !nodeNameRegex.MatchString(s) {
		return 0, fmt.Errorf("invalid node name %q: expected an integer or NODE-<n>", s)
	}
	return strconv.Atoi(s[len("NODE-"):])
}

func buildNodeURL(identifier string) (string, error) {
	id, err := parseNodeIdentifier(identifier)
	if err != nil {
		return "", err
	}
	if docker {
		return fmt.Sprintf("http://NODE-%d:%d", id+1, portStart), nil
	}
	return fmt.Sprintf("http://%s:%d", nodeURLPrefix, portStart+id), nil
}

func newPutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "put <node> <key> <value>",
		Aliases: []string{"PUT"},
		Short:   "set key to value on the given node",
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			url, err := buildNodeURL(args[0])
			if err != nil {
				return err
			}
			return runPut(url, args[1], parseValue(args[2]))
		},
	}
	return cmd
}

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "get <node> <key>",
		Aliases: []string{"GET"},
		Short:   "get the value of key from the given node",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			url, err := buildNodeURL(args[0])
			if err != nil {
				return err
			}
			return runGet(url, args[1])
		},
	}
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <node> <key>",
		Aliases: []string{"DELETE"},
		Short:   "delete key from the given node",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			url, err := buildNodeURL(args[0])
			if err != nil {
				return err
			}
			return runDelete(url, args[1])
		},
	}
}

// parseValue mirrors cli.py's Union[str, int, float, bool] value
// coercion: try bool, then int, then float, falling back to string.
func parseValue(raw string) any {
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	if i, err := strconv.Atoi(raw); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	return raw
}
