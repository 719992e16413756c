package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/felixgeelhaar/memlog/internal/events"
	"github.com/felixgeelhaar/memlog/internal/filter"
	"github.com/felixgeelhaar/memlog/internal/store"
	"github.com/felixgeelhaar/memlog/internal/web"
	"github.com/spf13/cobra"
)

func newAddCmd(opts *rootOptions) *cobra.Command {
	var tags string

	cmd := &cobra.Command{
		Use:   "add <topic> <content>",
		Short: "Store a memory",
		Long: `Store a memory under a topic. Tags are given as a comma-separated list;
blank items are dropped.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			parsed := web.ParseTags(tags)
			id, err := a.store.Store(cmd.Context(), args[0], args[1], parsed)
			if err != nil {
				return fmt.Errorf("store memory: %w", err)
			}
			a.bus.Emit(events.EntryStored, "cli", map[string]any{"id": id, "topic": args[0], "tags": len(parsed)})

			fmt.Fprintf(cmd.OutOrStdout(), "Stored memory %d\n", id)
			return nil
		},
	}

	cmd.Flags().StringVar(&tags, "tags", "", "Comma-separated tags")
	return cmd
}

type readFlags struct {
	tags   []string
	asJSON bool
}

func (f *readFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVar(&f.tags, "tag", nil, "Only show memories with a tag matching this glob (repeatable)")
	cmd.Flags().BoolVar(&f.asJSON, "json", false, "Output in JSON format")
}

func newListCmd(opts *rootOptions) *cobra.Command {
	flags := &readFlags{}

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List memories, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := filter.Validate(flags.tags); err != nil {
				return err
			}

			a, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			entries, err := a.store.ListAll(cmd.Context())
			if err != nil {
				return fmt.Errorf("list memories: %w", err)
			}
			if entries, err = filter.ByTags(entries, flags.tags); err != nil {
				return err
			}
			a.bus.Emit(events.EntriesListed, "cli", map[string]any{"results": len(entries)})

			return writeEntries(cmd.OutOrStdout(), entries, flags.asJSON)
		},
	}

	flags.register(cmd)
	return cmd
}

func newSearchCmd(opts *rootOptions) *cobra.Command {
	flags := &readFlags{}

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Find memories whose topic, content or tags contain query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := filter.Validate(flags.tags); err != nil {
				return err
			}

			a, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			entries, err := a.store.Search(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("search memories: %w", err)
			}
			if entries, err = filter.ByTags(entries, flags.tags); err != nil {
				return err
			}
			a.bus.Emit(events.SearchPerformed, "cli", map[string]any{"query": args[0], "results": len(entries)})

			return writeEntries(cmd.OutOrStdout(), entries, flags.asJSON)
		},
	}

	flags.register(cmd)
	return cmd
}

func writeEntries(w io.Writer, entries []store.Entry, asJSON bool) error {
	if asJSON {
		if entries == nil {
			entries = []store.Entry{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	if len(entries) == 0 {
		fmt.Fprintln(w, "No memories found.")
		return nil
	}

	for i, e := range entries {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "[%d] %s  (%s)\n", e.ID, e.Topic, e.Timestamp.Format("2006-01-02 15:04:05"))
		fmt.Fprintln(w, e.Content)
		if len(e.Tags) > 0 {
			fmt.Fprintf(w, "Tags: %s\n", strings.Join(e.Tags, ", "))
		}
	}
	return nil
}
