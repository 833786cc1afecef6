package main

import (
	"fmt"
	"strconv"
	"strings"

	"knowledge-hub-be/internal/bootstrap"
	"knowledge-hub-be/internal/dto"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	listDeleted bool
	searchTopK  int
)

var addCmd = &cobra.Command{
	Use:   "add <content>",
	Short: "Create a note and dispatch it for enrichment",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(cmd.Context(), func(c *bootstrap.Container) error {
			res, err := c.NoteService.Create(cmd.Context(), &dto.CreateNoteRequest{Content: strings.Join(args, " ")})
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(res)
			}
			color.Green("Created note %d (%s, %s)", res.Id, res.Status, res.DispatchMode)
			return nil
		})
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List active notes, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(cmd.Context(), func(c *bootstrap.Container) error {
			var (
				notes []*dto.NoteResponse
				err   error
			)
			if listDeleted {
				notes, err = c.NoteService.ListDeleted(cmd.Context())
			} else {
				notes, err = c.NoteService.List(cmd.Context(), nil)
			}
			if err != nil {
				return err
			}
			return printNotes(notes)
		})
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Rank active notes by similarity to a query",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(cmd.Context(), func(c *bootstrap.Container) error {
			notes, err := c.NoteService.List(cmd.Context(), &dto.ListNotesRequest{
				Query: strings.Join(args, " "),
				TopK:  searchTopK,
			})
			if err != nil {
				return err
			}
			return printNotes(notes)
		})
	},
}

var reprocessCmd = &cobra.Command{
	Use:   "reprocess <id>...",
	Short: "Dispatch notes for enrichment again",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseIds(args)
		if err != nil {
			return err
		}
		return withContainer(cmd.Context(), func(c *bootstrap.Container) error {
			for _, id := range ids {
				if err := c.NoteService.Reprocess(cmd.Context(), id); err != nil {
					return fmt.Errorf("note %d: %w", id, err)
				}
				color.Green("Note %d submitted (%s)", id, c.Executor.Mode())
			}
			return nil
		})
	},
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Purge expired recycle-bin notes and re-dispatch stuck ones",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(cmd.Context(), func(c *bootstrap.Container) error {
			res, err := c.RetentionService.Sweep(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(res)
			}
			color.Green("Purged %d note(s) older than %d days, re-dispatched %d", res.Purged, res.RetentionDays, res.Redispatched)
			return nil
		})
	},
}

func init() {
	listCmd.Flags().BoolVar(&listDeleted, "deleted", false, "List the recycle bin instead")
	searchCmd.Flags().IntVarP(&searchTopK, "top-k", "k", 0, "Number of results (default SEARCH_TOP_K)")

	rootCmd.AddCommand(addCmd, listCmd, searchCmd, reprocessCmd, sweepCmd)
}

func printNotes(notes []*dto.NoteResponse) error {
	if jsonOutput {
		return printJSON(notes)
	}
	if len(notes) == 0 {
		color.Yellow("No notes")
		return nil
	}

	for _, n := range notes {
		header := color.New(color.Bold).Sprintf("#%d", n.Id)
		line := fmt.Sprintf("%s [%s] %s", header, n.Status, color.CyanString(n.Category))
		if n.RelevanceScore != nil {
			line += fmt.Sprintf(" score=%.3f", *n.RelevanceScore)
		}
		if len(n.Tags) > 0 {
			line += " " + color.HiBlackString(strings.Join(n.Tags, ", "))
		}
		fmt.Println(line)
		fmt.Printf("    %s\n", preview(n.Content, 80))
	}
	return nil
}

func preview(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}

func parseIds(args []string) ([]uint, error) {
	ids := make([]uint, 0, len(args))
	for _, a := range args {
		id, err := strconv.ParseUint(a, 10, 64)
		if err != nil || id == 0 {
			return nil, fmt.Errorf("invalid note id %q", a)
		}
		ids = append(ids, uint(id))
	}
	return ids, nil
}
