package cli

import (
	"fmt"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/clipv/clipv/internal/daemon"
	"github.com/clipv/clipv/internal/protocol"
	"github.com/clipv/clipv/internal/types"
)

// maxCellWidth keeps multi-line pastes from swallowing the terminal.
const maxCellWidth = 72

var historyCmd = &cobra.Command{
	Use:     "history",
	Aliases: []string{"ls"},
	Short:   "List the recorded clipboard history",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := daemonClient().Snapshot()
		if err != nil {
			return err
		}
		return renderResponse(resp)
	},
}

var promoteCmd = &cobra.Command{
	Use:   "promote <index>",
	Short: "Move an entry to the front and put it on the clipboard",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := parseIndex(args[0])
		if err != nil {
			return err
		}
		resp, err := daemonClient().Promote(index)
		if err != nil {
			return err
		}
		return renderResponse(resp)
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <index|text>",
	Short: "Delete an entry by index, or by value with --text",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		byText, _ := cmd.Flags().GetBool("text")
		var resp *protocol.Response
		var err error
		if byText {
			resp, err = daemonClient().DeleteThis(types.NewText(args[0]))
		} else {
			var index int
			index, err = parseIndex(args[0])
			if err != nil {
				return err
			}
			resp, err = daemonClient().Delete(index)
		}
		if err != nil {
			return err
		}
		return renderResponse(resp)
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty the clipboard history",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := daemonClient().Clear()
		if err != nil {
			return err
		}
		fmt.Println("history cleared")
		return renderMessage(resp)
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Ask the daemon to shut down",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := daemonClient().Stop()
		if err != nil {
			return err
		}
		return renderMessage(resp)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report whether the daemon is running",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st := daemon.Probe(cfg.LockPath)
		if !st.Running {
			fmt.Println("clipvd is not running")
			return nil
		}
		fmt.Printf("clipvd is running (pid %d)\n", st.PID)
		return nil
	},
}

func init() {
	deleteCmd.Flags().Bool("text", false, "treat the argument as entry text instead of an index")
}

func parseIndex(arg string) (int, error) {
	index, err := strconv.Atoi(arg)
	if err != nil || index < 0 {
		return 0, fmt.Errorf("index must be a non-negative integer, got %q", arg)
	}
	return index, nil
}

// renderResponse prints a history table when the daemon sent a
// snapshot, or the diagnostic message otherwise.
func renderResponse(resp *protocol.Response) error {
	if !resp.HasHistory {
		return renderMessage(resp)
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"POS", "ITEM"})
	for pos, item := range resp.History {
		tw.AppendRow(table.Row{pos, item.String()})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 2, Align: text.AlignLeft, WidthMax: maxCellWidth},
	})
	fmt.Println(tw.Render())
	return nil
}

// renderMessage prints the daemon's message; an out-of-bounds index or
// a missing value comes back this way.
func renderMessage(resp *protocol.Response) error {
	if resp.Message != "" {
		fmt.Println(resp.Message)
	}
	return nil
}
