package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"filterbridge/internal/ipc"
	"filterbridge/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon status",
		RunE: func(cmd *cobra.Command, args []string) error {
			socket := ctx.socketPath()
			status, err := ipc.FetchStatus(cmd.Context(), socket)
			if err != nil {
				return wrapDialError(err, socket)
			}
			if ctx.wantJSON(cmd) {
				return writeJSON(cmd, status)
			}
			started := "-"
			if !status.StartedAt.IsZero() {
				started = status.StartedAt.Local().Format(time.DateTime)
			}
			rows := [][]string{
				{"Running", yesNo(status.Running)},
				{"PID", fmt.Sprintf("%d", status.PID)},
				{"Socket", status.SocketPath},
				{"Database", status.DatabasePath},
				{"Lock", status.LockPath},
				{"Windows", fmt.Sprintf("%d", status.Windows)},
				{"Started", started},
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Field", "Value"}, rows, nil))
			return nil
		},
	}
}

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check directories and socket readiness",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			results := preflight.RunAll(cmd.Context(), cfg)
			if ctx.wantJSON(cmd) {
				return writeJSON(cmd, results)
			}
			rows := make([][]string, 0, len(results))
			for _, r := range results {
				state := "ok"
				if !r.Passed {
					state = "FAIL"
				}
				rows = append(rows, []string{state, r.Name, r.Detail})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"State", "Check", "Detail"}, rows, nil))
			return nil
		},
	}
}
