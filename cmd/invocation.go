package cmd

import (
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/frahmantamala/office-ticketing/pkg/logger"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// sensitiveFlags never reach the log with their value.
var sensitiveFlags = []string{"password", "secret", "token"}

// withApp wires the application for the duration of run. Each invocation
// gets a run id on its logger; a panic inside run is logged with its stack
// and turned into an error.
func withApp(run func(cmd *cobra.Command, args []string, a *App) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := logger.With(cmd.Context(), "run_id", uuid.NewString(), "command", cmd.CommandPath())
		cmd.SetContext(ctx)
		log := logger.From(ctx)

		start := time.Now()
		log.Debug("command started", "args", args, "flags", redactFlags(cmd))

		defer func() {
			if r := recover(); r != nil {
				log.Error("panic recovered", "error", r, "stack", string(debug.Stack()))
				err = fmt.Errorf("internal error: %v", r)
			}
			if err != nil {
				log.Debug("command failed", "duration_ms", time.Since(start).Milliseconds(), "error", err)
				return
			}
			log.Debug("command finished", "duration_ms", time.Since(start).Milliseconds())
		}()

		return run(cmd, args, a)
	}
}

func isSensitive(name string) bool {
	lower := strings.ToLower(name)
	for _, s := range sensitiveFlags {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}

// redactFlags lists the flags set on cmd, masking sensitive values.
func redactFlags(cmd *cobra.Command) map[string]string {
	set := make(map[string]string)
	cmd.Flags().Visit(func(f *pflag.Flag) {
		if isSensitive(f.Name) {
			set[f.Name] = "[FILTERED]"
			return
		}
		set[f.Name] = f.Value.String()
	})
	return set
}
