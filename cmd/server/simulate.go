package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/appiumctl/api/internal/catalog"
	"github.com/appiumctl/api/internal/engine"
	"github.com/appiumctl/api/internal/model"
	"github.com/appiumctl/api/internal/scheduler"
	"github.com/appiumctl/api/internal/service"
)

func SimulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run a single job through every step and print its log",
		RunE: func(cmd *cobra.Command, args []string) error {
			modelID, _ := cmd.Flags().GetString("model")
			city, _ := cmd.Flags().GetString("city")
			state, _ := cmd.Flags().GetString("state")
			deviceID, _ := cmd.Flags().GetString("device")
			delay, _ := cmd.Flags().GetDuration("delay")
			instant, _ := cmd.Flags().GetBool("instant")

			if delay <= 0 {
				return fmt.Errorf("--delay must be positive")
			}

			m, err := service.NewModelService().Get(cmd.Context(), modelID)
			if err != nil {
				return fmt.Errorf("model %q: %w", modelID, err)
			}

			profile := model.DefaultProfile()
			profile.City = city
			profile.State = state
			profile.DeviceID = deviceID

			return simulate(cmd.OutOrStdout(), m.ID, m.Name, profile, delay, instant)
		},
	}
	cmd.Flags().String("model", "model-sara", "Model id to run the job for")
	cmd.Flags().String("city", "Dallas", "Profile city")
	cmd.Flags().String("state", "Texas", "Profile state")
	cmd.Flags().String("device", "device-201", "Device id recorded in the snapshot")
	cmd.Flags().Duration("delay", 1400*time.Millisecond, "Delay between steps")
	cmd.Flags().Bool("instant", false, "Advance a manual clock instead of waiting")
	return cmd
}

func simulate(out io.Writer, modelID, modelName string, profile model.Profile, delay time.Duration, instant bool) error {
	var clock scheduler.Clock = scheduler.RealClock()
	var manual *scheduler.ManualClock
	if instant {
		manual = scheduler.NewManualClock(time.Now())
		clock = manual
	}

	done := make(chan struct{})
	printer := engine.NotifierFunc(func(ev model.JobEvent) {
		if ev.Entry != nil {
			fmt.Fprintf(out, "[%s] %-24s %s\n", ev.Entry.Timestamp.Format("15:04:05"), ev.Entry.StepLabel, ev.Entry.Message)
		}
		if ev.Type == model.JobEventCompleted {
			close(done)
		}
	})

	registry := engine.NewRegistry(catalog.Default(), engine.WithNow(clock.Now))
	controller := engine.NewController(registry, scheduler.New(delay, scheduler.WithClock(clock)),
		engine.WithNotifier(printer),
	)
	defer controller.Close()

	job, err := controller.Launch(modelID, modelName, profile)
	if err != nil {
		return err
	}

	if manual != nil {
		for manual.Pending() > 0 {
			manual.Advance(delay)
		}
	} else {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case <-done:
		case <-quit:
			final, _ := controller.Stop(job.ID)
			fmt.Fprintf(out, "interrupted at step %d of %d\n", final.ProgressIndex+1, len(final.Steps))
			return nil
		}
	}

	final, err := registry.Get(job.ID)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s: %s (%d log entries)\n", final.ID, final.Status, final.Logs.Len())
	return nil
}
