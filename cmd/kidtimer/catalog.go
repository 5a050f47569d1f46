package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"kidtimer/internal/model"
	"kidtimer/internal/timer"
)

func newPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List the built-in timer presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t := newTable("#", "ID", "Label", "Duration")
			for i, preset := range model.Presets() {
				duration := timer.FormatClock(preset.DurationSeconds)
				if preset.IsCustom() {
					duration = fmt.Sprintf("%d-%d min", model.MinCustomMinutes, model.MaxCustomMinutes)
				}
				t.Row(fmt.Sprint(i+1), preset.ID, preset.Label, duration)
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), t.Render())
			return err
		},
	}
}

func newSoundsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sounds",
		Short: "List the completion sounds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t := newTable("ID", "Label")
			for _, sound := range model.Sounds() {
				label := sound.Label
				if sound.ID == model.DefaultSoundID {
					label += " (default)"
				}
				t.Row(sound.ID, label)
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), t.Render())
			return err
		},
	}
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...)
}
