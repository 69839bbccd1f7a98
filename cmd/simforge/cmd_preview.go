package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"simforge/internal/preview"
)

var previewFlags struct {
	timeout time.Duration
}

var previewCmd = &cobra.Command{
	Use:   "preview <simulation.html>",
	Short: "Smoke-test a generated simulation in a headless browser",
	Long: `Preview loads the HTML file in headless Chrome and reports the page
title, rendered body size, and any uncaught JavaScript errors. Fails when the
page throws on startup.`,
	Args: cobra.ExactArgs(1),
	RunE: runPreview,
}

func init() {
	previewCmd.Flags().DurationVar(&previewFlags.timeout, "timeout", preview.DefaultTimeout, "Max time to wait for the page")
}

func runPreview(cmd *cobra.Command, args []string) error {
	if _, err := loadConfig(); err != nil {
		return err
	}

	res, err := preview.Check(cmd.Context(), args[0], previewFlags.timeout)
	if err != nil {
		return err
	}

	fmt.Printf("Title:       %s\n", res.Title)
	fmt.Printf("Body bytes:  %d\n", res.BodyLength)
	if len(res.ConsoleErrors) == 0 {
		fmt.Println("Console:     clean")
		return nil
	}
	for _, msg := range res.ConsoleErrors {
		fmt.Printf("Console err: %s\n", msg)
	}
	cmd.SilenceUsage = true
	return fmt.Errorf("%d JavaScript error(s) on load", len(res.ConsoleErrors))
}
