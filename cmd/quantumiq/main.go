// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command quantumiq starts the QuantumIQ tutoring service: a statevector
// circuit simulator plus an agentic quantum-computing tutor behind one
// HTTP API.
//
// Usage:
//
//	quantumiq serve
//	quantumiq serve --config config.yaml --port 9090
//
// With a reasoning backend:
//
//	OPENAI_API_KEY=sk-... quantumiq serve
package main

import (
	"log"

	"github.com/spf13/cobra"
)

var (
	configPath string
	portFlag   int
	debugMode  bool

	rootCmd = &cobra.Command{
		Use:   "quantumiq",
		Short: "QuantumIQ circuit simulator and tutoring service",
		Long: `QuantumIQ simulates small quantum circuits and tutors learners
through an agentic loop grounded in their actual circuits and progress.`,
	}
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error executing command: %v", err)
	}
}

func init() {
	serveCmd.Flags().StringVar(&configPath, "config", "", "Path to a YAML config file")
	serveCmd.Flags().IntVar(&portFlag, "port", 0, "Override the listen port")
	serveCmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging and gin debug mode")
	rootCmd.AddCommand(serveCmd)
}
