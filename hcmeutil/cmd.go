/*
Copyright © 2026 the HCME authors.
This file is part of HCME.

HCME is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

HCME is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.
*/

// Package hcmeutil provides the cobra/viper command-line plumbing for the
// hcme binary: configuration file loading, flag registration, and the run
// command that drives hcme.Compute.
package hcmeutil

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/sublyime/hcme"
	"github.com/sublyime/hcme/internal/diagnostics"
)

// Version is the hcme build version, set via -ldflags at build time.
var Version = "dev"

// Cfg holds the command tree and bound configuration for the hcme binary.
type Cfg struct {
	*viper.Viper

	inputFiles []string

	Root, versionCmd, runCmd *cobra.Command
}

// InputFiles returns the names of the configuration options that are input
// files.
func (cfg *Cfg) InputFiles() []string { return cfg.inputFiles }

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
	isInputFile            bool
}

// InitializeConfig constructs the hcme command tree and registers its
// configuration options, following the same Cfg/viper/cobra wiring pattern
// the teacher model used for its own CLI.
func InitializeConfig() *Cfg {
	cfg := &Cfg{Viper: viper.New()}

	cfg.Root = &cobra.Command{
		Use:   "hcme",
		Short: "A hazard consequence modelling engine for chemical releases.",
		Long: `hcme computes atmospheric dispersion, thermal radiation, and vapor cloud
explosion consequences for a chemical release scenario, and evaluates the
resulting exposure at a set of receptors.

Configuration can be set via a configuration file (--config), command-line
flags, or environment variables prefixed with HCME_.`,
		DisableAutoGenTag: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return setConfig(cfg)
		},
	}

	cfg.versionCmd = &cobra.Command{
		Use:               "version",
		Short:             "Print the version number",
		DisableAutoGenTag: true,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("hcme v%s\n", Version)
		},
	}

	cfg.runCmd = &cobra.Command{
		Use:   "run",
		Short: "Run the hazard consequence model for one scenario.",
		Long: `run reads the scenario, weather, chemical, toxicology, and receptor
documents named in the configuration, executes the engine, and writes the
resulting EngineResult as JSON to the output file.`,
		DisableAutoGenTag: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := setConfig(cfg); err != nil {
				return err
			}
			outputFile, err := checkOutputFile(cfg.GetString("output"))
			if err != nil {
				return err
			}
			cfg.Set("log_file", checkLogFile(cfg.GetString("log_file"), outputFile))
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompute(cfg)
		},
	}

	cfg.Root.AddCommand(cfg.versionCmd)
	cfg.Root.AddCommand(cfg.runCmd)

	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
		isInputFile            bool
	}{
		{
			name:        "config",
			usage:       "config specifies the configuration file location.",
			defaultVal:  "",
			isInputFile: true,
			flagsets:    []*pflag.FlagSet{cfg.Root.PersistentFlags()},
		},
		{
			name:        "scenario",
			usage:       "scenario is the path to the scenario JSON document (source geometry, release height, location).",
			defaultVal:  "",
			isInputFile: true,
			flagsets:    []*pflag.FlagSet{cfg.runCmd.Flags()},
		},
		{
			name:        "weather",
			usage:       "weather is the path to the weather-snapshot JSON document.",
			defaultVal:  "",
			isInputFile: true,
			flagsets:    []*pflag.FlagSet{cfg.runCmd.Flags()},
		},
		{
			name:        "chemical",
			usage:       "chemical is the path to the chemical-properties JSON document.",
			defaultVal:  "",
			isInputFile: true,
			flagsets:    []*pflag.FlagSet{cfg.runCmd.Flags()},
		},
		{
			name:        "toxicology",
			usage:       "toxicology is the path to the optional toxicological-guidelines JSON document.",
			defaultVal:  "",
			isInputFile: true,
			flagsets:    []*pflag.FlagSet{cfg.runCmd.Flags()},
		},
		{
			name:        "receptors",
			usage:       "receptors is the path to the optional receptor-list JSON document.",
			defaultVal:  "",
			isInputFile: true,
			flagsets:    []*pflag.FlagSet{cfg.runCmd.Flags()},
		},
		{
			name:       "output",
			usage:      "output is the file path the EngineResult JSON is written to.",
			shorthand:  "o",
			defaultVal: "result.json",
			flagsets:   []*pflag.FlagSet{cfg.runCmd.Flags()},
		},
		{
			name:       "log_file",
			usage:      "log_file is the path run diagnostics are logged to; defaults to output with a .log extension.",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{cfg.runCmd.Flags()},
		},
		{
			name:       "grid.resolution_m",
			usage:      "grid.resolution_m is the dispersion grid's cell size, in metres.",
			defaultVal: 10.0,
			flagsets:   []*pflag.FlagSet{cfg.runCmd.Flags()},
		},
		{
			name:       "grid.max_downwind_m",
			usage:      "grid.max_downwind_m is the dispersion grid's downwind extent, in metres.",
			defaultVal: 10000.0,
			flagsets:   []*pflag.FlagSet{cfg.runCmd.Flags()},
		},
		{
			name:       "grid.max_crosswind_m",
			usage:      "grid.max_crosswind_m is the dispersion grid's crosswind half-extent, in metres.",
			defaultVal: 5000.0,
			flagsets:   []*pflag.FlagSet{cfg.runCmd.Flags()},
		},
		{
			name:       "time_step_s",
			usage:      "time_step_s is the source-strength and dispersion solver's time step, in seconds.",
			defaultVal: 60.0,
			flagsets:   []*pflag.FlagSet{cfg.runCmd.Flags()},
		},
		{
			name:       "max_time_steps",
			usage:      "max_time_steps caps the number of time steps the source-strength solver will take.",
			defaultVal: 100,
			flagsets:   []*pflag.FlagSet{cfg.runCmd.Flags()},
		},
		{
			name:       "exposure_window_min",
			usage:      "exposure_window_min is the receptor time-weighted-average integration window, in minutes.",
			defaultVal: 60.0,
			flagsets:   []*pflag.FlagSet{cfg.runCmd.Flags()},
		},
		{
			name:       "model_override",
			usage:      "model_override forces the dispersion model to 'gaussian' or 'heavy_gas' instead of the Richardson-number selection; 'auto' lets the engine decide.",
			defaultVal: "auto",
			flagsets:   []*pflag.FlagSet{cfg.runCmd.Flags()},
		},
		{
			name:       "extrapolate",
			usage:      "extrapolate allows chemical property lookups outside their fitted envelope to clamp to the nearest bound instead of failing the run; no warning is emitted for a clamped lookup.",
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{cfg.runCmd.Flags()},
		},
		{
			name:       "concentration_levels",
			usage:      `concentration_levels lists "value:label" pairs (mg/m^3) to draw contours at, e.g. "10:AEGL-1".`,
			defaultVal: []string{},
			flagsets:   []*pflag.FlagSet{cfg.runCmd.Flags()},
		},
	}

	cfg.SetEnvPrefix("HCME")

	for _, option := range options {
		if option.isInputFile {
			cfg.inputFiles = append(cfg.inputFiles, option.name)
		}
		for i, set := range option.flagsets {
			if i != 0 {
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch v := option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, v, option.usage)
				} else {
					set.StringP(option.name, option.shorthand, v, option.usage)
				}
			case []string:
				set.StringSlice(option.name, v, option.usage)
			case bool:
				set.Bool(option.name, v, option.usage)
			case int:
				set.Int(option.name, v, option.usage)
			case float64:
				if option.shorthand == "" {
					set.Float64(option.name, v, option.usage)
				} else {
					set.Float64P(option.name, option.shorthand, v, option.usage)
				}
			default:
				panic(fmt.Errorf("hcmeutil: invalid option default type: %T", option.defaultVal))
			}
			cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
	return cfg
}

// setConfig reads the configuration file named by the "config" flag, if any.
func setConfig(cfg *Cfg) error {
	if cfgpath := cfg.GetString("config"); cfgpath != "" {
		cfg.SetConfigFile(cfgpath)
		if err := cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("hcme: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// runCompute builds a Request from cfg, runs the engine, and writes the
// result (or a structured error) to the configured output file.
func runCompute(cfg *Cfg) error {
	log := logrus.New()
	if lf := cfg.GetString("log_file"); lf != "" && lf != "-" {
		f, err := os.OpenFile(os.ExpandEnv(lf), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err == nil {
			log.SetOutput(f)
			defer f.Close()
		}
	}

	req, err := BuildRequest(cfg)
	if err != nil {
		return err
	}

	sink := diagnostics.Sink(func(e diagnostics.Event) {
		log.WithField("stage", e.Stage).Warn(e.Message)
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	result, err := hcme.Compute(ctx, req, sink)
	if err != nil {
		if ee, ok := err.(hcme.EngineError); ok {
			log.WithField("code", ee.Code().String()).Error(ee.Error())
		}
		return err
	}

	outputFile, err := checkOutputFile(cfg.GetString("output"))
	if err != nil {
		return err
	}
	f, err := os.Create(os.ExpandEnv(outputFile))
	if err != nil {
		return fmt.Errorf("hcme: creating output file: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("hcme: writing output file: %w", err)
	}
	log.Infof("wrote %s (%d receptor exposures)", outputFile, len(result.ReceptorExposures))
	return nil
}
