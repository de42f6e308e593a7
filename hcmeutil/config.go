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

package hcmeutil

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/sublyime/hcme"
)

// checkOutputFile makes sure the output file is specified and its directory
// exists, expanding any environment variables.
func checkOutputFile(f string) (string, error) {
	if f == "" {
		return "", fmt.Errorf(`you need to specify an output file (for example: output="result.json")`)
	}
	f = os.ExpandEnv(f)
	outdir := filepath.Dir(f)
	if outdir != "." {
		if _, err := os.Stat(outdir); err != nil {
			return f, fmt.Errorf("hcme: the output directory doesn't exist: %v", err)
		}
	}
	return f, nil
}

// checkLogFile fills in a default log file path derived from the output
// file if one isn't specified.
func checkLogFile(logFile, outputFile string) string {
	if logFile == "" {
		logFile = strings.TrimSuffix(outputFile, filepath.Ext(outputFile)) + ".log"
	}
	return logFile
}

// readDocFile decodes path into v as TOML or JSON, chosen by file
// extension (".toml" vs everything else), so scenario/weather/chemical
// fixtures can be authored in either format.
func readDocFile(path string, v interface{}) error {
	if path == "" {
		return nil
	}
	path = os.ExpandEnv(path)
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.DecodeFile(path, v); err != nil {
			return fmt.Errorf("hcme: decoding %s: %w", path, err)
		}
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("hcme: opening %s: %w", path, err)
	}
	defer f.Close()
	d := json.NewDecoder(f)
	if err := d.Decode(v); err != nil {
		return fmt.Errorf("hcme: decoding %s: %w", path, err)
	}
	return nil
}

// BuildRequest assembles a hcme.Request from the scenario/weather/chemical/
// toxicology/receptors documents (TOML or JSON) named by cfg, plus the grid
// and timing options registered on cfg's flag set.
func BuildRequest(cfg *Cfg) (hcme.Request, error) {
	var req hcme.Request

	if err := readDocFile(cfg.GetString("scenario"), &req.Scenario); err != nil {
		return req, err
	}
	if err := readDocFile(cfg.GetString("weather"), &req.Weather); err != nil {
		return req, err
	}
	if err := readDocFile(cfg.GetString("chemical"), &req.Chemical); err != nil {
		return req, err
	}
	if tox := cfg.GetString("toxicology"); tox != "" {
		req.Toxicology = &hcme.ToxicologicalGuidelines{}
		if err := readDocFile(tox, req.Toxicology); err != nil {
			return req, err
		}
	}
	if rec := cfg.GetString("receptors"); rec != "" {
		if err := readDocFile(rec, &req.Receptors); err != nil {
			return req, err
		}
	}

	opts := hcme.DefaultOptions()
	if v := cfg.GetFloat64("grid.resolution_m"); v > 0 {
		opts.GridResolutionM = v
	}
	if v := cfg.GetFloat64("grid.max_downwind_m"); v > 0 {
		opts.MaxDownwindM = v
	}
	if v := cfg.GetFloat64("grid.max_crosswind_m"); v > 0 {
		opts.MaxCrosswindM = v
	}
	if v := cfg.GetFloat64("time_step_s"); v > 0 {
		opts.TimeStepS = v
	}
	if v := cfg.GetInt("max_time_steps"); v > 0 {
		opts.MaxTimeSteps = v
	}
	if v := cfg.GetFloat64("exposure_window_min"); v > 0 {
		opts.ExposureWindowMin = v
	}
	opts.Extrapolate = cfg.GetBool("extrapolate")
	switch cfg.GetString("model_override") {
	case "gaussian":
		opts.ModelOverride = hcme.ModelOverrideGaussian
	case "heavy_gas":
		opts.ModelOverride = hcme.ModelOverrideHeavyGas
	}

	var levels []hcme.ConcentrationLevel
	for _, raw := range cfg.GetStringSlice("concentration_levels") {
		var value float64
		var label string
		if n, err := fmt.Sscanf(raw, "%f:%s", &value, &label); err == nil && n == 2 {
			levels = append(levels, hcme.ConcentrationLevel{Value: value, Units: hcme.UnitMgM3, Label: label})
		}
	}
	opts.ConcentrationLevels = levels

	req.Options = opts
	return req, nil
}
