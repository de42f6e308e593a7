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

// Command hcme is a command-line interface for the hazard consequence
// modelling engine.
package main

import (
	"fmt"
	"os"

	"github.com/sublyime/hcme/hcmeutil"
)

func main() {
	cfg := hcmeutil.InitializeConfig()
	if err := cfg.Root.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
