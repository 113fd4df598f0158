// Copyright 2017-2019 ETH Zurich and University of Bologna.
//
// Copyright and related rights are licensed under the Solderpad Hardware
// License, Version 0.51 (the "License"); you may not use this file except in
// compliance with the License.  You may obtain a copy of the License at
// http://solderpad.org/licenses/SHL-0.51. Unless required by applicable law
// or agreed to in writing, software, hardware and materials distributed under
// this License is distributed on an "AS IS" BASIS, WITHOUT WARRANTIES OR
// CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// Michael Schaffner (schaffner@iis.ee.ethz.ch)
// Fabian Schuiki (fschuiki@iis.ee.ethz.ch)

// monitor_host.go - Raw-terminal host for the interactive monitor

package main

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// termReadWriter feeds stdin/stdout to the terminal line editor.
type termReadWriter struct {
	io.Reader
	io.Writer
}

// RunMonitor puts the controlling terminal into raw mode and drives the
// monitor command loop until quit or EOF. Only called from main for
// interactive use, never from tests.
func RunMonitor(mon *NTXMonitor) error {
	fd := int(os.Stdin.Fd())

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("monitor: failed to set raw mode: %w", err)
	}
	defer term.Restore(fd, oldState)

	t := term.NewTerminal(termReadWriter{os.Stdin, os.Stdout}, "ntx> ")
	fmt.Fprintln(t, "NTX machine monitor (help for commands)")

	for {
		line, err := t.ReadLine()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}

		out, quit := mon.Execute(line)
		if out != "" {
			fmt.Fprintln(t, out)
		}
		if quit {
			return nil
		}
	}
}
