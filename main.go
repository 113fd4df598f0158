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

// main.go - NTX emulator driver

/*
Entry point for the functional model. Three modes of operation:

    ntx -gen DIR [-seed N]         generate the RTL test vector set
    ntx -job FILE -mem FILE        replay a recorded job against a memory
        [-out FILE]                image and write the resulting dump
    ntx -monitor [-mem FILE]       interactive machine monitor

The replay mode is the bridge to the RTL flow: an ini/job pair produced by
-gen (or recorded from a real run) is executed on the functional model and
the resulting memory image can be diffed against the hardware's.
*/

package main

import (
	"flag"
	"fmt"
	"os"
)

func main() {
	flagSet := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	genDir := flagSet.String("gen", "", "generate the test vector set into this directory")
	seed := flagSet.Int64("seed", 1, "RNG seed for -gen")
	jobFile := flagSet.String("job", "", "job dump to stage")
	memFile := flagSet.String("mem", "", "memory dump to load before running")
	outFile := flagSet.String("out", "exp.txt", "memory dump to write after the job")
	monitor := flagSet.Bool("monitor", false, "start the interactive machine monitor")
	trace := flagSet.Int("trace", 0, "loop driver trace level (0..2)")
	check := flagSet.Bool("check", true, "assert AGU addresses against the scratchpad bounds")
	flagSet.Parse(os.Args[1:])

	ntxDebugLevel = *trace

	if *genDir != "" {
		if err := os.MkdirAll(*genDir, 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "ntx: %v\n", err)
			os.Exit(1)
		}
		gen := NewTestDataGen(*genDir, *seed)
		if err := gen.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "ntx: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("generated %d jobs in %s\n", gen.Count(), *genDir)
		return
	}

	bus := NewTCDMBus()
	ntx := NewNTXEngine(bus)
	rf := NewNTXRegisterFile(bus, ntx, NTX_BASE_ADDR)
	if *check {
		ntx.SetTCDMBaseCheck(0, TCDM_SIZE_BYTES-1)
	}

	if *memFile != "" {
		if err := ReadMemDump(*memFile, bus); err != nil {
			fmt.Fprintf(os.Stderr, "ntx: %v\n", err)
			os.Exit(1)
		}
	}

	if *monitor {
		if err := RunMonitor(NewNTXMonitor(bus, ntx, rf)); err != nil {
			fmt.Fprintf(os.Stderr, "ntx: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if *jobFile == "" {
		flagSet.Usage()
		os.Exit(2)
	}

	name, err := ntx.ReadJobDump(*jobFile, 0)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ntx: %v\n", err)
		os.Exit(1)
	}
	if err := ntx.IssueCmd(); err != nil {
		fmt.Fprintf(os.Stderr, "ntx: %s: %v\n", name, err)
		os.Exit(1)
	}
	if err := WriteMemDump(*outFile, bus); err != nil {
		fmt.Fprintf(os.Stderr, "ntx: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("job %s done, memory written to %s\n", name, *outFile)
}
