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

// ntx_dump.go - Job and memory dump file I/O

/*
The RTL testbench consumes jobs and memory images as plain text files: a job
dump describes one staged command (name, command word, loop bounds, AGU
offsets, stride tables) and a memory dump lists every word of the 128KB
scratchpad as address/content pairs. The writers below produce exactly the
format the testbench expects; the readers restore the same files into an
engine or bus so recorded jobs can be replayed against the functional model.
*/

package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// WriteJobDump writes the staged job to a text file: one free-form test
// name line, the composed command word in hex, the five loop bounds, the
// three AGU offsets relative to tcdmBase, and one stride line per AGU.
func (ntx *NTXEngine) WriteJobDump(fileName, testName string, tcdmBase uint32) error {
	fid, err := os.Create(fileName)
	if err != nil {
		return fmt.Errorf("ntx: error opening job dump: %w", err)
	}
	defer fid.Close()

	w := bufio.NewWriter(fid)

	fmt.Fprintf(w, "%s\n", testName)
	fmt.Fprintf(w, "%08X\n", ntx.prepCmd)

	for k := 0; k < N_HW_LOOPS; k++ {
		fmt.Fprintf(w, "%d ", ntx.loopBound[k])
	}
	fmt.Fprintf(w, "\n")

	for k := 0; k < N_AGUS; k++ {
		fmt.Fprintf(w, "%d ", ntx.aguOff[k]-tcdmBase)
	}
	fmt.Fprintf(w, "\n")

	for k := 0; k < N_AGUS; k++ {
		for s := 0; s < N_HW_LOOPS; s++ {
			fmt.Fprintf(w, "%d ", ntx.aguStride[k][s])
		}
		fmt.Fprintf(w, "\n")
	}

	return w.Flush()
}

// ReadJobDump loads a job dump into the staging area and returns the test
// name. The command word is decoded into the loop level and command fields;
// bounds and strides are taken verbatim (they are stored post-translation).
func (ntx *NTXEngine) ReadJobDump(fileName string, tcdmBase uint32) (string, error) {
	fid, err := os.Open(fileName)
	if err != nil {
		return "", fmt.Errorf("ntx: error opening job dump: %w", err)
	}
	defer fid.Close()

	sc := bufio.NewScanner(fid)
	nextLine := func() (string, error) {
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return "", err
			}
			return "", fmt.Errorf("ntx: truncated job dump %s", fileName)
		}
		return sc.Text(), nil
	}

	testName, err := nextLine()
	if err != nil {
		return "", err
	}

	line, err := nextLine()
	if err != nil {
		return "", err
	}
	cmd, err := strconv.ParseUint(strings.TrimSpace(line), 16, 32)
	if err != nil {
		return "", fmt.Errorf("ntx: bad command word in %s: %w", fileName, err)
	}
	ntx.applyCmdWord(uint32(cmd))

	line, err = nextLine()
	if err != nil {
		return "", err
	}
	if _, err := fmt.Sscanf(line, "%d %d %d %d %d",
		&ntx.loopBound[0], &ntx.loopBound[1], &ntx.loopBound[2],
		&ntx.loopBound[3], &ntx.loopBound[4]); err != nil {
		return "", fmt.Errorf("ntx: bad loop bounds in %s: %w", fileName, err)
	}

	line, err = nextLine()
	if err != nil {
		return "", err
	}
	var off [N_AGUS]uint32
	if _, err := fmt.Sscanf(line, "%d %d %d", &off[0], &off[1], &off[2]); err != nil {
		return "", fmt.Errorf("ntx: bad AGU offsets in %s: %w", fileName, err)
	}
	for k := 0; k < N_AGUS; k++ {
		ntx.aguOff[k] = off[k] + tcdmBase
	}

	for k := 0; k < N_AGUS; k++ {
		line, err = nextLine()
		if err != nil {
			return "", err
		}
		if _, err := fmt.Sscanf(line, "%d %d %d %d %d",
			&ntx.aguStride[k][0], &ntx.aguStride[k][1], &ntx.aguStride[k][2],
			&ntx.aguStride[k][3], &ntx.aguStride[k][4]); err != nil {
			return "", fmt.Errorf("ntx: bad AGU%d strides in %s: %w", k, fileName, err)
		}
	}

	return testName, nil
}

// WriteMemDump writes the full scratchpad as one "0xAAAAAAAA 0xDDDDDDDD"
// address/content pair per word.
func WriteMemDump(fileName string, bus *TCDMBus) error {
	fid, err := os.Create(fileName)
	if err != nil {
		return fmt.Errorf("ntx: error opening mem dump: %w", err)
	}
	defer fid.Close()

	w := bufio.NewWriter(fid)
	for k := uint32(0); k < TCDM_MEMSIZE; k++ {
		fmt.Fprintf(w, "0x%08x 0x%08x\n", k<<2, bus.Read32(k<<2))
	}
	return w.Flush()
}

// ReadMemDump restores a scratchpad image written by WriteMemDump.
func ReadMemDump(fileName string, bus *TCDMBus) error {
	fid, err := os.Open(fileName)
	if err != nil {
		return fmt.Errorf("ntx: error opening mem dump: %w", err)
	}
	defer fid.Close()

	sc := bufio.NewScanner(fid)
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		var addr, value uint32
		if _, err := fmt.Sscanf(line, "0x%x 0x%x", &addr, &value); err != nil {
			return fmt.Errorf("ntx: bad mem dump line %q in %s: %w", line, fileName, err)
		}
		bus.Write32(addr, value)
	}
	return sc.Err()
}
