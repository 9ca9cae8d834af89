package main

import (
	"flag"
	"fmt"
	"os"

	"uescope/hexdump"
	"uescope/process"
	"uescope/search"
	"uescope/target"
)

func main() {
	var tf target.Flags
	tf.Register(flag.CommandLine)
	aobFlag := flag.String("aob", "", "Array of bytes to scan for (e.g., '00,ba,ad,??,f0')")
	maxdopFlag := flag.Int("maxdop", 0, "Regions scanned in parallel, 0 for one per CPU")
	limitFlag := flag.Int("limit", 32, "Maximum number of matches to print")
	flag.Parse()

	if *aobFlag == "" {
		fmt.Println("Error: --aob is required")
		flag.Usage()
		os.Exit(1)
	}

	pattern, err := process.ParseAOB(*aobFlag)
	if err != nil {
		fmt.Printf("Error parsing AOB: %v\n", err)
		os.Exit(1)
	}

	proc, err := tf.Open()
	if err != nil {
		fmt.Printf("Error opening target: %v\n", err)
		flag.Usage()
		os.Exit(1)
	}
	defer proc.Close()

	fmt.Printf("Scanning for pattern: %s\n", pattern)

	var opts []search.Option
	if *maxdopFlag > 0 {
		opts = append(opts, search.WithMaxDOP(*maxdopFlag))
	}
	matches, err := search.New(opts...).All(proc, pattern)
	if err != nil {
		fmt.Printf("Error scanning memory: %v\n", err)
		proc.Close()
		os.Exit(1)
	}
	fmt.Printf("Found %d matches:\n", len(matches))

	mm, _ := proc.GetMemoryMap()
	for i, match := range matches {
		if i >= *limitFlag {
			fmt.Printf("... %d more\n", len(matches)-i)
			break
		}
		fmt.Printf("Match at %s:\n", match.ToString())

		// 16 bytes of context either side of the match
		start := match - 16
		size := process.ProcessMemorySize(32 + pattern.Len())
		data, err := proc.ReadMemory(start, size)
		if err != nil {
			start, size = match, process.ProcessMemorySize(pattern.Len())
			if data, err = proc.ReadMemory(start, size); err != nil {
				continue
			}
		}

		dumpOpts := hexdump.DefaultOptions()
		dumpOpts.MemoryMap = mm
		dumpOpts.Highlight = []hexdump.Span{{Start: match, Len: pattern.Len()}}
		fmt.Print(hexdump.Dump(data, start, dumpOpts))
	}
}
