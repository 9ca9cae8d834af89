package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"uescope/anchor"
	"uescope/hexdump"
	"uescope/process"
	"uescope/process_blob"
)

func main() {
	fromFlag := flag.String("from", "", "Directory containing the dump")
	addrFlag := flag.String("addr", "", "Address to read from (hex)")
	sizeFlag := flag.Int("size", 256, "Number of bytes to hexdump")
	anchorsFlag := flag.Bool("anchors", false, "Resolve the name and object tables in the dump")
	flag.Parse()

	if *fromFlag == "" {
		fmt.Println("Error: --from is required")
		flag.Usage()
		os.Exit(1)
	}

	dump := process_blob.NewProcessDump()
	if err := dump.Load(*fromFlag); err != nil {
		fmt.Printf("Error loading dump from %s: %v\n", *fromFlag, err)
		os.Exit(1)
	}

	fmt.Printf("Loaded dump from %s\n", *fromFlag)
	fmt.Printf("Process Name: %s\n", dump.Name)
	fmt.Printf("PID: %d\n", dump.PID)
	fmt.Printf("Module: %s\n", dump.Module)
	fmt.Printf("Memory Regions: %d\n", len(dump.MemoryMap))

	if *anchorsFlag {
		locator := anchor.NewLocator(dump)
		anchors, err := locator.Resolve()
		if err != nil {
			fmt.Printf("Error resolving anchors: %v\n", err)
			os.Exit(1)
		}
		if err := locator.Verify(anchors); err != nil {
			fmt.Printf("Warning: %v\n", err)
		}
		fmt.Println(anchors)
	}

	if *addrFlag == "" {
		fmt.Println("\nMemory Map:")
		for _, region := range dump.MemoryMap {
			fmt.Printf("  %016x - %016x (%s) %d bytes %s\n",
				region.Address, region.End(), region.Perms, region.Size, region.Path)
		}
		return
	}

	addrVal, err := strconv.ParseUint(strings.TrimPrefix(*addrFlag, "0x"), 16, 64)
	if err != nil {
		fmt.Printf("Error parsing address: %v\n", err)
		os.Exit(1)
	}
	addr := process.ProcessMemoryAddress(addrVal)

	data, err := dump.ReadMemory(addr, process.ProcessMemorySize(*sizeFlag))
	if err != nil {
		fmt.Printf("Error reading memory at %s: %v\n", addr.ToString(), err)
		os.Exit(1)
	}

	fmt.Printf("\nHexdump at %s (%d bytes):\n", addr.ToString(), *sizeFlag)
	opts := hexdump.DefaultOptions()
	opts.MemoryMap = dump.MemoryMap
	fmt.Print(hexdump.Dump(data, addr, opts))
}
