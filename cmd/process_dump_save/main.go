package main

import (
	"flag"
	"fmt"
	"os"

	"uescope/process_blob"
	"uescope/target"
)

func main() {
	var tf target.Flags
	tf.Register(flag.CommandLine)
	outputFlag := flag.String("output", "", "Output directory for the dump")
	allFlag := flag.Bool("all", false, "Save all readable regions (including mapped files)")
	flag.Parse()

	if *outputFlag == "" {
		fmt.Println("Error: --output is required")
		flag.Usage()
		os.Exit(1)
	}

	proc, err := tf.Open()
	if err != nil {
		fmt.Printf("Error opening target: %v\n", err)
		flag.Usage()
		os.Exit(1)
	}
	defer proc.Close()

	fmt.Printf("Attached to process %d\n", proc.GetPID())

	opts := []process_blob.SaveOption{}
	if tf.Name != "" {
		opts = append(opts, process_blob.WithProcessName(tf.Name))
	}
	if *allFlag {
		opts = append(opts, process_blob.WithAllRegions())
	}

	fmt.Printf("Saving dump to %s...\n", *outputFlag)
	if err := process_blob.Save(proc, *outputFlag, opts...); err != nil {
		fmt.Printf("Error saving dump: %v\n", err)
		proc.Close()
		os.Exit(1)
	}

	fmt.Println("Dump saved successfully.")
}
