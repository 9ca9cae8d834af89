package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"uescope/anchor"
	"uescope/hexdump"
	"uescope/process"
	"uescope/reflection"
	"uescope/search"
	"uescope/target"
	"uescope/uobject"
)

func main() {
	var tf target.Flags
	tf.Register(flag.CommandLine)
	listFlag := flag.String("list", "", "List cached full names: classes, structs or functions")
	filterFlag := flag.String("filter", "", "Only list names containing this substring")
	classFlag := flag.String("class", "", "Describe the class with this full name, e.g. 'Class Engine::Actor'")
	structFlag := flag.String("struct", "", "Describe the struct with this full name")
	functionFlag := flag.String("function", "", "Describe the function with this full name")
	dumpFlag := flag.String("dump", "", "Hexdump the record of the object with this full name")
	paddingFlag := flag.Int("name-padding", anchor.NameEntryPadding, "Header bytes in front of every name entry's string")
	objectsFlag := flag.Uint64("objects-offset", anchor.ObjectTableOffset, "Distance from the name table to the object table")
	verifyFlag := flag.Bool("verify", false, "Check the resolved anchors point at well-formed tables")
	maxdopFlag := flag.Int("maxdop", 0, "Regions scanned in parallel, 0 for one per CPU")
	flag.Parse()

	proc, err := tf.Open()
	if err != nil {
		fmt.Printf("Error opening target: %v\n", err)
		flag.Usage()
		os.Exit(1)
	}

	err = run(proc, options{
		list:     *listFlag,
		filter:   *filterFlag,
		class:    *classFlag,
		structs:  *structFlag,
		function: *functionFlag,
		dump:     *dumpFlag,
		padding:  *paddingFlag,
		objects:  process.ProcessMemoryAddress(*objectsFlag),
		verify:   *verifyFlag,
		maxdop:   *maxdopFlag,
	})
	proc.Close()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	list, filter             string
	class, structs, function string
	dump                     string
	padding                  int
	objects                  process.ProcessMemoryAddress
	verify                   bool
	maxdop                   int
}

func run(proc process.Process, opts options) error {
	var searchOpts []search.Option
	if opts.maxdop > 0 {
		searchOpts = append(searchOpts, search.WithMaxDOP(opts.maxdop))
	}
	locator := anchor.NewLocator(proc,
		anchor.WithNameEntryPadding(opts.padding),
		anchor.WithObjectTableOffset(opts.objects),
		anchor.WithScanner(search.New(searchOpts...)),
	)

	anchors, err := locator.Resolve()
	if err != nil {
		return fmt.Errorf("resolving anchors: %w", err)
	}
	fmt.Println(anchors)

	if opts.verify {
		if err := locator.Verify(anchors); err != nil {
			return fmt.Errorf("verifying anchors: %w", err)
		}
		fmt.Println("Anchors verified")
	}

	layout := uobject.DefaultLayout()
	layout.NameEntryName = uobject.Offset(opts.padding)
	rt, err := uobject.NewRuntime(proc, anchors, uobject.WithLayout(layout))
	if err != nil {
		return fmt.Errorf("creating runtime: %w", err)
	}

	if opts.list != "" {
		if err := list(rt, opts.list, opts.filter); err != nil {
			return err
		}
	}

	if opts.class != "" {
		class, ok := rt.ClassByFullName(opts.class)
		if !ok {
			return notFound("class", opts.class)
		}
		desc, err := reflection.BuildClass(class)
		if err != nil {
			return err
		}
		if err := reflection.FprintClass(os.Stdout, desc); err != nil {
			return err
		}
	}

	if opts.structs != "" {
		s, ok := rt.StructByFullName(opts.structs)
		if !ok {
			return notFound("struct", opts.structs)
		}
		desc, err := reflection.BuildStruct(s.Struct)
		if err != nil {
			return err
		}
		if err := reflection.FprintStruct(os.Stdout, desc); err != nil {
			return err
		}
	}

	if opts.function != "" {
		f, ok := rt.FunctionByFullName(opts.function)
		if !ok {
			return notFound("function", opts.function)
		}
		desc, err := reflection.BuildFunction(f)
		if err != nil {
			return err
		}
		if err := reflection.FprintFunction(os.Stdout, desc); err != nil {
			return err
		}
	}

	if opts.dump != "" {
		return dumpObject(rt, proc, opts.dump)
	}
	return nil
}

func list(rt *uobject.Runtime, what, filter string) error {
	var names []string
	switch what {
	case "classes":
		names = rt.ClassNames()
	case "structs":
		names = rt.StructNames()
	case "functions":
		names = rt.FunctionNames()
	default:
		return fmt.Errorf("cannot list %q, expected classes, structs or functions", what)
	}
	if err := rt.CacheErr(); err != nil {
		return err
	}

	n := 0
	for _, name := range names {
		if filter != "" && !strings.Contains(name, filter) {
			continue
		}
		fmt.Println(name)
		n++
	}
	fmt.Printf("%d %s\n", n, what)
	return nil
}

func dumpObject(rt *uobject.Runtime, proc process.Process, fullName string) error {
	objects, err := rt.Objects()
	if err != nil {
		return err
	}
	for _, obj := range objects {
		name, err := obj.FullName()
		if err != nil || name != fullName {
			continue
		}

		fmt.Printf("%s at %s flags %s\n", name, obj.Address().ToString(), obj.Flags())
		opts := hexdump.DefaultOptions()
		opts.MemoryMap, _ = proc.GetMemoryMap()
		return hexdump.Fdump(os.Stdout, obj.Record().Data(), obj.Address(), opts)
	}
	return notFound("object", fullName)
}

func notFound(what, name string) error {
	return fmt.Errorf("no %s named %q", what, name)
}
