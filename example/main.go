package main

import (
	"flag"
	"fmt"
	"os"

	"uescope/anchor"
	"uescope/pod"
	"uescope/process"
	"uescope/reflection"
	"uescope/target"
	"uescope/uobject"
)

// Vector is the engine's three float vector
type Vector struct {
	X, Y, Z float32
}

// This example lists every live instance of a class together with the value
// of one of its vector properties, e.g.
//
//	example -name Game -class "Class Engine::Pawn" -property Location
func main() {
	var tf target.Flags
	tf.Register(flag.CommandLine)
	classFlag := flag.String("class", "Class Engine::Actor", "Full name of the class to list")
	propFlag := flag.String("property", "Location", "Vector property to read from each instance")
	flag.Parse()

	proc, err := tf.Open()
	if err != nil {
		fmt.Printf("Error opening target: %v\n", err)
		os.Exit(1)
	}

	err = run(proc, *classFlag, *propFlag)
	proc.Close()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func run(proc process.Process, className, propName string) error {
	anchors, err := anchor.NewLocator(proc).Resolve()
	if err != nil {
		return fmt.Errorf("resolving anchors: %w", err)
	}

	rt, err := uobject.NewRuntime(proc, anchors)
	if err != nil {
		return fmt.Errorf("creating runtime: %w", err)
	}

	class, ok := rt.ClassByFullName(className)
	if !ok {
		return fmt.Errorf("class %q not found", className)
	}

	// the property may be declared on any ancestor
	desc, err := reflection.BuildClass(class)
	if err != nil {
		return fmt.Errorf("reflecting %s: %w", className, err)
	}
	offset := -1
	for c := desc; c != nil && offset < 0; c = c.Super {
		for _, p := range c.Properties {
			if p.Name == propName {
				offset = p.Offset
				break
			}
		}
	}
	if offset < 0 {
		return fmt.Errorf("%s has no property %q", className, propName)
	}

	objects, err := rt.Objects()
	if err != nil {
		return fmt.Errorf("reading object table: %w", err)
	}

	for i, obj := range objects {
		if !inherits(obj, class) {
			continue
		}
		v, err := pod.ReadPath[Vector](proc, obj.Address(), process.ProcessMemorySize(offset))
		if err != nil {
			continue
		}
		fmt.Printf("%6d %-60s %s=(%.1f, %.1f, %.1f)\n", i, obj.String(), propName, v.X, v.Y, v.Z)
	}
	return nil
}

func inherits(obj uobject.Object, class uobject.Class) bool {
	c, err := obj.Class()
	if err != nil {
		return false
	}
	for super, err := range c.Superclasses() {
		if err != nil {
			return false
		}
		if super.Address() == class.Address() {
			return true
		}
	}
	return false
}
