package reflection

import (
	"fmt"
	"io"
	"strings"

	"uescope/pod"
)

func propertyTable(props []Property) *pod.Table {
	table := pod.NewTable(
		pod.ColumnSpec{Header: "Offset", AlignRight: true},
		pod.ColumnSpec{Header: "Size", AlignRight: true},
		pod.ColumnSpec{Header: "Name"},
		pod.ColumnSpec{Header: "Type"},
	)
	for _, p := range props {
		typ := p.Type.TypeName()
		if p.ArrayDim > 1 {
			typ = fmt.Sprintf("%s[%d]", typ, p.ArrayDim)
		}
		table.AddRow(fmt.Sprintf("0x%04x", p.Offset), fmt.Sprintf("0x%x", p.ElementSize*max(p.ArrayDim, 1)), p.Name, typ)
	}
	return table
}

// FprintStruct writes the struct's name and a table of its properties
func FprintStruct(w io.Writer, s *Struct) error {
	if _, err := fmt.Fprintf(w, "struct %s (0x%x)\n", s.Name, s.Struct.PropertySize()); err != nil {
		return err
	}
	return propertyTable(s.Properties).Render(w)
}

// Signature renders the function as a declaration, e.g. "bool Tick(f32 DeltaTime)"
func (f *Function) Signature() string {
	ret := "void"
	if f.Return != nil {
		ret = f.Return.Type.TypeName()
	}

	params := make([]string, 0, len(f.Params))
	for _, p := range f.Params {
		var mods string
		if p.Optional() {
			mods += "optional "
		}
		if p.Out() {
			mods += "out "
		}
		params = append(params, mods+p.Type.TypeName()+" "+p.Name)
	}
	return fmt.Sprintf("%s %s(%s)", ret, f.Name, strings.Join(params, ", "))
}

// FprintFunction writes the signature, the flags and a table of the parameters
func FprintFunction(w io.Writer, f *Function) error {
	if _, err := fmt.Fprintf(w, "%s\nflags: %s\n", f.Signature(), f.Flags); err != nil {
		return err
	}
	return propertyTable(paramProperties(f)).Render(w)
}

func paramProperties(f *Function) []Property {
	props := make([]Property, 0, len(f.Params)+1)
	for _, p := range f.Params {
		props = append(props, p.Property)
	}
	if f.Return != nil {
		props = append(props, f.Return.Property)
	}
	return props
}

// FprintClass writes the class, its ancestry, its properties, its nested
// structs and its function signatures
func FprintClass(w io.Writer, c *Class) error {
	var chain []string
	for s := c.Super; s != nil; s = s.Super {
		chain = append(chain, s.Name)
	}

	header := "class " + c.Name
	if len(chain) > 0 {
		header += " : " + strings.Join(chain, " : ")
	}
	if _, err := fmt.Fprintln(w, header); err != nil {
		return err
	}

	if err := propertyTable(c.Properties).Render(w); err != nil {
		return err
	}

	for i := range c.Structs {
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
		if err := FprintStruct(w, &c.Structs[i]); err != nil {
			return err
		}
	}

	if len(c.Functions) > 0 {
		if _, err := fmt.Fprintln(w, "\nfunctions:"); err != nil {
			return err
		}
		for i := range c.Functions {
			if _, err := fmt.Fprintln(w, "  "+c.Functions[i].Signature()); err != nil {
				return err
			}
		}
	}
	return nil
}
