package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/grailbio/sctag/protocol"
)

// listProtocols prints one line per preset.
func listProtocols(out io.Writer) error {
	w := tabwriter.NewWriter(out, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tBARCODE\tUMI\tEND\tMAXVALUE")
	for _, name := range protocol.Names() {
		if name == protocol.GeometryName {
			fmt.Fprintf(w, "%s\t-\t-\t-\t-\n", name)
			continue
		}
		opts := protocol.DefaultOpts
		opts.Name = name
		p, err := protocol.New(opts)
		if err != nil {
			return err
		}
		e := p.(protocol.Encodable)
		fmt.Fprintf(w, "%s\t%d\t%d\t%v\t%d\n", name, p.BarcodeLength(), p.UMILength(), e.End(), e.MaxValue())
	}
	return w.Flush()
}

// describeGeometries parses each geometry and prints its fragments.
func describeGeometries(out io.Writer, specs []string) error {
	if len(specs) == 0 {
		return fmt.Errorf("geometry takes at least one geometry argument")
	}
	for _, spec := range specs {
		g, err := protocol.ParseGeometry(spec)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(out, "%s\t%v\n", protocol.FormatGeometry(g), g); err != nil {
			return err
		}
	}
	return nil
}
