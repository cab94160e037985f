package main

import (
	"fmt"
	"io"

	"github.com/OCAP2/fingerprint-editor/internal/registry"
)

// detailView prints the stored details of a clicked capture location.
type detailView struct {
	out io.Writer
	reg *registry.Registry
}

func (d *detailView) ShowLocation(floor int, name string) {
	s, err := d.reg.Activate(floor)
	if err != nil {
		return
	}
	m, ok := s.Marker(name)
	if !ok {
		return
	}
	fmt.Fprintf(d.out, "Capture location %s on floor %d at %s\n", m.Name, floor, m.Position)
}
