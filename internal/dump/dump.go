// Package dump renders decoded assets as human-readable text.
package dump

import (
	"fmt"
	"io"

	"github.com/davecgh/go-spew/spew"

	"github.com/Faultbox/tlj-engine/internal/engine/model"
)

var spewConfig *spew.ConfigState

func init() {
	spewConfig = spew.NewDefaultConfig()
	spewConfig.DisableCapacities = true
	spewConfig.DisablePointerAddresses = true
	spewConfig.SortKeys = true
}

// Sdump formats values with the shared spew configuration.
func Sdump(a ...interface{}) string {
	return spewConfig.Sdump(a...)
}

// Model writes a dump of m. Mesh geometry is only included when full is set.
func Model(w io.Writer, name string, m *model.Model, full bool) error {
	header := struct {
		Name      string
		Extra     uint32
		Scalar    float32
		Vertices  int
		Triangles int
	}{name, m.HeaderExtra(), m.HeaderScalar(), m.VertexCount(), m.TriangleCount()}

	if _, err := fmt.Fprint(w, Sdump(header, m.Materials(), m.Bones())); err != nil {
		return err
	}
	if full {
		_, err := fmt.Fprint(w, Sdump(m.Meshes()))
		return err
	}
	return nil
}
