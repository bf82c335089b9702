// Package kernel defines the abstract geometry kernel interface used
// for exact boss hardware: true bolt holes and tapered transitions cut
// with boolean operations instead of approximated by lathe markers.
// The kernel abstraction keeps the rest of the system independent of
// the backing CAD library.
package kernel

import "github.com/chazu/mandrel/pkg/mesh"

// Solid is an opaque handle to a geometry kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Kernel is the abstract geometry kernel interface. Primitives are
// centered on the origin with their axis along Z; callers position
// them with Translate and Rotate.
type Kernel interface {
	// Primitives
	Cylinder(height, radius float64) Solid
	Cone(height, baseRadius, tipRadius float64) Solid

	// Boolean operations
	Union(a, b Solid) Solid
	Difference(a, b Solid) Solid
	Intersection(a, b Solid) Solid

	// Transforms
	Translate(s Solid, x, y, z float64) Solid
	Rotate(s Solid, x, y, z float64) Solid // Euler angles in degrees

	// Mesh output
	ToMesh(s Solid) (*mesh.Mesh, error)
}
