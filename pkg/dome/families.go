package dome

import (
	"math"

	"github.com/chazu/mandrel/pkg/lathe"
)

// Hemispherical sweeps a quarter circle by polar angle: r = R*sin(theta),
// z = R*(1 - cos(theta)). Depth is always the cylinder radius; the
// TargetDepth option is ignored because any other depth would break the
// spherical shape.
func Hemispherical(opts Options) Profile {
	radius, n, flat := begin(opts)
	if flat {
		return flatProfile(KindHemispherical, radius, n)
	}

	pts := make([]lathe.Point, n)
	for i := 0; i < n; i++ {
		theta := math.Pi / 2 * float64(i) / float64(n-1)
		pts[i] = lathe.Point{
			R: radius * math.Sin(theta),
			Z: radius * (1 - math.Cos(theta)),
		}
	}
	return finish(KindHemispherical, pts, opts)
}

// Isotensoid follows the netting-theory optimum for a filament-wound
// head: with winding half-angle alpha0 at the joint, the fiber angle
// alpha sweeps from 90 degrees at the apex down to alpha0, and the
// meridian radius is r = R*sin(alpha0)/sin(alpha). The apex opening
// R*sin(alpha0) is the polar opening the winding pattern leaves. Axial
// position is linear in the sweep; depth defaults to R*(1 - sin(alpha0)).
func Isotensoid(opts Options) Profile {
	radius, n, flat := begin(opts)
	if flat {
		return flatProfile(KindIsotensoid, radius, n)
	}

	angleDeg := opts.WindingAngleDeg
	if angleDeg <= 0 || angleDeg >= 90 {
		angleDeg = DefaultWindingAngleDeg
	}
	alpha0 := angleDeg * math.Pi / 180
	sinA0 := math.Sin(alpha0)

	depth := opts.TargetDepth
	if depth <= 0 {
		depth = radius * (1 - sinA0)
	}

	pts := make([]lathe.Point, n)
	for i := 0; i < n; i++ {
		t := float64(i) / float64(n-1)
		alpha := math.Pi/2 - t*(math.Pi/2-alpha0)
		pts[i] = lathe.Point{
			R: radius * sinA0 / math.Sin(alpha),
			Z: depth * t,
		}
	}
	return finish(KindIsotensoid, pts, opts)
}

// Geodesic approximates a geodesically tessellated head: a flattened
// hemispherical base (depth 0.625*R, apex easing exponent 1.2) with a
// small sinusoidal facet ripple on the radius. The ripple amplitude is
// 1% of the radius, enveloped by sin(pi*t) so it vanishes at the apex
// and the joint; FacetFrequency sets the half-wave count.
func Geodesic(opts Options) Profile {
	radius, n, flat := begin(opts)
	if flat {
		return flatProfile(KindGeodesic, radius, n)
	}

	depth := opts.TargetDepth
	if depth <= 0 {
		depth = 0.625 * radius
	}
	freq := opts.FacetFrequency
	if freq < 1 {
		freq = DefaultFacetFrequency
	}
	amplitude := 0.01 * radius

	pts := make([]lathe.Point, n)
	for i := 0; i < n; i++ {
		t := float64(i) / float64(n-1)
		theta := math.Pi / 2 * t
		ripple := amplitude * math.Sin(math.Pi*t) * math.Sin(freq*math.Pi*t)
		pts[i] = lathe.Point{
			R: radius*math.Sin(theta) + ripple,
			Z: depth * math.Pow(1-math.Cos(theta), 1.2),
		}
	}
	return finish(KindGeodesic, pts, opts)
}

// Elliptical sweeps a quarter of a semi-ellipse: with zbar the axial
// position normalized from 1 at the apex to 0 at the joint, the radius
// is R*sqrt(1 - zbar^2). Depth defaults to AspectRatio times the radius
// (2:1 head at the 0.5 default) unless TargetDepth overrides it.
func Elliptical(opts Options) Profile {
	radius, n, flat := begin(opts)
	if flat {
		return flatProfile(KindElliptical, radius, n)
	}

	aspect := opts.AspectRatio
	if aspect <= 0 {
		aspect = DefaultAspectRatio
	}
	depth := opts.TargetDepth
	if depth <= 0 {
		depth = radius * aspect
	}

	pts := make([]lathe.Point, n)
	for i := 0; i < n; i++ {
		t := float64(i) / float64(n-1)
		zbar := 1 - t
		pts[i] = lathe.Point{
			R: radius * math.Sqrt(1-zbar*zbar),
			Z: depth * t,
		}
	}
	return finish(KindElliptical, pts, opts)
}

// Torispherical blends a spherical crown of radius Rc = R*CrownRatio
// into a toroidal knuckle of radius rk = R*KnuckleRatio that meets the
// cylinder tangentially. The two arcs join at their common tangent
// point (centers of both arcs and the join point are collinear), which
// gives depth = Rc - sqrt((Rc-rk)^2 - (R-rk)^2). CrownRatio clamps to
// at least 1 and KnuckleRatio to [0.01, 0.5] so the tangency stays real;
// at CrownRatio 1 the knuckle vanishes and the head is a hemisphere.
func Torispherical(opts Options) Profile {
	radius, n, flat := begin(opts)
	if flat {
		return flatProfile(KindTorispherical, radius, n)
	}

	crownRatio := opts.CrownRatio
	if crownRatio <= 0 {
		crownRatio = DefaultCrownRatio
	}
	if crownRatio < 1 {
		crownRatio = 1
	}
	knuckleRatio := opts.KnuckleRatio
	if knuckleRatio <= 0 {
		knuckleRatio = DefaultKnuckleRatio
	}
	knuckleRatio = math.Min(math.Max(knuckleRatio, 0.01), 0.5)

	crownR := radius * crownRatio
	knuckleR := radius * knuckleRatio
	centerDist := crownR - knuckleR  // crown center to knuckle center
	knuckleAxis := radius - knuckleR // knuckle center's distance from the axis

	depth := crownR - math.Sqrt(centerDist*centerDist-knuckleAxis*knuckleAxis)
	if n == 2 {
		return finish(KindTorispherical, []lathe.Point{{R: 0, Z: 0}, {R: radius, Z: depth}}, opts)
	}
	// Tangent point angle from the axis, seen from the crown center.
	phiT := math.Asin(knuckleAxis / centerDist)
	chiT := math.Pi/2 - phiT
	crownCenterZ := depth - crownR // below the joint plane

	// Split the samples between the arcs by arc length, keeping at
	// least two on the crown and one on the knuckle.
	crownLen := crownR * phiT
	knuckleLen := knuckleR * chiT
	nCrown := n
	if knuckleLen > 1e-12 {
		nCrown = int(float64(n)*crownLen/(crownLen+knuckleLen) + 0.5)
		if nCrown < 2 {
			nCrown = 2
		}
		if nCrown > n-1 {
			nCrown = n - 1
		}
	}
	nKnuckle := n - nCrown

	pts := make([]lathe.Point, 0, n)
	for i := 0; i < nCrown; i++ {
		phi := phiT * float64(i) / float64(nCrown-1)
		h := crownCenterZ + crownR*math.Cos(phi)
		pts = append(pts, lathe.Point{R: crownR * math.Sin(phi), Z: depth - h})
	}
	for j := 1; j <= nKnuckle; j++ {
		chi := chiT * (1 - float64(j)/float64(nKnuckle))
		h := knuckleR * math.Sin(chi)
		pts = append(pts, lathe.Point{R: knuckleAxis + knuckleR*math.Cos(chi), Z: depth - h})
	}
	return finish(KindTorispherical, pts, opts)
}
