package engine

import (
	"fmt"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/mandrel/pkg/assembly"
	"github.com/chazu/mandrel/pkg/boss"
	"github.com/chazu/mandrel/pkg/dome"
	"github.com/chazu/mandrel/pkg/request"
	"github.com/chazu/mandrel/pkg/vessel"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms tank DSL source code before passing it to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: aux-port -> aux_port
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			// Check for keyword: colon followed by a letter.
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpTank wraps a TankRequest so it can flow between builtins. The
// pointer is shared with the session, so display can amend it after
// declaration.
type sexpTank struct {
	req *request.TankRequest
}

func (t *sexpTank) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(tank %s %s %.0fx%.0f)",
		vessel.ParseType(t.req.Type), dome.ParseKind(t.req.Dome), t.req.RadiusMM, t.req.LengthMM)
}
func (t *sexpTank) Type() *zygo.RegisteredType { return nil }

// sexpBoss wraps a BossRequest so it can be returned from `boss` and
// consumed by `tank`.
type sexpBoss struct {
	req request.BossRequest
}

func (b *sexpBoss) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(boss %s)", boss.ParseFamily(b.req.Family))
}
func (b *sexpBoss) Type() *zygo.RegisteredType { return nil }

// sexpAuxPort wraps one auxiliary port placement.
type sexpAuxPort struct {
	port request.AuxPortRequest
}

func (a *sexpAuxPort) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(aux-port offset %.0f angle %.0f)", a.port.OffsetMM, a.port.AngleDeg)
}
func (a *sexpAuxPort) Type() *zygo.RegisteredType { return nil }

// sexpMetrics wraps the computed scalar metrics of a tank.
type sexpMetrics struct {
	metrics assembly.Metrics
}

func (m *sexpMetrics) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(metrics depth %.1fmm length %.1fmm mass %.2fkg)",
		m.metrics.DomeDepthMM, m.metrics.TotalLengthMM, m.metrics.MassKg)
}
func (m *sexpMetrics) Type() *zygo.RegisteredType { return nil }

// sexpSpec wraps a construction-type catalog entry.
type sexpSpec struct {
	spec vessel.Spec
}

func (s *sexpSpec) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(tank-spec %s %d layers)", s.spec.Type, len(s.spec.Layers))
}
func (s *sexpSpec) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Keyword at end with no value; treat as flag with nil.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toInt extracts an int from a SexpInt.
func toInt(s zygo.Sexp) (int, error) {
	if v, ok := s.(*zygo.SexpInt); ok {
		return int(v.Val), nil
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

// toBool extracts a bool from a SexpBool.
func toBool(s zygo.Sexp) (bool, error) {
	if v, ok := s.(*zygo.SexpBool); ok {
		return v.Val, nil
	}
	return false, fmt.Errorf("expected bool, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_type-iv) and plain strings ("TYPE_IV").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], nil
	}
	return str.S, nil
}

// toTank extracts the tank reference from a sexpTank.
func toTank(s zygo.Sexp) (*sexpTank, error) {
	if t, ok := s.(*sexpTank); ok {
		return t, nil
	}
	return nil, fmt.Errorf("expected tank, got %T (%s)", s, s.SexpString(nil))
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// setFloat assigns the keyword's numeric value to dst when present.
func setFloat(pa kwArgs, key, fn string, dst *float64) error {
	v, ok := pa.kw[key]
	if !ok {
		return nil
	}
	f, err := toFloat64(v)
	if err != nil {
		return fmt.Errorf("%s: %s: %w", fn, key, err)
	}
	*dst = f
	return nil
}

// setInt assigns the keyword's integer value to dst when present.
func setInt(pa kwArgs, key, fn string, dst *int) error {
	v, ok := pa.kw[key]
	if !ok {
		return nil
	}
	n, err := toInt(v)
	if err != nil {
		return fmt.Errorf("%s: %s: %w", fn, key, err)
	}
	*dst = n
	return nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs all tank DSL builtins into a zygomys
// environment. The builtins record declarations on the provided session.
//
// Source code must be preprocessed with preprocessSource() before
// evaluation so that :keyword tokens are converted to recognizable
// string literals.
func registerBuiltins(env *zygo.Zlisp, sess *session) {

	// -----------------------------------------------------------------------
	// (tank :type :type-iv :dome :isotensoid :radius 200 :length 800
	//       :winding-angle 54.74 :segments 64 :profile-points 48
	//       :pressure 700 :boss (boss ...))
	// -----------------------------------------------------------------------
	env.AddFunction("tank", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		req := request.Defaults()

		if v, ok := pa.kw["type"]; ok {
			s, err := toKeywordString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("tank: type: %w", err)
			}
			req.Type = s
		}
		if v, ok := pa.kw["dome"]; ok {
			s, err := toKeywordString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("tank: dome: %w", err)
			}
			req.Dome = s
		}
		floats := []struct {
			key string
			dst *float64
		}{
			{"radius", &req.RadiusMM},
			{"length", &req.LengthMM},
			{"winding-angle", &req.WindingAngleDeg},
			{"aspect-ratio", &req.AspectRatio},
			{"crown-ratio", &req.CrownRatio},
			{"knuckle-ratio", &req.KnuckleRatio},
			{"facet-frequency", &req.FacetFrequency},
			{"dome-depth", &req.DomeDepthMM},
			{"pressure", &req.ServicePressureBar},
		}
		for _, f := range floats {
			if err := setFloat(pa, f.key, "tank", f.dst); err != nil {
				return zygo.SexpNull, err
			}
		}
		if err := setInt(pa, "segments", "tank", &req.Segments); err != nil {
			return zygo.SexpNull, err
		}
		if err := setInt(pa, "profile-points", "tank", &req.ProfilePoints); err != nil {
			return zygo.SexpNull, err
		}
		if v, ok := pa.kw["boss"]; ok {
			b, ok := v.(*sexpBoss)
			if !ok {
				return zygo.SexpNull, fmt.Errorf("tank: boss: expected boss expression, got %T (%s)",
					v, v.SexpString(nil))
			}
			req.Boss = b.req
		}

		t := &sexpTank{req: &req}
		sess.tanks = append(sess.tanks, t.req)
		return t, nil
	})

	// -----------------------------------------------------------------------
	// (boss :family :flanged :inner-diameter 50 :outer-diameter 90
	//       :protrusion 60 :bolt-count 6 :aux (list (aux-port ...)))
	// -----------------------------------------------------------------------
	env.AddFunction("boss", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		var req request.BossRequest

		if v, ok := pa.kw["family"]; ok {
			s, err := toKeywordString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("boss: family: %w", err)
			}
			req.Family = s
		}
		floats := []struct {
			key string
			dst *float64
		}{
			{"inner-diameter", &req.InnerDiameterMM},
			{"outer-diameter", &req.OuterDiameterMM},
			{"protrusion", &req.ProtrusionMM},
			{"taper-angle", &req.TaperAngleDeg},
			{"flange-diameter", &req.FlangeDiameterMM},
			{"flange-thickness", &req.FlangeThicknessMM},
			{"bolt-circle", &req.BoltCircleMM},
		}
		for _, f := range floats {
			if err := setFloat(pa, f.key, "boss", f.dst); err != nil {
				return zygo.SexpNull, err
			}
		}
		if err := setInt(pa, "segments", "boss", &req.Segments); err != nil {
			return zygo.SexpNull, err
		}
		if err := setInt(pa, "bolt-count", "boss", &req.BoltCount); err != nil {
			return zygo.SexpNull, err
		}
		if v, ok := pa.kw["aux"]; ok {
			items, err := sexpListToSlice(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("boss: aux: %w", err)
			}
			for _, item := range items {
				p, ok := item.(*sexpAuxPort)
				if !ok {
					return zygo.SexpNull, fmt.Errorf("boss: aux entry: expected aux-port, got %T (%s)",
						item, item.SexpString(nil))
				}
				req.Aux = append(req.Aux, p.port)
			}
		}

		return &sexpBoss{req: req}, nil
	})

	// -----------------------------------------------------------------------
	// (aux-port :offset 70 :angle 90 :inner-diameter 20 :outer-diameter 36
	//           :protrusion 40)
	//
	// Note: registered as "aux_port" because zygomys does not support
	// hyphens in identifiers. The preprocessor converts aux-port to
	// aux_port in the source.
	// -----------------------------------------------------------------------
	env.AddFunction("aux_port", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		var port request.AuxPortRequest

		floats := []struct {
			key string
			dst *float64
		}{
			{"offset", &port.OffsetMM},
			{"angle", &port.AngleDeg},
			{"inner-diameter", &port.InnerDiameterMM},
			{"outer-diameter", &port.OuterDiameterMM},
			{"protrusion", &port.ProtrusionMM},
		}
		for _, f := range floats {
			if err := setFloat(pa, f.key, "aux-port", f.dst); err != nil {
				return zygo.SexpNull, err
			}
		}

		return &sexpAuxPort{port: port}, nil
	})

	// -----------------------------------------------------------------------
	// (display tank :layer-opacity 0.5 :exact-boss true :parallel true
	//          :cross-section true :auto-rotate true)
	// -----------------------------------------------------------------------
	env.AddFunction("display", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("display requires a tank as first argument")
		}
		t, err := toTank(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("display: %w", err)
		}

		if err := setFloat(pa, "layer-opacity", "display", &t.req.LayerOpacity); err != nil {
			return zygo.SexpNull, err
		}
		if v, ok := pa.kw["exact-boss"]; ok {
			b, err := toBool(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("display: exact-boss: %w", err)
			}
			t.req.ExactBoss = b
		}
		if v, ok := pa.kw["parallel"]; ok {
			b, err := toBool(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("display: parallel: %w", err)
			}
			t.req.Parallel = b
		}
		if v, ok := pa.kw["cross-section"]; ok {
			b, err := toBool(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("display: cross-section: %w", err)
			}
			t.req.CrossSection = b
		}
		if v, ok := pa.kw["auto-rotate"]; ok {
			b, err := toBool(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("display: auto-rotate: %w", err)
			}
			t.req.AutoRotate = b
		}

		return t, nil
	})

	// -----------------------------------------------------------------------
	// (assemble-tank tank)
	// -----------------------------------------------------------------------
	env.AddFunction("assemble_tank", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 {
			return zygo.SexpNull, fmt.Errorf("assemble-tank requires a tank argument")
		}
		t, err := toTank(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("assemble-tank: %w", err)
		}

		sess.assembled = t.req
		return t, nil
	})

	// -----------------------------------------------------------------------
	// (dome-metrics tank)
	// -----------------------------------------------------------------------
	env.AddFunction("dome_metrics", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 {
			return zygo.SexpNull, fmt.Errorf("dome-metrics requires a tank argument")
		}
		t, err := toTank(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("dome-metrics: %w", err)
		}

		return &sexpMetrics{metrics: assembly.ComputeMetrics(t.req.ToAssemblyOptions())}, nil
	})

	// -----------------------------------------------------------------------
	// (tank-spec :type-iii)
	// -----------------------------------------------------------------------
	env.AddFunction("tank_spec", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 {
			return zygo.SexpNull, fmt.Errorf("tank-spec requires a construction type argument")
		}
		s, err := toKeywordString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("tank-spec: %w", err)
		}

		return &sexpSpec{spec: vessel.SpecFor(vessel.ParseType(s))}, nil
	})

	// -----------------------------------------------------------------------
	// (mass-estimate tank)
	// -----------------------------------------------------------------------
	env.AddFunction("mass_estimate", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 {
			return zygo.SexpNull, fmt.Errorf("mass-estimate requires a tank argument")
		}
		t, err := toTank(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("mass-estimate: %w", err)
		}

		m := assembly.ComputeMetrics(t.req.ToAssemblyOptions())
		return &zygo.SexpFloat{Val: m.MassKg}, nil
	})
}
