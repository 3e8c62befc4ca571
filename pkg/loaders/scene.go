package loaders

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/df07/go-progressive-raytracer/pkg/camera"
	"github.com/df07/go-progressive-raytracer/pkg/geometry"
	"github.com/df07/go-progressive-raytracer/pkg/integrator"
	"github.com/df07/go-progressive-raytracer/pkg/lights"
	"github.com/df07/go-progressive-raytracer/pkg/material"
	rtmath "github.com/df07/go-progressive-raytracer/pkg/math"
	"github.com/df07/go-progressive-raytracer/pkg/scene"
	"github.com/df07/go-progressive-raytracer/pkg/scheduler"
)

// RenderDoc is the top-level "render" section of a scene description:
// resolution, sampling, RNG seeding and scheduling knobs.
type RenderDoc struct {
	Resolution [2]int  `yaml:"resolution"`
	SPP        int     `yaml:"spp"`
	Seed       uint64  `yaml:"seed"`
	TileSize   int     `yaml:"tile_size"`
	MaxBounce  int     `yaml:"max_bounce"`
	MaxRR      float64 `yaml:"max_rr"`
	Workers    int     `yaml:"workers"`
}

// IntersectDoc is the "intersect" section: the shared tolerances every
// shape's Intersect/Occluded call consumes.
type IntersectDoc struct {
	HitEpsilon  float64 `yaml:"hit_epsilon"`
	NormalDelta float64 `yaml:"normal_delta"`
	MaxIters    int     `yaml:"max_iters"`
}

// CameraDoc describes the scene's single camera.
type CameraDoc struct {
	Type          string     `yaml:"type"` // "perspective" (default) | "orthographic"
	Center        [3]float64 `yaml:"center"`
	LookAt        [3]float64 `yaml:"look_at"`
	Up            [3]float64 `yaml:"up"`
	Fov           float64    `yaml:"fov"`
	Aperture      float64    `yaml:"aperture"`
	FocusDistance float64    `yaml:"focus_distance"`
}

// MaterialDoc describes one named material; Type selects which BxDF
// constructor consumes the remaining fields.
type MaterialDoc struct {
	Type          string     `yaml:"type"` // lambert | ggx | sss | dipole | hair
	Reflectance   [3]float64 `yaml:"reflectance"`
	Transmittance [3]float64 `yaml:"transmittance"`
	Emittance     [3]float64 `yaml:"emittance"`
	SigmaA        [3]float64 `yaml:"sigma_a"`
	SigmaS        [3]float64 `yaml:"sigma_s"`
	Roughness     float64    `yaml:"roughness"`
	EtaI          float64    `yaml:"eta_i"`
	EtaT          float64    `yaml:"eta_t"`
	G             float64    `yaml:"g"`
	BetaM         float64    `yaml:"beta_m"`
	BetaN         float64    `yaml:"beta_n"`
	Alpha         float64    `yaml:"alpha"`
	Transport     string     `yaml:"transport"` // reflect | refract | sss | hair | emit
}

// TransformOpDoc is one entry of an ordered transform list: exactly one
// of Translate/Rotate/Scale is set, matching the YAML tagged-union shape
// `{translate|rotate{axis,angle}|scale}`.
type TransformOpDoc struct {
	Translate *[3]float64 `yaml:"translate"`
	Scale     *[3]float64 `yaml:"scale"`
	Rotate    *struct {
		Axis  [3]float64 `yaml:"axis"`
		Angle float64    `yaml:"angle"` // degrees
	} `yaml:"rotate"`
}

// ObjectDoc describes one scene primitive or mesh/hair import.
type ObjectDoc struct {
	Shape          string            `yaml:"shape"` // sphere | quad | disk | tube | funnel | mesh | hair
	Transform      []TransformOpDoc  `yaml:"transform"`
	Material       string            `yaml:"material"`
	Radius         float64           `yaml:"radius"`
	InnerRadius    float64           `yaml:"inner_radius"`
	RadiusBottom   float64           `yaml:"radius_bottom"`
	RadiusTop      float64           `yaml:"radius_top"`
	Width          float64           `yaml:"width"`
	Height         float64           `yaml:"height"`
	Path           string            `yaml:"path"` // mesh/hair asset file
	ThicknessScale float64           `yaml:"thickness_scale"`
}

// LightDoc describes one emitter.
type LightDoc struct {
	Type         string           `yaml:"type"` // point | rect | sphere | spot
	Transform    []TransformOpDoc `yaml:"transform"`
	Position     [3]float64       `yaml:"position"`
	Target       [3]float64       `yaml:"target"`
	Color        [3]float64       `yaml:"color"`
	PMin         [2]float64       `yaml:"p_min"`
	PMax         [2]float64       `yaml:"p_max"`
	Radius       float64          `yaml:"radius"`
	ConeAngle    float64          `yaml:"cone_angle"`
	FalloffStart float64          `yaml:"falloff_start"`
}

// EnvironmentDoc describes the background: a constant color and/or a
// lat-long environment map texture file.
type EnvironmentDoc struct {
	Constant [3]float64 `yaml:"constant"`
	Texture  string     `yaml:"texture"`
}

// SceneDoc is the "scene" section: camera, materials, objects, lights,
// environment.
type SceneDoc struct {
	Camera      CameraDoc              `yaml:"camera"`
	Materials   map[string]MaterialDoc `yaml:"materials"`
	Objects     []ObjectDoc            `yaml:"objects"`
	Lights      []LightDoc             `yaml:"lights"`
	Environment EnvironmentDoc         `yaml:"environment"`
}

// Document is the full hierarchical scene description: render,
// intersect, scene.
type Document struct {
	Render    RenderDoc    `yaml:"render"`
	Intersect IntersectDoc `yaml:"intersect"`
	Scene     SceneDoc     `yaml:"scene"`
}

// LoadedScene bundles everything parsing a scene description produces:
// the assembled Scene plus the render-time parameters a caller threads
// through the integrator and scheduler.
type LoadedScene struct {
	Scene      *scene.Scene
	Resolution [2]int
	SPP        int
	Integrator integrator.Params
	Scheduler  scheduler.Config
}

// LoadScene reads, validates and builds a scene description from path.
// Configuration and asset errors are wrapped with the offending location
// and propagated to the caller; there is nothing to recover from at this
// layer.
func LoadScene(path string, log zerolog.Logger) (*LoadedScene, error) {
	log.Info().Str("path", path).Msg("loading scene description")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read scene description %q", path)
	}

	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrapf(err, "parse scene description %q", path)
	}

	if doc.Render.Resolution[0] < 1 || doc.Render.Resolution[1] < 1 {
		return nil, errors.Errorf("%s: render.resolution must be >= 1x1", path)
	}
	if doc.Render.SPP < 1 {
		doc.Render.SPP = 1
	}
	if doc.Render.TileSize < 1 {
		doc.Render.TileSize = 32
	}
	if doc.Render.Workers < 1 {
		doc.Render.Workers = 1
	}

	opts := geometry.DefaultIntersectOpts()
	if doc.Intersect.HitEpsilon > 0 {
		opts.HitEpsilon = doc.Intersect.HitEpsilon
		opts.BiasEpsilon = doc.Intersect.HitEpsilon
	}
	if doc.Intersect.NormalDelta > 0 {
		opts.NormalDelta = doc.Intersect.NormalDelta
	}
	if doc.Intersect.MaxIters > 0 {
		opts.TraceMaxIters = doc.Intersect.MaxIters
	}

	materials, err := buildMaterials(doc.Scene.Materials)
	if err != nil {
		return nil, errors.Wrapf(err, "%s: scene.materials", path)
	}

	shapes, err := buildObjects(doc.Scene.Objects, materials, log)
	if err != nil {
		return nil, errors.Wrapf(err, "%s: scene.objects", path)
	}
	if len(shapes) == 0 {
		return nil, errors.Errorf("%s: scene.objects is empty", path)
	}

	buildStart := time.Now()
	bvh := geometry.NewBVH(shapes)
	log.Info().Int("primitives", len(shapes)).Dur("elapsed", time.Since(buildStart)).Msg("built BVH")

	lightList, err := buildLights(doc.Scene.Lights)
	if err != nil {
		return nil, errors.Wrapf(err, "%s: scene.lights", path)
	}

	env, err := buildEnvironment(doc.Scene.Environment)
	if err != nil {
		return nil, errors.Wrapf(err, "%s: scene.environment", path)
	}

	cam, err := buildCamera(doc.Scene.Camera, doc.Render.Resolution)
	if err != nil {
		return nil, errors.Wrapf(err, "%s: scene.camera", path)
	}

	sc := scene.NewScene(bvh, lights.NewSampler(lightList), cam, env, opts)

	integratorParams := integrator.DefaultParams()
	if doc.Render.MaxBounce > 0 {
		integratorParams.MaxDepth = doc.Render.MaxBounce
	}
	if doc.Render.MaxRR > 0 {
		integratorParams.MaxRR = doc.Render.MaxRR
	}

	schedCfg := scheduler.DefaultConfig()
	schedCfg.TileSize = doc.Render.TileSize
	schedCfg.WorkerCount = doc.Render.Workers
	schedCfg.GlobalSeed = doc.Render.Seed

	return &LoadedScene{
		Scene:      sc,
		Resolution: doc.Render.Resolution,
		SPP:        doc.Render.SPP,
		Integrator: integratorParams,
		Scheduler:  schedCfg,
	}, nil
}

func vec3(a [3]float64) rtmath.Vec3 { return rtmath.NewVec3(a[0], a[1], a[2]) }
func vec2(a [2]float64) rtmath.Vec2 { return rtmath.NewVec2(a[0], a[1]) }

// buildTransform composes an ordered op list right-to-left: the
// last-listed op is the innermost, applied to the point first, matching
// standard T*R*S matrix-composition order for a list written [T,R,S].
func buildTransform(ops []TransformOpDoc) (rtmath.Transform, error) {
	result := rtmath.IdentityTransform()
	for i := len(ops) - 1; i >= 0; i-- {
		op := ops[i]
		switch {
		case op.Translate != nil:
			result = result.Compose(rtmath.Translate(vec3(*op.Translate)))
		case op.Scale != nil:
			result = result.Compose(rtmath.Scale(vec3(*op.Scale)))
		case op.Rotate != nil:
			rad := op.Rotate.Angle * 3.14159265358979323846 / 180.0
			result = result.Compose(rtmath.Rotate(vec3(op.Rotate.Axis), rad))
		default:
			return result, errors.New("transform entry has no translate/rotate/scale")
		}
	}
	return result, nil
}

func parseTransport(s string) material.TransportType {
	switch s {
	case "refract":
		return material.Refract
	case "sss":
		return material.SSSTransport
	case "hair":
		return material.HairTransport
	case "emit":
		return material.Emit
	default:
		return material.Reflect
	}
}

func buildMaterials(docs map[string]MaterialDoc) (map[string]geometry.MaterialRef, error) {
	out := make(map[string]geometry.MaterialRef, len(docs))
	for name, m := range docs {
		switch m.Type {
		case "lambert":
			if !rtmath.NewVec3(m.Emittance[0], m.Emittance[1], m.Emittance[2]).IsZero() {
				out[name] = material.NewEmissiveLambert(vec3(m.Reflectance), vec3(m.Emittance))
			} else {
				out[name] = material.NewLambert(vec3(m.Reflectance))
			}
		case "ggx":
			out[name] = material.NewGGX(vec3(m.Reflectance), vec3(m.Transmittance), m.Roughness, m.EtaI, m.EtaT, parseTransport(m.Transport))
		case "sss":
			out[name] = material.NewSSS(vec3(m.Reflectance), vec3(m.Transmittance), m.Roughness, m.EtaI, m.EtaT, vec3(m.SigmaA), vec3(m.SigmaS), m.G)
		case "dipole":
			out[name] = material.NewDipole(vec3(m.Reflectance), vec3(m.Emittance), vec3(m.SigmaA), vec3(m.SigmaS), m.EtaI, m.EtaT)
		case "hair":
			out[name] = material.NewHair(vec3(m.SigmaA), m.BetaM, m.BetaN, m.Alpha, m.EtaI, m.EtaT)
		default:
			return nil, errors.Errorf("material %q: unknown type %q", name, m.Type)
		}
	}
	return out, nil
}

func buildObjects(docs []ObjectDoc, materials map[string]geometry.MaterialRef, log zerolog.Logger) ([]geometry.Shape, error) {
	var shapes []geometry.Shape
	for i, o := range docs {
		mat, ok := materials[o.Material]
		if !ok {
			return nil, errors.Errorf("object %d: unknown material %q", i, o.Material)
		}
		toWorld, err := buildTransform(o.Transform)
		if err != nil {
			return nil, errors.Wrapf(err, "object %d", i)
		}

		switch o.Shape {
		case "sphere":
			shapes = append(shapes, geometry.NewSphere(toWorld, o.Radius, mat))
		case "quad":
			shapes = append(shapes, geometry.NewQuad(toWorld, o.Width, o.Height, mat))
		case "disk":
			shapes = append(shapes, geometry.NewDisk(toWorld, o.Radius, o.InnerRadius, mat))
		case "tube":
			shapes = append(shapes, geometry.NewTube(toWorld, o.Radius, o.Height, mat))
		case "funnel":
			shapes = append(shapes, geometry.NewFunnel(toWorld, o.RadiusBottom, o.RadiusTop, o.Height, mat))
		case "mesh":
			tris, err := LoadMesh(o.Path, toWorld, mat)
			if err != nil {
				return nil, errors.Wrapf(err, "object %d mesh %q", i, o.Path)
			}
			log.Debug().Str("path", o.Path).Int("triangles", len(tris)).Msg("loaded mesh")
			shapes = append(shapes, tris...)
		case "hair":
			scale := o.ThicknessScale
			if scale <= 0 {
				scale = 1
			}
			strandBVH, err := LoadHair(o.Path, toWorld, scale, mat)
			if err != nil {
				return nil, errors.Wrapf(err, "object %d hair %q", i, o.Path)
			}
			log.Debug().Str("path", o.Path).Msg("loaded hair")
			shapes = append(shapes, strandBVH)
		default:
			return nil, errors.Errorf("object %d: unknown shape %q", i, o.Shape)
		}
	}
	return shapes, nil
}

func buildLights(docs []LightDoc) ([]lights.Light, error) {
	var out []lights.Light
	for i, l := range docs {
		toWorld, err := buildTransform(l.Transform)
		if err != nil {
			return nil, errors.Wrapf(err, "light %d", i)
		}
		switch l.Type {
		case "point":
			out = append(out, lights.NewPoint(vec3(l.Position), vec3(l.Color)))
		case "rect":
			out = append(out, lights.NewRect(toWorld, vec3(l.Color), vec2(l.PMin), vec2(l.PMax)))
		case "sphere":
			out = append(out, lights.NewSphere(toWorld, vec3(l.Color), l.Radius))
		case "spot":
			coneAngle := l.ConeAngle
			if coneAngle <= 0 {
				coneAngle = 30
			}
			falloffStart := l.FalloffStart
			if falloffStart <= 0 || falloffStart > coneAngle {
				falloffStart = coneAngle
			}
			out = append(out, lights.NewSpot(vec3(l.Position), vec3(l.Target), vec3(l.Color), coneAngle, falloffStart))
		default:
			return nil, errors.Errorf("light %d: unknown type %q", i, l.Type)
		}
	}
	return out, nil
}

func buildEnvironment(doc EnvironmentDoc) (scene.Environment, error) {
	env := scene.Environment{Constant: vec3(doc.Constant)}
	if doc.Texture != "" {
		tex, err := LoadEnvironmentTexture(doc.Texture, 0, 0)
		if err != nil {
			return env, err
		}
		env.Texture = tex
	}
	return env, nil
}

func buildCamera(doc CameraDoc, resolution [2]int) (*camera.Camera, error) {
	if resolution[1] == 0 {
		return nil, errors.New("resolution height is zero")
	}
	cfg := camera.Config{
		Center:        vec3(doc.Center),
		LookAt:        vec3(doc.LookAt),
		Up:            vec3(doc.Up),
		Width:         resolution[0],
		AspectRatio:   float64(resolution[0]) / float64(resolution[1]),
		VFov:          doc.Fov,
		Aperture:      doc.Aperture,
		FocusDistance: doc.FocusDistance,
	}
	if cfg.VFov <= 0 {
		cfg.VFov = 45
	}
	if cfg.Up.IsZero() {
		cfg.Up = rtmath.Vec3{Y: 1}
	}

	switch doc.Type {
	case "orthographic":
		return camera.NewOrthographicCamera(cfg), nil
	default:
		return camera.NewPerspectiveCamera(cfg), nil
	}
}
