// Package scene builds a renderable scene from a parsed model: it resolves materials,
// attaches lights, frames the camera on the model's bounding sphere and wires the
// injected render backend and controls together.
package scene

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"log"

	"github.com/barkimedes/go-deepcopy"

	"jsonmesh-renderer/internal/autoframe"
	"jsonmesh-renderer/internal/camera"
	"jsonmesh-renderer/internal/mathutil"
	"jsonmesh-renderer/internal/mesh"
)

// Renderer draws a scene as seen from a camera into a width×height image.
type Renderer interface {
	Render(s *Scene, cam *camera.Perspective, width, height int) (*image.NRGBA, error)
}

// Controls moves a camera in response to input and notifies observers when it did.
type Controls interface {
	Update()
	OnChange(fn func())
	Reset()
	SaveState()
}

// ControlsFactory attaches controls to the camera of a freshly built view.
type ControlsFactory func(cam *camera.Perspective) Controls

// TextureResolver maps a material's texture reference to a decoded image (nil if missing).
type TextureResolver interface {
	Resolve(name string) *image.NRGBA
}

// CameraConfig describes the perspective camera before framing.
type CameraConfig struct {
	FOV    float64
	Aspect float64
	Near   float64
	Far    float64
}

// DefaultCameraConfig is PerspectiveCamera(75, 1, 0.1, 1000).
func DefaultCameraConfig() CameraConfig {
	return CameraConfig{
		FOV:    camera.DefaultFOV,
		Aspect: camera.DefaultAspect,
		Near:   camera.DefaultNear,
		Far:    camera.DefaultFar,
	}
}

var ErrNoRenderer = errors.New("scene: no renderer configured")

// Builder holds the collaborators injected into every view it builds.
type Builder struct {
	Renderer   Renderer
	Controls   ControlsFactory // nil: static camera
	Textures   TextureResolver // nil: untextured
	Camera     CameraConfig
	Frame      autoframe.Config
	Lights     []Light // nil: DefaultLights
	Background color.NRGBA
}

// Build creates a view of model. The camera is autoframed exactly once here; when the
// model's bounding sphere or the field of view is unusable the default placement is used
// and the reason is kept in View.FrameErr.
func (b *Builder) Build(model *mesh.Model) (*View, error) {
	if b.Renderer == nil {
		return nil, ErrNoRenderer
	}
	if model == nil {
		return nil, fmt.Errorf("scene: nil model")
	}

	lights := b.Lights
	if lights == nil {
		lights = DefaultLights()
	}
	cc := b.Camera
	if cc == (CameraConfig{}) {
		cc = DefaultCameraConfig()
	}

	v := &View{
		Scene: &Scene{
			Model:      model,
			Materials:  ResolveMaterials(model.Materials, b.Textures),
			Lights:     lights,
			Background: b.Background,
		},
		Camera:   camera.NewPerspective(cc.FOV, cc.Aspect, cc.Near, cc.Far),
		renderer: b.Renderer,
		frameCfg: b.Frame,
	}
	v.frame()

	if b.Controls != nil {
		v.Controls = b.Controls(v.Camera)
	}
	return v, nil
}

// ResolveMaterials converts file materials into render materials. Missing colors take the
// three.js loader default 0xeeeeee; a model without materials gets DefaultMaterial.
func ResolveMaterials(src []mesh.Material, textures TextureResolver) []Material {
	if len(src) == 0 {
		return []Material{DefaultMaterial()}
	}
	out := make([]Material, len(src))
	for i := range src {
		m := &src[i]
		r := Material{
			Name:         m.DbgName,
			Color:        HexColor(0xeeeeee),
			Ambient:      mathutil.Vec3{1, 1, 1},
			Opacity:      1,
			VertexColors: m.UsesVertexColors(),
			Wireframe:    m.Wireframe,
		}
		if m.ColorDiffuse != nil {
			r.Color = mathutil.Vec3(*m.ColorDiffuse)
		}
		if m.ColorAmbient != nil {
			r.Ambient = mathutil.Vec3(*m.ColorAmbient)
		}
		if m.ColorEmissive != nil {
			r.Emissive = mathutil.Vec3(*m.ColorEmissive)
		}
		if m.Opacity != nil && m.Transparent {
			r.Opacity = *m.Opacity
		}
		if m.MapDiffuse != "" && textures != nil {
			r.Texture = textures.Resolve(m.MapDiffuse)
		}
		out[i] = r
	}
	return out
}

// View is a built scene with its camera, controls and render backend.
type View struct {
	Scene    *Scene
	Camera   *camera.Perspective
	Controls Controls

	Sphere    mathutil.Sphere
	Placement autoframe.Placement
	FrameErr  error // non-nil when the fallback placement is in use

	renderer Renderer
	frameCfg autoframe.Config
}

func (v *View) frame() {
	sphere, err := v.Scene.Model.BoundingSphere()
	if err == nil {
		v.Placement, err = autoframe.FrameOrFallback(sphere, v.Camera.FOV, v.frameCfg)
	} else {
		v.Placement = autoframe.Fallback()
	}
	v.Sphere = sphere
	v.FrameErr = err
	if err != nil {
		log.Printf("[scene] autoframe: %v; using default camera", err)
	}

	v.Placement.ApplyTo(v.Camera)
	v.Camera.Up = mathutil.WorldUp
	if err == nil {
		v.Camera.FitClipPlanes(sphere)
	}
}

// Framed reports whether the camera placement came from autoframing.
func (v *View) Framed() bool {
	return v.FrameErr == nil
}

// Reframe recomputes the placement from the current model and makes it the controls'
// reset state.
func (v *View) Reframe() {
	v.frame()
	if v.Controls != nil {
		v.Controls.SaveState()
	}
}

// Replace swaps in a newly loaded model (hot reload) and frames it.
func (v *View) Replace(model *mesh.Model, textures TextureResolver) {
	v.Scene.Model = model
	v.Scene.Materials = ResolveMaterials(model.Materials, textures)
	v.Reframe()
}

// Spin adds to the model rotation. The viewer calls it once per frame while spinning.
func (v *View) Spin(dx, dy float64) {
	v.Scene.Rotation[0] += dx
	v.Scene.Rotation[1] += dy
}

// Snapshot returns copies of the scene header and camera that a background render can use
// while the originals keep changing. The model, materials and lights are shared read-only.
func (v *View) Snapshot() (*Scene, *camera.Perspective) {
	sc := *v.Scene
	cam := deepcopy.MustAnything(v.Camera).(*camera.Perspective)
	return &sc, cam
}

// Render draws the view at the given size, adjusting the camera aspect to match.
func (v *View) Render(width, height int) (*image.NRGBA, error) {
	v.Camera.SetAspect(width, height)
	return v.renderer.Render(v.Scene, v.Camera, width, height)
}

// RenderSnapshot draws a snapshot taken with Snapshot.
func (v *View) RenderSnapshot(s *Scene, cam *camera.Perspective, width, height int) (*image.NRGBA, error) {
	cam.SetAspect(width, height)
	return v.renderer.Render(s, cam, width, height)
}
