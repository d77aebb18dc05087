package main

import (
	"errors"
	"fmt"
	gomath "math"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/midgard-meshedit/internal/camera"
	"github.com/Faultbox/midgard-meshedit/internal/meshedit"
	"github.com/Faultbox/midgard-meshedit/internal/undo"
	"github.com/Faultbox/midgard-meshedit/pkg/math"
	"github.com/Faultbox/midgard-meshedit/pkg/picking"
)

// Script is a recorded edit session: where the asset sits in the scene and
// the input steps to replay against it.
type Script struct {
	Placement Placement   `yaml:"placement"`
	Camera    *CameraView `yaml:"camera,omitempty"`
	Steps     []Step      `yaml:"steps"`
}

// Placement positions the asset in the scene. Rays in steps are given in scene space.
type Placement struct {
	Translate []float32 `yaml:"translate"`
	RotateY   float32   `yaml:"rotate_y"` // degrees
	Scale     []float32 `yaml:"scale"`
}

// CameraView describes the viewport that screen-space rays are clicked in.
// Without Center and Distance the camera frames the whole mesh.
type CameraView struct {
	Viewport []float32 `yaml:"viewport"` // width, height in pixels
	Fov      float32   `yaml:"fov"`      // vertical, degrees
	Yaw      float32   `yaml:"yaw"`      // degrees
	Pitch    float32   `yaml:"pitch"`    // degrees
	Center   []float32 `yaml:"center"`
	Distance float32   `yaml:"distance"`
}

// Step is one input event. Exactly one field must be set.
type Step struct {
	Mode           string    `yaml:"mode,omitempty"`
	Select         *RayStep  `yaml:"select,omitempty"`
	Hover          *RayStep  `yaml:"hover,omitempty"`
	Move           []float32 `yaml:"move,omitempty"`
	Commit         bool      `yaml:"commit,omitempty"`
	DeleteFaces    bool      `yaml:"delete_faces,omitempty"`
	ClearSelection bool      `yaml:"clear_selection,omitempty"`
	Undo           bool      `yaml:"undo,omitempty"`
	Redo           bool      `yaml:"redo,omitempty"`
	Cancel         bool      `yaml:"cancel,omitempty"`
}

// RayStep is a pick ray, either in scene space or as a viewport pixel.
type RayStep struct {
	Origin    []float32 `yaml:"origin,omitempty"`
	Direction []float32 `yaml:"direction,omitempty"`
	Screen    []float32 `yaml:"screen,omitempty"` // x, y in pixels
	Add       bool      `yaml:"add,omitempty"`
}

var errStepActions = errors.New("step must set exactly one action")

func radians(degrees float32) float32 {
	return degrees * gomath.Pi / 180
}

// Matrix returns translate * rotateY * scale.
func (p Placement) Matrix() math.Mat4 {
	m := math.Identity()
	if len(p.Translate) == 3 {
		m = math.Translate(p.Translate[0], p.Translate[1], p.Translate[2])
	}
	if p.RotateY != 0 {
		m = m.Mul(math.RotateY(radians(p.RotateY)))
	}
	if len(p.Scale) == 3 {
		m = m.Mul(math.Scale(p.Scale[0], p.Scale[1], p.Scale[2]))
	}
	return m
}

func loadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading script: %w", err)
	}
	return parseScript(data)
}

func parseScript(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing script: %w", err)
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Script) validate() error {
	p := s.Placement
	if p.Translate != nil && len(p.Translate) != 3 {
		return fmt.Errorf("placement.translate needs 3 components, got %d", len(p.Translate))
	}
	if p.Scale != nil && len(p.Scale) != 3 {
		return fmt.Errorf("placement.scale needs 3 components, got %d", len(p.Scale))
	}

	if c := s.Camera; c != nil {
		if len(c.Viewport) != 2 || c.Viewport[0] <= 0 || c.Viewport[1] <= 0 {
			return errors.New("camera.viewport needs a positive width and height")
		}
		if c.Center != nil && len(c.Center) != 3 {
			return fmt.Errorf("camera.center needs 3 components, got %d", len(c.Center))
		}
	}

	for i, st := range s.Steps {
		if err := st.validate(); err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}
		for _, r := range []*RayStep{st.Select, st.Hover} {
			if r != nil && r.Screen != nil && s.Camera == nil {
				return fmt.Errorf("step %d: screen rays need a camera", i+1)
			}
		}
	}
	return nil
}

// orbit builds the camera. lo and hi bound the mesh in scene space and frame
// it unless center or distance are given.
func (c *CameraView) orbit(lo, hi math.Vec3) *camera.OrbitCamera {
	cam := camera.NewOrbitCamera()
	if c.Fov > 0 {
		cam.FovY = radians(c.Fov)
	}
	cam.FitToBounds(lo, hi)
	if len(c.Center) == 3 {
		cam.Center = vec3(c.Center)
	}
	if c.Distance > 0 {
		cam.Distance = c.Distance
	}
	cam.Yaw = radians(c.Yaw)
	cam.SetPitch(radians(c.Pitch))
	return cam
}

func (st Step) validate() error {
	actions := 0
	for _, set := range []bool{
		st.Mode != "", st.Select != nil, st.Hover != nil, st.Move != nil,
		st.Commit, st.DeleteFaces, st.ClearSelection, st.Undo, st.Redo, st.Cancel,
	} {
		if set {
			actions++
		}
	}
	if actions != 1 {
		return errStepActions
	}

	if st.Mode != "" {
		if _, err := meshedit.ParseMode(st.Mode); err != nil {
			return err
		}
	}
	if st.Move != nil && len(st.Move) != 3 {
		return fmt.Errorf("move needs 3 components, got %d", len(st.Move))
	}
	for _, r := range []*RayStep{st.Select, st.Hover} {
		if r == nil {
			continue
		}
		if r.Screen != nil {
			if len(r.Screen) != 2 || r.Origin != nil || r.Direction != nil {
				return errors.New("screen ray needs exactly x and y, without origin or direction")
			}
			continue
		}
		if len(r.Origin) != 3 || len(r.Direction) != 3 {
			return errors.New("ray needs 3-component origin and direction")
		}
		if r.Direction[0] == 0 && r.Direction[1] == 0 && r.Direction[2] == 0 {
			return errors.New("ray direction must not be zero")
		}
	}
	return nil
}

func vec3(v []float32) math.Vec3 {
	return math.Vec3{X: v[0], Y: v[1], Z: v[2]}
}

// runner replays steps the way an interactive host drives the editor: moves
// accumulate like a gizmo drag and a commit step ends the drag and records it.
// Any step that changes the selection or the history ends the drag first, so
// the recorded move always covers the vertices that moved.
type runner struct {
	editor       *meshedit.Editor
	history      *undo.Stack
	pickDistance float32
	log          *zap.Logger

	camera   *camera.OrbitCamera
	viewport [2]float32

	drag math.Vec3
}

func newRunner(editor *meshedit.Editor, history *undo.Stack, pickDistance float32, log *zap.Logger) *runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &runner{editor: editor, history: history, pickDistance: pickDistance, log: log}
}

// useCamera enables screen-space rays, framing the mesh under edit.
func (r *runner) useCamera(view *CameraView) {
	lo, hi, ok := r.editor.Bounds()
	if !ok {
		hi = math.Vec3{X: 1, Y: 1, Z: 1}
	}
	r.camera = view.orbit(lo, hi)
	r.viewport = [2]float32{view.Viewport[0], view.Viewport[1]}
	r.log.Debug("camera",
		zap.Float32("distance", r.camera.Distance),
		zap.Float32("centerX", r.camera.Center.X),
		zap.Float32("centerY", r.camera.Center.Y),
		zap.Float32("centerZ", r.camera.Center.Z),
	)
}

func (r *runner) run(steps []Step) error {
	for i, st := range steps {
		if !r.editor.IsActive() {
			return fmt.Errorf("step %d: no active edit session", i+1)
		}
		r.apply(st)
	}
	if r.editor.IsActive() && r.drag != (math.Vec3{}) {
		r.log.Info("committing unfinished move")
		r.commit()
	}
	return nil
}

func (r *runner) apply(st Step) {
	if r.drag != (math.Vec3{}) && endsDrag(st) {
		r.log.Debug("committing move before next step")
		r.commit()
	}

	switch {
	case st.Mode != "":
		mode, _ := meshedit.ParseMode(st.Mode)
		r.editor.SetMode(mode)
		r.log.Debug("mode", zap.Stringer("mode", mode))

	case st.Select != nil:
		hit := r.editor.SelectElement(r.localRay(st.Select), st.Select.Add, r.pickDistance)
		r.log.Debug("select", zap.Bool("hit", hit), zap.Int("selected", len(r.editor.Selected())))

	case st.Hover != nil:
		r.editor.UpdateHover(r.localRay(st.Hover), r.pickDistance)

	case st.Move != nil:
		delta := vec3(st.Move)
		r.editor.MoveSelectedElements(delta)
		r.drag = r.drag.Add(delta)

	case st.Commit:
		r.commit()

	case st.DeleteFaces:
		if cmd := r.editor.DeleteSelectedFaces(); cmd != nil {
			r.history.Push(cmd)
			r.log.Info("deleted faces", zap.Stringer("command", cmd))
		} else {
			r.log.Warn("delete_faces needs face mode and a selected face")
		}

	case st.ClearSelection:
		r.editor.ClearSelection()

	case st.Undo:
		if cmd := r.history.Undo(); cmd != nil {
			r.log.Info("undo", zap.Stringer("command", cmd))
		} else {
			r.log.Warn("nothing to undo")
		}

	case st.Redo:
		if cmd := r.history.Redo(); cmd != nil {
			r.log.Info("redo", zap.Stringer("command", cmd))
		} else {
			r.log.Warn("nothing to redo")
		}

	case st.Cancel:
		r.editor.Cancel()
		r.history.Clear()
		r.drag = math.Vec3{}
	}
}

// endsDrag reports whether st acts on a selection or history that a pending
// move must be recorded against first. Hover, further moves, an explicit
// commit and cancel keep the drag open.
func endsDrag(st Step) bool {
	return st.Mode != "" || st.Select != nil || st.DeleteFaces || st.ClearSelection || st.Undo || st.Redo
}

func (r *runner) commit() {
	r.editor.CommitChanges()
	r.editor.UpdateVertexBuffer()
	if cmd := r.editor.NewMoveCommand(r.drag); cmd != nil && r.drag != (math.Vec3{}) {
		r.history.Push(cmd)
		r.log.Info("moved", zap.Stringer("command", cmd))
	}
	r.drag = math.Vec3{}
}

func (r *runner) localRay(st *RayStep) picking.Ray {
	if st.Screen != nil && r.camera != nil {
		return r.editor.LocalRay(r.camera.ScreenRay(st.Screen[0], st.Screen[1], r.viewport[0], r.viewport[1]))
	}
	return r.editor.LocalRay(picking.NewRay(vec3(st.Origin), vec3(st.Direction)))
}
