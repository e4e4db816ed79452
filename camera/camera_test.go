package camera

import (
	"math"
	"testing"
)

func near(a, b float32) bool {
	return math.Abs(float64(a-b)) < 0.01
}

func TestNewFramesGround(t *testing.T) {
	cam := New(1280, 720, 60)

	if cam.X != 0 || cam.Z != 0 {
		t.Errorf("expected camera at origin, got (%f, %f)", cam.X, cam.Z)
	}
	if !near(cam.OrthographicSize(), 25.2) {
		t.Errorf("orthographic size = %f, want 25.2", cam.OrthographicSize())
	}
	// 720 px over 2*25.2 world units
	if !near(cam.Zoom, 720/50.4) {
		t.Errorf("zoom = %f", cam.Zoom)
	}

	_, top, _, bottom := cam.VisibleWorldBounds()
	if !near(top, -25.2) || !near(bottom, 25.2) {
		t.Errorf("vertical bounds = %f..%f", top, bottom)
	}
}

func TestWorldToScreenCentered(t *testing.T) {
	cam := New(1280, 720, 60)
	sx, sy := cam.WorldToScreen(0, 0)
	if !near(sx, 640) || !near(sy, 360) {
		t.Errorf("expected screen center (640, 360), got (%f, %f)", sx, sy)
	}
}

func TestScreenToWorldRoundtrip(t *testing.T) {
	cam := New(1280, 720, 60)
	cam.Pan(35, -20)
	cam.ZoomBy(1.5)

	testCases := []struct{ sx, sy float32 }{
		{640, 360},
		{100, 100},
		{1200, 600},
	}
	for _, tc := range testCases {
		wx, wz := cam.ScreenToWorld(tc.sx, tc.sy)
		sx, sy := cam.WorldToScreen(wx, wz)
		if !near(sx, tc.sx) || !near(sy, tc.sy) {
			t.Errorf("roundtrip failed: (%f,%f) -> (%f,%f) -> (%f,%f)",
				tc.sx, tc.sy, wx, wz, sx, sy)
		}
	}
}

func TestProjectLiftsAltitude(t *testing.T) {
	cam := New(1280, 720, 60)
	_, ground := cam.Project(0, 0, 0)
	_, sky := cam.Project(0, 15, 0)
	if !near(ground-sky, 15*HeightTilt*cam.Zoom) {
		t.Errorf("satellite lifted by %f px", ground-sky)
	}
}

func TestPanStaysOnGround(t *testing.T) {
	cam := New(1280, 720, 60)
	cam.Pan(1e6, -1e6)
	if cam.X != 30 || cam.Z != -30 {
		t.Errorf("camera left the ground: (%f, %f)", cam.X, cam.Z)
	}
}

func TestZoomClamped(t *testing.T) {
	cam := New(1280, 720, 60)
	tests := []struct {
		name   string
		factor float32
		want   float32
	}{
		{"zoom in", 100, cam.MaxZoom},
		{"zoom out", 0.0001, cam.MinZoom},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam.Reset()
			cam.ZoomBy(tt.factor)
			if cam.Zoom != tt.want {
				t.Errorf("zoom = %f, want %f", cam.Zoom, tt.want)
			}
		})
	}
}

func TestIsVisible(t *testing.T) {
	cam := New(1280, 720, 60)
	if !cam.IsVisible(0, 0, 0.25) {
		t.Error("origin not visible")
	}
	if cam.IsVisible(0, 200, 0.25) {
		t.Error("far point visible")
	}
}

func TestResizeKeepsRelativeZoom(t *testing.T) {
	cam := New(1280, 720, 60)
	cam.ZoomBy(2)
	cam.Resize(1280, 1440)
	if !near(cam.Zoom, 2*1440/50.4) {
		t.Errorf("zoom after resize = %f", cam.Zoom)
	}
}
