package main

import (
	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine"
	"github.com/Carmen-Shannon/oxy-gl/engine/camera"
	"github.com/Carmen-Shannon/oxy-gl/engine/logger"
	"github.com/Carmen-Shannon/oxy-gl/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
)

// bindInput wires camera controls and the demo toggles.
//
//	WASD      pan
//	Q/E       up/down
//	arrows    orbit
//	scroll    zoom
//	middle    drag to orbit
//	F         toggle fog
//	P         next animation clip
//	R         reload shaders
//	Esc       quit
func bindInput(eng engine.Engine, s scene.Scene, cam camera.Camera, demo *demoScene) {
	keyState := make(map[uint32]bool)
	ctrl := cam.Controller()
	w := eng.Window()

	w.SetKeyDownCallback(func(keyCode uint32) {
		keyState[keyCode] = true
		switch keyCode {
		case common.KeyEsc:
			eng.Quit()
		case common.KeyF:
			s.SetFlags(s.Flags() ^ scene.FlagFogExponential)
			logger.Info("oxy-view: fog", "enabled", s.Flags().Has(scene.FlagFogExponential))
		case common.KeyR:
			eng.Technique().RequestReload()
		case common.KeyP:
			if demo != nil {
				logger.Info("oxy-view: playing", "clip", demo.nextClip())
			}
		}
	})
	w.SetKeyUpCallback(func(keyCode uint32) {
		keyState[keyCode] = false
	})

	var dragging bool
	var lastX, lastY int32
	w.SetMiddleMouseDownCallback(func(x, y int32) {
		dragging = true
		lastX, lastY = x, y
	})
	w.SetMiddleMouseUpCallback(func(_, _ int32) {
		dragging = false
	})
	w.SetMouseMoveCallback(func(x, y int32) {
		if !dragging {
			return
		}
		ctrl.Drag(float32(x-lastX), float32(y-lastY))
		lastX, lastY = x, y
	})
	w.SetScrollCallback(func(delta float32) {
		ctrl.Zoom(delta)
	})

	spin := mgl32.QuatRotate(0.01, mgl32.Vec3{0, 1, 0})
	eng.SetTickCallback(func(_ float32) {
		if demo != nil {
			demo.panel.Rotate(spin)
		}
		pan := func(key uint32, move func(float32), amount float32) {
			if keyState[key] {
				move(amount)
			}
		}
		pan(common.KeyW, ctrl.PanForward, 1)
		pan(common.KeyS, ctrl.PanForward, -1)
		pan(common.KeyA, ctrl.PanRight, -1)
		pan(common.KeyD, ctrl.PanRight, 1)
		pan(common.KeyQ, ctrl.PanUp, 1)
		pan(common.KeyE, ctrl.PanUp, -1)
		if keyState[common.KeyLeft] {
			ctrl.OrbitLeft()
		}
		if keyState[common.KeyRight] {
			ctrl.OrbitRight()
		}
		if keyState[common.KeyUp] {
			ctrl.OrbitUp()
		}
		if keyState[common.KeyDown] {
			ctrl.OrbitDown()
		}
	})
}
