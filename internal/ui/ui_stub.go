//go:build !ebiten

package ui

import "cogcanvas/internal/core"

// LineHeight matches the GUI build so shared layout math stays consistent.
const LineHeight = 18

// ControlStrip is a no-op placeholder for headless builds.
type ControlStrip struct{}

// NewControlStrip returns nil in the headless build.
func NewControlStrip(core.Unit) *ControlStrip { return nil }

// Height reports zero in the headless build.
func (s *ControlStrip) Height() int { return 0 }

// Layout is a no-op in the headless build.
func (s *ControlStrip) Layout(int, int) {}

// Click reports no hit in the headless build.
func (s *ControlStrip) Click(int, int) bool { return false }
