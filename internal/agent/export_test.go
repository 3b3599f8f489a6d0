package agent

// SetSurfaceFactory swaps the browser session factory so runner tests can
// observe session lifecycle without launching a real browser.
func (r *Runner) SetSurfaceFactory(f SurfaceFactory) {
	r.newSurface = f
}
