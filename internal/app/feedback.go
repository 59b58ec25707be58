package app

// clampFeedback beeps the first time a gesture runs into its bounds.
type clampFeedback struct {
	app    *Application
	beeped map[string]bool
}

func newClampFeedback(app *Application) *clampFeedback {
	return &clampFeedback{app: app, beeped: make(map[string]bool)}
}

// GestureStarted implements drag.Observer.
func (f *clampFeedback) GestureStarted(element string) {
	delete(f.beeped, element)
}

// PositionChanged implements drag.Observer.
func (f *clampFeedback) PositionChanged(element string, clamped bool) {
	if !clamped || f.beeped[element] || f.app.backend == nil {
		return
	}
	f.beeped[element] = true
	f.app.backend.Beep()
}

// GestureEnded implements drag.Observer.
func (f *clampFeedback) GestureEnded(element string) {
	delete(f.beeped, element)
}
