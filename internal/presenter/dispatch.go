package presenter

// Dispatcher decides where presenter work runs. Background carries the
// interactor call; Main applies its result to presenter state. All state
// changes happen inside Main, so a UI that runs Main on its own goroutine
// never races with the presenter.
type Dispatcher interface {
	Background(func())
	Main(func())
}

// Inline runs everything on the calling goroutine. Used by the CLI and tests.
type Inline struct{}

func (Inline) Background(f func()) { f() }
func (Inline) Main(f func())       { f() }
