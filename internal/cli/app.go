package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Makepad-fr/tasklist/internal/config"
	"github.com/Makepad-fr/tasklist/internal/interactor"
	"github.com/Makepad-fr/tasklist/internal/logging"
	"github.com/Makepad-fr/tasklist/internal/network"
	"github.com/Makepad-fr/tasklist/internal/presenter"
	"github.com/Makepad-fr/tasklist/internal/repository"
	"github.com/Makepad-fr/tasklist/internal/settings"
	"github.com/Makepad-fr/tasklist/internal/store/jsonstore"
	"github.com/Makepad-fr/tasklist/internal/store/sqlstore"
	"github.com/Makepad-fr/tasklist/internal/ui"
)

// app is one command's worth of wiring: storage, repository, interactor and
// list presenter.
type app struct {
	cfg   config.Config
	theme ui.Theme
	log   *logging.Logger
	store *sqlstore.Store
	list  *presenter.ListPresenter
	view  *cliView
}

// cliView records the first error the presenter reports.
type cliView struct {
	err error
}

func (v *cliView) Refresh(int)  {}
func (v *cliView) ClearSearch() {}
func (v *cliView) ShowError(err error) {
	if v.err == nil {
		v.err = err
	}
}

func openApp(cmd *cobra.Command, v *viper.Viper, d presenter.Dispatcher) (*app, error) {
	if err := config.BindFlags(v, cmd.Flags()); err != nil {
		return nil, codeError(2, "%s", err)
	}
	cfg, err := config.Load(v)
	if err != nil {
		return nil, codeError(2, "%s", err)
	}
	theme, err := ui.LookupTheme(cfg.Theme)
	if err != nil {
		return nil, codeError(2, "%s", err)
	}
	log, err := logging.Open(cfg.LogFile)
	if err != nil {
		return nil, codeError(1, "%s", err)
	}
	store, err := sqlstore.Open(cfg.Path(sqlstore.FileName), log)
	if err != nil {
		log.Close()
		return nil, runtimeError(err)
	}

	log.Infof("data dir %s, theme %s", cfg.DataDir, theme.Name)

	repo := repository.New(
		network.New(cfg.HTTPTimeout),
		store,
		settings.New(jsonstore.Open(cfg.DataDir)),
		cfg.SeedURL,
		log,
	)
	it := interactor.New(repo)
	list := presenter.NewList(it, d)
	it.SetOutput(list)
	view := &cliView{}
	list.SetView(view)

	return &app{cfg: cfg, theme: theme, log: log, store: store, list: list, view: view}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.log.Warnf("close store: %v", err)
	}
	a.log.Close()
}

// load fetches the list, seeding it on first launch.
func (a *app) load(ctx context.Context) error {
	a.list.LoadTodos(ctx)
	return a.failure("load")
}

// failure turns an error reported to the view into an exit error.
func (a *app) failure(op string) error {
	err := a.view.err
	a.view.err = nil
	if err == nil {
		return nil
	}
	a.log.Errorf("%s: %v", op, err)
	return runtimeError(err)
}

func runtimeError(err error) error {
	e := &exitErr{code: 1, msg: err.Error()}
	var se *sqlstore.Error
	if errors.As(err, &se) && se.Busy() {
		e.hint = "Hint: the database is locked; is another todo running?"
	}
	return e
}
