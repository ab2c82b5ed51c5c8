// Package repository decides whether task reads come from the seed endpoint
// or from local storage.
package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Makepad-fr/tasklist/internal/logging"
	"github.com/Makepad-fr/tasklist/internal/model"
	"github.com/Makepad-fr/tasklist/internal/network"
)

// Storage is the local persistence the repository writes through to.
type Storage interface {
	Add(ctx context.Context, t model.Task) error
	AddMany(ctx context.Context, tasks []model.Task) error
	All(ctx context.Context) ([]model.Task, error)
	Update(ctx context.Context, t model.Task) error
	Delete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, query string) ([]model.Task, error)
}

// Launches answers the first-launch check.
type Launches interface {
	LaunchedBefore() (bool, error)
}

type Repository struct {
	network  network.Getter
	storage  Storage
	launches Launches
	seedURL  string
	log      *logging.Logger
}

func New(net network.Getter, storage Storage, launches Launches, seedURL string, log *logging.Logger) *Repository {
	if log == nil {
		log = logging.Discard()
	}
	return &Repository{
		network:  net,
		storage:  storage,
		launches: launches,
		seedURL:  seedURL,
		log:      log,
	}
}

// GetAll seeds storage from the network on the first launch and reads from
// storage on every later one.
func (r *Repository) GetAll(ctx context.Context) ([]model.Task, error) {
	launched, err := r.launches.LaunchedBefore()
	if err != nil {
		return nil, fmt.Errorf("get all: %w", err)
	}
	if !launched {
		return r.fetchFromNetwork(ctx)
	}
	tasks, err := r.storage.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("get all: %w", err)
	}
	return tasks, nil
}

func (r *Repository) fetchFromNetwork(ctx context.Context) ([]model.Task, error) {
	r.log.Infof("first launch: seeding from %s", r.seedURL)
	resp, err := network.Fetch[model.TodosResponse](ctx, r.network, r.seedURL)
	if err != nil {
		r.log.Errorf("seed fetch: %v", err)
		return nil, fmt.Errorf("seed: %w", err)
	}
	if err := r.storage.AddMany(ctx, resp.Todos); err != nil {
		r.log.Errorf("seed store: %v", err)
		return nil, fmt.Errorf("seed: %w", err)
	}
	r.log.Infof("seeded %d tasks", len(resp.Todos))
	return resp.Todos, nil
}

func (r *Repository) Add(ctx context.Context, t model.Task) error {
	if err := r.storage.Add(ctx, t); err != nil {
		return fmt.Errorf("add: %w", err)
	}
	return nil
}

func (r *Repository) Update(ctx context.Context, t model.Task) error {
	if err := r.storage.Update(ctx, t); err != nil {
		return fmt.Errorf("update: %w", err)
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.storage.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	return nil
}

func (r *Repository) Search(ctx context.Context, query string) ([]model.Task, error) {
	tasks, err := r.storage.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return tasks, nil
}
