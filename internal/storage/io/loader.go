package io

import (
	"context"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/obrahub/obra/internal/model"
)

// Seed is a validated initial data set.
type Seed struct {
	Users []model.User
	Tasks []model.Task
}

// SeedYAMLRepository loads seed data sets from YAML files.
type SeedYAMLRepository struct {
	fs fs.FS
}

// NewSeedYAMLRepository creates a new YAML seed repository.
func NewSeedYAMLRepository(filesystem fs.FS) *SeedYAMLRepository {
	return &SeedYAMLRepository{fs: filesystem}
}

// GetSeed loads a seed file and returns the domain models. Tasks without ID
// are returned with an empty ID, the caller assigns one.
func (r *SeedYAMLRepository) GetSeed(ctx context.Context, path string) (*Seed, error) {
	data, err := fs.ReadFile(r.fs, path)
	if err != nil {
		return nil, fmt.Errorf("reading seed file: %w", err)
	}

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var cfg SeedConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}

	seed, err := cfg.toModel()
	if err != nil {
		return nil, fmt.Errorf("invalid seed: %w", err)
	}

	return seed, nil
}

// GetUsers loads only the user directory of a seed file.
func (r *SeedYAMLRepository) GetUsers(ctx context.Context, path string) ([]model.User, error) {
	seed, err := r.GetSeed(ctx, path)
	if err != nil {
		return nil, err
	}
	return seed.Users, nil
}

// SeedConfig represents the YAML structure of a seed file.
type SeedConfig struct {
	Users []UserConfig `yaml:"users"`
	Tasks []TaskConfig `yaml:"tasks"`
}

// UserConfig represents the YAML structure of a user.
type UserConfig struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	Role string `yaml:"role"`
}

// TaskConfig represents the YAML structure of a task.
type TaskConfig struct {
	ID              string          `yaml:"id"`
	Title           string          `yaml:"title"`
	Description     string          `yaml:"description"`
	Stage           string          `yaml:"stage"`
	System          string          `yaml:"system"`
	Specialist      string          `yaml:"specialist"`
	Executor        string          `yaml:"executor"`
	Start           string          `yaml:"start"`
	End             string          `yaml:"end"`
	Status          string          `yaml:"status"`
	BlockedReason   string          `yaml:"blocked_reason"`
	TransitionPoint bool            `yaml:"transition_point"`
	TransitionTag   string          `yaml:"transition_tag"`
	Gate            *GateConfig     `yaml:"gate,omitempty"`
	Photos          []PhotoConfig   `yaml:"photos"`
	Subtasks        []SubtaskConfig `yaml:"subtasks"`
}

// GateConfig represents the YAML structure of a quality gate.
type GateConfig struct {
	Status    string `yaml:"status"`
	Notes     string `yaml:"notes"`
	CheckedBy string `yaml:"checked_by"`
	Date      string `yaml:"date"`
}

// PhotoConfig represents the YAML structure of a photo.
type PhotoConfig struct {
	ID          string `yaml:"id"`
	URL         string `yaml:"url"`
	Description string `yaml:"description"`
	Timestamp   string `yaml:"timestamp"`
}

// SubtaskConfig represents the YAML structure of a subtask.
type SubtaskConfig struct {
	ID        string `yaml:"id"`
	Title     string `yaml:"title"`
	Completed bool   `yaml:"completed"`
}

func (c SeedConfig) toModel() (*Seed, error) {
	seed := &Seed{
		Users: make([]model.User, 0, len(c.Users)),
		Tasks: make([]model.Task, 0, len(c.Tasks)),
	}

	userIDs := map[string]bool{}
	for i, u := range c.Users {
		role, err := model.ParseRole(u.Role)
		if err != nil {
			return nil, fmt.Errorf("users[%d]: %w", i, err)
		}
		user := model.User{ID: u.ID, Name: u.Name, Role: role}
		if err := user.Validate(); err != nil {
			return nil, fmt.Errorf("users[%d]: %w", i, err)
		}
		if userIDs[user.ID] {
			return nil, fmt.Errorf("users[%d]: user %s: %w", i, user.ID, model.ErrAlreadyExists)
		}
		userIDs[user.ID] = true
		seed.Users = append(seed.Users, user)
	}

	for i, t := range c.Tasks {
		task, err := t.toModel()
		if err != nil {
			return nil, fmt.Errorf("tasks[%d]: %w", i, err)
		}
		seed.Tasks = append(seed.Tasks, task)
	}

	return seed, nil
}

func (c TaskConfig) toModel() (model.Task, error) {
	if strings.TrimSpace(c.Title) == "" {
		return model.Task{}, fmt.Errorf("title is required: %w", model.ErrNotValid)
	}
	if strings.TrimSpace(c.Executor) == "" {
		return model.Task{}, fmt.Errorf("executor is required: %w", model.ErrNotValid)
	}

	stage, err := model.ParseStage(c.Stage)
	if err != nil {
		return model.Task{}, err
	}
	system, err := model.ParseSystem(c.System)
	if err != nil {
		return model.Task{}, err
	}
	status := model.StatusAwaitingStart
	if c.Status != "" {
		if status, err = model.ParseStatus(c.Status); err != nil {
			return model.Task{}, err
		}
	}
	start, err := model.ParseDate(c.Start)
	if err != nil {
		return model.Task{}, fmt.Errorf("start: %w", err)
	}
	end, err := model.ParseDate(c.End)
	if err != nil {
		return model.Task{}, fmt.Errorf("end: %w", err)
	}

	task := model.Task{
		ID:                c.ID,
		Title:             strings.TrimSpace(c.Title),
		Description:       c.Description,
		Stage:             stage,
		System:            system,
		Specialist:        c.Specialist,
		Executor:          strings.TrimSpace(c.Executor),
		StartExpected:     start,
		EndExpected:       end,
		Status:            status,
		BlockedReason:     strings.TrimSpace(c.BlockedReason),
		Gate:              model.PendingGate(),
		IsTransitionPoint: c.TransitionPoint,
		TransitionTag:     c.TransitionTag,
		Photos:            make([]model.Photo, 0, len(c.Photos)),
		Subtasks:          make([]model.Subtask, 0, len(c.Subtasks)),
	}

	if c.Gate != nil {
		gate, err := c.Gate.toModel()
		if err != nil {
			return model.Task{}, fmt.Errorf("gate: %w", err)
		}
		task.Gate = gate
	}

	for i, p := range c.Photos {
		photo, err := p.toModel()
		if err != nil {
			return model.Task{}, fmt.Errorf("photos[%d]: %w", i, err)
		}
		task.Photos = append(task.Photos, photo)
	}

	for i, st := range c.Subtasks {
		if strings.TrimSpace(st.Title) == "" {
			return model.Task{}, fmt.Errorf("subtasks[%d]: title is required: %w", i, model.ErrNotValid)
		}
		task.Subtasks = append(task.Subtasks, model.Subtask{ID: st.ID, Title: strings.TrimSpace(st.Title), Completed: st.Completed})
	}

	return task, nil
}

func (c GateConfig) toModel() (model.Gate, error) {
	gate := model.PendingGate()
	if c.Status != "" {
		status, err := model.ParseGateStatus(c.Status)
		if err != nil {
			return model.Gate{}, err
		}
		gate.Status = status
	}
	gate.Notes = c.Notes
	gate.CheckedBy = c.CheckedBy

	if c.Date != "" {
		t, err := parseTimestamp(c.Date)
		if err != nil {
			return model.Gate{}, fmt.Errorf("date: %w", err)
		}
		gate.Date = &t
	}

	return gate, nil
}

func (c PhotoConfig) toModel() (model.Photo, error) {
	if c.URL == "" {
		return model.Photo{}, fmt.Errorf("url is required: %w", model.ErrNotValid)
	}
	photo := model.Photo{ID: c.ID, URL: c.URL, Description: c.Description}
	if c.Timestamp != "" {
		t, err := parseTimestamp(c.Timestamp)
		if err != nil {
			return model.Photo{}, fmt.Errorf("timestamp: %w", err)
		}
		photo.Timestamp = t
	}
	return photo, nil
}

// parseTimestamp accepts RFC3339 timestamps or plain dates (UTC midnight).
func parseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	d, err := model.ParseDate(s)
	if err != nil {
		return time.Time{}, err
	}
	return d.Time(), nil
}
