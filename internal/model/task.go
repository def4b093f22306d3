package model

import (
	"fmt"
	"strings"
	"time"
)

// Status is the execution status of a task.
type Status string

const (
	// StatusAwaitingStart is the initial status of every task.
	StatusAwaitingStart Status = "Aguardando Start"
	// StatusStarted indicates the field team started the work.
	StatusStarted Status = "Iniciado"
	// StatusInProgress indicates the work is ongoing.
	StatusInProgress Status = "Em Andamento"
	// StatusBlocked indicates the work is stopped, a reason is always present.
	StatusBlocked Status = "Paralisado"
	// StatusExecuted indicates the work is done and waiting for (or passed) the quality gate.
	StatusExecuted Status = "Executado"
)

// Statuses are all the execution statuses in lifecycle order.
var Statuses = []Status{StatusAwaitingStart, StatusStarted, StatusInProgress, StatusBlocked, StatusExecuted}

var statusAliases = map[string]Status{
	"awaiting-start": StatusAwaitingStart,
	"started":        StatusStarted,
	"in-progress":    StatusInProgress,
	"blocked":        StatusBlocked,
	"executed":       StatusExecuted,
}

// Slug returns the ASCII identifier of the status.
func (s Status) Slug() string { return slugOf(statusAliases, s) }

// IsActive returns true for the statuses where the work has started but isn't done.
func (s Status) IsActive() bool { return s == StatusStarted || s == StatusInProgress }

// ParseStatus parses a status from its value or its slug.
func ParseStatus(s string) (Status, error) {
	return parseEnum(s, Statuses, statusAliases, "status")
}

// System is the construction system a task belongs to.
type System string

const (
	SystemMasonry      System = "Alvenaria"
	SystemLSF          System = "LSF"
	SystemHybrid       System = "Híbrido"
	SystemInstallation System = "Instalação"
)

// Systems are all the construction systems.
var Systems = []System{SystemMasonry, SystemLSF, SystemHybrid, SystemInstallation}

var systemAliases = map[string]System{
	"masonry":      SystemMasonry,
	"lsf":          SystemLSF,
	"hybrid":       SystemHybrid,
	"installation": SystemInstallation,
}

// Slug returns the ASCII identifier of the system.
func (s System) Slug() string { return slugOf(systemAliases, s) }

// RequiresPhotos returns true when tasks of this system need photo evidence to be executed.
func (s System) RequiresPhotos() bool { return s == SystemLSF || s == SystemInstallation }

// ParseSystem parses a system from its value or its slug.
func ParseSystem(s string) (System, error) {
	return parseEnum(s, Systems, systemAliases, "system")
}

// Stage is the project stage, stages are ordered.
type Stage string

const (
	StagePreliminary      Stage = "1. Preliminar"
	StageStructural       Stage = "2. Estrutural"
	StageSealingInfra     Stage = "3. Vedação/Infra"
	StageRoofingFinishing Stage = "4. Cobertura/Acabamento"
)

// Stages are all the project stages in order.
var Stages = []Stage{StagePreliminary, StageStructural, StageSealingInfra, StageRoofingFinishing}

var stageAliases = map[string]Stage{
	"preliminary":       StagePreliminary,
	"structural":        StageStructural,
	"sealing-infra":     StageSealingInfra,
	"roofing-finishing": StageRoofingFinishing,
	"1":                 StagePreliminary,
	"2":                 StageStructural,
	"3":                 StageSealingInfra,
	"4":                 StageRoofingFinishing,
}

// Slug returns the ASCII identifier of the stage.
func (s Stage) Slug() string {
	for k, v := range stageAliases {
		if v == s && len(k) > 1 {
			return k
		}
	}
	return string(s)
}

// Order returns the 1 based position of the stage, 0 if unknown.
func (s Stage) Order() int {
	for i, st := range Stages {
		if st == s {
			return i + 1
		}
	}
	return 0
}

// ParseStage parses a stage from its value, its slug or its number.
func ParseStage(s string) (Stage, error) {
	return parseEnum(s, Stages, stageAliases, "stage")
}

// GateStatus is the quality gate decision state.
type GateStatus string

const (
	GateStatusPending                  GateStatus = "Pendente"
	GateStatusApproved                 GateStatus = "Aprovado"
	GateStatusApprovedWithReservations GateStatus = "Aprovado com Ressalvas"
	GateStatusRejected                 GateStatus = "Reprovado"
)

// GateStatuses are all the gate statuses.
var GateStatuses = []GateStatus{GateStatusPending, GateStatusApproved, GateStatusApprovedWithReservations, GateStatusRejected}

var gateStatusAliases = map[string]GateStatus{
	"pending":                    GateStatusPending,
	"approved":                   GateStatusApproved,
	"approved-with-reservations": GateStatusApprovedWithReservations,
	"rejected":                   GateStatusRejected,
}

// Slug returns the ASCII identifier of the gate status.
func (g GateStatus) Slug() string { return slugOf(gateStatusAliases, g) }

// IsDecision returns true for the gate statuses a manager can decide.
func (g GateStatus) IsDecision() bool {
	return g == GateStatusApproved || g == GateStatusApprovedWithReservations || g == GateStatusRejected
}

// ParseGateStatus parses a gate status from its value or its slug.
func ParseGateStatus(s string) (GateStatus, error) {
	return parseEnum(s, GateStatuses, gateStatusAliases, "gate status")
}

// Gate is the quality gate check embedded in every task.
type Gate struct {
	Status    GateStatus `json:"status"`
	Date      *time.Time `json:"date,omitempty"`
	Notes     string     `json:"notes"`
	CheckedBy string     `json:"checkedBy,omitempty"`
}

// PendingGate returns a reset gate.
func PendingGate() Gate {
	return Gate{Status: GateStatusPending}
}

// IsPending returns true when the gate has no decision and no notes.
func (g Gate) IsPending() bool {
	return g.Status == GateStatusPending && g.Notes == ""
}

// Photo is a photo attachment of a task.
type Photo struct {
	ID          string    `json:"id"`
	URL         string    `json:"url"`
	Timestamp   time.Time `json:"timestamp"` // Epoch milliseconds on the wire.
	Description string    `json:"description,omitempty"`
}

// Subtask is a checklist item of a task.
type Subtask struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// Task is a construction task.
type Task struct {
	ID                string    `json:"id"`
	Title             string    `json:"title"`
	Description       string    `json:"description"`
	Stage             Stage     `json:"stage"`
	System            System    `json:"system"`
	Specialist        string    `json:"specialist"`
	Executor          string    `json:"executor"`
	StartExpected     Date      `json:"dateStartExpected"`
	EndExpected       Date      `json:"dateEndExpected"`
	Status            Status    `json:"status"`
	BlockedReason     string    `json:"stopReason,omitempty"`
	Gate              Gate      `json:"gate"`
	IsTransitionPoint bool      `json:"isTransitionPoint"`
	TransitionTag     string    `json:"transitionTag,omitempty"`
	Photos            []Photo   `json:"photos"`
	Subtasks          []Subtask `json:"subtasks"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// Clone returns a deep copy of the task, the collections are not shared.
func (t Task) Clone() Task {
	c := t
	if t.Gate.Date != nil {
		d := *t.Gate.Date
		c.Gate.Date = &d
	}
	c.Photos = make([]Photo, len(t.Photos))
	copy(c.Photos, t.Photos)
	c.Subtasks = make([]Subtask, len(t.Subtasks))
	copy(c.Subtasks, t.Subtasks)
	return c
}

// CompletionDate is the gate decision day if any, otherwise the expected end date.
func (t Task) CompletionDate() Date {
	if t.Gate.Date != nil {
		return DateOf(t.Gate.Date.UTC())
	}
	return t.EndExpected
}

// IsOverdue returns true when the task is not executed and its expected end is before today.
func (t Task) IsOverdue(today Date) bool {
	if t.Status == StatusExecuted || t.EndExpected.IsZero() {
		return false
	}
	return t.EndExpected.Before(today)
}

// SubtaskProgress returns the completed subtasks percentage rounded, 0 without subtasks.
func (t Task) SubtaskProgress() int {
	if len(t.Subtasks) == 0 {
		return 0
	}
	done := 0
	for _, st := range t.Subtasks {
		if st.Completed {
			done++
		}
	}
	return int(float64(done)/float64(len(t.Subtasks))*100 + 0.5)
}

// Validate checks the task identity, the enums and the status invariants.
// Photo evidence is a transition rule and is not checked here.
func (t Task) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("task id is required: %w", ErrNotValid)
	}
	if _, err := ParseStatus(string(t.Status)); err != nil {
		return err
	}
	if _, err := ParseSystem(string(t.System)); err != nil {
		return err
	}
	if _, err := ParseStage(string(t.Stage)); err != nil {
		return err
	}
	if _, err := ParseGateStatus(string(t.Gate.Status)); err != nil {
		return err
	}

	if t.Status == StatusBlocked && strings.TrimSpace(t.BlockedReason) == "" {
		return fmt.Errorf("blocked task requires a reason: %w", ErrNotValid)
	}
	if t.Status != StatusBlocked && t.BlockedReason != "" {
		return fmt.Errorf("only blocked tasks can have a blocked reason: %w", ErrNotValid)
	}
	if t.Status != StatusExecuted && !t.Gate.IsPending() {
		return fmt.Errorf("gate must be pending while task is not executed: %w", ErrNotValid)
	}

	return nil
}

// TaskFilter is a conjunction of optional task filters.
type TaskFilter struct {
	System   *System
	Stage    *Stage
	Executor *string
	Status   *Status
}

// Match returns true when the task satisfies every set filter.
func (f TaskFilter) Match(t Task) bool {
	if f.System != nil && t.System != *f.System {
		return false
	}
	if f.Stage != nil && t.Stage != *f.Stage {
		return false
	}
	if f.Executor != nil && t.Executor != *f.Executor {
		return false
	}
	if f.Status != nil && t.Status != *f.Status {
		return false
	}
	return true
}

func slugOf[T ~string](aliases map[string]T, v T) string {
	for k, a := range aliases {
		if a == v {
			return k
		}
	}
	return string(v)
}

func parseEnum[T ~string](s string, values []T, aliases map[string]T, kind string) (T, error) {
	s = strings.TrimSpace(s)
	for _, v := range values {
		if strings.EqualFold(string(v), s) {
			return v, nil
		}
	}
	if v, ok := aliases[strings.ToLower(s)]; ok {
		return v, nil
	}
	var zero T
	return zero, NewValidationError(ValidationKindInvalidValue, "unknown %s %q", kind, s)
}
