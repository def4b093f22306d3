package model_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obrahub/obra/internal/model"
)

func validTask() model.Task {
	return model.Task{
		ID:            "t1",
		Title:         "Painéis de Parede 2º Pav.",
		Stage:         model.StageStructural,
		System:        model.SystemLSF,
		Executor:      "Montadores LSF",
		StartExpected: model.NewDate(2023, 10, 8),
		EndExpected:   model.NewDate(2023, 10, 15),
		Status:        model.StatusInProgress,
		Gate:          model.PendingGate(),
		Photos:        []model.Photo{},
		Subtasks:      []model.Subtask{},
	}
}

func TestTaskValidate(t *testing.T) {
	approvedAt := time.Date(2023, 10, 16, 10, 0, 0, 0, time.UTC)

	tests := map[string]struct {
		task   func() model.Task
		expErr bool
	}{
		"A valid task should not fail": {
			task:   validTask,
			expErr: false,
		},

		"Missing ID should fail": {
			task: func() model.Task {
				t := validTask()
				t.ID = ""
				return t
			},
			expErr: true,
		},

		"Blank title should not fail, it is a creation rule": {
			task: func() model.Task {
				t := validTask()
				t.Title = "   "
				return t
			},
			expErr: false,
		},

		"Unknown system should fail": {
			task: func() model.Task {
				t := validTask()
				t.System = "Madeira"
				return t
			},
			expErr: true,
		},

		"Blocked without reason should fail": {
			task: func() model.Task {
				t := validTask()
				t.Status = model.StatusBlocked
				return t
			},
			expErr: true,
		},

		"Blocked with reason should not fail": {
			task: func() model.Task {
				t := validTask()
				t.Status = model.StatusBlocked
				t.BlockedReason = "Falta de material"
				return t
			},
			expErr: false,
		},

		"A reason on a non blocked task should fail": {
			task: func() model.Task {
				t := validTask()
				t.BlockedReason = "Falta de material"
				return t
			},
			expErr: true,
		},

		"A decided gate on a non executed task should fail": {
			task: func() model.Task {
				t := validTask()
				t.Gate = model.Gate{Status: model.GateStatusApproved, Date: &approvedAt}
				return t
			},
			expErr: true,
		},

		"Gate notes on a non executed task should fail": {
			task: func() model.Task {
				t := validTask()
				t.Gate.Notes = "ok"
				return t
			},
			expErr: true,
		},

		"An executed LSF task without photos should not fail, it is a transition rule": {
			task: func() model.Task {
				t := validTask()
				t.Status = model.StatusExecuted
				return t
			},
			expErr: false,
		},

		"An executed LSF task with photos and a decided gate should not fail": {
			task: func() model.Task {
				t := validTask()
				t.Status = model.StatusExecuted
				t.Photos = []model.Photo{{ID: "p1", URL: "data:image/jpeg;base64,AA"}}
				t.Gate = model.Gate{Status: model.GateStatusApproved, Date: &approvedAt, CheckedBy: "Eng. Carlos (GP)"}
				return t
			},
			expErr: false,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			err := test.task().Validate()

			if test.expErr {
				assert.Error(t, err)
				assert.True(t, errors.Is(err, model.ErrNotValid))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseEnums(t *testing.T) {
	tests := map[string]struct {
		parse  func() (string, error)
		exp    string
		expErr bool
	}{
		"Status by value": {
			parse: func() (string, error) { s, err := model.ParseStatus("Em Andamento"); return string(s), err },
			exp:   string(model.StatusInProgress),
		},
		"Status by slug": {
			parse: func() (string, error) { s, err := model.ParseStatus("blocked"); return string(s), err },
			exp:   string(model.StatusBlocked),
		},
		"Unknown status": {
			parse:  func() (string, error) { s, err := model.ParseStatus("done"); return string(s), err },
			expErr: true,
		},
		"System by slug": {
			parse: func() (string, error) { s, err := model.ParseSystem("installation"); return string(s), err },
			exp:   string(model.SystemInstallation),
		},
		"System by value ignoring case": {
			parse: func() (string, error) { s, err := model.ParseSystem("lsf"); return string(s), err },
			exp:   string(model.SystemLSF),
		},
		"Stage by number": {
			parse: func() (string, error) { s, err := model.ParseStage("3"); return string(s), err },
			exp:   string(model.StageSealingInfra),
		},
		"Gate by slug": {
			parse: func() (string, error) {
				s, err := model.ParseGateStatus("approved-with-reservations")
				return string(s), err
			},
			exp: string(model.GateStatusApprovedWithReservations),
		},
		"Role by slug": {
			parse: func() (string, error) { s, err := model.ParseRole("project-manager"); return string(s), err },
			exp:   string(model.RoleProjectManager),
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := test.parse()

			if test.expErr {
				require.Error(t, err)
				kind, ok := model.ValidationKindOf(err)
				assert.True(t, ok)
				assert.Equal(t, model.ValidationKindInvalidValue, kind)
			} else {
				require.NoError(t, err)
				assert.Equal(t, test.exp, got)
			}
		})
	}
}

func TestStageOrder(t *testing.T) {
	assert.Equal(t, 1, model.StagePreliminary.Order())
	assert.Equal(t, 4, model.StageRoofingFinishing.Order())
	assert.Equal(t, 0, model.Stage("5. Entrega").Order())
	assert.Equal(t, "sealing-infra", model.StageSealingInfra.Slug())
	assert.Equal(t, "in-progress", model.StatusInProgress.Slug())
}

func TestTaskCompletionDate(t *testing.T) {
	task := validTask()
	assert.Equal(t, model.NewDate(2023, 10, 15), task.CompletionDate())

	approvedAt := time.Date(2023, 10, 17, 23, 59, 0, 0, time.UTC)
	task.Gate.Date = &approvedAt
	assert.Equal(t, model.NewDate(2023, 10, 17), task.CompletionDate())
}

func TestTaskIsOverdue(t *testing.T) {
	today := model.NewDate(2023, 10, 16)

	task := validTask()
	assert.True(t, task.IsOverdue(today))

	task.EndExpected = today
	assert.False(t, task.IsOverdue(today))

	task.EndExpected = today.AddDays(-1)
	task.Status = model.StatusExecuted
	assert.False(t, task.IsOverdue(today))
}

func TestTaskClone(t *testing.T) {
	approvedAt := time.Date(2023, 10, 16, 10, 0, 0, 0, time.UTC)
	task := validTask()
	task.Photos = []model.Photo{{ID: "p1"}}
	task.Gate.Date = &approvedAt

	c := task.Clone()
	c.Photos[0].ID = "changed"
	*c.Gate.Date = approvedAt.Add(time.Hour)

	assert.Equal(t, "p1", task.Photos[0].ID)
	assert.Equal(t, approvedAt, *task.Gate.Date)
}

func TestTaskSubtaskProgress(t *testing.T) {
	task := validTask()
	assert.Equal(t, 0, task.SubtaskProgress())

	task.Subtasks = []model.Subtask{{ID: "1", Completed: true}, {ID: "2"}, {ID: "3"}}
	assert.Equal(t, 33, task.SubtaskProgress())
}

func TestTaskFilterMatch(t *testing.T) {
	lsf := model.SystemLSF
	masonry := model.SystemMasonry
	executor := "Montadores LSF"
	blocked := model.StatusBlocked

	task := validTask()

	assert.True(t, model.TaskFilter{}.Match(task))
	assert.True(t, model.TaskFilter{System: &lsf, Executor: &executor}.Match(task))
	assert.False(t, model.TaskFilter{System: &masonry}.Match(task))
	assert.False(t, model.TaskFilter{System: &lsf, Status: &blocked}.Match(task))
}
