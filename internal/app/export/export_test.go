package export_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/obrahub/obra/internal/app/export"
	"github.com/obrahub/obra/internal/model"
	"github.com/obrahub/obra/internal/storage/storagemock"
)

func TestServiceRun(t *testing.T) {
	gateDate := time.Date(2023, 10, 17, 14, 0, 0, 0, time.UTC)

	tests := map[string]struct {
		mock   func(m *storagemock.MockRepository)
		expOut string
		expErr error
	}{
		"An executed task should include the gate, the checklist and the last change": {
			mock: func(m *storagemock.MockRepository) {
				m.On("GetTask", mock.Anything, "t1").Once().Return(&model.Task{
					ID:                "t1",
					Title:             "Montagem Painéis",
					Stage:             model.StageSealingInfra,
					System:            model.SystemLSF,
					Specialist:        "Montador LSF",
					Executor:          "Equipe Steel",
					StartExpected:     model.NewDate(2023, 10, 11),
					EndExpected:       model.NewDate(2023, 10, 14),
					Status:            model.StatusExecuted,
					IsTransitionPoint: true,
					TransitionTag:     "#VigaTransição",
					Gate: model.Gate{
						Status:    model.GateStatusApproved,
						CheckedBy: "Eng. Carlos (GP)",
						Date:      &gateDate,
						Notes:     "Prumo ok",
					},
					Photos: []model.Photo{{ID: "p1", URL: "x"}},
					Subtasks: []model.Subtask{
						{ID: "s1", Title: "Guias", Completed: true},
						{ID: "s2", Title: "Painéis"},
					},
				}, nil)
				m.On("ListHistory", mock.Anything, "t1").Once().Return([]model.HistoryEntry{
					{
						ID:             "h2",
						TaskID:         "t1",
						PreviousStatus: model.StatusInProgress,
						NewStatus:      model.StatusExecuted,
						Timestamp:      time.Date(2023, 10, 16, 9, 0, 0, 0, time.UTC),
						UserName:       "Mestre João (Executor)",
					},
					{ID: "h1", TaskID: "t1"},
				}, nil)
			},
			expOut: `Montagem Painéis [t1]
System: LSF | Stage: 3. Vedação/Infra
Transition point: #VigaTransição
Executor: Equipe Steel (Montador LSF)
Planned: 2023-10-11 -> 2023-10-14
Status: Executado
Quality gate: Aprovado by Eng. Carlos (GP) on 2023-10-17 14:00
Gate notes: Prumo ok
Checklist: 1/2 (50%)
  [x] Guias
  [ ] Painéis
Photos: 1
Last change: Em Andamento -> Executado by Mestre João (Executor) on 2023-10-16 09:00
`,
		},
		"A blocked task without history should include the reason": {
			mock: func(m *storagemock.MockRepository) {
				m.On("GetTask", mock.Anything, "t1").Once().Return(&model.Task{
					ID:            "t1",
					Title:         "Passagem Elétrica",
					Stage:         model.StageSealingInfra,
					System:        model.SystemInstallation,
					Executor:      "Eletricista",
					StartExpected: model.NewDate(2023, 10, 12),
					EndExpected:   model.NewDate(2023, 10, 16),
					Status:        model.StatusBlocked,
					BlockedReason: "Falta de eletrodutos",
					Gate:          model.PendingGate(),
				}, nil)
				m.On("ListHistory", mock.Anything, "t1").Once().Return([]model.HistoryEntry{}, nil)
			},
			expOut: `Passagem Elétrica [t1]
System: Instalação | Stage: 3. Vedação/Infra
Executor: Eletricista
Planned: 2023-10-12 -> 2023-10-16
Status: Paralisado
Blocked reason: Falta de eletrodutos
Photos: 0
`,
		},
		"A missing task should be not found": {
			mock: func(m *storagemock.MockRepository) {
				m.On("GetTask", mock.Anything, "t1").Once().Return(nil, fmt.Errorf("task t1: %w", model.ErrNotFound))
			},
			expErr: model.ErrNotFound,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			mRepo := &storagemock.MockRepository{}
			test.mock(mRepo)

			svc, err := export.NewService(export.ServiceConfig{Repository: mRepo})
			require.NoError(t, err)

			out, err := svc.Run(context.Background(), export.Request{TaskID: "t1"})

			if test.expErr != nil {
				assert.ErrorIs(t, err, test.expErr)
			} else if assert.NoError(t, err) {
				assert.Equal(t, test.expOut, out)
			}
			mRepo.AssertExpectations(t)
		})
	}
}
