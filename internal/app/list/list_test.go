package list_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/obrahub/obra/internal/app/list"
	"github.com/obrahub/obra/internal/model"
	"github.com/obrahub/obra/internal/storage/storagemock"
)

func ptr[T any](v T) *T { return &v }

func tasksFixture() []model.Task {
	return []model.Task{
		{ID: "t1", System: model.SystemMasonry, Stage: model.StagePreliminary, Executor: "Equipe A", Status: model.StatusExecuted},
		{ID: "t2", System: model.SystemLSF, Stage: model.StageSealingInfra, Executor: "Equipe Steel", Status: model.StatusInProgress},
		{ID: "t3", System: model.SystemLSF, Stage: model.StageSealingInfra, Executor: "Equipe Steel", Status: model.StatusBlocked},
		{ID: "t4", System: model.SystemInstallation, Stage: model.StageStructural, Executor: "Eletricista", Status: model.StatusBlocked},
	}
}

func TestServiceRun(t *testing.T) {
	tests := map[string]struct {
		mock   func(m *storagemock.MockRepository)
		req    list.Request
		expIDs []string
		expErr bool
	}{
		"No filter should return every task in order": {
			mock: func(m *storagemock.MockRepository) {
				m.On("ListTasks", mock.Anything).Once().Return(tasksFixture(), nil)
			},
			expIDs: []string{"t1", "t2", "t3", "t4"},
		},
		"A system filter should return only that system": {
			mock: func(m *storagemock.MockRepository) {
				m.On("ListTasks", mock.Anything).Once().Return(tasksFixture(), nil)
			},
			req:    list.Request{Filter: model.TaskFilter{System: ptr(model.SystemLSF)}},
			expIDs: []string{"t2", "t3"},
		},
		"Filters should be combined": {
			mock: func(m *storagemock.MockRepository) {
				m.On("ListTasks", mock.Anything).Once().Return(tasksFixture(), nil)
			},
			req: list.Request{Filter: model.TaskFilter{
				System: ptr(model.SystemLSF),
				Status: ptr(model.StatusBlocked),
			}},
			expIDs: []string{"t3"},
		},
		"No match should return an empty list": {
			mock: func(m *storagemock.MockRepository) {
				m.On("ListTasks", mock.Anything).Once().Return(tasksFixture(), nil)
			},
			req:    list.Request{Filter: model.TaskFilter{Executor: ptr("Pintor")}},
			expIDs: []string{},
		},
		"A repository error should fail": {
			mock: func(m *storagemock.MockRepository) {
				m.On("ListTasks", mock.Anything).Once().Return(nil, errors.New("boom"))
			},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			mRepo := &storagemock.MockRepository{}
			test.mock(mRepo)

			svc, err := list.NewService(list.ServiceConfig{Repository: mRepo})
			require.NoError(err)

			tasks, err := svc.Run(context.Background(), test.req)

			if test.expErr {
				assert.Error(err)
			} else if assert.NoError(err) {
				ids := []string{}
				for _, tk := range tasks {
					ids = append(ids, tk.ID)
				}
				assert.Equal(test.expIDs, ids)
			}
			mRepo.AssertExpectations(t)
		})
	}
}
