package export

import (
	"bytes"
	"context"
	"fmt"
	"text/template"

	"github.com/obrahub/obra/internal/log"
	"github.com/obrahub/obra/internal/model"
	"github.com/obrahub/obra/internal/storage"
)

var summaryTpl = template.Must(template.New("summary").Parse(`{{ .Task.Title }} [{{ .Task.ID }}]
System: {{ .Task.System }} | Stage: {{ .Task.Stage }}
{{- if .Task.IsTransitionPoint }}
Transition point{{ with .Task.TransitionTag }}: {{ . }}{{ end }}
{{- end }}
Executor: {{ .Task.Executor }}{{ with .Task.Specialist }} ({{ . }}){{ end }}
Planned: {{ .Task.StartExpected }} -> {{ .Task.EndExpected }}
Status: {{ .Task.Status }}
{{- with .Task.BlockedReason }}
Blocked reason: {{ . }}
{{- end }}
{{- if eq .Task.Status "Executado" }}
Quality gate: {{ .Task.Gate.Status }}{{ with .Task.Gate.CheckedBy }} by {{ . }}{{ end }}{{ with .Task.Gate.Date }} on {{ .Format "2006-01-02 15:04" }}{{ end }}
{{- with .Task.Gate.Notes }}
Gate notes: {{ . }}
{{- end }}
{{- end }}
{{- if .Task.Subtasks }}
Checklist: {{ .Done }}/{{ len .Task.Subtasks }} ({{ .Task.SubtaskProgress }}%)
{{- range .Task.Subtasks }}
  [{{ if .Completed }}x{{ else }} {{ end }}] {{ .Title }}
{{- end }}
{{- end }}
Photos: {{ len .Task.Photos }}
{{- with .Last }}
Last change: {{ .PreviousStatus }} -> {{ .NewStatus }} by {{ .UserName }} on {{ .Timestamp.Format "2006-01-02 15:04" }}
{{- end }}
`))

// ServiceConfig is the configuration for the export service.
type ServiceConfig struct {
	Repository storage.Repository
	Logger     log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}

	return nil
}

// Service renders shareable text summaries of tasks.
type Service struct {
	repo   storage.Repository
	logger log.Logger
}

// NewService creates a new export service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:   cfg.Repository,
		logger: cfg.Logger,
	}, nil
}

// Request represents the export request parameters.
type Request struct {
	TaskID string
}

// Run returns the plain text summary of the task.
func (s *Service) Run(ctx context.Context, req Request) (string, error) {
	task, err := s.repo.GetTask(ctx, req.TaskID)
	if err != nil {
		return "", fmt.Errorf("could not get task: %w", err)
	}

	entries, err := s.repo.ListHistory(ctx, req.TaskID)
	if err != nil {
		return "", fmt.Errorf("could not get history: %w", err)
	}

	data := struct {
		Task model.Task
		Done int
		Last *model.HistoryEntry
	}{Task: *task}
	for _, st := range task.Subtasks {
		if st.Completed {
			data.Done++
		}
	}
	if len(entries) > 0 {
		data.Last = &entries[0]
	}

	var b bytes.Buffer
	if err := summaryTpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("could not render summary: %w", err)
	}

	return b.String(), nil
}
