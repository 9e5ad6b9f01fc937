package types_test

import (
	"testing"

	"github.com/RafieAmandio/Teacher-RAG/pkg/domain/types"
	"github.com/m-mizutani/gt"
)

func TestJobStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name string
		from types.JobStatus
		to   types.JobStatus
		want bool
	}{
		{name: "processing to completed", from: types.JobStatusProcessing, to: types.JobStatusCompleted, want: true},
		{name: "processing to failed", from: types.JobStatusProcessing, to: types.JobStatusFailed, want: true},
		{name: "processing to processing", from: types.JobStatusProcessing, to: types.JobStatusProcessing, want: false},
		{name: "completed to failed", from: types.JobStatusCompleted, to: types.JobStatusFailed, want: false},
		{name: "failed to completed", from: types.JobStatusFailed, to: types.JobStatusCompleted, want: false},
		{name: "completed to processing", from: types.JobStatusCompleted, to: types.JobStatusProcessing, want: false},
		{name: "processing to not found", from: types.JobStatusProcessing, to: types.JobStatusNotFound, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt.Value(t, tt.from.CanTransitionTo(tt.to)).Equal(tt.want)
		})
	}
}

func TestParseJobStatus(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		s, err := types.ParseJobStatus("completed")
		gt.NoError(t, err)
		gt.Value(t, s).Equal(types.JobStatusCompleted)
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := types.ParseJobStatus("done")
		gt.Value(t, err).NotNil()
	})
}

func TestMessageRole(t *testing.T) {
	gt.Bool(t, types.MessageRoleUser.IsChatRole()).True()
	gt.Bool(t, types.MessageRoleAssistant.IsChatRole()).True()
	gt.Bool(t, types.MessageRoleSystem.IsChatRole()).False()

	_, err := types.ParseMessageRole("tool")
	gt.Value(t, err).NotNil()
}
