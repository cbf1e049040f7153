package services_test

import (
	"context"
	"testing"

	"github.com/contractpulse/flowdesigner/pkg/models"
	"github.com/contractpulse/flowdesigner/pkg/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAutosaver_Schedule(t *testing.T) {
	t.Parallel()

	editor, _, _ := newEditor(t)

	tests := []struct {
		name     string
		schedule string
		wantErr  bool
	}{
		{"default", "", false},
		{"descriptor", "@every 30s", false},
		{"standard cron", "*/5 * * * *", false},
		{"garbage", "whenever", true},
		{"six fields", "0 */5 * * * *", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := services.NewAutosaver(editor, tt.schedule, discardLogger())
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAutosaver_RunAndLifecycle(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	editor, repo, _ := newEditor(t)

	session, err := editor.NewWorkflow(ctx, "Autosaved")
	require.NoError(t, err)
	_, err = editor.AddNode(ctx, session.ID(), models.NodeTypeEnd, nil)
	require.NoError(t, err)

	autosaver, err := services.NewAutosaver(editor, "@every 1h", discardLogger())
	require.NoError(t, err)

	assert.Equal(t, 1, autosaver.Run(ctx))
	assert.Zero(t, autosaver.Run(ctx))

	_, err = repo.GetByID(ctx, session.ID())
	require.NoError(t, err)

	require.NoError(t, autosaver.Start(ctx))
	assert.ErrorIs(t, autosaver.Start(ctx), services.ErrAutosaveRunning)

	autosaver.Stop()
	require.NoError(t, autosaver.Start(ctx))
	autosaver.Stop()
}
