package cmd

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/contractpulse/flowdesigner/pkg/directory"
	"github.com/contractpulse/flowdesigner/pkg/models"
	"github.com/contractpulse/flowdesigner/pkg/persistence/file"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePersistenceProvider(t *testing.T) {
	t.Parallel()

	tests := []struct {
		url  string
		want string
	}{
		{"file:///var/lib/flowdesigner", "file"},
		{"./data", "file"},
		{"postgres://u:p@localhost/db", "postgres"},
		{"postgresql://u:p@localhost/db", "postgresql"},
		{"redis://localhost:6379/0", "redis"},
		{"mongodb://localhost", "file"},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, parsePersistenceProvider(tt.url))
		})
	}
}

func TestNewPersistence_File(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	p, err := NewPersistence(context.Background(), logger, "file://"+t.TempDir())
	require.NoError(t, err)
	assert.IsType(t, &file.Persistence{}, p)
}

func TestNewEventBus(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	bus, err := NewEventBus("gochannel", logger)
	require.NoError(t, err)
	assert.NoError(t, bus.Close())

	_, err = NewEventBus("carrier-pigeon", logger)
	assert.Error(t, err)
}

func TestNewSchemaRegistry(t *testing.T) {
	t.Parallel()

	registry, err := NewSchemaRegistry(directory.Default())
	require.NoError(t, err)
	assert.True(t, registry.Has(models.NodeTypeApproval))
}
