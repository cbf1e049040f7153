package schema_test

import (
	"testing"

	"github.com/contractpulse/flowdesigner/pkg/directory"
	"github.com/contractpulse/flowdesigner/pkg/models"
	"github.com/contractpulse/flowdesigner/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fieldKeys(fields []schema.Field) []string {
	keys := make([]string, len(fields))
	for i, f := range fields {
		keys[i] = f.Key
	}

	return keys
}

func TestRegistry_FieldsFor_EveryTypeHasUniversalFields(t *testing.T) {
	t.Parallel()

	registry := schema.MustNewRegistry()

	for _, nodeType := range models.NodeTypes() {
		t.Run(string(nodeType), func(t *testing.T) {
			t.Parallel()

			fields := registry.FieldsFor(nodeType)
			require.NotEmpty(t, fields)

			keys := fieldKeys(fields)
			assert.Equal(t, "name", keys[0])
			assert.Equal(t, "description", keys[1])
			assert.True(t, registry.Has(nodeType))
		})
	}
}

func TestRegistry_FieldsFor_UnknownType(t *testing.T) {
	t.Parallel()

	registry := schema.MustNewRegistry()

	assert.False(t, registry.Has("webhook"))
	assert.Equal(t, []string{"name", "description"}, fieldKeys(registry.FieldsFor("webhook")))
}

func TestRegistry_FieldsFor_Decision(t *testing.T) {
	t.Parallel()

	registry := schema.MustNewRegistry()

	assert.Equal(t,
		[]string{"name", "description", "conditionType", "threshold", "contractType", "trueLabel", "falseLabel"},
		fieldKeys(registry.FieldsFor(models.NodeTypeDecision)),
	)
}

func TestRegistry_VisibleFields_Decision(t *testing.T) {
	t.Parallel()

	registry := schema.MustNewRegistry()

	tests := []struct {
		name     string
		props    map[string]any
		expected []string
	}{
		{
			name:     "defaults to amount condition",
			props:    nil,
			expected: []string{"name", "description", "conditionType", "threshold", "trueLabel", "falseLabel"},
		},
		{
			name:     "amount greater shows threshold",
			props:    map[string]any{"conditionType": "amount_greater"},
			expected: []string{"name", "description", "conditionType", "threshold", "trueLabel", "falseLabel"},
		},
		{
			name:     "amount less shows threshold",
			props:    map[string]any{"conditionType": "amount_less"},
			expected: []string{"name", "description", "conditionType", "threshold", "trueLabel", "falseLabel"},
		},
		{
			name:     "contract type shows contract type",
			props:    map[string]any{"conditionType": "contract_type"},
			expected: []string{"name", "description", "conditionType", "contractType", "trueLabel", "falseLabel"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, fieldKeys(registry.VisibleFields(models.NodeTypeDecision, tt.props)))
		})
	}
}

func TestRegistry_Defaults_Approval(t *testing.T) {
	t.Parallel()

	registry := schema.MustNewRegistry()

	defaults := registry.Defaults(models.NodeTypeApproval)

	assert.Equal(t, "", defaults["approver"])
	assert.Equal(t, "24", defaults["timeout"])
	assert.Equal(t, false, defaults["allowDelegation"])
	assert.NotContains(t, defaults, "name")
}

func TestRegistry_Defaults_Decision(t *testing.T) {
	t.Parallel()

	registry := schema.MustNewRegistry()

	defaults := registry.Defaults(models.NodeTypeDecision)

	assert.Equal(t, "Yes", defaults["trueLabel"])
	assert.Equal(t, "No", defaults["falseLabel"])
	assert.Equal(t, "amount_greater", defaults["conditionType"])
}

func TestRegistry_Validate(t *testing.T) {
	t.Parallel()

	registry := schema.MustNewRegistry()

	tests := []struct {
		name     string
		nodeType models.NodeType
		props    map[string]any
		wantErr  string
	}{
		{
			name:     "valid approval edit",
			nodeType: models.NodeTypeApproval,
			props:    map[string]any{"approver": "john.smith", "timeout": "48", "allowDelegation": true},
		},
		{
			name:     "unknown key",
			nodeType: models.NodeTypeApproval,
			props:    map[string]any{"threshold": 10},
			wantErr:  "threshold",
		},
		{
			name:     "value outside enum",
			nodeType: models.NodeTypeApproval,
			props:    map[string]any{"timeout": "5"},
			wantErr:  "timeout",
		},
		{
			name:     "wrong value type",
			nodeType: models.NodeTypeApproval,
			props:    map[string]any{"allowDelegation": "yes"},
			wantErr:  "allowDelegation",
		},
		{
			name:     "number below minimum",
			nodeType: models.NodeTypeDecision,
			props:    map[string]any{"threshold": -1},
			wantErr:  "threshold",
		},
		{
			name:     "contract type from taxonomy",
			nodeType: models.NodeTypeDecision,
			props:    map[string]any{"conditionType": "contract_type", "contractType": "nda"},
		},
		{
			name:     "contract type outside taxonomy",
			nodeType: models.NodeTypeDecision,
			props:    map[string]any{"contractType": "loan"},
			wantErr:  "contractType",
		},
		{
			name:     "parallel branches above maximum",
			nodeType: models.NodeTypeParallel,
			props:    map[string]any{"branches": 6},
			wantErr:  "branches",
		},
		{
			name:     "integer field rejects fraction",
			nodeType: models.NodeTypeTimer,
			props:    map[string]any{"duration": 1.5},
			wantErr:  "duration",
		},
		{
			name:     "multi approval approvers list",
			nodeType: models.NodeTypeMultiApproval,
			props:    map[string]any{"approvers": []string{"john.smith", "emily.chen"}},
		},
		{
			name:     "unknown type accepts only universal keys",
			nodeType: "webhook",
			props:    map[string]any{"description": "legacy"},
		},
		{
			name:     "unknown type rejects typed keys",
			nodeType: "webhook",
			props:    map[string]any{"approver": "john.smith"},
			wantErr:  "approver",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := registry.Validate(tt.nodeType, tt.props)

			if tt.wantErr == "" {
				require.NoError(t, err)

				return
			}

			require.Error(t, err)
			require.ErrorIs(t, err, schema.ErrInvalidProperty)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRegistry_JSONSchema(t *testing.T) {
	t.Parallel()

	registry := schema.MustNewRegistry(schema.WithContractTypes([]directory.ContractType{
		{ID: "nda", Label: "NDA"},
	}))

	doc := registry.JSONSchema(models.NodeTypeDecision)

	require.Contains(t, doc.Properties, "contractType")
	assert.Equal(t, []any{"", "nda"}, doc.Properties["contractType"].Enum)
	assert.Equal(t, "number", doc.Properties["threshold"].Type)
	assert.False(t, doc.AdditionalProperties)

	assert.Equal(t, "generic", registry.JSONSchema("webhook").Title)
}
