package schema

import "github.com/contractpulse/flowdesigner/pkg/models"

// Decision condition types.
const (
	ConditionAmountGreater = "amount_greater"
	ConditionAmountLess    = "amount_less"
	ConditionContractType  = "contract_type"
)

var timeoutOptions = []Option{
	{Value: "4", Label: "4 hours"},
	{Value: "8", Label: "8 hours"},
	{Value: "12", Label: "12 hours"},
	{Value: "24", Label: "24 hours"},
	{Value: "48", Label: "48 hours"},
	{Value: "72", Label: "72 hours"},
	{Value: "168", Label: "1 week"},
}

func builtinFields(contractTypes []Option) map[models.NodeType][]Field {
	return map[models.NodeType][]Field{
		models.NodeTypeStart: {},
		models.NodeTypeEnd: {
			{Key: "outcome", Label: "Outcome", Widget: WidgetSelect, Kind: KindString, Default: "completed", Options: []Option{
				{Value: "completed", Label: "Completed"},
				{Value: "approved", Label: "Approved"},
				{Value: "rejected", Label: "Rejected"},
			}},
		},
		models.NodeTypeApproval: {
			{Key: "approver", Label: "Approver", Widget: WidgetUser, Kind: KindString, Default: ""},
			{Key: "fallbackApprover", Label: "Fallback Approver", Widget: WidgetUser, Kind: KindString, Default: ""},
			{Key: "timeout", Label: "Timeout", Widget: WidgetSelect, Kind: KindString, Default: "24", Options: timeoutOptions},
			{Key: "allowDelegation", Label: "Allow delegation", Widget: WidgetToggle, Kind: KindBoolean, Default: false},
			{Key: "requireComments", Label: "Require comments", Widget: WidgetToggle, Kind: KindBoolean, Default: false},
		},
		models.NodeTypeMultiApproval: {
			{Key: "approvers", Label: "Approvers", Widget: WidgetUsers, Kind: KindStringList, Default: []string{}},
			{Key: "approvalMode", Label: "Approval Mode", Widget: WidgetSelect, Kind: KindString, Default: "all", Options: []Option{
				{Value: "all", Label: "All must approve"},
				{Value: "any", Label: "Any one approves"},
				{Value: "majority", Label: "Majority approves"},
			}},
			{Key: "timeout", Label: "Timeout", Widget: WidgetSelect, Kind: KindString, Default: "48", Options: timeoutOptions},
		},
		models.NodeTypeDecision: {
			{Key: "conditionType", Label: "Condition", Widget: WidgetSelect, Kind: KindString, Default: ConditionAmountGreater, Options: []Option{
				{Value: ConditionAmountGreater, Label: "Contract value greater than"},
				{Value: ConditionAmountLess, Label: "Contract value less than"},
				{Value: ConditionContractType, Label: "Contract type is"},
			}},
			{
				Key: "threshold", Label: "Threshold", Widget: WidgetNumber, Kind: KindNumber, Default: float64(50000), Min: bound(0),
				VisibleWhen: &Condition{Field: "conditionType", OneOf: []string{ConditionAmountGreater, ConditionAmountLess}},
			},
			{
				Key: "contractType", Label: "Contract Type", Widget: WidgetSelect, Kind: KindString, Default: "", Options: contractTypes,
				VisibleWhen: &Condition{Field: "conditionType", OneOf: []string{ConditionContractType}},
			},
			{Key: "trueLabel", Label: "True branch label", Widget: WidgetText, Kind: KindString, Default: "Yes"},
			{Key: "falseLabel", Label: "False branch label", Widget: WidgetText, Kind: KindString, Default: "No"},
		},
		models.NodeTypeNotification: {
			{Key: "recipients", Label: "Recipients", Widget: WidgetText, Kind: KindString, Default: "requester"},
			{Key: "template", Label: "Template", Widget: WidgetSelect, Kind: KindString, Default: "approval_request", Options: []Option{
				{Value: "approval_request", Label: "Approval Request"},
				{Value: "approval_complete", Label: "Approval Complete"},
				{Value: "rejection", Label: "Rejection Notice"},
				{Value: "reminder", Label: "Reminder"},
				{Value: "escalation", Label: "Escalation Notice"},
			}},
			{Key: "channel", Label: "Channel", Widget: WidgetSelect, Kind: KindString, Default: "email", Options: []Option{
				{Value: "email", Label: "Email"},
				{Value: "slack", Label: "Slack"},
				{Value: "in_app", Label: "In-app"},
			}},
			{Key: "message", Label: "Custom message", Widget: WidgetTextarea, Kind: KindString, Default: ""},
		},
		models.NodeTypeParallel: {
			{Key: "branches", Label: "Branches", Widget: WidgetNumber, Kind: KindInteger, Default: 2, Min: bound(2), Max: bound(5)},
		},
		models.NodeTypeMerge: {
			{Key: "waitFor", Label: "Wait for", Widget: WidgetSelect, Kind: KindString, Default: "all", Options: []Option{
				{Value: "all", Label: "All branches"},
				{Value: "any", Label: "First branch"},
			}},
		},
		models.NodeTypeTimer: {
			{Key: "duration", Label: "Duration", Widget: WidgetNumber, Kind: KindInteger, Default: 24, Min: bound(1)},
			{Key: "unit", Label: "Unit", Widget: WidgetSelect, Kind: KindString, Default: "hours", Options: []Option{
				{Value: "hours", Label: "Hours"},
				{Value: "days", Label: "Days"},
			}},
		},
		models.NodeTypeEscalation: {
			{Key: "escalateTo", Label: "Escalate to", Widget: WidgetUser, Kind: KindString, Default: ""},
			{Key: "afterHours", Label: "After (hours)", Widget: WidgetNumber, Kind: KindInteger, Default: 48, Min: bound(1)},
			{Key: "notifyOriginal", Label: "Notify original approver", Widget: WidgetToggle, Kind: KindBoolean, Default: true},
		},
	}
}
