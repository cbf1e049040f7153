package models

import (
	"encoding/json"
	"fmt"
)

// Property keys shared by every node type.
const (
	PropertyName        = "name" // Stored as the node label
	PropertyDescription = "description"
)

// NodeProperties is the typed view of a node's property bag.
type NodeProperties interface {
	NodeType() NodeType
}

// StartProps configures a start node.
type StartProps struct {
	Description string `json:"description"`
}

// EndProps configures an end node.
type EndProps struct {
	Description string `json:"description"`
	Outcome     string `json:"outcome"     validate:"omitempty,oneof=approved rejected completed"`
}

// ApprovalProps configures a single-approver step.
type ApprovalProps struct {
	Description      string `json:"description"`
	Approver         string `json:"approver"         validate:"required"`
	FallbackApprover string `json:"fallbackApprover"`
	Timeout          string `json:"timeout"          validate:"required"`
	AllowDelegation  bool   `json:"allowDelegation"`
	RequireComments  bool   `json:"requireComments"`
}

// MultiApprovalProps configures a step approved by several users.
type MultiApprovalProps struct {
	Description  string   `json:"description"`
	Approvers    []string `json:"approvers"    validate:"required,min=2"`
	ApprovalMode string   `json:"approvalMode" validate:"required,oneof=all any majority"`
	Timeout      string   `json:"timeout"      validate:"required"`
}

// DecisionProps configures a two-way branch.
type DecisionProps struct {
	Description   string  `json:"description"`
	ConditionType string  `json:"conditionType" validate:"required,oneof=amount_greater amount_less contract_type"`
	Threshold     float64 `json:"threshold"     validate:"required_unless=ConditionType contract_type,gte=0"`
	ContractType  string  `json:"contractType"  validate:"required_if=ConditionType contract_type"`
	TrueLabel     string  `json:"trueLabel"     validate:"required"`
	FalseLabel    string  `json:"falseLabel"    validate:"required,nefield=TrueLabel"`
}

// NotificationProps configures a notification step.
type NotificationProps struct {
	Description string `json:"description"`
	Recipients  string `json:"recipients"  validate:"required"`
	Template    string `json:"template"    validate:"required"`
	Channel     string `json:"channel"     validate:"required"`
	Message     string `json:"message"`
}

// ParallelProps configures a fan-out step.
type ParallelProps struct {
	Description string `json:"description"`
	Branches    int    `json:"branches"    validate:"min=2,max=5"`
}

// MergeProps configures a fan-in step.
type MergeProps struct {
	Description string `json:"description"`
	WaitFor     string `json:"waitFor"     validate:"required,oneof=all any"`
}

// TimerProps configures a delay step. It is declarative only.
type TimerProps struct {
	Description string `json:"description"`
	Duration    int    `json:"duration"    validate:"min=1"`
	Unit        string `json:"unit"        validate:"required,oneof=hours days"`
}

// EscalationProps configures an escalation step.
type EscalationProps struct {
	Description    string `json:"description"`
	EscalateTo     string `json:"escalateTo"     validate:"required"`
	AfterHours     int    `json:"afterHours"     validate:"min=1"`
	NotifyOriginal bool   `json:"notifyOriginal"`
}

func (StartProps) NodeType() NodeType         { return NodeTypeStart }
func (EndProps) NodeType() NodeType           { return NodeTypeEnd }
func (ApprovalProps) NodeType() NodeType      { return NodeTypeApproval }
func (MultiApprovalProps) NodeType() NodeType { return NodeTypeMultiApproval }
func (DecisionProps) NodeType() NodeType      { return NodeTypeDecision }
func (NotificationProps) NodeType() NodeType  { return NodeTypeNotification }
func (ParallelProps) NodeType() NodeType      { return NodeTypeParallel }
func (MergeProps) NodeType() NodeType         { return NodeTypeMerge }
func (TimerProps) NodeType() NodeType         { return NodeTypeTimer }
func (EscalationProps) NodeType() NodeType    { return NodeTypeEscalation }

// DecodeProperties converts a property bag into the typed variant of the node type.
func DecodeProperties(nodeType NodeType, props map[string]any) (NodeProperties, error) {
	var target NodeProperties

	switch nodeType {
	case NodeTypeStart:
		target = &StartProps{}
	case NodeTypeEnd:
		target = &EndProps{}
	case NodeTypeApproval:
		target = &ApprovalProps{}
	case NodeTypeMultiApproval:
		target = &MultiApprovalProps{}
	case NodeTypeDecision:
		target = &DecisionProps{}
	case NodeTypeNotification:
		target = &NotificationProps{}
	case NodeTypeParallel:
		target = &ParallelProps{}
	case NodeTypeMerge:
		target = &MergeProps{}
	case NodeTypeTimer:
		target = &TimerProps{}
	case NodeTypeEscalation:
		target = &EscalationProps{}
	default:
		return nil, fmt.Errorf("unknown node type %q", nodeType)
	}

	data, err := json.Marshal(props)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s properties: %w", nodeType, err)
	}

	err = json.Unmarshal(data, target)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s properties: %w", nodeType, err)
	}

	return target, nil
}
