package models

import "testing"

func TestStepByNumber(t *testing.T) {
	flow := &AutoReplyFlow{
		FlowSteps: []FlowStep{
			{StepNumber: 1, ReplyContent: "one"},
			{StepNumber: 5, ReplyContent: "five"},
		},
	}

	if step := flow.StepByNumber(5); step == nil || step.ReplyContent != "five" {
		t.Errorf("StepByNumber(5) = %+v, want step five", step)
	}
	if step := flow.StepByNumber(2); step != nil {
		t.Errorf("StepByNumber(2) = %+v, want nil for missing number", step)
	}
}

func TestApplyDefaults(t *testing.T) {
	flow := &AutoReplyFlow{
		FlowSteps: []FlowStep{
			{StepNumber: 1, StepType: StepTypeImmediate, ReplyContent: "hi"},
			{StepNumber: 2, StepType: StepTypeConditional, Condition: ConditionContainsKeyword, ReplyContent: "bye"},
		},
	}
	flow.ApplyDefaults()

	if flow.Settings.MaxRepliesPerUser != 3 {
		t.Errorf("MaxRepliesPerUser = %d, want 3", flow.Settings.MaxRepliesPerUser)
	}
	if flow.Settings.CooldownPeriod != 24 {
		t.Errorf("CooldownPeriod = %d, want 24", flow.Settings.CooldownPeriod)
	}
	if flow.TriggerConditions.Type != TriggerTypeKeyword {
		t.Errorf("TriggerConditions.Type = %q, want keyword", flow.TriggerConditions.Type)
	}
	if flow.FlowSteps[0].Condition != ConditionAlways {
		t.Errorf("Step 1 condition = %q, want always", flow.FlowSteps[0].Condition)
	}
	// Explicit conditions survive
	if flow.FlowSteps[1].Condition != ConditionContainsKeyword {
		t.Errorf("Step 2 condition = %q, want contains_keyword preserved", flow.FlowSteps[1].Condition)
	}

	// Operator-chosen settings survive repeated application
	flow.Settings.MaxRepliesPerUser = 10
	flow.ApplyDefaults()
	if flow.Settings.MaxRepliesPerUser != 10 {
		t.Errorf("MaxRepliesPerUser = %d after reapply, want 10", flow.Settings.MaxRepliesPerUser)
	}
}

func TestIsValidAccountPlatform(t *testing.T) {
	for _, platform := range AccountPlatforms {
		if !IsValidAccountPlatform(platform) {
			t.Errorf("IsValidAccountPlatform(%q) = false, want true", platform)
		}
	}
	// "All" is a flow wildcard, not a connectable account platform
	if IsValidAccountPlatform(PlatformAll) {
		t.Error("IsValidAccountPlatform(All) = true, want false")
	}
	if IsValidAccountPlatform("MySpace") {
		t.Error("IsValidAccountPlatform(MySpace) = true, want false")
	}
}
