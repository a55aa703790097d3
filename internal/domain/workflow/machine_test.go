package workflow

import (
	"context"
	"errors"
	"testing"
)

func TestState_IsTerminal(t *testing.T) {
	tests := []struct {
		state    State
		expected bool
	}{
		{StateInitialized, false},
		{StateForecasting, false},
		{StateOptimizing, false},
		{StateVendorSelection, false},
		{StateAwaitingApproval, false},
		{StateGeneratingPO, false},
		{StateCompleted, true},
		{StateRejected, true},
		{StateFailed, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			if got := tt.state.IsTerminal(); got != tt.expected {
				t.Errorf("State.IsTerminal() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestState_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		state    State
		expected bool
	}{
		{"initialized", StateInitialized, true},
		{"completed", StateCompleted, true},
		{"unknown", State("UNKNOWN"), false},
		{"empty", State(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.IsValid(); got != tt.expected {
				t.Errorf("State.IsValid() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestBuilder_ConfigurePanicsOnInvalidState(t *testing.T) {
	builder := NewBuilder()

	defer func() {
		if r := recover(); r == nil {
			t.Error("Configure() should panic on invalid state")
		}
	}()

	builder.Configure(State("BOGUS"))
}

func TestBuilder_BuildPanicsOnInvalidInitialState(t *testing.T) {
	builder := NewBuilder()

	defer func() {
		if r := recover(); r == nil {
			t.Error("Build() should panic on invalid initial state")
		}
	}()

	builder.Build(State("BOGUS"))
}

func TestStateMachine_Fire(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StateInitialized).
		Permit(TriggerStartForecast, StateForecasting)
	builder.Configure(StateForecasting).
		Permit(TriggerCompleteForecast, StateOptimizing).
		Permit(TriggerFail, StateFailed)

	machine := builder.Build(StateInitialized)

	if err := machine.Fire(context.Background(), TriggerStartForecast); err != nil {
		t.Fatalf("Fire() unexpected error: %v", err)
	}
	if machine.State() != StateForecasting {
		t.Errorf("State() = %v, want %v", machine.State(), StateForecasting)
	}

	// Trigger not permitted in current state
	err := machine.Fire(context.Background(), TriggerApprove)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Fire() error = %v, want ErrInvalidTransition", err)
	}
	if machine.State() != StateForecasting {
		t.Errorf("failed Fire() must not change state, got %v", machine.State())
	}
}

func TestStateMachine_FireOnTerminalState(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StateForecasting).
		Permit(TriggerFail, StateFailed)

	machine := builder.Build(StateForecasting)

	if err := machine.Fire(context.Background(), TriggerFail); err != nil {
		t.Fatalf("Fire() unexpected error: %v", err)
	}

	err := machine.Fire(context.Background(), TriggerStartForecast)
	if !errors.Is(err, ErrTerminalState) {
		t.Errorf("Fire() on terminal state error = %v, want ErrTerminalState", err)
	}
}

func TestStateMachine_Guards(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StateVendorSelection).
		PermitIf(TriggerAutoApprove, StateGeneratingPO, func(ctx context.Context) bool { return false }).
		PermitIf(TriggerRequestApproval, StateAwaitingApproval, func(ctx context.Context) bool { return true })

	machine := builder.Build(StateVendorSelection)

	err := machine.Fire(context.Background(), TriggerAutoApprove)
	if !errors.Is(err, ErrGuardFailed) {
		t.Errorf("Fire() with failing guard error = %v, want ErrGuardFailed", err)
	}

	if err := machine.Fire(context.Background(), TriggerRequestApproval); err != nil {
		t.Fatalf("Fire() with passing guard unexpected error: %v", err)
	}
	if machine.State() != StateAwaitingApproval {
		t.Errorf("State() = %v, want %v", machine.State(), StateAwaitingApproval)
	}
}

func TestStateMachine_CanFire(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StateInitialized).
		Permit(TriggerStartForecast, StateForecasting)

	machine := builder.Build(StateInitialized)

	if !machine.CanFire(TriggerStartForecast) {
		t.Error("CanFire(START_FORECAST) = false, want true")
	}
	if machine.CanFire(TriggerReject) {
		t.Error("CanFire(REJECT) = true, want false")
	}
}

func TestStateMachine_PermittedTriggers(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StateAwaitingApproval).
		Permit(TriggerApprove, StateGeneratingPO).
		Permit(TriggerReject, StateRejected)

	machine := builder.Build(StateAwaitingApproval)

	triggers := machine.PermittedTriggers()
	if len(triggers) != 2 {
		t.Fatalf("PermittedTriggers() returned %d triggers, want 2", len(triggers))
	}

	seen := map[Trigger]bool{}
	for _, tr := range triggers {
		seen[tr] = true
	}
	if !seen[TriggerApprove] || !seen[TriggerReject] {
		t.Errorf("PermittedTriggers() = %v, want APPROVE and REJECT", triggers)
	}
}
