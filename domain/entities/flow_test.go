package entities

import (
	"errors"
	"testing"
)

func TestOptionsFlowWalkthrough(t *testing.T) {
	state := NewOptionsFlow()
	if state.Step != StepAwaitingTTSOptions {
		t.Fatalf("Expected flow to start at tts step, got %s", state.Step)
	}

	state, err := AdvanceOptionsFlow(state, map[string]interface{}{
		ConfTTSVoice:  "alena",
		ConfTTSUnsafe: true,
	})
	if err != nil {
		t.Fatalf("tts step failed: %v", err)
	}
	if state.Step != StepAwaitingProxyOptions {
		t.Fatalf("Expected proxy step, got %s", state.Step)
	}
	if state.Options[ConfTTSVoice] != "alena" || state.Options[ConfTTSUnsafe] != true {
		t.Errorf("Unexpected partial options: %v", state.Options)
	}
	if state.Options[ConfOutputContainer] != DefaultContainer {
		t.Errorf("Expected default container, got %v", state.Options[ConfOutputContainer])
	}

	state, err = AdvanceOptionsFlow(state, map[string]interface{}{
		ConfProxySpeaker:   "media_player.yandex_station",
		ConfProxyMediaType: "text",
	})
	if err != nil {
		t.Fatalf("proxy step failed: %v", err)
	}
	if state.Step != StepDone {
		t.Fatalf("Expected done, got %s", state.Step)
	}

	opts := ResolveOptions(state.Options)
	if opts.ProxySpeaker != "media_player.yandex_station" || opts.ProxyMediaType != "text" {
		t.Errorf("Unexpected final options: %+v", opts)
	}

	if _, err := AdvanceOptionsFlow(state, nil); !errors.Is(err, ErrFlowFinished) {
		t.Errorf("Expected ErrFlowFinished, got %v", err)
	}
}

func TestOptionsFlowDefaults(t *testing.T) {
	state, err := AdvanceOptionsFlow(NewOptionsFlow(), map[string]interface{}{})
	if err != nil {
		t.Fatalf("tts step failed: %v", err)
	}
	state, err = AdvanceOptionsFlow(state, map[string]interface{}{})
	if err != nil {
		t.Fatalf("proxy step failed: %v", err)
	}

	opts := ResolveOptions(state.Options)
	if opts != DefaultOptions() {
		t.Errorf("Expected default options, got %+v", opts)
	}
}

func TestOptionsFlowValidation(t *testing.T) {
	tests := []struct {
		name  string
		step  FlowStep
		input map[string]interface{}
	}{
		{"empty voice", StepAwaitingTTSOptions, map[string]interface{}{ConfTTSVoice: " "}},
		{"non-bool unsafe", StepAwaitingTTSOptions, map[string]interface{}{ConfTTSUnsafe: 3}},
		{"unknown container", StepAwaitingTTSOptions, map[string]interface{}{ConfOutputContainer: "flac"}},
		{"speaker outside media_player", StepAwaitingProxyOptions, map[string]interface{}{ConfProxySpeaker: "light.kitchen"}},
		{"unknown media type", StepAwaitingProxyOptions, map[string]interface{}{ConfProxyMediaType: "music"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := FlowState{Step: tt.step, Options: map[string]interface{}{}}
			next, err := AdvanceOptionsFlow(state, tt.input)
			if err == nil {
				t.Fatal("Expected validation error")
			}
			if next.Step != tt.step {
				t.Errorf("Expected to stay at %s, got %s", tt.step, next.Step)
			}
		})
	}
}

func TestOptionsFlowDoesNotMutateInput(t *testing.T) {
	state := FlowState{Step: StepAwaitingProxyOptions, Options: map[string]interface{}{ConfProxySpeaker: "media_player.old"}}

	next, err := AdvanceOptionsFlow(state, map[string]interface{}{})
	if err != nil {
		t.Fatalf("proxy step failed: %v", err)
	}

	if _, ok := next.Options[ConfProxySpeaker]; ok {
		t.Errorf("Expected cleared speaker, got %v", next.Options)
	}
	if state.Options[ConfProxySpeaker] != "media_player.old" {
		t.Errorf("Input state was modified: %v", state.Options)
	}
}

func TestFlowFormSuggestsSavedValues(t *testing.T) {
	saved := map[string]interface{}{ConfTTSVoice: "jane"}
	form := NewOptionsFlow().Form(saved)

	if form.Step != StepAwaitingTTSOptions {
		t.Fatalf("Expected tts form, got %s", form.Step)
	}
	if form.Fields[0].Name != ConfTTSVoice || form.Fields[0].Suggested != "jane" {
		t.Errorf("Expected voice field suggesting jane, got %+v", form.Fields[0])
	}

	proxy := FlowState{Step: StepAwaitingProxyOptions}.Form(nil)
	if len(proxy.Fields) != 2 || proxy.Fields[0].Domain != MediaPlayerDomain {
		t.Errorf("Unexpected proxy form: %+v", proxy)
	}
}
