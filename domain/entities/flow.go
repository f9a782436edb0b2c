package entities

import (
	"errors"
	"fmt"
	"strings"
)

// FlowStep is the screen an options flow is waiting on
type FlowStep string

const (
	StepAwaitingTTSOptions   FlowStep = "tts"
	StepAwaitingProxyOptions FlowStep = "proxy"
	StepDone                 FlowStep = "done"
)

// ErrFlowFinished is returned when input arrives for a completed flow
var ErrFlowFinished = errors.New("options flow already finished")

// MediaPlayerDomain is the entity domain a proxy speaker must belong to
const MediaPlayerDomain = "media_player"

// FlowState is the position of an options flow plus what it collected so far
type FlowState struct {
	Step    FlowStep               `json:"step"`
	Options map[string]interface{} `json:"options"`
}

// FieldType tells a client how to render a form field
type FieldType string

const (
	FieldString FieldType = "string"
	FieldBool   FieldType = "bool"
	FieldEntity FieldType = "entity"
	FieldSelect FieldType = "select"
)

// FlowField describes one input of a flow form
type FlowField struct {
	Name      string      `json:"name"`
	Type      FieldType   `json:"type"`
	Required  bool        `json:"required"`
	Default   interface{} `json:"default,omitempty"`
	Suggested interface{} `json:"suggested,omitempty"`
	Choices   []string    `json:"choices,omitempty"`
	Domain    string      `json:"domain,omitempty"`
}

// FlowForm is the form shown for a flow step
type FlowForm struct {
	Step   FlowStep    `json:"step"`
	Fields []FlowField `json:"fields"`
}

// NewOptionsFlow returns the initial state of the options flow
func NewOptionsFlow() FlowState {
	return FlowState{
		Step:    StepAwaitingTTSOptions,
		Options: make(map[string]interface{}),
	}
}

// AdvanceOptionsFlow applies the input of the current step and moves to the
// next one. The returned state carries every option collected so far; the
// input state is not modified.
func AdvanceOptionsFlow(state FlowState, input map[string]interface{}) (FlowState, error) {
	next := FlowState{Step: state.Step, Options: make(map[string]interface{}, len(state.Options)+2)}
	for k, v := range state.Options {
		next.Options[k] = v
	}

	switch state.Step {
	case StepAwaitingTTSOptions:
		if err := applyTTSStep(next.Options, input); err != nil {
			return state, err
		}
		next.Step = StepAwaitingProxyOptions
	case StepAwaitingProxyOptions:
		if err := applyProxyStep(next.Options, input); err != nil {
			return state, err
		}
		next.Step = StepDone
	case StepDone:
		return state, ErrFlowFinished
	default:
		return state, fmt.Errorf("unknown flow step: %s", state.Step)
	}
	return next, nil
}

func applyTTSStep(options, input map[string]interface{}) error {
	voice := DefaultVoice
	if raw, ok := input[ConfTTSVoice]; ok {
		s, isString := raw.(string)
		if !isString || strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s must be a non-empty string", ConfTTSVoice)
		}
		voice = strings.TrimSpace(s)
	}

	unsafe := false
	if raw, ok := input[ConfTTSUnsafe]; ok {
		b, valid := boolValue(raw)
		if !valid {
			return fmt.Errorf("%s must be a boolean", ConfTTSUnsafe)
		}
		unsafe = b
	}

	container := DefaultContainer
	if raw, ok := input[ConfOutputContainer]; ok {
		s := stringValue(raw)
		if !contains(OutputContainers, s) {
			return fmt.Errorf("%s must be one of %s", ConfOutputContainer, strings.Join(OutputContainers, ", "))
		}
		container = s
	}

	options[ConfTTSVoice] = voice
	options[ConfTTSUnsafe] = unsafe
	options[ConfOutputContainer] = container
	return nil
}

func applyProxyStep(options, input map[string]interface{}) error {
	delete(options, ConfProxySpeaker)
	if raw, ok := input[ConfProxySpeaker]; ok && raw != nil {
		speaker := stringValue(raw)
		if speaker != "" {
			if !strings.HasPrefix(speaker, MediaPlayerDomain+".") {
				return fmt.Errorf("%s must be a %s entity", ConfProxySpeaker, MediaPlayerDomain)
			}
			options[ConfProxySpeaker] = speaker
		}
	}

	mediaType := DefaultProxyMediaType
	if raw, ok := input[ConfProxyMediaType]; ok {
		s := stringValue(raw)
		if !contains(ProxyMediaTypes, s) {
			return fmt.Errorf("%s must be one of %s", ConfProxyMediaType, strings.Join(ProxyMediaTypes, ", "))
		}
		mediaType = s
	}
	options[ConfProxyMediaType] = mediaType
	return nil
}

// Form returns the form for the current step with values suggested from the
// options already saved on the entry.
func (s FlowState) Form(saved map[string]interface{}) FlowForm {
	switch s.Step {
	case StepAwaitingTTSOptions:
		return FlowForm{Step: s.Step, Fields: []FlowField{
			{Name: ConfTTSVoice, Type: FieldString, Default: DefaultVoice, Suggested: saved[ConfTTSVoice]},
			{Name: ConfTTSUnsafe, Type: FieldBool, Default: false, Suggested: saved[ConfTTSUnsafe]},
			{Name: ConfOutputContainer, Type: FieldSelect, Default: DefaultContainer, Suggested: saved[ConfOutputContainer], Choices: OutputContainers},
		}}
	case StepAwaitingProxyOptions:
		return FlowForm{Step: s.Step, Fields: []FlowField{
			{Name: ConfProxySpeaker, Type: FieldEntity, Suggested: saved[ConfProxySpeaker], Domain: MediaPlayerDomain},
			{Name: ConfProxyMediaType, Type: FieldSelect, Default: DefaultProxyMediaType, Suggested: saved[ConfProxyMediaType], Choices: ProxyMediaTypes},
		}}
	default:
		return FlowForm{Step: s.Step}
	}
}
