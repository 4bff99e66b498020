package entities

import (
	"encoding/json"
	"fmt"
)

type InstructionKind string

const (
	KindContinue InstructionKind = "Continue"
	KindPause    InstructionKind = "Pause"
	KindAbort    InstructionKind = "Abort"
	KindTask     InstructionKind = "Task"
	KindIdle     InstructionKind = "Idle"
)

type AbortReason string

const (
	AbortLowBattery AbortReason = "LowBattery"
	AbortSafety     AbortReason = "Safety"
	AbortObstacle   AbortReason = "Obstacle"
)

type CleaningPattern string

const (
	PatternZigZag   CleaningPattern = "ZigZag"
	PatternCircular CleaningPattern = "Circular"
)

// Instruction is the closed set of actions a robot can be told to perform.
// Reason is set only for Abort, Pattern only for Task.
type Instruction struct {
	Kind    InstructionKind
	Reason  AbortReason
	Pattern CleaningPattern
}

func Continue() Instruction { return Instruction{Kind: KindContinue} }
func Pause() Instruction    { return Instruction{Kind: KindPause} }
func Idle() Instruction     { return Instruction{Kind: KindIdle} }

func Abort(reason AbortReason) Instruction {
	return Instruction{Kind: KindAbort, Reason: reason}
}

func Task(pattern CleaningPattern) Instruction {
	return Instruction{Kind: KindTask, Pattern: pattern}
}

// MarshalJSON writes the tagged wire form: a bare tag for the payloadless
// variants, {"Abort": reason} / {"Task": pattern} for the others.
func (i Instruction) MarshalJSON() ([]byte, error) {
	switch i.Kind {
	case KindContinue, KindPause, KindIdle:
		return json.Marshal(string(i.Kind))
	case KindAbort:
		if !validAbortReason(i.Reason) {
			return nil, fmt.Errorf("unknown abort reason %q", i.Reason)
		}
		return json.Marshal(map[string]string{"Abort": string(i.Reason)})
	case KindTask:
		if !validCleaningPattern(i.Pattern) {
			return nil, fmt.Errorf("unknown cleaning pattern %q", i.Pattern)
		}
		return json.Marshal(map[string]string{"Task": string(i.Pattern)})
	default:
		return nil, fmt.Errorf("unknown instruction %q", i.Kind)
	}
}

func (i *Instruction) UnmarshalJSON(data []byte) error {
	var tag string
	if err := json.Unmarshal(data, &tag); err == nil {
		switch InstructionKind(tag) {
		case KindContinue, KindPause, KindIdle:
			*i = Instruction{Kind: InstructionKind(tag)}
			return nil
		default:
			return fmt.Errorf("unknown instruction %q", tag)
		}
	}

	var tagged map[string]string
	if err := json.Unmarshal(data, &tagged); err != nil {
		return fmt.Errorf("malformed instruction: %s", string(data))
	}
	if len(tagged) != 1 {
		return fmt.Errorf("malformed instruction: %s", string(data))
	}
	for tag, payload := range tagged {
		switch InstructionKind(tag) {
		case KindAbort:
			if !validAbortReason(AbortReason(payload)) {
				return fmt.Errorf("unknown abort reason %q", payload)
			}
			*i = Abort(AbortReason(payload))
		case KindTask:
			if !validCleaningPattern(CleaningPattern(payload)) {
				return fmt.Errorf("unknown cleaning pattern %q", payload)
			}
			*i = Task(CleaningPattern(payload))
		default:
			return fmt.Errorf("unknown instruction %q", tag)
		}
	}
	return nil
}

// Encode produces the text form stored in the commands table. It round-trips
// exactly through DecodeInstruction.
func (i Instruction) Encode() (string, error) {
	b, err := json.Marshal(i)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func DecodeInstruction(s string) (Instruction, error) {
	var i Instruction
	if err := json.Unmarshal([]byte(s), &i); err != nil {
		return Instruction{}, err
	}
	return i, nil
}

func (i Instruction) String() string {
	switch i.Kind {
	case KindAbort:
		return fmt.Sprintf("Abort(%s)", i.Reason)
	case KindTask:
		return fmt.Sprintf("Task(%s)", i.Pattern)
	default:
		return string(i.Kind)
	}
}

func validAbortReason(r AbortReason) bool {
	return r == AbortLowBattery || r == AbortSafety || r == AbortObstacle
}

func validCleaningPattern(p CleaningPattern) bool {
	return p == PatternZigZag || p == PatternCircular
}
