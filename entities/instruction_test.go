package entities_test

import (
	"testing"

	"fleet-server/entities"

	"github.com/stretchr/testify/require"
)

func TestInstructionEncoding(t *testing.T) {
	encoded, err := entities.Idle().Encode()
	require.NoError(t, err)
	require.JSONEq(t, `"Idle"`, encoded)

	encoded, err = entities.Abort(entities.AbortLowBattery).Encode()
	require.NoError(t, err)
	require.JSONEq(t, `{"Abort":"LowBattery"}`, encoded)

	encoded, err = entities.Task(entities.PatternZigZag).Encode()
	require.NoError(t, err)
	require.JSONEq(t, `{"Task":"ZigZag"}`, encoded)
}

func TestInstructionRoundTrip(t *testing.T) {
	for _, in := range []entities.Instruction{
		entities.Continue(),
		entities.Pause(),
		entities.Idle(),
		entities.Abort(entities.AbortSafety),
		entities.Task(entities.PatternCircular),
	} {
		encoded, err := in.Encode()
		require.NoError(t, err)
		got, err := entities.DecodeInstruction(encoded)
		require.NoError(t, err)
		require.Equal(t, in, got)
	}
}

// An unreadable stored instruction is an error, never a substitute abort.
func TestDecodeRejectsUnknownInstructions(t *testing.T) {
	for _, raw := range []string{
		`"Explode"`,
		`{"Abort":"Meltdown"}`,
		`{"Task":"Spiral"}`,
		`{"Abort":"LowBattery","Task":"ZigZag"}`,
		`{{not json`,
		`42`,
	} {
		_, err := entities.DecodeInstruction(raw)
		require.Error(t, err, "input %s", raw)
	}
}
