package entity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectionState_JSON(t *testing.T) {
	t.Parallel()

	for _, state := range []SelectionState{SelectionIdle, SelectionArmed, SelectionDrafting} {
		t.Run(state.String(), func(t *testing.T) {
			t.Parallel()

			data, err := json.Marshal(map[string]SelectionState{"state": state})
			require.NoError(t, err)
			assert.JSONEq(t, `{"state":"`+state.String()+`"}`, string(data))

			var decoded map[string]SelectionState
			require.NoError(t, json.Unmarshal(data, &decoded))
			assert.Equal(t, state, decoded["state"])
		})
	}
}

func TestSelectionState_UnmarshalUnknown(t *testing.T) {
	t.Parallel()

	var state SelectionState
	assert.Error(t, state.UnmarshalText([]byte("placing")))
	assert.Error(t, json.Unmarshal([]byte(`"Armed"`), &state))
	assert.Equal(t, SelectionIdle, state)
}
