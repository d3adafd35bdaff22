// Package codec encodes workspace snapshots for the storage backends.
//
// Every backend stores the same bytes: CBOR with Core Deterministic
// Encoding, so the same workspace always produces the same snapshot. The
// models carry json tags only; the CBOR library falls back to them.
package codec

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/lalith-99/huddle/internal/models"
)

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error

	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("codec: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic("codec: CBOR decoder initialization failed: " + err.Error())
	}
}

// Marshal encodes v to CBOR.
func Marshal(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

// Unmarshal decodes CBOR data into v.
func Unmarshal(data []byte, v any) error {
	return decMode.Unmarshal(data, v)
}

// EncodeWorkspace encodes a snapshot.
func EncodeWorkspace(ws *models.Workspace) ([]byte, error) {
	data, err := Marshal(ws)
	if err != nil {
		return nil, fmt.Errorf("encode workspace: %w", err)
	}
	return data, nil
}

// DecodeWorkspace decodes a snapshot. Empty data decodes to an empty
// workspace, which is what a fresh backend holds.
func DecodeWorkspace(data []byte) (*models.Workspace, error) {
	ws := &models.Workspace{}
	if len(data) == 0 {
		return ws, nil
	}
	if err := Unmarshal(data, ws); err != nil {
		return nil, fmt.Errorf("decode workspace: %w", err)
	}
	return ws, nil
}
