// Copyright (C) 2025 CardinalHQ, Inc
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, version 3.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

package report

import (
	"fmt"
	"io"
	"sync"

	"github.com/fxamacker/cbor/v2"

	"github.com/cardinalhq/lakeagg/internal/engine"
)

var (
	cborOnce    sync.Once
	cborEncMode cbor.EncMode
	cborDecMode cbor.DecMode
	cborErr     error
)

// cborModes builds the encoder and decoder modes once. Floats keep their
// float32 width and invalid UTF-8 in keys is passed through.
func cborModes() (cbor.EncMode, cbor.DecMode, error) {
	cborOnce.Do(func() {
		cborEncMode, cborErr = cbor.EncOptions{
			Sort:          cbor.SortNone,
			ShortestFloat: cbor.ShortestFloatNone,
			String:        cbor.StringToTextString,
		}.EncMode()
		if cborErr != nil {
			cborErr = fmt.Errorf("failed to create CBOR encoder: %w", cborErr)
			return
		}
		cborDecMode, cborErr = cbor.DecOptions{
			UTF8: cbor.UTF8DecodeInvalid,
		}.DecMode()
		if cborErr != nil {
			cborErr = fmt.Errorf("failed to create CBOR decoder: %w", cborErr)
		}
	})
	return cborEncMode, cborDecMode, cborErr
}

// writeCBOR emits a single CBOR array of Records.
func writeCBOR(w io.Writer, rows []engine.Row) error {
	enc, _, err := cborModes()
	if err != nil {
		return err
	}
	if err := enc.NewEncoder(w).Encode(Records(rows)); err != nil {
		return fmt.Errorf("failed to encode cbor report: %w", err)
	}
	return nil
}

// DecodeCBOR reads a report written in the cbor format.
func DecodeCBOR(r io.Reader) ([]Record, error) {
	_, dec, err := cborModes()
	if err != nil {
		return nil, err
	}
	var out []Record
	if err := dec.NewDecoder(r).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode cbor report: %w", err)
	}
	return out, nil
}
