// Copyright 2024 The Dokuly Datatable Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package tabledef

import (
	"fmt"

	"github.com/dchest/siphash"
	"github.com/spf13/cast"
	"golang.org/x/crypto/sha3"
)

// Pseudonym returns a 64 bit SipHash of v in hex, keyed by the SHA3-224 digest of salt.
// Equal values map to equal tokens, so masked columns still sort and group.
func Pseudonym(salt, v string) string {
	key := sha3.Sum224([]byte(salt))
	h := siphash.New(key[:16])
	_, _ = h.Write([]byte(v))
	return fmt.Sprintf("%016x", h.Sum64())
}

func pseudonym(salt string, v any) string {
	if v == nil {
		return ""
	}
	return Pseudonym(salt, cast.ToString(v))
}
