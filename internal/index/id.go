package index

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const randomSuffixLen = 9

// IDGenerator returns a candidate document id for an insert happening at now.
type IDGenerator func(now time.Time) string

// DefaultIDGenerator returns ids of the form doc_<unix millis>_<9 base36 chars>. The
// random part comes from a v4 uuid so rapid inserts within one millisecond differ.
func DefaultIDGenerator(now time.Time) string {
	u := uuid.New()
	n := binary.BigEndian.Uint64(u[:8])
	suffix := strconv.FormatUint(n, 36)
	if len(suffix) < randomSuffixLen {
		suffix = strings.Repeat("0", randomSuffixLen-len(suffix)) + suffix
	}
	return fmt.Sprintf("doc_%d_%s", now.UnixMilli(), suffix[len(suffix)-randomSuffixLen:])
}
