// Package seginfo generates and parses the on-disk names of segment files.
//
// Filename format: a zero-padded, 9-digit file-id followed by the fixed
// ".data" extension — e.g. "000000042.data". File-ids are assigned densely
// starting at 0 and are never reused, so lexicographic sort of filenames
// agrees with numeric order of file-ids, which is what lets the engine
// discover the active segment (the one with the highest id) with a single
// sorted scan.
package seginfo

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/iamNilotpal/ailuruskv/pkg/errors"
	"github.com/iamNilotpal/ailuruskv/pkg/filesys"
)

// Extension is the fixed suffix every segment file carries.
const Extension = ".data"

// width is the zero-padded digit count in a segment filename's numeric stem.
const width = 9

// GenerateName formats the on-disk filename for the segment with the given id.
func GenerateName(id uint32) string {
	return fmt.Sprintf("%0*d%s", width, id, Extension)
}

// ParseFileID extracts the file-id from a segment filename (or a full
// path — only the base name is inspected). A name whose stem is not a
// decimal integer is reported as an error so the caller can classify it as
// DatafileCorrupted.
func ParseFileID(path string) (uint32, error) {
	name := filepath.Base(path)
	stem := strings.TrimSuffix(name, Extension)
	if stem == name {
		return 0, fmt.Errorf("segment filename %q is missing the %s extension", name, Extension)
	}

	id, err := strconv.ParseUint(stem, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("segment filename %q has a non-numeric stem: %w", name, err)
	}

	return uint32(id), nil
}

// ListFileIDs discovers every segment file directly inside dir and returns
// their file-ids in ascending order. Names that don't end in ".data" are
// ignored, per the directory-layout contract ("unrelated files in the
// directory are ignored"). A ".data" file whose stem isn't a decimal
// integer is a corrupted directory layout, not a directory-read failure —
// it is reported as DatafileCorrupted, distinct from whatever
// ErrorCodeReadDbDir the caller wraps a genuine filesys.ReadDir failure in.
func ListFileIDs(dir string) ([]uint32, error) {
	pattern := filepath.Join(dir, "*"+Extension)
	matches, err := filesys.ReadDir(pattern)
	if err != nil {
		return nil, err
	}

	ids := make([]uint32, 0, len(matches))
	for _, m := range matches {
		id, err := ParseFileID(m)
		if err != nil {
			return nil, errors.NewDatafileCorruptedError(err, 0, 0, err.Error())
		}
		ids = append(ids, id)
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}
