package service

import (
	"path"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

const (
	proofDir        = "task_proofs"
	maxFilenameLen  = 100
	defaultFilename = "proof"
)

// ProofPath returns the storage path of an uploaded proof file:
// task_proofs/<taskID>/<uuid>-<sanitized name>
func ProofPath(taskID int64, filename string) string {
	name := uuid.NewString() + "-" + SanitizeFilename(filename)
	return path.Join(proofDir, strconv.FormatInt(taskID, 10), name)
}

// SanitizeFilename strips directories and keeps a conservative character set
func SanitizeFilename(filename string) string {
	if i := strings.LastIndexAny(filename, `/\`); i >= 0 {
		filename = filename[i+1:]
	}

	var b strings.Builder
	for _, r := range filename {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteByte('_')
		}
	}

	name := strings.TrimLeft(b.String(), ".")
	if len(name) > maxFilenameLen {
		name = name[len(name)-maxFilenameLen:]
	}
	if name == "" {
		return defaultFilename
	}
	return name
}
