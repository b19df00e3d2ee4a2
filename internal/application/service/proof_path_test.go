package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProofPath(t *testing.T) {
	p := ProofPath(42, "meter reading.png")

	assert.True(t, strings.HasPrefix(p, "task_proofs/42/"), p)
	assert.True(t, strings.HasSuffix(p, "-meter_reading.png"), p)
	assert.NotEqual(t, p, ProofPath(42, "meter reading.png"), "names are unique")
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"photo.jpg", "photo.jpg"},
		{"../../etc/passwd", "passwd"},
		{`C:\Users\me\scan.pdf`, "scan.pdf"},
		{".hidden", "hidden"},
		{"résumé?.txt", "rsum.txt"},
		{"", "proof"},
		{"...", "proof"},
		{strings.Repeat("a", 150) + ".jpg", strings.Repeat("a", 96) + ".jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeFilename(tt.in))
		})
	}
}
