package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInfoString(t *testing.T) {
	tests := []struct {
		name string
		info Info
		want string
	}{
		{
			name: "tagged build",
			info: Info{Version: "v1.2.0", CommitHash: "abc1234", BuildTime: "2026-01-01"},
			want: "stubgen v1.2.0 (commit abc1234, built 2026-01-01)",
		},
		{
			name: "dev build",
			info: Info{Version: "dev", CommitHash: "dev", BuildTime: "unknown"},
			want: "stubgen dev (commit dev, built unknown)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.info.String())
		})
	}
}

func TestShort(t *testing.T) {
	assert.Equal(t, "0123456", Info{CommitHash: "0123456789abcdef"}.Short())
	assert.Equal(t, "dev", Info{CommitHash: "dev"}.Short())
}

func TestGet(t *testing.T) {
	info := Get()
	assert.Equal(t, SchemaFormats, info.SchemaFormats)
	assert.Contains(t, info.GoVersion, "go")
	assert.Contains(t, info.Platform, "/")
}
