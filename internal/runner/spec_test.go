package runner

import (
	"testing"

	v1 "github.com/bestzip/bestzip/apis/v1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePublishSpec(t *testing.T) {
	tests := []struct {
		name     string
		spec     *v1.PublishSpec
		wantKind string
		wantErr  string
	}{
		{name: "nil spec", spec: nil, wantKind: ""},
		{name: "filesystem", spec: &v1.PublishSpec{Filesystem: &v1.FilesystemPublishSpec{Path: "/dist"}}, wantKind: "filesystem"},
		{name: "s3", spec: &v1.PublishSpec{S3: &v1.S3PublishSpec{Bucket: "b"}}, wantKind: "s3"},
		{name: "stdout", spec: &v1.PublishSpec{Stdout: &v1.StdoutSpec{}}, wantKind: "stream"},
		{name: "empty", spec: &v1.PublishSpec{}, wantErr: "no target specified"},
		{
			name:    "several targets",
			spec:    &v1.PublishSpec{Stdout: &v1.StdoutSpec{}, S3: &v1.S3PublishSpec{Bucket: "b"}},
			wantErr: "more than one target specified: [s3 stream]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolvePublishSpec(tt.spec)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, got.Kind)
		})
	}
}
