package runner

import (
	"testing"

	v1 "github.com/bestzip/bestzip/apis/v1"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpand(t *testing.T) {
	tests := []struct {
		name       string
		value      string
		variables  map[string]string
		want       string
		wantErr    bool
		errContain string
	}{
		{
			name:      "no variables",
			value:     "dist/bundle.zip",
			variables: map[string]string{},
			want:      "dist/bundle.zip",
		},
		{
			name:      "glob left untouched",
			value:     "src/**/*.js",
			variables: map[string]string{},
			want:      "src/**/*.js",
		},
		{
			name:  "multiple variables",
			value: "${JOB_NAME}-${JOB_DATE_ISO8601}.zip",
			variables: map[string]string{
				"JOB_NAME":         "lambda",
				"JOB_DATE_ISO8601": "20260124T103000Z",
			},
			want: "lambda-20260124T103000Z.zip",
		},
		{
			name:      "dollar sign without braces uses short form",
			value:     "$PLAIN",
			variables: map[string]string{"PLAIN": "value"},
			want:      "value",
		},
		{
			name:       "disallowed env var",
			value:      "${SECRET_KEY}",
			variables:  map[string]string{},
			wantErr:    true,
			errContain: `environment variable "SECRET_KEY" is not in the allowed list`,
		},
		{
			name:      "multiple errors accumulated",
			value:     "${NOT_ALLOWED}${ALSO_NOT_ALLOWED}",
			variables: map[string]string{},
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Expand(tt.value, tt.variables)

			if tt.wantErr {
				require.Error(t, err)
				if tt.errContain != "" {
					assert.Contains(t, err.Error(), tt.errContain)
				}
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExpandJob(t *testing.T) {
	variables := map[string]string{
		"JOB_NAME":         "lambda",
		"JOB_DATE_ISO8601": "20260124T103000Z",
		"BUCKET":           "artifacts",
		"APP_DIR":          "/srv/app",
	}

	job := v1.ArchiveJob{
		Kind:     v1.ArchiveJobKind,
		Metadata: v1.Metadata{Name: "lambda"},
		Spec: v1.ArchiveJobSpec{
			Sources:     []string{"${APP_DIR}/index.js", "lib"},
			Destination: "${JOB_NAME}-${JOB_DATE_ISO8601}.zip",
			WorkingDir:  "${APP_DIR}",
			PackageFile: "${APP_DIR}/package.json",
			Publish: &v1.PublishSpec{
				S3: &v1.S3PublishSpec{
					Bucket: "${BUCKET}",
					Prefix: lo.ToPtr("releases/${JOB_NAME}"),
				},
			},
		},
	}

	require.NoError(t, ExpandJob(&job, variables))

	assert.Equal(t, []string{"/srv/app/index.js", "lib"}, job.Spec.Sources)
	assert.Equal(t, "lambda-20260124T103000Z.zip", job.Spec.Destination)
	assert.Equal(t, "/srv/app", job.Spec.WorkingDir)
	assert.Equal(t, "/srv/app/package.json", job.Spec.PackageFile)
	assert.Equal(t, "artifacts", job.Spec.Publish.S3.Bucket)
	assert.Equal(t, "releases/lambda", *job.Spec.Publish.S3.Prefix)
	assert.Nil(t, job.Spec.Publish.S3.Region)
}

func TestExpandJob_CollectsErrors(t *testing.T) {
	job := v1.ArchiveJob{
		Spec: v1.ArchiveJobSpec{
			Sources:     []string{"${FIRST}"},
			Destination: "${SECOND}.zip",
			Publish: &v1.PublishSpec{
				Filesystem: &v1.FilesystemPublishSpec{Path: "${THIRD}"},
			},
		},
	}

	err := ExpandJob(&job, map[string]string{})
	require.Error(t, err)
	assert.ErrorContains(t, err, "FIRST")
	assert.ErrorContains(t, err, "SECOND")
	assert.ErrorContains(t, err, "THIRD")
}

func TestExpandJob_Nil(t *testing.T) {
	assert.NoError(t, ExpandJob(nil, nil))
}
