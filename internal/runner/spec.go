package runner

import (
	"fmt"

	v1 "github.com/bestzip/bestzip/apis/v1"
	"github.com/bestzip/bestzip/internal/engine/sinks"
	"github.com/samber/lo"
)

// ResolvedSpec holds a kind identifier and the spec for that kind.
type ResolvedSpec struct {
	Kind string
	Spec any
}

// ResolvePublishSpec extracts the kind and spec from a v1.PublishSpec. A nil
// spec resolves to an empty kind; more than one target is an error.
func ResolvePublishSpec(p *v1.PublishSpec) (ResolvedSpec, error) {
	if p == nil {
		return ResolvedSpec{}, nil
	}

	candidates := []ResolvedSpec{
		{Kind: sinks.FilesystemSinkKind, Spec: p.Filesystem},
		{Kind: sinks.S3SinkKind, Spec: p.S3},
		{Kind: sinks.StreamSinkKind, Spec: p.Stdout},
	}
	set := lo.Filter(candidates, func(c ResolvedSpec, _ int) bool {
		switch spec := c.Spec.(type) {
		case *v1.FilesystemPublishSpec:
			return spec != nil
		case *v1.S3PublishSpec:
			return spec != nil
		case *v1.StdoutSpec:
			return spec != nil
		default:
			return false
		}
	})

	switch len(set) {
	case 0:
		return ResolvedSpec{}, fmt.Errorf("publish has no target specified")
	case 1:
		return set[0], nil
	default:
		return ResolvedSpec{}, fmt.Errorf("publish has more than one target specified: %v",
			lo.Map(set, func(c ResolvedSpec, _ int) string { return c.Kind }))
	}
}
