package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/huangsam/trendline/internal/contract"
	"github.com/huangsam/trendline/schema"
)

// IdentityResolver resolves the numeric component and project ids written
// with a new issue.
type IdentityResolver interface {
	ResolveIDs(ctx context.Context, issue schema.Issue) (componentID, projectID int64, err error)
}

// BatchIdentity trusts the ids already carried by the issue. It is used where
// the writer runs next to the analyzer and has no catalog access.
type BatchIdentity struct{}

// ResolveIDs returns the issue's own ids.
func (BatchIdentity) ResolveIDs(_ context.Context, issue schema.Issue) (int64, int64, error) {
	return issue.ComponentID, issue.ProjectID, nil
}

// ServerIdentity translates component and project uuids into ids.
type ServerIdentity struct {
	components contract.ComponentFinder
}

// NewServerIdentity returns a resolver that looks components up in finder.
func NewServerIdentity(finder contract.ComponentFinder) ServerIdentity {
	return ServerIdentity{components: finder}
}

// ResolveIDs looks up both uuids. Unknown uuids wrap ErrComponentNotFound.
func (s ServerIdentity) ResolveIDs(ctx context.Context, issue schema.Issue) (int64, int64, error) {
	comp, err := s.lookup(ctx, issue.ComponentUUID)
	if err != nil {
		return 0, 0, err
	}
	project, err := s.lookup(ctx, issue.ProjectUUID)
	if err != nil {
		return 0, 0, err
	}
	return comp.ID, project.ID, nil
}

func (s ServerIdentity) lookup(ctx context.Context, uuid string) (schema.Component, error) {
	comp, err := s.components.FindComponentByUUID(ctx, uuid)
	if errors.Is(err, contract.ErrNotFound) {
		return schema.Component{}, fmt.Errorf("%w: %q", ErrComponentNotFound, uuid)
	}
	return comp, err
}

// NewIdentityResolver returns the resolver for mode. Server mode looks
// components up through finder.
func NewIdentityResolver(mode schema.IdentityMode, finder contract.ComponentFinder) IdentityResolver {
	if mode == schema.BatchIdentity {
		return BatchIdentity{}
	}
	return NewServerIdentity(finder)
}
